package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kataras/figma-jsx/pkg/converter"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
rootClass: product-card
variables: tokens.yml
lineWidth: 100
indent: "    "
variableStyle: css
defaults:
  font-family: '"Roboto"'
  color: "#1a1a1a"
logLevel: debug
`))
	require.NoError(t, err)

	require.Equal(t, "product-card", cfg.RootClass)
	require.Equal(t, "tokens.yml", cfg.Variables)
	require.Equal(t, ".", cfg.OutDir, "unset keys keep their defaults")
	require.Equal(t, 100, cfg.LineWidth)
	require.Equal(t, "    ", cfg.Indent)
	require.Equal(t, converter.VariableStyleCSS, cfg.VariableStyle)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []converter.Declaration{
		{Property: "color", Value: "#1a1a1a"},
		{Property: "font-family", Value: `"Roboto"`},
	}, cfg.Suppressions())
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Nil(t, cfg.Suppressions())
}

func TestParseEmptyDefaultsDisablesSuppression(t *testing.T) {
	cfg, err := Parse([]byte("defaults: {}\n"))
	require.NoError(t, err)

	got := cfg.Suppressions()
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"variable style", "variableStyle: less\n", "variableStyle"},
		{"line width", "lineWidth: 10\n", "lineWidth"},
		{"indent", "indent: \"x\"\n", "indent"},
		{"log level", "logLevel: loud\n", "logLevel"},
		{"property name", "defaults:\n  \"Font Size\": 16px\n", "defaults"},
		{"empty default", "defaults:\n  color: \"\"\n", "defaults"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			require.True(t, strings.HasPrefix(ve.Field, tt.field), ve.Field)
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("rootclass: x\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "rootclass")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figma-jsx.yml")
	require.NoError(t, os.WriteFile(path, []byte("outDir: out\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.OutDir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLoggerLevels(t *testing.T) {
	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer devNull.Close()

	require.False(t, newLogger("none", devNull, devNull).Core().Enabled(zapcore.ErrorLevel))

	normal := newLogger("normal", devNull, devNull).Core()
	require.True(t, normal.Enabled(zapcore.InfoLevel))
	require.False(t, normal.Enabled(zapcore.DebugLevel))

	debug := newLogger("debug", devNull, devNull).Core()
	require.True(t, debug.Enabled(zapcore.DebugLevel))
	require.True(t, debug.Enabled(zapcore.ErrorLevel))
}
