// Package config loads the optional figma-jsx project file.
//
//	rootClass: product-card
//	variables: tokens.yml
//	outDir: src/components/ProductCard
//	lineWidth: 100
//	indent: "    "
//	variableStyle: css
//	defaults:
//	  color: "#1a1a1a"
//	  font-family: '"Roboto"'
//	logLevel: debug
//
// Command line flags override values from the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kataras/figma-jsx/pkg/converter"
)

// Config is the project file.
type Config struct {
	RootClass     string            `yaml:"rootClass,omitempty" validate:"omitempty,max=128"`
	Variables     string            `yaml:"variables,omitempty"`
	OutDir        string            `yaml:"outDir,omitempty"`
	LineWidth     int               `yaml:"lineWidth,omitempty" validate:"omitempty,min=40,max=400"`
	Indent        string            `yaml:"indent,omitempty" validate:"omitempty,indent"`
	VariableStyle string            `yaml:"variableStyle,omitempty" validate:"omitempty,oneof=scss css"`
	Defaults      map[string]string `yaml:"defaults,omitempty" validate:"omitempty,dive,keys,css_property,endkeys,required"`
	LogLevel      string            `yaml:"logLevel,omitempty" validate:"omitempty,oneof=none normal debug"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		OutDir:        ".",
		LineWidth:     converter.DefaultLineWidth,
		Indent:        converter.DefaultIndent,
		VariableStyle: converter.VariableStyleSCSS,
		LogLevel:      "normal",
	}
}

// ValidationError reports the first invalid field of a configuration.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c == nil {
		return &ValidationError{Field: "config", Message: "configuration is nil"}
	}
	if err := validatorInstance().Struct(c); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			field := fieldName(ves[0])
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("failed validation for tag '%s'", ves[0].Tag()),
				Err:     err,
			}
		}
		return &ValidationError{Field: "config", Message: err.Error(), Err: err}
	}
	return nil
}

// Suppressions returns the inherited-default table. Without a defaults section the built-in
// table applies; an empty section disables suppression.
func (c *Config) Suppressions() []converter.Declaration {
	if c.Defaults == nil {
		return nil
	}
	props := make([]string, 0, len(c.Defaults))
	for p := range c.Defaults {
		props = append(props, p)
	}
	sort.Strings(props)

	out := make([]converter.Declaration, 0, len(props))
	for _, p := range props {
		out = append(out, converter.Declaration{Property: p, Value: c.Defaults[p]})
	}
	return out
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	indentPattern      = regexp.MustCompile(`^( {1,8}|\t)$`)
	cssPropertyPattern = regexp.MustCompile(`^-{0,2}[a-z][a-z0-9-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("indent", func(fl validator.FieldLevel) bool {
			return indentPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("css_property", func(fl validator.FieldLevel) bool {
			return cssPropertyPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// fieldName turns Config.LineWidth into the yaml-ish "lineWidth".
func fieldName(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.StructNamespace(), "Config.")
	if ns == "" {
		return "config"
	}
	return strings.ToLower(ns[:1]) + ns[1:]
}
