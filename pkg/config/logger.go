package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// EnableColorOutput reports whether stream is a terminal.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// NewLogger returns the console logger for level ("none", "normal" or "debug"). Errors go to
// stderr, everything else to stdout; levels are colored only on terminals.
func NewLogger(level string) *zap.Logger {
	return newLogger(level, os.Stdout, os.Stderr)
}

func newLogger(level string, stdout, stderr *os.File) *zap.Logger {
	var lowest zapcore.Level
	switch level {
	case "debug":
		lowest = zapcore.DebugLevel
	case "normal", "":
		lowest = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	encoder := func(stream *os.File) zapcore.Encoder {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.TimeKey = zapcore.OmitKey
		if EnableColorOutput(stream) {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			ec.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		return zapcore.NewConsoleEncoder(ec)
	}

	low := zapcore.NewCore(encoder(stdout), zapcore.Lock(stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lowest <= lvl && lvl < zapcore.ErrorLevel
		}))
	high := zapcore.NewCore(encoder(stderr), zapcore.Lock(stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))

	return zap.New(zapcore.NewTee(low, high)).Named("figma-jsx")
}
