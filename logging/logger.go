// Package logging builds the zap logger used by the runtime and the CLI.
package logging

import (
	"os"
	"strings"

	"github.com/Swind/go-thread/config"
	"github.com/Swind/go-thread/core"
	"github.com/Swind/go-thread/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from the log section of the configuration.
// JSON output uses zap's production encoder; otherwise a console encoder
// writes to stderr.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	if cfg.JSON {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		return zc.Build()
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		level,
	)), nil
}

// NewCoreLogger is New wrapped as a core.Logger.
func NewCoreLogger(cfg config.LogConfig) (*core.ZapLogger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return core.NewZapLogger(l), nil
}

// ParseLevel converts a level name; empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zapcore.InfoLevel, errors.WithHint(
			errors.Wrapf(err, "invalid log level %q", name),
			"use one of debug, info, warn, error",
		)
	}
	return level, nil
}
