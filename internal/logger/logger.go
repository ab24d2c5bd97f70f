// Package logger builds the zap sugared logger shared by the server, services and middleware.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a sugared logger. environment "production" selects the JSON config,
// anything else the development console config. An unknown level falls back to info.
func New(level, environment string) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if strings.EqualFold(environment, "production") {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return zapLogger.Sugar(), nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Mask hides the middle of a secret, keeping the first and last four characters.
// Short values are fully starred so their length is not revealed either.
func Mask(s string) string {
	const keep = 4
	if s == "" {
		return ""
	}
	if len(s) < 2*keep+3 {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + "..." + s[len(s)-keep:]
}
