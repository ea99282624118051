// Package logging builds the application's zap loggers.
// Subsystems take named children of the root logger (resolver, pipeline,
// query, web, mcp) so log lines can be filtered per concern.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the root logger. level is one of debug/info/warn/error;
// jsonFormat selects structured JSON output instead of the console encoder.
func New(level string, jsonFormat bool) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if !jsonFormat {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	// Stack traces on every error line add noise to parse-failure reporting
	cfg.DisableStacktrace = true

	return cfg.Build()
}

// MustNew is New for main(): it panics on a bad level, which only happens
// on operator misconfiguration caught at startup
func MustNew(level string, jsonFormat bool) *zap.Logger {
	log, err := New(level, jsonFormat)
	if err != nil {
		panic(err)
	}
	return log
}
