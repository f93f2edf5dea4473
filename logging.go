package main

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds the session logger. The terminal belongs to the UI, so
// logs only go to a file and are discarded when none is configured.
func newLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), nil
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = level
	zc.OutputPaths = []string{cfg.LogFile}
	zc.ErrorOutputPaths = []string{cfg.LogFile}
	zc.DisableStacktrace = true

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("pinboard"), nil
}
