package util

import (
	"go.uber.org/zap"
)

var logger *zap.Logger

// InitLogger sets up the global logger. Production mode emits JSON,
// anything else uses the human-readable development encoder.
func InitLogger(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// GetLogger returns the global logger, falling back to a no-op logger
// when InitLogger has not been called (e.g. in tests).
func GetLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// SyncLogger flushes buffered log entries. Call it on shutdown.
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
