package utils

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger. InitLogger must be called before any
// package reads it.
var Logger *zap.Logger

func InitLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	Logger = logger
	return logger, nil
}
