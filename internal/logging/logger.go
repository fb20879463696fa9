package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds a production ready structured logger.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	return cfg.Build()
}
