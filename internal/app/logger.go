package app

import (
	"fmt"

	"github.com/Freeeeeet/coach_scheduler/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger собирает zap логгер из конфигурации.
// В production пишет JSON, иначе цветную консоль. LOG_LEVEL переопределяет уровень окружения.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zc.Level = level
	}

	zc.OutputPaths = []string{"stdout"}
	zc.InitialFields = map[string]interface{}{
		"service": serviceNameOf(cfg),
		"env":     cfg.Environment,
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func serviceNameOf(cfg *config.Config) string {
	if cfg.ServiceName != "" {
		return cfg.ServiceName
	}
	return serviceName
}
