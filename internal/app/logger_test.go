package app

import (
	"testing"

	"github.com/Freeeeeet/coach_scheduler/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"development defaults to debug", config.Config{Environment: "development"}, zapcore.DebugLevel, zapcore.Level(-2)},
		{"production defaults to info", config.Config{Environment: "production"}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"level override", config.Config{Environment: "development", LogLevel: "warn"}, zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(&tt.cfg)
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("level %s must be enabled", tt.enabled)
			}
			if logger.Core().Enabled(tt.disabled) {
				t.Errorf("level %s must be disabled", tt.disabled)
			}
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.Config{LogLevel: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestServiceNameOf(t *testing.T) {
	if got := serviceNameOf(&config.Config{}); got != serviceName {
		t.Errorf("empty name = %q, want %q", got, serviceName)
	}
	if got := serviceNameOf(&config.Config{ServiceName: "scheduler-eu"}); got != "scheduler-eu" {
		t.Errorf("explicit name = %q", got)
	}
}
