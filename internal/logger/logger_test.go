package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		level   string
		enabled zapcore.Level
		off     zapcore.Level
	}{
		{"dev debug", "development", "debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"prod warn", "production", "warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"default info", "", "", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.mode, tt.level)
			require.NoError(t, err)
			core := log.SugaredLogger.Desugar().Core()
			assert.True(t, core.Enabled(tt.enabled))
			assert.False(t, core.Enabled(tt.off))
		})
	}
}

func TestNopAndWith(t *testing.T) {
	log := NewNop().With("session_id", "s-1")
	log.Info("turn processed", "phase", "COLLECTING")
	log.Warn("fallback", "reason", "unavailable")
	log.Sync()
	assert.NotNil(t, log.SugaredLogger)
}
