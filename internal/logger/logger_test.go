package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		env     string
		enabled zapcore.Level
		off     zapcore.Level
	}{
		{name: "production info", level: "info", env: "production", enabled: zapcore.InfoLevel, off: zapcore.DebugLevel},
		{name: "development debug", level: "debug", env: "development", enabled: zapcore.DebugLevel, off: zapcore.DebugLevel - 1},
		{name: "upper case level", level: "WARN", env: "production", enabled: zapcore.WarnLevel, off: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.level, tt.env)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.off))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "production")
	assert.Error(t, err)
}
