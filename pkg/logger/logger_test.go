package logger

import (
	"coursegen_backend/internal/config"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  zapcore.Level
	}{
		{"debug mode", "debug", "", zap.DebugLevel},
		{"release mode", "release", "", zap.InfoLevel},
		{"explicit level wins", "debug", "warn", zap.WarnLevel},
		{"unknown level falls back", "release", "loud", zap.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
			assert.Equal(t, tt.want, levelFor(cfg))
		})
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{File: path, MaxSizeMB: 1},
	}

	l := New(cfg)
	l.Info("course materialized", zap.String("course_id", "c-1"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"course materialized"`)
	assert.Contains(t, string(data), `"course_id":"c-1"`)
	assert.Contains(t, string(data), `"service":"coursegen"`)
}

func TestSetForTest(t *testing.T) {
	prev := Log
	restore := SetForTest(zap.NewExample())
	assert.NotSame(t, prev, Log)
	restore()
	assert.Same(t, prev, Log)
}
