package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Production(t *testing.T) {
	out := filepath.Join(t.TempDir(), "forge.log")
	logger, err := New(Config{Level: "warn", OutputPaths: []string{out}})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.String("type", "articles"))
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "exactly one JSON line is written")
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "articles", entry["type"])
	assert.Contains(t, entry, "ts")
}

func TestNew_Development(t *testing.T) {
	logger, err := New(Config{Level: "debug", Development: true, OutputPaths: []string{filepath.Join(t.TempDir(), "dev.log")}})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
