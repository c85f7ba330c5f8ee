package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSetup_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "info", "production")

	logger.Info("task created", "name", "buy milk")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task created", entry["msg"])
	assert.Equal(t, "buy milk", entry["name"])
	assert.Equal(t, "todo-api", entry["service"])
}

func TestSetup_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "debug", "development")

	logger.Debug("listing users")

	assert.Contains(t, buf.String(), "msg=\"listing users\"")
}

func TestSetup_InvalidLevelWarns(t *testing.T) {
	var buf bytes.Buffer
	setup(&buf, "chatty", "development")

	assert.True(t, strings.Contains(buf.String(), "invalid log level configured"))
}
