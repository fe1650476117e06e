package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/leverage/backend/pkg/config"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	cfg := &config.Config{Env: "development", LogLevel: level}
	return NewWithWriter(cfg, &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			newBufferLogger(t, tt.level)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerStampsServiceAndEnv(t *testing.T) {
	log, buf := newBufferLogger(t, "debug")

	log.Info("started")

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "started", entry["message"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "development", entry["env"])
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(t, "warn")

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFields(t *testing.T) {
	log, buf := newBufferLogger(t, "debug")

	log.WithFields(map[string]interface{}{
		"ticker":  "AAPL",
		"periods": 4,
	}).WithRequestID("req-1").Infof("derived %d records", 3)

	entry := decodeLine(t, buf)
	assert.Equal(t, "AAPL", entry["ticker"])
	assert.Equal(t, float64(4), entry["periods"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "derived 3 records", entry["message"])
}

func TestWithError(t *testing.T) {
	log, buf := newBufferLogger(t, "debug")

	log.WithError(errors.New("provider unreachable")).WithField("ticker", "MSFT").Error("fetch failed")

	entry := decodeLine(t, buf)
	assert.Equal(t, "provider unreachable", entry["error"])
	assert.Equal(t, "MSFT", entry["ticker"])
	assert.Equal(t, "error", entry["level"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithField("k", "v").Errorf("nothing %s", "written")
	})
}
