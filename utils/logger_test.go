package utils

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, slog.LevelWarn)

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)
	log.With("supplier", "Zimbi").Error("failed: %s", "timeout")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"shown 2\"")
	assert.Contains(t, out, "supplier=Zimbi")
	assert.Contains(t, out, "failed: timeout")
}

func TestLoggerKeepsPercentWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, slog.LevelInfo).Info("100% done")
	assert.Contains(t, buf.String(), "100% done")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
