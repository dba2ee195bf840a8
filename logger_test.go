package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Config{LogLevel: "info", LogFormat: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("annotated layers", zap.Int("groups", 5))
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"annotated layers"`)
	assert.Contains(t, buf.String(), `"groups":5`)
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "printdata.log")
	var buf bytes.Buffer
	log, err := NewLogger(Config{LogLevel: "debug", LogFormat: "console", LogFile: path}, &buf)
	require.NoError(t, err)

	log.Warn("no layer change marker found")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "no layer change marker found")
	assert.Contains(t, buf.String(), "WARN")
}

func TestNewLoggerBadConfig(t *testing.T) {
	_, err := NewLogger(Config{LogLevel: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewLogger(Config{LogLevel: "info", LogFormat: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
