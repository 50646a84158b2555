package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", FormatJSON)
	l.Named(ComponentRefSync).Debug("hidden")
	l.Named(ComponentRefSync).Info("shown")
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "refsync", entry["component"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestForUsesInstalledLogger(t *testing.T) {
	var buf bytes.Buffer
	Set(New(&buf, "debug", FormatJSON))
	t.Cleanup(func() { Set(New(&bytes.Buffer{}, "error", FormatJSON)) })

	For(ComponentStore).Debugw("patched", "id", "p1")
	assert.Contains(t, buf.String(), `"id":"p1"`)
}
