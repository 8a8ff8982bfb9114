package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelDebug, FormatJSON)

	log.Info("operation completed",
		"oid", "1.3.6.1.1.21.3",
		"count", 3,
		"ok", true,
		"err", errors.New("boom"),
		"elapsed", 2*time.Millisecond,
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "operation completed", entry["msg"])
	assert.Equal(t, "1.3.6.1.1.21.3", entry["oid"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, true, entry["ok"])
	assert.Equal(t, "boom", entry["err"])
	assert.Contains(t, entry, "ts")
	assert.Contains(t, entry, "elapsed")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelWarn, FormatJSON)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	log.Error("shown too")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestMalformedKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelInfo, FormatJSON)

	log.Info("odd", "key", "value", 42, "ignored", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "value", lines[0]["key"])
	assert.NotContains(t, lines[0], "dangling")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, LevelInfo, FormatJSON)

	base.WithRequestID("req-1").Info("with id")
	base.Info("without id")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.NotContains(t, lines[1], "request_id")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelInfo, FormatJSON).
		WithFields("server", "ldap://localhost:389", "cause", errors.New("refused"))

	log.Info("first")
	log.Info("second", "attempt", 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, "ldap://localhost:389", l["server"])
		assert.Equal(t, "refused", l["cause"])
	}
	assert.Equal(t, float64(2), lines[1]["attempt"])
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelInfo, FormatText)

	log.Info("entry read", "dn", "dc=example", "line", 7)

	out := buf.String()
	assert.Contains(t, out, "entry read")
	assert.Contains(t, out, "dn=dc=example")
	assert.Contains(t, out, "line=7")
	assert.NotContains(t, out, "{")
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Debug("x", "k", "v")
		log.Info("x")
		log.Warn("x")
		log.Error("x")
		log.WithRequestID("id").WithFields("k", "v").Info("x")
	})
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	log := New(Config{Level: "debug", Format: "json", Output: path})
	log.Debug("to file", "k", "v")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestNewWithUnwritableOutputFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.log")
	assert.NotNil(t, New(Config{Output: path}))
	assert.NotNil(t, New(Config{Output: "stdout"}))
	assert.NotNil(t, NewDefault())
}
