package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer.
// Returns the buffer and a cleanup func restoring the previous writer.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()
	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}
	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	defer SetLevel("INFO")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestStructuredFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	Info("thumbnail generated", KeyPath, "/pics/a.png", KeyIndex, 3)

	out := buf.String()
	assert.Contains(t, out, "thumbnail generated")
	assert.Contains(t, out, "path=/pics/a.png")
	assert.Contains(t, out, "index=3")
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	defer SetFormat("text")

	Info("load complete", KeyKind, "full", KeyIndex, 7)

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "load complete", record["msg"])
	assert.Equal(t, "full", record["kind"])
	assert.Equal(t, float64(7), record["index"])
}

func TestInvalidLevelIgnored(t *testing.T) {
	SetLevel("INFO")
	SetLevel("LOUD")
	assert.Equal(t, int32(LevelInfo), currentLevel.Load())
}

func TestInvalidFormatIgnored(t *testing.T) {
	SetFormat("text")
	SetFormat("xml")
	format, _ := currentFormat.Load().(string)
	assert.Equal(t, "text", format)
}
