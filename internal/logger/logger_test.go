package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown %d", 1)
	assert.Contains(t, buf.String(), "[DEBUG] shown 1")

	Info("info line")
	assert.Contains(t, buf.String(), "[INFO] info line")

	Warn("warn line")
	assert.Contains(t, buf.String(), "[WARN] warn line")

	Section("Retrieval")
	assert.Contains(t, buf.String(), "=== Retrieval ===")
}

func TestErrorAlwaysPrints(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Error("boom: %v", "cause")
	assert.Contains(t, buf.String(), "[ERROR] boom: cause")
}

func TestIsVerbose(t *testing.T) {
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
