package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestEnvLoggerDebugRequiresEnv(t *testing.T) {
	buf := captureLog(t)
	t.Setenv(DebugEnv, "")

	l := NewEnvLogger("[deploy]")
	l.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	t.Setenv(DebugEnv, "1")
	l.Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "[deploy] shown 2")
}

func TestEnvLoggerLevels(t *testing.T) {
	buf := captureLog(t)
	l := NewEnvLogger("[ssh]")

	l.Info("connected")
	l.Warn("slow")
	l.Error("gone")

	out := buf.String()
	assert.Contains(t, out, "[ssh] connected")
	assert.Contains(t, out, "[ssh] WARN: slow")
	assert.Contains(t, out, "[ssh] ERROR: gone")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("running %s", "git fetch")
	l.Warn("careful")

	assert.True(t, l.HasLevel("debug"))
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))
	assert.True(t, l.Contains("git fetch"))
	assert.False(t, l.Contains("composer"))

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	buf := NewBufferLogger()
	SetDefault(buf)
	Default().Info("hello")

	assert.True(t, buf.Contains("hello"))
}
