package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	log, err := New(Config{
		Level:  "info",
		Format: "json",
		File:   &FileConfig{Enabled: true, Path: path},
	})
	require.NoError(t, err)

	log.WithComponent("batch").WithDocument("interview_01", "/data/interview_01.md").Info("Document processed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"batch"`)
	assert.Contains(t, string(data), `"document":"interview_01"`)
	assert.Contains(t, string(data), "Document processed")
}

func TestUseConsole(t *testing.T) {
	assert.True(t, useConsole("console", 0))
	assert.False(t, useConsole("json", 0))

	f, err := os.CreateTemp(t.TempDir(), "fd")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, useConsole("auto", f.Fd()), "regular files are not terminals")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	require.NotNil(t, log)
	log.WithRequestID("abc").Debug("ignored")
}
