package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesPerLevelFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	l.Info("session %s started", "abc")
	l.Warning("queue full")
	l.Error("decode failed: %v", "bad jpeg")

	info, err := os.ReadFile(filepath.Join(dir, InfoFile))
	require.NoError(t, err)
	assert.Contains(t, string(info), "session abc started")

	errs, err := os.ReadFile(filepath.Join(dir, ErrorFile))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "decode failed: bad jpeg")
	assert.NotContains(t, string(errs), "queue full")
}

func TestLogger_CleanLogs(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	defer l.Close()

	l.Warning("something odd")
	require.NoError(t, l.CleanLogs(WarningFile))

	data, err := os.ReadFile(filepath.Join(dir, WarningFile))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLogger_Discard(t *testing.T) {
	l := NewDiscard()
	l.Info("dropped")
	assert.NoError(t, l.CleanLogs(InfoFile))
	assert.Empty(t, l.Dir())
}
