package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel(" warning "))
	assert.Equal(t, Error, ParseLevel("error"))
	assert.Equal(t, Info, ParseLevel("verbose"))
	assert.Equal(t, "WARN", Warn.String())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Warn)
	defer Close()

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("skipping edge %s", "process:1 -> process:99")
	Errorf("sink down")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN] skipping edge process:1 -> process:99")
	assert.Contains(t, lines[1], "[ERROR] sink down")
	assert.True(t, strings.HasPrefix(lines[0], "["))
}

func TestDisabledLoggerIsSilent(t *testing.T) {
	require.NoError(t, Init(false, "debug", "", true))
	Errorf("nothing happens")
	assert.NoError(t, Close())
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "continuity.log")
	require.NoError(t, Init(true, "info", path, false))
	Infof("pipeline started")
	Debugf("not written")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] pipeline started")
	assert.NotContains(t, string(data), "not written")
}

func TestInitWrapsLogDirectoryErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := Init(true, "info", filepath.Join(blocker, "logs", "app.log"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}
