package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "woofpad.log")
	log, err := New(&Config{Level: "debug", LogFile: path, MaxSize: 1})
	require.NoError(t, err)

	log.WithOperation("swap").Info("Message executed")
	log.WithComponent("api").Debug("Request served")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "swap", first["operation"])
	assert.NotEmpty(t, first["correlation_id"])
	assert.Equal(t, "INFO", first["level"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLevelFiltersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "woofpad.log")
	log, err := New(&Config{Level: "warn", LogFile: path})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), "kept")
}
