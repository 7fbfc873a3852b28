package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gauntlet.log")
	logger, err := New(Options{Path: path})
	require.NoError(t, err)

	logger.Info("validated", zap.String("path", "entry.md"))
	logger.Debug("hidden at info level")
	Sync(logger)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 1)
	assert.Equal(t, "validated", entries[0]["msg"])
	assert.Equal(t, "entry.md", entries[0]["path"])
	assert.Equal(t, "info", entries[0]["level"])
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(Options{Path: path, Verbose: true})
	require.NoError(t, err)
	logger.Debug("provider selected")
	Sync(logger)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider selected")
}

func TestNewWithoutPath(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug should be disabled")
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel), "warn should be enabled")
	Sync(nil)
}
