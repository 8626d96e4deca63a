package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	CloseAll()
	stateMu.Lock()
	logsDir = ""
	debugMode = false
	logLevel = LevelInfo
	stateMu.Unlock()
}

func TestDisabledByDefault(t *testing.T) {
	defer reset()
	dataDir := t.TempDir()
	require.NoError(t, Initialize(dataDir, false, "info"))
	assert.False(t, IsDebugMode())

	Store("this goes nowhere")
	Get(CategorySession).Error("neither does this")

	_, err := os.Stat(filepath.Join(dataDir, "logs"))
	assert.True(t, os.IsNotExist(err), "no logs directory without debug mode")
}

func TestDebugModeWritesCategoryFiles(t *testing.T) {
	defer reset()
	dataDir := t.TempDir()
	require.NoError(t, Initialize(dataDir, true, "debug"))
	assert.True(t, IsDebugMode())

	Store("opened the journal")
	Session("session settled")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dataDir, "logs"))
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assertContainsSuffix(t, names, "_store.log")
	assertContainsSuffix(t, names, "_session.log")
	assertContainsSuffix(t, names, "_boot.log")
}

func TestLevelFiltering(t *testing.T) {
	defer reset()
	dataDir := t.TempDir()
	require.NoError(t, Initialize(dataDir, true, "error"))

	l := Get(CategoryStore)
	l.Info("filtered out")
	l.Error("kept")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dataDir, "logs"))
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dataDir, "logs", e.Name()))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "filtered out")
	}
}

func assertContainsSuffix(t *testing.T, names []string, suffix string) {
	t.Helper()
	for _, n := range names {
		if filepath.Ext(n) == ".log" && len(n) >= len(suffix) && n[len(n)-len(suffix):] == suffix {
			return
		}
	}
	t.Errorf("no file with suffix %s in %v", suffix, names)
}
