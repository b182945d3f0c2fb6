package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	InstallCrashHandler(dir)
	t.Cleanup(func() {
		crashDirMu.Lock()
		crashDir = "./logs"
		crashDirMu.Unlock()
	})

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	path := WriteCrashFile("boom", "main.go:1")
	require.NotEmpty(t, path)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== POKEDEX CRASH REPORT ===")
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "main.go:1")
	assert.Contains(t, string(data), GetFullVersion())
}
