package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupExpiredFiles(t *testing.T) {
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "old.xlsx")
	freshFile := filepath.Join(dir, "fresh.csv")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	removed, err := CleanupExpiredFiles(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, freshFile)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestCleanupExpiredFiles_MissingDirectory(t *testing.T) {
	removed, err := CleanupExpiredFiles(filepath.Join(t.TempDir(), "missing"), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
