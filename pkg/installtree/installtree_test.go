package installtree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duperknight/ashell-install/pkg/filesystem"
	"github.com/duperknight/ashell-install/pkg/types"
)

func writeFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMergeFreshTarget(t *testing.T) {
	fsys := filesystem.NewMemory()
	writeFile(t, fsys, "/src/shell.py", "v2")
	writeFile(t, fsys, "/src/commands/ls.py", "ls")
	writeFile(t, fsys, "/src/requirements.txt", "psutil\n")

	require.NoError(t, Merge(fsys, "/src", "/install"))

	assert.Equal(t, "v2", readFile(t, fsys, "/install/shell.py"))
	assert.Equal(t, "ls", readFile(t, fsys, "/install/commands/ls.py"))
	assert.Equal(t, "psutil\n", readFile(t, fsys, "/install/requirements.txt"))
}

func TestMergeOverwritesAndAdds(t *testing.T) {
	fsys := filesystem.NewMemory()
	writeFile(t, fsys, "/install/shell.py", "old")
	writeFile(t, fsys, "/install/commands/rm.py", "keep-me")
	writeFile(t, fsys, "/src/shell.py", "new")
	writeFile(t, fsys, "/src/commands/cd.py", "cd")

	require.NoError(t, Merge(fsys, "/src", "/install"))

	// Existing files overwritten, new files added, unrelated siblings kept
	assert.Equal(t, "new", readFile(t, fsys, "/install/shell.py"))
	assert.Equal(t, "cd", readFile(t, fsys, "/install/commands/cd.py"))
	assert.Equal(t, "keep-me", readFile(t, fsys, "/install/commands/rm.py"))
}

func TestMergeFileReplacesDirectory(t *testing.T) {
	fsys := filesystem.NewMemory()
	writeFile(t, fsys, "/install/plugin/nested.py", "x")
	writeFile(t, fsys, "/src/plugin", "now a file")

	require.NoError(t, Merge(fsys, "/src", "/install"))

	assert.Equal(t, "now a file", readFile(t, fsys, "/install/plugin"))
}

func TestMergeDirectoryReplacesFile(t *testing.T) {
	fsys := filesystem.NewMemory()
	writeFile(t, fsys, "/install/commands", "was a file")
	writeFile(t, fsys, "/src/commands/ls.py", "ls")

	require.NoError(t, Merge(fsys, "/src", "/install"))

	assert.Equal(t, "ls", readFile(t, fsys, "/install/commands/ls.py"))
}

func TestWipe(t *testing.T) {
	fsys := filesystem.NewMemory()
	writeFile(t, fsys, "/install/shell.py", "old")
	writeFile(t, fsys, "/install/.venv/bin/python", "stale")

	require.NoError(t, Wipe(fsys, "/install"))

	entries, err := fsys.ReadDir("/install")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
