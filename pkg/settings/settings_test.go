package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "DuperKnight", cfg.Registry.Owner)
	assert.Equal(t, "AShell", cfg.Registry.Repo)
	assert.Equal(t, "https://api.github.com", cfg.Registry.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "", cfg.Python.Interpreter)
	assert.Equal(t, "3.9", cfg.Python.MinVersion)
}

func TestLoadUserFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[registry]
endpoint = "http://localhost:9999"
timeout = 3

[python]
interpreter = "/usr/bin/python3.12"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "http://localhost:9999", cfg.Registry.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "/usr/bin/python3.12", cfg.Python.Interpreter)
	// Defaults still present for untouched keys
	assert.Equal(t, "DuperKnight", cfg.Registry.Owner)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ASHELL_INSTALL_REGISTRY_ENDPOINT", "http://127.0.0.1:8080")
	t.Setenv("ASHELL_INSTALL_REGISTRY_OWNER", "someone-else")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.Registry.Endpoint)
	assert.Equal(t, "someone-else", cfg.Registry.Owner)
}

func TestRequestTimeoutFallback(t *testing.T) {
	cfg := &Settings{}
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
}

func TestEnsureFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "confhome")

	cfg, err := Load(dir)
	require.NoError(t, err)

	path, err := EnsureFile(dir, cfg)
	require.NoError(t, err)
	assert.FileExists(t, path)

	// A second call leaves the file alone
	require.NoError(t, os.WriteFile(path, []byte("# edited\n"), 0644))
	again, err := EnsureFile(dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# edited\n", string(data))
}
