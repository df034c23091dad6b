package launcher_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duperknight/ashell-install/pkg/filesystem"
	"github.com/duperknight/ashell-install/pkg/launcher"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/types"
)

func newTestPaths(t *testing.T) paths.Paths {
	t.Helper()
	t.Setenv("HOME", "/home/test")
	t.Setenv(paths.EnvInstallDir, "")
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvBinDir, "")

	p, err := paths.New()
	require.NoError(t, err)
	return p
}

func readFile(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteShim(t *testing.T) {
	p := newTestPaths(t)
	fsys := filesystem.NewMemory()
	m := launcher.New(fsys, p)

	changed, err := m.WriteShim()
	require.NoError(t, err)
	assert.True(t, changed)

	script := readFile(t, fsys, p.LauncherPath())
	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
	assert.Contains(t, script, p.VenvPython())
	assert.Contains(t, script, p.EntryPointPath())
	assert.Contains(t, script, p.VersionMarkerPath())
	assert.Contains(t, script, `"$@"`)

	// Second write is a no-op.
	changed, err = m.WriteShim()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestWriteShimReplacesStaleScript(t *testing.T) {
	p := newTestPaths(t)
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll(p.LauncherDir(), 0755))
	require.NoError(t, fsys.WriteFile(p.LauncherPath(), []byte("#!/bin/sh\nexec old\n"), 0755))

	m := launcher.New(fsys, p)
	changed, err := m.WriteShim()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotContains(t, readFile(t, fsys, p.LauncherPath()), "exec old")
}

func TestRemoveLegacy(t *testing.T) {
	p := newTestPaths(t)
	fsys := filesystem.NewMemory()
	m := launcher.New(fsys, p)

	// Nothing to remove is fine.
	require.NoError(t, m.RemoveLegacy())

	require.NoError(t, fsys.MkdirAll(p.LauncherDir(), 0755))
	require.NoError(t, fsys.WriteFile(p.LegacyLauncherPath(), []byte("old"), 0755))
	require.NoError(t, m.RemoveLegacy())

	_, err := fsys.Stat(p.LegacyLauncherPath())
	assert.Error(t, err)
}

func TestContainsPath(t *testing.T) {
	tests := []struct {
		name    string
		pathEnv string
		dir     string
		want    bool
	}{
		{name: "exact segment", pathEnv: "/usr/bin:/home/test/.ashell/bin", dir: "/home/test/.ashell/bin", want: true},
		{name: "trailing slash matches", pathEnv: "/home/test/.ashell/bin/", dir: "/home/test/.ashell/bin", want: true},
		{name: "substring of longer entry", pathEnv: "/home/test/.ashell/bin-extra", dir: "/home/test/.ashell/bin", want: false},
		{name: "absent", pathEnv: "/usr/bin:/bin", dir: "/home/test/.ashell/bin", want: false},
		{name: "empty path", pathEnv: "", dir: "/home/test/.ashell/bin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, launcher.ContainsPath(tt.pathEnv, tt.dir))
		})
	}
}

func TestRegisterPath(t *testing.T) {
	t.Run("already on PATH does nothing", func(t *testing.T) {
		p := newTestPaths(t)
		fsys := filesystem.NewMemory()
		m := launcher.New(fsys, p)

		rcFile, err := m.RegisterPath("/usr/bin:"+p.LauncherDir(), "/bin/bash")
		require.NoError(t, err)
		assert.Empty(t, rcFile)
	})

	t.Run("appends export line for bash", func(t *testing.T) {
		p := newTestPaths(t)
		fsys := filesystem.NewMemory()
		require.NoError(t, fsys.MkdirAll(p.HomeDir(), 0755))
		require.NoError(t, fsys.WriteFile("/home/test/.bashrc", []byte("alias ll='ls -l'"), 0644))
		m := launcher.New(fsys, p)

		rcFile, err := m.RegisterPath("/usr/bin", "/bin/bash")
		require.NoError(t, err)
		assert.Equal(t, "/home/test/.bashrc", rcFile)

		content := readFile(t, fsys, rcFile)
		assert.Contains(t, content, "alias ll='ls -l'")
		assert.Contains(t, content, `export PATH="$PATH:`+p.LauncherDir()+`"`)
	})

	t.Run("zsh uses zshrc", func(t *testing.T) {
		p := newTestPaths(t)
		fsys := filesystem.NewMemory()
		m := launcher.New(fsys, p)

		rcFile, err := m.RegisterPath("/usr/bin", "/usr/bin/zsh")
		require.NoError(t, err)
		assert.Equal(t, "/home/test/.zshrc", rcFile)
	})

	t.Run("unknown shell falls back to profile", func(t *testing.T) {
		p := newTestPaths(t)
		fsys := filesystem.NewMemory()
		m := launcher.New(fsys, p)

		rcFile, err := m.RegisterPath("/usr/bin", "/bin/fish")
		require.NoError(t, err)
		assert.Equal(t, "/home/test/.profile", rcFile)
	})

	t.Run("registration is idempotent", func(t *testing.T) {
		p := newTestPaths(t)
		fsys := filesystem.NewMemory()
		m := launcher.New(fsys, p)

		rcFile, err := m.RegisterPath("/usr/bin", "/bin/bash")
		require.NoError(t, err)
		require.NotEmpty(t, rcFile)
		first := readFile(t, fsys, rcFile)

		again, err := m.RegisterPath("/usr/bin", "/bin/bash")
		require.NoError(t, err)
		assert.Empty(t, again)
		assert.Equal(t, first, readFile(t, fsys, rcFile))
	})
}
