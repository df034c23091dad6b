// Package launcher writes the shell's launcher shim and wires its directory
// into the user's PATH. The shim is a tiny sh script that delegates to the
// interpreter inside the managed virtual environment, so the shell always
// runs with its own dependencies regardless of the caller's environment.
package launcher

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/types"
)

// Manager installs the launcher and registers it on PATH
type Manager struct {
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger
}

func New(fsys types.FS, p paths.Paths) *Manager {
	return &Manager{
		fs:     fsys,
		paths:  p,
		logger: logging.GetLogger("launcher"),
	}
}

func shimScript(python, entryPoint, versionMarker string) []byte {
	var b bytes.Buffer
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Managed by ashell-install. Edits are overwritten on upgrade.\n")
	fmt.Fprintf(&b, "if [ \"$1\" = \"--version\" ]; then\n")
	fmt.Fprintf(&b, "    echo \"AShell v$(cat %q 2>/dev/null || echo unknown)\"\n", versionMarker)
	b.WriteString("    exit 0\n")
	b.WriteString("fi\n")
	fmt.Fprintf(&b, "exec %q %q \"$@\"\n", python, entryPoint)
	return b.Bytes()
}

// WriteShim writes the launcher script, creating its directory as needed.
// An up-to-date shim is left untouched. Returns whether the file changed.
func (m *Manager) WriteShim() (bool, error) {
	shimPath := m.paths.LauncherPath()
	want := shimScript(m.paths.VenvPython(), m.paths.EntryPointPath(), m.paths.VersionMarkerPath())

	if existing, err := m.fs.ReadFile(shimPath); err == nil && bytes.Equal(existing, want) {
		m.logger.Debug().Str("path", shimPath).Msg("launcher is up to date")
		return false, nil
	}

	if err := m.fs.MkdirAll(m.paths.LauncherDir(), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create launcher directory %s", m.paths.LauncherDir())
	}
	if err := m.fs.WriteFile(shimPath, want, 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrLauncherWrite, "failed to write launcher %s", shimPath)
	}

	m.logger.Info().Str("path", shimPath).Msg("wrote launcher")
	return true, nil
}

// RemoveLegacy deletes the old mixed-case launcher name if present.
func (m *Manager) RemoveLegacy() error {
	legacy := m.paths.LegacyLauncherPath()
	if err := m.fs.Remove(legacy); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove legacy launcher %s", legacy)
	}
	m.logger.Info().Str("path", legacy).Msg("removed legacy launcher")
	return nil
}

// ContainsPath reports whether dir appears as an exact segment of the
// given PATH value. Substring matches of longer entries do not count.
func ContainsPath(pathEnv, dir string) bool {
	cleaned := filepath.Clean(dir)
	for _, entry := range strings.Split(pathEnv, string(os.PathListSeparator)) {
		if entry == "" {
			continue
		}
		if filepath.Clean(entry) == cleaned {
			return true
		}
	}
	return false
}

// rcFileFor picks the startup file to edit for the user's shell.
func rcFileFor(shellEnv, homeDir string) string {
	switch filepath.Base(shellEnv) {
	case "zsh":
		return filepath.Join(homeDir, ".zshrc")
	case "bash":
		return filepath.Join(homeDir, ".bashrc")
	default:
		return filepath.Join(homeDir, ".profile")
	}
}

// RegisterPath makes the launcher directory reachable from new shells.
// pathEnv and shellEnv are the caller's PATH and SHELL values. Returns the
// rc file that was modified, or empty when nothing needed changing.
func (m *Manager) RegisterPath(pathEnv, shellEnv string) (string, error) {
	binDir := m.paths.LauncherDir()

	if ContainsPath(pathEnv, binDir) {
		m.logger.Debug().Str("dir", binDir).Msg("launcher directory already on PATH")
		return "", nil
	}

	if runtime.GOOS == "windows" {
		m.logger.Warn().Str("dir", binDir).
			Msg("add the launcher directory to PATH manually via system settings")
		return "", nil
	}

	rcFile := rcFileFor(shellEnv, m.paths.UserHomeDir())
	exportLine := fmt.Sprintf(`export PATH="$PATH:%s"`, binDir)

	existing, err := m.fs.ReadFile(rcFile)
	if err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", rcFile)
	}
	if strings.Contains(string(existing), exportLine) {
		m.logger.Debug().Str("file", rcFile).Msg("PATH entry already registered")
		return "", nil
	}

	var b bytes.Buffer
	b.Write(existing)
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		b.WriteByte('\n')
	}
	b.WriteString("\n# Added by ashell-install\n")
	b.WriteString(exportLine)
	b.WriteByte('\n')

	if err := m.fs.WriteFile(rcFile, b.Bytes(), 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrPathRegister, "failed to update %s", rcFile)
	}

	m.logger.Info().Str("file", rcFile).Str("dir", binDir).Msg("registered launcher directory on PATH")
	return rcFile, nil
}
