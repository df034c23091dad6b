// Package paths provides centralized path handling for the installer.
// Every persistent location (install root, configuration home, launcher
// directory, state directory) is derived here, with environment overrides
// taking precedence over the defaults.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/duperknight/ashell-install/pkg/errors"
)

// Environment variable names
const (
	// EnvInstallDir overrides the application install directory
	EnvInstallDir = "ASHELL_INSTALL_DIR"

	// EnvConfigDir overrides the configuration home directory
	EnvConfigDir = "ASHELL_CONFIG_DIR"

	// EnvBinDir overrides the launcher directory
	EnvBinDir = "ASHELL_BIN_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
// IMPORTANT: These constants define the persisted installation layout and
// are NOT user-configurable beyond the environment overrides above. They
// must remain consistent across installer versions so that re-invocations
// find prior installations.
const (
	// AppDirName is the hidden directory under the user home holding everything
	AppDirName = ".ashell"

	// InstallSubdir is the subdirectory holding the extracted application files
	InstallSubdir = "app"

	// BinSubdir is the subdirectory holding the launcher shim
	BinSubdir = "bin"

	// VenvDirName is the virtual environment directory inside the install root
	VenvDirName = ".venv"

	// ConfigFileName is the persisted user configuration file
	ConfigFileName = ".ashell.conf"

	// ConfigBackupSuffix is appended to a corrupted configuration file
	ConfigBackupSuffix = ".bak"

	// DefaultsFileName is the application's declared default configuration,
	// shipped inside the install tree
	DefaultsFileName = "config_defaults.json"

	// EntryPointName is the application entry point inside the install tree
	EntryPointName = "shell.py"

	// RequirementsFileName is the dependency manifest inside the install tree
	RequirementsFileName = "requirements.txt"

	// VersionMarkerName records the installed version inside the install tree
	VersionMarkerName = ".version"

	// LauncherName is the launcher shim registered on PATH
	LauncherName = "ashell"

	// LegacyLauncherName is the shim name written by old installer versions
	LegacyLauncherName = "AShell"

	// ChangelogSubdir holds cached release notes in the config home
	ChangelogSubdir = "changelogs"

	// PendingChangelogName marks a changelog to show on next launch
	PendingChangelogName = ".pending_changelog"

	// LockFileName guards against concurrent installer invocations
	LockFileName = ".install.lock"

	// StateDirName is the installer's directory under the XDG state home
	StateDirName = "ashell-install"
)

// Paths provides centralized path management for the installer
type Paths interface {
	// UserHomeDir is the user's own home directory
	UserHomeDir() string
	// HomeDir is the resolved configuration home (~/.ashell by default)
	HomeDir() string
	InstallDir() string
	VenvDir() string
	VenvPython() string
	RequirementsPath() string
	DefaultsPath() string
	EntryPointPath() string
	VersionMarkerPath() string
	ConfigDir() string
	ConfigFilePath() string
	ConfigBackupPath() string
	LauncherDir() string
	LauncherPath() string
	LegacyLauncherPath() string
	ChangelogDir() string
	PendingChangelogPath() string
	LockPath() string
	StateDir() string
}

type paths struct {
	userHome   string
	homeDir    string
	installDir string
	configDir  string
	binDir     string
	stateDir   string
}

// New creates a new Paths instance. Locations default to subdirectories of
// ~/.ashell and may be overridden individually through the environment.
func New() (Paths, error) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		userHome = os.Getenv(EnvHome)
		if userHome == "" {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine user home directory")
		}
	}

	p := &paths{
		userHome: userHome,
		homeDir:  filepath.Join(userHome, AppDirName),
	}

	if dir := os.Getenv(EnvInstallDir); dir != "" {
		p.installDir = expandHome(dir)
	} else {
		p.installDir = filepath.Join(p.homeDir, InstallSubdir)
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = expandHome(dir)
	} else {
		p.configDir = p.homeDir
	}

	if dir := os.Getenv(EnvBinDir); dir != "" {
		p.binDir = expandHome(dir)
	} else {
		p.binDir = filepath.Join(p.homeDir, BinSubdir)
	}

	p.stateDir = filepath.Join(xdg.StateHome, StateDirName)

	return p, nil
}

func (p *paths) UserHomeDir() string {
	return p.userHome
}

func (p *paths) HomeDir() string {
	return p.homeDir
}

func (p *paths) InstallDir() string {
	return p.installDir
}

func (p *paths) VenvDir() string {
	return filepath.Join(p.installDir, VenvDirName)
}

// VenvPython returns the interpreter inside the virtual environment.
// Windows venvs place executables under Scripts instead of bin.
func (p *paths) VenvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(p.VenvDir(), "Scripts", "python.exe")
	}
	return filepath.Join(p.VenvDir(), "bin", "python")
}

func (p *paths) RequirementsPath() string {
	return filepath.Join(p.installDir, RequirementsFileName)
}

func (p *paths) DefaultsPath() string {
	return filepath.Join(p.installDir, DefaultsFileName)
}

func (p *paths) EntryPointPath() string {
	return filepath.Join(p.installDir, EntryPointName)
}

func (p *paths) VersionMarkerPath() string {
	return filepath.Join(p.installDir, VersionMarkerName)
}

func (p *paths) ConfigDir() string {
	return p.configDir
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

func (p *paths) ConfigBackupPath() string {
	return p.ConfigFilePath() + ConfigBackupSuffix
}

func (p *paths) LauncherDir() string {
	return p.binDir
}

func (p *paths) LauncherPath() string {
	return filepath.Join(p.binDir, LauncherName)
}

func (p *paths) LegacyLauncherPath() string {
	return filepath.Join(p.binDir, LegacyLauncherName)
}

func (p *paths) ChangelogDir() string {
	return filepath.Join(p.configDir, ChangelogSubdir)
}

func (p *paths) PendingChangelogPath() string {
	return filepath.Join(p.configDir, PendingChangelogName)
}

// LockPath lives beside the install dir so that Delete, which removes the
// install dir itself, does not remove the held lock out from under the run.
func (p *paths) LockPath() string {
	return filepath.Join(p.homeDir, LockFileName)
}

func (p *paths) StateDir() string {
	return p.stateDir
}

// expandHome expands a leading ~ to the user home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
