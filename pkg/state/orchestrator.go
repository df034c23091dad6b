package state

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duperknight/ashell-install/pkg/appconfig"
	"github.com/duperknight/ashell-install/pkg/archive"
	"github.com/duperknight/ashell-install/pkg/changelog"
	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/installtree"
	"github.com/duperknight/ashell-install/pkg/launcher"
	"github.com/duperknight/ashell-install/pkg/lock"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/prompt"
	"github.com/duperknight/ashell-install/pkg/pyenv"
	"github.com/duperknight/ashell-install/pkg/release"
	"github.com/duperknight/ashell-install/pkg/settings"
	"github.com/duperknight/ashell-install/pkg/types"
	"github.com/duperknight/ashell-install/pkg/ui"
)

// Registry is the release hosting surface the pipeline needs. The registry
// client satisfies it.
type Registry interface {
	ListTags(ctx context.Context) ([]release.TagEntry, error)
	DownloadArchive(ctx context.Context, url, dest string) error
	ReleaseNotes(ctx context.Context, tag string) (string, error)
	ChangelogDocument(ctx context.Context) (string, error)
}

// Options controls a single run of the pipeline
type Options struct {
	// FlagAction is the directive from the command line, empty for none
	FlagAction string
	// EnvAction is the directive from the environment, empty for none
	EnvAction string
	// Interactive enables prompting and the configuration wizard
	Interactive bool
	// Upgrade skips the existing-installation prompt and becomes a no-op
	// when the installed version already matches the latest release
	Upgrade bool
}

// Orchestrator runs the install pipeline
type Orchestrator struct {
	fs       types.FS
	paths    paths.Paths
	settings *settings.Settings
	registry Registry
	runner   types.Runner
	printer  *ui.Printer
	prompter *prompt.Prompter
	logger   zerolog.Logger
}

func NewOrchestrator(fsys types.FS, p paths.Paths, cfg *settings.Settings, reg Registry, runner types.Runner, printer *ui.Printer, prompter *prompt.Prompter) *Orchestrator {
	return &Orchestrator{
		fs:       fsys,
		paths:    p,
		settings: cfg,
		registry: reg,
		runner:   runner,
		printer:  printer,
		prompter: prompter,
		logger:   logging.GetLogger("state"),
	}
}

// InstalledVersion reads the version marker of the current installation.
func InstalledVersion(fsys types.FS, p paths.Paths) (string, bool) {
	data, err := fsys.ReadFile(p.VersionMarkerPath())
	if err != nil {
		return "", false
	}
	version := strings.TrimSpace(string(data))
	return version, version != ""
}

// priorInstall reports whether an installation already occupies the
// install directory. An empty directory does not count.
func (o *Orchestrator) priorInstall() bool {
	entries, err := o.fs.ReadDir(o.paths.InstallDir())
	return err == nil && len(entries) > 0
}

// Run executes one install, upgrade, delete, or abort. The install lock is
// held for every mutating path.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	prior := o.priorInstall()

	action := Proceed
	if opts.Upgrade {
		if !prior {
			return errors.New(errors.ErrActionInvalid,
				"nothing to upgrade: no existing installation found")
		}
	} else {
		var err error
		action, err = Decide(prior, opts.FlagAction, opts.EnvAction, opts.Interactive, o.askAction)
		if err != nil {
			return err
		}
	}

	if action == Abort {
		o.printer.Plain("Nothing changed.")
		return nil
	}

	// The lock is taken only once a mutating action is decided, so a run
	// that aborts or fails to decide leaves no trace on disk.
	held, err := lock.Acquire(o.paths.LockPath())
	if err != nil {
		return err
	}
	defer held.Release()

	if action == Delete {
		return o.delete()
	}

	return o.install(ctx, opts, action)
}

func (o *Orchestrator) askAction() Action {
	answer := o.prompter.Choice(
		"An installation already exists. What should happen to it?",
		[]string{"reinstall", "delete", "abort"},
		"abort",
	)
	action, _ := ParseAction(answer)
	return action
}

// delete removes the installation, the launcher, and the user
// configuration, then exits.
func (o *Orchestrator) delete() error {
	o.printer.Step("Removing installation at %s", o.paths.InstallDir())

	if err := o.fs.RemoveAll(o.paths.InstallDir()); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", o.paths.InstallDir())
	}

	for _, path := range []string{
		o.paths.LauncherPath(),
		o.paths.LegacyLauncherPath(),
		o.paths.ConfigFilePath(),
		o.paths.ConfigBackupPath(),
		o.paths.PendingChangelogPath(),
	} {
		if err := o.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			o.logger.Warn().Str("path", path).Err(err).Msg("could not remove file during delete")
		}
	}
	if err := o.fs.RemoveAll(o.paths.ChangelogDir()); err != nil {
		o.logger.Warn().Str("path", o.paths.ChangelogDir()).Err(err).Msg("could not remove changelog cache")
	}

	o.printer.Success("AShell has been removed.")
	return nil
}

func (o *Orchestrator) install(ctx context.Context, opts Options, action Action) error {
	done := logging.LogOperationStart(o.logger, "install")
	defer done()

	if path, err := settings.EnsureFile(o.paths.ConfigDir(), o.settings); err != nil {
		o.logger.Warn().Err(err).Msg("could not write settings file")
	} else {
		o.logger.Debug().Str("path", path).Msg("settings file in place")
	}

	// Prerequisites come first so a missing interpreter fails before any
	// network or disk activity.
	python, err := pyenv.FindInterpreter(ctx, o.runner, o.settings.Python.Interpreter, o.settings.Python.MinVersion)
	if err != nil {
		return err
	}
	o.logger.Debug().Str("python", python).Msg("found host interpreter")

	o.printer.Step("Resolving latest version")
	candidate, err := release.Resolve(ctx, o.registry)
	if err != nil {
		return err
	}

	if installed, ok := InstalledVersion(o.fs, o.paths); ok && installed == candidate.Tag.String() {
		if opts.Upgrade {
			o.printer.Success("Already up to date (%s).", release.Display(installed))
			return nil
		}
		if action == Proceed {
			o.printer.Plain("%s is already installed.", release.Display(installed))
			return nil
		}
	}

	version := candidate.Tag.String()
	o.printer.Step("Installing AShell %s", release.Display(version))

	sourceRoot, cleanup, err := o.fetchRelease(ctx, candidate)
	if err != nil {
		return err
	}
	defer cleanup()

	// Fresh installs and reinstalls start from an empty tree. Upgrades merge
	// over the existing one, leaving the virtual environment in place so a
	// failure later in the run does not destroy a working installation.
	if !opts.Upgrade {
		if err := installtree.Wipe(o.fs, o.paths.InstallDir()); err != nil {
			return err
		}
	}
	if err := installtree.Merge(o.fs, sourceRoot, o.paths.InstallDir()); err != nil {
		return err
	}
	if err := o.fs.WriteFile(o.paths.VersionMarkerPath(), []byte(version+"\n"), 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to record installed version")
	}

	o.printer.Step("Setting up the Python environment")
	provisioner := pyenv.New(o.runner, o.fs, o.paths)
	if err := provisioner.Provision(ctx, python); err != nil {
		return err
	}

	if err := o.reconcileConfig(opts, action); err != nil {
		return err
	}
	if err := o.installLauncher(); err != nil {
		return err
	}
	o.recordChangelog(ctx, version)

	o.printer.Success("%s", changelog.Banner(version))
	return nil
}

// fetchRelease downloads and extracts the archive into a temporary
// directory, returning the extracted source root and a cleanup func.
func (o *Orchestrator) fetchRelease(ctx context.Context, candidate release.Candidate) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "ashell-install-")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create temporary directory")
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	o.printer.Step("Downloading %s", candidate.Label)
	archivePath := filepath.Join(tmpDir, "release.zip")
	if err := o.registry.DownloadArchive(ctx, candidate.ZipballURL, archivePath); err != nil {
		cleanup()
		return "", nil, err
	}

	sourceRoot, err := archive.Extract(archivePath, filepath.Join(tmpDir, "extracted"))
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return sourceRoot, cleanup, nil
}

func (o *Orchestrator) reconcileConfig(opts Options, action Action) error {
	defaults := appconfig.LoadDefaults(o.fs, o.paths.DefaultsPath())

	// Upgrades never prompt; only the install path runs the setup wizard.
	if opts.Interactive && !opts.Upgrade {
		return appconfig.RunWizard(o.fs, o.paths, defaults, o.prompter, action == Reinstall)
	}

	if action == Reinstall {
		if err := o.fs.Remove(o.paths.ConfigFilePath()); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", o.paths.ConfigFilePath())
		}
	}

	result, backup, err := appconfig.Reconcile(o.fs, o.paths, defaults)
	if err != nil {
		return err
	}
	if result == appconfig.Reset {
		o.printer.Warning("Configuration was corrupt; saved a copy at %s", backup)
	}
	return nil
}

func (o *Orchestrator) installLauncher() error {
	manager := launcher.New(o.fs, o.paths)

	if _, err := manager.WriteShim(); err != nil {
		return err
	}
	if err := manager.RemoveLegacy(); err != nil {
		return err
	}

	rcFile, err := manager.RegisterPath(os.Getenv("PATH"), os.Getenv("SHELL"))
	if err != nil {
		return err
	}
	if rcFile != "" {
		o.printer.Plain("Added %s to PATH via %s. Restart your shell to pick it up.", o.paths.LauncherDir(), rcFile)
	}
	return nil
}

// recordChangelog caches the release notes and marks them for display on
// the shell's next launch. Best-effort.
func (o *Orchestrator) recordChangelog(ctx context.Context, version string) {
	store := changelog.NewStore(o.fs, o.paths)
	store.Fetch(ctx, o.registry, version)
	if err := store.MarkPending(version); err != nil {
		o.logger.Warn().Err(err).Msg("could not mark changelog as pending")
	}
}
