// Package cli wires the installer's commands together. The root command is
// the install itself; upgrade, changelog, and version are subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/duperknight/ashell-install/internal/version"
	"github.com/duperknight/ashell-install/pkg/changelog"
	"github.com/duperknight/ashell-install/pkg/filesystem"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/prompt"
	"github.com/duperknight/ashell-install/pkg/pyenv"
	"github.com/duperknight/ashell-install/pkg/registry"
	"github.com/duperknight/ashell-install/pkg/release"
	"github.com/duperknight/ashell-install/pkg/settings"
	"github.com/duperknight/ashell-install/pkg/state"
	"github.com/duperknight/ashell-install/pkg/ui"
)

// env holds everything the commands need, assembled once per invocation
type env struct {
	paths    paths.Paths
	settings *settings.Settings
	registry *registry.Client
	orch     *state.Orchestrator
	printer  *ui.Printer
}

func buildEnv(interactive bool, formatName string) (*env, error) {
	format, err := ui.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	p, err := paths.New()
	if err != nil {
		return nil, err
	}

	cfg, err := settings.Load(p.ConfigDir())
	if err != nil {
		return nil, err
	}

	client := registry.NewClient(cfg.Registry.Endpoint, cfg.Registry.Owner, cfg.Registry.Repo, cfg.RequestTimeout())

	fsys := filesystem.NewOS()
	printer := ui.NewPrinter(os.Stdout, format)

	var prompter *prompt.Prompter
	if interactive {
		prompter = prompt.New(os.Stdin, os.Stdout)
	} else {
		// Reads end-of-input immediately, so every prompt takes its default.
		devnull, err := os.Open(os.DevNull)
		if err != nil {
			return nil, err
		}
		prompter = prompt.New(devnull, os.Stdout)
	}

	orch := state.NewOrchestrator(fsys, p, cfg, client, pyenv.NewExecRunner(), printer, prompter)

	return &env{
		paths:    p,
		settings: cfg,
		registry: client,
		orch:     orch,
		printer:  printer,
	}, nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		reinstall  bool
		deletion   bool
		abort      bool
		noInput    bool
		formatName string
	)

	rootCmd := &cobra.Command{
		Use:   "ashell-install",
		Short: "Install and manage the AShell terminal shell",
		Long: `ashell-install downloads the latest published AShell release, sets up an
isolated Python environment for it, and registers the ashell launcher on
your PATH. Running it again upgrades, repairs, or removes an existing
installation.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := prompt.IsInteractive() && !noInput
			e, err := buildEnv(interactive, formatName)
			if err != nil {
				return err
			}
			e.printer.Banner("AShell installer", "version "+version.Version)

			flagAction := ""
			switch {
			case reinstall:
				flagAction = "reinstall"
			case deletion:
				flagAction = "delete"
			case abort:
				flagAction = "abort"
			}

			return e.orch.Run(cmd.Context(), state.Options{
				FlagAction:  flagAction,
				EnvAction:   os.Getenv(state.EnvAction),
				Interactive: interactive,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().BoolVar(&reinstall, "reinstall", false, "Replace an existing installation and its configuration")
	rootCmd.Flags().BoolVar(&deletion, "delete", false, "Remove an existing installation")
	rootCmd.Flags().BoolVar(&abort, "abort", false, "Exit without changing an existing installation")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "Never prompt; fail instead of asking")
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "auto", "Output format: auto, term, or text")
	rootCmd.MarkFlagsMutuallyExclusive("reinstall", "delete", "abort")

	rootCmd.AddCommand(newUpgradeCmd(&noInput, &formatName))
	rootCmd.AddCommand(newChangelogCmd(&formatName))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newUpgradeCmd(noInput *bool, formatName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade an existing installation to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := prompt.IsInteractive() && !*noInput
			e, err := buildEnv(interactive, *formatName)
			if err != nil {
				return err
			}
			return e.orch.Run(cmd.Context(), state.Options{
				Interactive: interactive,
				Upgrade:     true,
			})
		},
	}
}

func newChangelogCmd(formatName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "changelog [version]",
		Short: "Show the release notes for the installed (or given) version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ui.ParseFormat(*formatName)
			if err != nil {
				return err
			}

			e, err := buildEnv(false, *formatName)
			if err != nil {
				return err
			}

			target := ""
			if len(args) == 1 {
				tag, ok := release.ParseTag(args[0])
				if !ok {
					return fmt.Errorf("invalid version %q", args[0])
				}
				target = tag.String()
			} else {
				installed, ok := state.InstalledVersion(filesystem.NewOS(), e.paths)
				if !ok {
					return fmt.Errorf("no installation found; pass a version explicitly")
				}
				target = installed
			}

			notes := fetchNotes(cmd, e, target)
			if format == ui.FormatAuto {
				format = ui.DetectFormat(os.Stdout)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderNotes(target, notes, format == ui.FormatTerminal))
			return nil
		},
	}
}

func fetchNotes(cmd *cobra.Command, e *env, version string) string {
	store := changelog.NewStore(filesystem.NewOS(), e.paths)
	return store.Fetch(cmd.Context(), e.registry, version)
}

func renderNotes(version, notes string, useColor bool) string {
	return fmt.Sprintf("AShell %s\n\n%s", release.Display(version), changelog.Render(notes, useColor))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ashell-install version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)

			if p, err := paths.New(); err == nil {
				if installed, ok := state.InstalledVersion(filesystem.NewOS(), p); ok {
					fmt.Fprintf(out, "  AShell: %s\n", release.Display(installed))
				}
			}
		},
	}
}
