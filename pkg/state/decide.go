package state

import (
	"github.com/duperknight/ashell-install/pkg/errors"
)

// EnvAction is the environment variable carrying a non-interactive
// directive. A command-line flag takes precedence over it.
const EnvAction = "ASHELL_INSTALL_ACTION"

// AskFunc prompts the user to choose what to do with an existing
// installation. Implementations default to Abort on empty input.
type AskFunc func() Action

// Decide resolves the action for this run. Precedence: command-line flag,
// then environment directive, then an interactive prompt. With a prior
// installation and no way to decide (no directive, no terminal) the run
// fails rather than guessing.
func Decide(priorInstall bool, flagAction, envAction string, interactive bool, ask AskFunc) (Action, error) {
	directive := flagAction
	source := "flag"
	if directive == "" {
		directive = envAction
		source = EnvAction
	}

	var action Action
	haveDirective := directive != ""
	if haveDirective {
		parsed, ok := ParseAction(directive)
		if !ok {
			return Abort, errors.Newf(errors.ErrActionInvalid, "unrecognized action %q", directive).
				WithDetail("source", source)
		}
		action = parsed
	}

	if !priorInstall {
		if haveDirective && (action == Reinstall || action == Delete) {
			return Abort, errors.Newf(errors.ErrActionInvalid,
				"cannot %s: no existing installation found", action)
		}
		if haveDirective && action == Abort {
			return Abort, nil
		}
		return Proceed, nil
	}

	if haveDirective {
		return action, nil
	}

	if !interactive {
		return Abort, errors.New(errors.ErrActionRequired,
			"an installation already exists; pass --reinstall, --delete, or --abort, or set "+EnvAction)
	}

	return ask(), nil
}
