// Package state drives the install flow: deciding what to do with an
// existing installation and running the resulting pipeline end to end.
package state

import "strings"

// Action is what the installer does about an existing installation
type Action int

const (
	// Proceed performs a normal install
	Proceed Action = iota
	// Reinstall wipes the installation and user configuration first
	Reinstall
	// Delete removes the installation and exits
	Delete
	// Abort exits without touching anything
	Abort
)

func (a Action) String() string {
	switch a {
	case Proceed:
		return "proceed"
	case Reinstall:
		return "reinstall"
	case Delete:
		return "delete"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParseAction parses a user-supplied directive. Recognized spellings are
// case-insensitive; ok is false for anything else.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "proceed", "install":
		return Proceed, true
	case "reinstall":
		return Reinstall, true
	case "delete", "uninstall":
		return Delete, true
	case "abort", "cancel":
		return Abort, true
	default:
		return Proceed, false
	}
}
