// Package appconfig manages the shell's user configuration file. The
// installer never edits a healthy file: a missing file is created from
// defaults, a structurally valid file is kept byte for byte, and a corrupt
// file is backed up and replaced.
package appconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/types"
)

// PromptSettings controls the shell prompt segments
type PromptSettings struct {
	ShowUserHost bool   `json:"show_user_host"`
	ShowTime     bool   `json:"show_time"`
	ShowPath     bool   `json:"show_path"`
	ShowSymbol   bool   `json:"show_symbol"`
	Symbol       string `json:"symbol"`
}

// Document is the full configuration document written to the config file
type Document struct {
	ShowWelcomeScreen bool           `json:"show_welcome_screen"`
	Prompt            PromptSettings `json:"prompt"`
}

// BuiltinDefaults returns the defaults compiled into the installer, used
// when the installed tree ships no defaults file of its own.
func BuiltinDefaults() Document {
	return Document{
		ShowWelcomeScreen: true,
		Prompt: PromptSettings{
			ShowUserHost: true,
			ShowTime:     true,
			ShowPath:     true,
			ShowSymbol:   true,
			Symbol:       "$",
		},
	}
}

// LoadDefaults reads the defaults document shipped inside the installed
// tree. A missing or unreadable file falls back to the built-in defaults.
func LoadDefaults(fsys types.FS, defaultsPath string) Document {
	logger := logging.GetLogger("appconfig")

	data, err := fsys.ReadFile(defaultsPath)
	if err != nil {
		logger.Debug().Str("path", defaultsPath).
			Msg("no defaults file in install tree, using built-in defaults")
		return BuiltinDefaults()
	}

	doc := BuiltinDefaults()
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn().Str("path", defaultsPath).Err(err).
			Msg("defaults file is not valid, using built-in defaults")
		return BuiltinDefaults()
	}
	return doc
}

// Result describes what Reconcile did to the config file
type Result int

const (
	// Created means no file existed and defaults were written
	Created Result = iota
	// Kept means a valid file existed and was left untouched
	Kept
	// Reset means a corrupt file was backed up and replaced with defaults
	Reset
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Kept:
		return "kept"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// validDocument reports whether data parses as JSON with an object root.
// Key-level content is not checked; the shell tolerates missing keys.
// The nil check matters: unmarshalling the literal `null` into a map
// succeeds and leaves it nil.
func validDocument(data []byte) bool {
	var root map[string]interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return false
	}
	return root != nil
}

func marshalDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return append(data, '\n'), nil
}

func writeDocument(fsys types.FS, path string, doc Document) error {
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", path)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to write configuration to %s", path)
	}
	return nil
}

// Reconcile brings the config file to a usable state without asking the
// user anything. The returned backup path is set only for Reset.
func Reconcile(fsys types.FS, p paths.Paths, defaults Document) (Result, string, error) {
	logger := logging.GetLogger("appconfig")
	configPath := p.ConfigFilePath()

	data, err := fsys.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", configPath)
		}
		if err := writeDocument(fsys, configPath, defaults); err != nil {
			return 0, "", err
		}
		logger.Info().Str("path", configPath).Msg("created configuration file")
		return Created, "", nil
	}

	if validDocument(data) {
		logger.Debug().Str("path", configPath).Msg("configuration file is valid, keeping it")
		return Kept, "", nil
	}

	backupPath := p.ConfigBackupPath()
	if err := fsys.Rename(configPath, backupPath); err != nil {
		// The corrupt original is overwritten below either way.
		logger.Warn().Str("path", configPath).Err(err).
			Msg("could not back up corrupt configuration file")
		backupPath = ""
	}
	if err := writeDocument(fsys, configPath, defaults); err != nil {
		return 0, "", err
	}
	logger.Warn().Str("path", configPath).Str("backup", backupPath).
		Msg("configuration file was corrupt, reset to defaults")
	return Reset, backupPath, nil
}

// wizardPrompter is the subset of prompting the wizard needs
type wizardPrompter interface {
	YesNo(question string, def bool) bool
	Text(question, def string) string
}

// RunWizard walks the user through the configuration questions and writes
// the result. With reinstall set, any existing file is removed first so the
// wizard always runs; otherwise a valid existing file short-circuits it.
func RunWizard(fsys types.FS, p paths.Paths, defaults Document, prompter wizardPrompter, reinstall bool) error {
	logger := logging.GetLogger("appconfig")
	configPath := p.ConfigFilePath()

	if reinstall {
		if err := fsys.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", configPath)
		}
	} else if data, err := fsys.ReadFile(configPath); err == nil && validDocument(data) {
		logger.Debug().Str("path", configPath).Msg("configuration exists, skipping setup questions")
		return nil
	}

	doc := askQuestions(defaults, prompter)
	if err := writeDocument(fsys, configPath, doc); err != nil {
		return err
	}
	logger.Info().Str("path", configPath).Msg("wrote configuration from setup answers")
	return nil
}

func askQuestions(defaults Document, prompter wizardPrompter) Document {
	doc := defaults
	doc.ShowWelcomeScreen = prompter.YesNo("Show the welcome screen on startup?", defaults.ShowWelcomeScreen)
	doc.Prompt.ShowUserHost = prompter.YesNo("Show user and host in the prompt?", defaults.Prompt.ShowUserHost)
	doc.Prompt.ShowTime = prompter.YesNo("Show the time in the prompt?", defaults.Prompt.ShowTime)
	doc.Prompt.ShowPath = prompter.YesNo("Show the working directory in the prompt?", defaults.Prompt.ShowPath)
	doc.Prompt.ShowSymbol = prompter.YesNo("Show a prompt symbol?", defaults.Prompt.ShowSymbol)
	doc.Prompt.Symbol = prompter.Text("Prompt symbol?", defaults.Prompt.Symbol)
	return doc
}
