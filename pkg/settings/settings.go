// Package settings loads the installer's own configuration: embedded
// defaults, an optional settings.toml in the configuration home, and
// ASHELL_INSTALL_-prefixed environment variables, merged in that order.
package settings

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	tomlv2 "github.com/pelletier/go-toml/v2"
)

// FileName is the user-editable settings file in the configuration home
const FileName = "settings.toml"

// EnvPrefix namespaces the installer's environment overrides,
// e.g. ASHELL_INSTALL_REGISTRY_ENDPOINT
const EnvPrefix = "ASHELL_INSTALL_"

//go:embed embedded/defaults.toml
var defaultSettings []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Registry describes where published versions are hosted
type Registry struct {
	Owner    string `koanf:"owner" toml:"owner"`
	Repo     string `koanf:"repo" toml:"repo"`
	Endpoint string `koanf:"endpoint" toml:"endpoint"`
	Timeout  int    `koanf:"timeout" toml:"timeout"`
}

// Python describes how the host interpreter is located
type Python struct {
	Interpreter string `koanf:"interpreter" toml:"interpreter"`
	MinVersion  string `koanf:"minversion" toml:"minversion"`
}

// Settings is the merged installer configuration
type Settings struct {
	Registry Registry `koanf:"registry" toml:"registry"`
	Python   Python   `koanf:"python" toml:"python"`
}

// RequestTimeout returns the registry timeout as a duration
func (s *Settings) RequestTimeout() time.Duration {
	if s.Registry.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.Registry.Timeout) * time.Second
}

// Load merges defaults, the settings file in configDir (if present), and
// environment overrides.
func Load(configDir string) (*Settings, error) {
	k := koanf.New(".")

	// Hard floor beneath the embedded file, so a stripped-down build of the
	// defaults still yields a workable client.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"registry.endpoint": "https://api.github.com",
		"registry.timeout":  10,
		"python.minversion": "3.9",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load built-in settings: %w", err)
	}

	if err := k.Load(&rawBytesProvider{bytes: defaultSettings}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	userFile := filepath.Join(configDir, FileName)
	if _, err := os.Stat(userFile); err == nil {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", userFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Settings
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// EnsureFile writes the effective settings to the configuration home when no
// settings file exists yet, giving the user something to edit. An existing
// file is never touched.
func EnsureFile(configDir string, cfg *Settings) (string, error) {
	userFile := filepath.Join(configDir, FileName)
	if _, err := os.Stat(userFile); err == nil {
		return userFile, nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := tomlv2.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(userFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write settings file: %w", err)
	}

	return userFile, nil
}
