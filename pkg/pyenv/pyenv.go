// Package pyenv provisions the isolated Python runtime environment inside
// the install location.
package pyenv

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/types"
)

// Provisioner creates the virtual environment and installs the dependency
// manifest.
type Provisioner struct {
	runner types.Runner
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger

	// needsReadlineShim is true on hosts without native line editing
	// support; the shim package is then a hard requirement.
	needsReadlineShim bool
}

// New creates a Provisioner
func New(runner types.Runner, fsys types.FS, p paths.Paths) *Provisioner {
	return &Provisioner{
		runner:            runner,
		fs:                fsys,
		paths:             p,
		logger:            logging.GetLogger("pyenv"),
		needsReadlineShim: runtime.GOOS == "windows",
	}
}

// FindInterpreter locates a suitable host Python. explicit, when non-empty,
// is used as-is; otherwise python3 then python are searched on PATH. The
// interpreter must report a version of at least minVersion. This runs before
// any network activity.
func FindInterpreter(ctx context.Context, runner types.Runner, explicit, minVersion string) (string, error) {
	candidates := []string{explicit}
	if explicit == "" {
		candidates = []string{"python3", "python"}
	}

	var found string
	for _, candidate := range candidates {
		if path, err := runner.LookPath(candidate); err == nil {
			found = path
			break
		}
	}
	if found == "" {
		return "", errors.New(errors.ErrPrereqMissing,
			"python interpreter not found; install Python and re-run the installer")
	}

	output, err := runner.Run(ctx, found, "--version")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPrereqMissing, "failed to query %s version", found)
	}

	reported, ok := parsePythonVersion(string(output))
	if !ok {
		return "", errors.Newf(errors.ErrPrereqVersion, "cannot parse python version from %q", strings.TrimSpace(string(output)))
	}
	required, ok := parseVersionSpec(minVersion)
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid minimum python version %q", minVersion)
	}

	if compareVersions(reported, required) < 0 {
		return "", errors.Newf(errors.ErrPrereqVersion,
			"python %s is too old, need at least %s", joinVersion(reported), minVersion)
	}

	return found, nil
}

// Provision creates (or reuses) the virtual environment, upgrades its
// package manager, and installs the dependency manifest when present.
// Every failure here is fatal to the run.
func (p *Provisioner) Provision(ctx context.Context, python string) error {
	venvDir := p.paths.VenvDir()

	p.logger.Info().Str("venv", venvDir).Msg("Creating virtual environment")
	if output, err := p.runner.Run(ctx, python, "-m", "venv", venvDir); err != nil {
		return errors.Wrapf(err, errors.ErrEnvCreate,
			"failed to create virtual environment: %s", strings.TrimSpace(string(output)))
	}

	venvPython := p.paths.VenvPython()
	if output, err := p.runner.Run(ctx, venvPython, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return errors.Wrapf(err, errors.ErrEnvInstall,
			"failed to upgrade pip: %s", strings.TrimSpace(string(output)))
	}

	requirements := p.paths.RequirementsPath()
	if _, err := p.fs.Stat(requirements); err == nil {
		p.logger.Info().Str("manifest", requirements).Msg("Installing dependencies")
		if output, err := p.runner.Run(ctx, venvPython, "-m", "pip", "install", "-r", requirements); err != nil {
			return errors.Wrapf(err, errors.ErrEnvInstall,
				"failed to install dependencies: %s", strings.TrimSpace(string(output)))
		}
	} else {
		p.logger.Info().Str("manifest", requirements).Msg("No dependency manifest, skipping install")
	}

	if p.needsReadlineShim {
		p.logger.Info().Msg("Installing line-editing compatibility shim")
		if output, err := p.runner.Run(ctx, venvPython, "-m", "pip", "install", "pyreadline3"); err != nil {
			return errors.Wrapf(err, errors.ErrEnvInstall,
				"failed to install pyreadline3: %s", strings.TrimSpace(string(output)))
		}
	}

	return nil
}

// parsePythonVersion extracts the numeric version from "Python 3.11.2"
func parsePythonVersion(output string) ([]int, bool) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 || fields[0] != "Python" {
		return nil, false
	}
	return parseVersionSpec(fields[1])
}

// parseVersionSpec parses a dotted version with 1 to 3 numeric components
func parseVersionSpec(spec string) ([]int, bool) {
	parts := strings.Split(strings.TrimSpace(spec), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return nil, false
	}
	nums := make([]int, 0, 3)
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

// compareVersions compares two version slices component-wise, treating
// missing components as zero.
func compareVersions(a, b []int) int {
	for i := 0; i < 3; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func joinVersion(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ".")
}
