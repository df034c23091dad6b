package pyenv

import (
	"context"
	"os/exec"

	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/types"
)

// execRunner executes commands with os/exec; the production types.Runner.
type execRunner struct{}

// NewExecRunner returns a Runner backed by os/exec
func NewExecRunner() types.Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := logging.GetLogger("exec")
	logger.Debug().Str("command", name).Strs("args", args).Msg("Executing command")

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		logger.Debug().Err(err).Str("command", name).
			Str("output", string(output)).Msg("Command failed")
	}
	return output, err
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
