package displaymanager

import (
	"os/exec"

	"github.com/deckforge/sessionctl/pkg/types"
)

// execRunner implements types.Runner using os/exec.
type execRunner struct{}

// NewRunner creates the production command runner.
func NewRunner() types.Runner {
	return &execRunner{}
}

func (r *execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *execRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}
