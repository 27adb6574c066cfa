package ollama

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrNotInstalled = errors.New("ollama is not installed, please install it to proceed")

// Runtime drives the local ollama command line.
type Runtime struct {
	Binary string
}

func NewRuntime() *Runtime {
	return &Runtime{Binary: "ollama"}
}

// CheckInstalled runs "ollama --version".
func (r *Runtime) CheckInstalled(ctx context.Context) error {
	path, err := exec.LookPath(r.Binary)
	if err != nil {
		return ErrNotInstalled
	}
	if err := exec.CommandContext(ctx, path, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	return nil
}

// PullModel makes model available locally. Untagged names are pulled as :latest.
func (r *Runtime) PullModel(ctx context.Context, model string) error {
	ref := ModelRef(model)
	out, err := exec.CommandContext(ctx, r.Binary, "pull", ref).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w: %s", ref, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func ModelRef(model string) string {
	if strings.Contains(model, ":") {
		return model
	}
	return model + ":latest"
}
