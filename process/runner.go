// Package process runs external commands for the diagram local tier and for
// user-configured renderers.
package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/fwojciec/prettify"
)

// Compile-time interface verification.
var (
	_ prettify.CommandRunner = (*Runner)(nil)
	_ prettify.CommandFilter = (*Runner)(nil)
)

// Runner executes commands with os/exec.
type Runner struct{}

// NewRunner creates a new command runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run starts name with args and waits for it to exit. Stdin is empty and
// stdout is discarded, so tools must write their results to files.
//
// A command that cannot be found or started is a CommandNotFound error; a
// non-zero exit is a RenderFailed error carrying the command's stderr.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	return wait(cmd, name)
}

// Filter runs name with input on stdin and returns what it printed. Errors
// are classified the same way as Run's.
func (r *Runner) Filter(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	if err := wait(cmd, name); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func wait(cmd *exec.Cmd, name string) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return &prettify.RenderError{Kind: prettify.CommandNotFound, Format: name, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return prettify.Errorf(prettify.RenderFailed, name, "%s failed: %s", name, strings.TrimSpace(stderr.String()))
		}
		return &prettify.RenderError{Kind: prettify.RenderFailed, Format: name, Err: err}
	}
	return nil
}
