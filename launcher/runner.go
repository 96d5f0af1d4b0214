package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Result is the outcome of a finished child process.
type Result struct {
	// ExitCode is the child's exit status. It is -1 when the child was
	// terminated by a signal.
	ExitCode int
}

// Runner starts a program and waits for it to exit.
//
// A non-zero exit is reported through [Result.ExitCode] with a nil error.
// Errors are reserved for failures to start or wait on the process.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (Result, error)
}

// ExecRunner is a [Runner] backed by [os/exec].
//
// Create instances with [NewExecRunner] to inherit the launcher's standard
// streams, or set fields directly.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env replaces the environment. Nil inherits the launcher's.
	Env []string
}

// NewExecRunner returns an [ExecRunner] wired to the process's standard
// streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts name with args and blocks until it exits.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string) (Result, error) {
	//nolint:gosec // The interpreter and script path come from the launcher's own configuration.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = r.Env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	var res Result

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()

			return res, nil
		}

		return res, fmt.Errorf("running %s: %w", name, err)
	}

	return res, nil
}
