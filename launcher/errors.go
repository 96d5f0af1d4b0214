package launcher

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage indicates the launcher was invoked without exactly one data
	// file argument.
	ErrUsage = errors.New("usage error")
	// ErrDataFileNotFound indicates the perf data file does not exist.
	ErrDataFileNotFound = errors.New("data file not found")
	// ErrScriptNotFound indicates the analysis script is missing from the
	// launcher's directory.
	ErrScriptNotFound = errors.New("script not found")
	// ErrSpawn indicates the interpreter process could not be started.
	ErrSpawn = errors.New("spawn interpreter")
	// ErrSubprocessFailed indicates the analysis script exited non-zero.
	// Match it with [errors.Is]; use [errors.As] with [*ExitError] for the
	// code.
	ErrSubprocessFailed = errors.New("analysis failed")
	// ErrConfig indicates an invalid or unreadable configuration file.
	ErrConfig = errors.New("invalid config")
)

// ExitError reports a non-zero exit of the analysis script.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v: exit code %d", ErrSubprocessFailed, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrSubprocessFailed
}

// ExitCode maps an error returned by [Launcher.Run] to a process exit code.
//
// A nil error is 0 and an [*ExitError] carries the child's code. Anything
// else, including a child killed by a signal, is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}

	return 1
}
