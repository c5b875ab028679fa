package mongotest

import (
	"errors"
	"fmt"
)

var (
	// ErrPartialCredentials is returned by [New] when only one of username and password is set.
	ErrPartialCredentials = errors.New("username and password must be set together")

	// ErrCommandFailed matches every [CommandError] with errors.Is.
	ErrCommandFailed = errors.New("mongo command failed")
)

// CommandError is returned when an administrative mongo shell command run inside the container
// exits non-zero. A primary that never gets elected is reported this way too, because the wait
// script exits with status 1 once it runs out of attempts.
type CommandError struct {
	// Step names the bring-up step, "initiate" or "wait-primary".
	Step string
	// ExitCode is the exit code of the shell process. Never 0.
	ExitCode int
	// Output is stdout and stderr of the shell process combined.
	Output string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("error running mongo command (step:%s). Exit code %d: %s", e.Step, e.ExitCode, e.Output)
}

func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}
