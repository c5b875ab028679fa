// Package engine is the container capability mongotest builds on: create and start a container
// with a log-based readiness check, exec commands inside it, and resolve its mapped ports.
//
// [Testcontainers] is the default Docker-backed implementation and [Dockertest] an alternative
// built on ory/dockertest. Tests can substitute the in-memory engine from the enginetest package.
package engine

import (
	"context"
	"regexp"
	"time"
)

// Request describes a container to create and start.
type Request struct {
	// Image is the full image reference, for example "mongo:4.0.1".
	Image string
	// ExposedPorts are container ports in "27017/tcp" form.
	ExposedPorts []string
	Env          map[string]string
	// Cmd overrides the image CMD. The image ENTRYPOINT is kept.
	Cmd    []string
	Labels map[string]string
	// WaitLog must match a line of the container log before the container is considered
	// started.
	WaitLog *regexp.Regexp
	// StartupTimeout bounds the wait for WaitLog.
	StartupTimeout time.Duration
}

// ExecResult is the outcome of a command run inside a container.
type ExecResult struct {
	ExitCode int
	// Output is stdout and stderr combined.
	Output string
}

// Container is a started container. Host and mapped ports are resolved when the container
// starts, so reading them does no I/O.
type Container interface {
	ID() string
	Host() string
	// MappedPort returns the host port bound to the container port ("27017/tcp"), or 0 when the
	// port was not exposed.
	MappedPort(port string) int
	Exec(ctx context.Context, cmd []string) (ExecResult, error)
	Terminate(ctx context.Context) error
}

// Engine starts containers.
type Engine interface {
	Run(ctx context.Context, req Request) (Container, error)
}
