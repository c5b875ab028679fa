package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/multierr"

	"github.com/pressly/mongotest/pkg/dockermanage"
)

// Testcontainers runs containers with testcontainers-go.
type Testcontainers struct {
	logger *slog.Logger
}

var _ Engine = (*Testcontainers)(nil)

// NewTestcontainers returns a Docker-backed engine. A nil logger discards output.
func NewTestcontainers(logger *slog.Logger) *Testcontainers {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Testcontainers{
		logger: logger.With(slog.String("logger", "engine")),
	}
}

// Run creates and starts the container and blocks until req.WaitLog matches a log line or
// req.StartupTimeout elapses.
func (e *Testcontainers) Run(ctx context.Context, req Request) (_ Container, retErr error) {
	if req.Image == "" {
		return nil, errors.New("image is required")
	}
	if req.WaitLog == nil {
		return nil, errors.New("wait log pattern is required")
	}
	labels := maps.Clone(req.Labels)
	if labels == nil {
		labels = make(map[string]string)
	}
	if _, ok := labels[dockermanage.ManagedLabelKey]; !ok {
		labels[dockermanage.ManagedLabelKey] = ""
	}
	waitFor := wait.ForLog(req.WaitLog.String()).AsRegexp()
	if req.StartupTimeout > 0 {
		waitFor = waitFor.WithStartupTimeout(req.StartupTimeout)
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        req.Image,
			ExposedPorts: req.ExposedPorts,
			Env:          maps.Clone(req.Env),
			Cmd:          req.Cmd,
			Labels:       labels,
			WaitingFor:   waitFor,
			HostConfigModifier: func(hc *container.HostConfig) {
				hc.RestartPolicy = container.RestartPolicy{Name: "no"}
			},
		},
		Started: true,
	})
	if err != nil {
		if ctr != nil {
			err = multierr.Append(err, ctr.Terminate(context.WithoutCancel(ctx)))
		}
		return nil, fmt.Errorf("run container %s: %w", req.Image, err)
	}
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, ctr.Terminate(context.WithoutCancel(ctx)))
		}
	}()

	host, err := ctr.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve host: %w", err)
	}
	ports := make(map[string]int, len(req.ExposedPorts))
	for _, p := range req.ExposedPorts {
		mapped, err := ctr.MappedPort(ctx, nat.Port(p))
		if err != nil {
			return nil, fmt.Errorf("resolve mapped port %s: %w", p, err)
		}
		ports[p] = mapped.Int()
	}

	e.logger.Info(
		"docker container started",
		slog.String("container_id", ctr.GetContainerID()),
		slog.String("image", req.Image),
		slog.String("host", host),
	)
	return &tcContainer{
		ctr:    ctr,
		host:   host,
		ports:  ports,
		logger: e.logger,
	}, nil
}

type tcContainer struct {
	ctr    testcontainers.Container
	host   string
	ports  map[string]int
	logger *slog.Logger
}

func (c *tcContainer) ID() string { return c.ctr.GetContainerID() }

func (c *tcContainer) Host() string { return c.host }

func (c *tcContainer) MappedPort(port string) int { return c.ports[port] }

func (c *tcContainer) Exec(ctx context.Context, cmd []string) (ExecResult, error) {
	code, reader, err := c.ctr.Exec(ctx, cmd, tcexec.Multiplexed())
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec in container %s: %w", c.ID(), err)
	}
	output, err := io.ReadAll(reader)
	if err != nil {
		return ExecResult{}, fmt.Errorf("read exec output: %w", err)
	}
	return ExecResult{ExitCode: code, Output: string(output)}, nil
}

func (c *tcContainer) Terminate(ctx context.Context) error {
	if err := c.ctr.Terminate(ctx); err != nil {
		return fmt.Errorf("terminate container %s: %w", c.ID(), err)
	}
	c.logger.Info("docker container terminated", slog.String("container_id", c.ID()))
	return nil
}
