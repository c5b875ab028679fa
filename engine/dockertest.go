package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/multierr"

	"github.com/pressly/mongotest/pkg/dockermanage"
)

// Dockertest runs containers with ory/dockertest.
type Dockertest struct {
	pool   *dockertest.Pool
	logger *slog.Logger
}

var _ Engine = (*Dockertest)(nil)

// NewDockertest connects to Docker and returns an engine. A nil logger discards output.
func NewDockertest(logger *slog.Logger) (*Dockertest, error) {
	// Uses a sensible default on windows (tcp/http) and linux/osx (socket).
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to docker: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dockertest{
		pool:   pool,
		logger: logger.With(slog.String("logger", "engine")),
	}, nil
}

func (e *Dockertest) Run(ctx context.Context, req Request) (_ Container, retErr error) {
	if req.Image == "" {
		return nil, errors.New("image is required")
	}
	if req.WaitLog == nil {
		return nil, errors.New("wait log pattern is required")
	}
	repository, tag, err := splitImage(req.Image)
	if err != nil {
		return nil, err
	}
	labels := maps.Clone(req.Labels)
	if labels == nil {
		labels = make(map[string]string)
	}
	if _, ok := labels[dockermanage.ManagedLabelKey]; !ok {
		labels[dockermanage.ManagedLabelKey] = ""
	}
	env := make([]string, 0, len(req.Env))
	for k, v := range req.Env {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)

	resource, err := e.pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository:   repository,
			Tag:          tag,
			Env:          env,
			Cmd:          req.Cmd,
			ExposedPorts: req.ExposedPorts,
			Labels:       labels,
		},
		func(config *docker.HostConfig) {
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker container: %w", err)
	}
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, e.pool.Purge(resource))
		}
	}()

	if err := e.waitForLog(ctx, resource.Container.ID, req.WaitLog, req.StartupTimeout); err != nil {
		return nil, err
	}
	ports := make(map[string]int, len(req.ExposedPorts))
	for _, p := range req.ExposedPorts {
		hostPort := resource.GetPort(p)
		n, err := strconv.Atoi(hostPort)
		if err != nil {
			return nil, fmt.Errorf("parse host port %q for %s: %w", hostPort, p, err)
		}
		ports[p] = n
	}

	e.logger.Info(
		"docker container started",
		slog.String("container_id", resource.Container.ID),
		slog.String("image", req.Image),
	)
	return &dtContainer{
		pool:     e.pool,
		resource: resource,
		ports:    ports,
		logger:   e.logger,
	}, nil
}

// waitForLog follows the container log until a line matches pattern.
func (e *Dockertest) waitForLog(ctx context.Context, id string, pattern *regexp.Regexp, timeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	go func() {
		err := e.pool.Client.Logs(docker.LogsOptions{
			Context:      ctx,
			Container:    id,
			OutputStream: pw,
			ErrorStream:  pw,
			Follow:       true,
			Stdout:       true,
			Stderr:       true,
		})
		pw.CloseWithError(err)
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if pattern.Match(scanner.Bytes()) {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("container %s did not log %q within %s: %w", id, pattern, timeout, err)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("follow logs of container %s: %w", id, err)
	}
	return fmt.Errorf("container %s stopped before logging %q", id, pattern)
}

// splitImage splits an image reference into the repository and tag dockertest expects.
func splitImage(image string) (repository, tag string, _ error) {
	if strings.Contains(image, "@") {
		return "", "", fmt.Errorf("image digests are not supported by the dockertest engine: %s", image)
	}
	colon := strings.LastIndexByte(image, ':')
	if colon > strings.LastIndexByte(image, '/') {
		return image[:colon], image[colon+1:], nil
	}
	return image, "latest", nil
}

type dtContainer struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
	ports    map[string]int
	logger   *slog.Logger
}

func (c *dtContainer) ID() string { return c.resource.Container.ID }

// Host is always localhost; dockertest binds exposed ports on all host interfaces.
func (c *dtContainer) Host() string { return "localhost" }

func (c *dtContainer) MappedPort(port string) int { return c.ports[port] }

// Exec runs cmd to completion. dockertest does not take a context for exec, so ctx is only
// checked before starting.
func (c *dtContainer) Exec(ctx context.Context, cmd []string) (ExecResult, error) {
	if err := ctx.Err(); err != nil {
		return ExecResult{}, err
	}
	var out syncBuffer
	code, err := c.resource.Exec(cmd, dockertest.ExecOptions{
		StdOut: &out,
		StdErr: &out,
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("exec in container %s: %w", c.ID(), err)
	}
	return ExecResult{ExitCode: code, Output: out.String()}, nil
}

func (c *dtContainer) Terminate(context.Context) error {
	if err := c.pool.Purge(c.resource); err != nil {
		return fmt.Errorf("purge container %s: %w", c.ID(), err)
	}
	c.logger.Info("docker container terminated", slog.String("container_id", c.ID()))
	return nil
}

// syncBuffer lets stdout and stderr share one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
