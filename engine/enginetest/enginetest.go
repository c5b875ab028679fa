// Package enginetest provides an in-memory [engine.Engine] for tests that exercise container
// bring-up without Docker.
package enginetest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/pressly/mongotest/engine"
)

// ExecFunc decides the result of a command run inside a fake container.
type ExecFunc func(cmd []string) (engine.ExecResult, error)

// Engine records every request and hands out fake containers. The zero value is ready to use:
// containers report host "localhost" and map each exposed port to a distinct high port, and every
// exec succeeds with empty output.
type Engine struct {
	// RunErr, when set, is returned by Run instead of a container.
	RunErr error
	// Exec, when set, decides exec results for every container started by this engine.
	Exec ExecFunc
	// Host overrides the reported host.
	Host string

	mu         sync.Mutex
	requests   []engine.Request
	containers []*Container
	nextPort   int
}

var _ engine.Engine = (*Engine)(nil)

// Run records req and returns a new fake container.
func (e *Engine) Run(_ context.Context, req engine.Request) (engine.Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	if e.RunErr != nil {
		return nil, e.RunErr
	}
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	ports := make(map[string]int, len(req.ExposedPorts))
	for _, p := range req.ExposedPorts {
		e.nextPort++
		ports[p] = 32768 + e.nextPort
	}
	c := &Container{
		id:    "fake-" + strconv.Itoa(len(e.containers)+1),
		host:  host,
		ports: ports,
		exec:  e.Exec,
	}
	e.containers = append(e.containers, c)
	return c, nil
}

// Requests returns every request passed to Run, in order.
func (e *Engine) Requests() []engine.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.requests)
}

// Containers returns every container started, in order.
func (e *Engine) Containers() []*Container {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.containers)
}

// Container is a fake started container.
type Container struct {
	id    string
	host  string
	ports map[string]int
	exec  ExecFunc

	mu         sync.Mutex
	commands   [][]string
	terminated bool
}

var _ engine.Container = (*Container)(nil)

func (c *Container) ID() string { return c.id }

func (c *Container) Host() string { return c.host }

func (c *Container) MappedPort(port string) int { return c.ports[port] }

func (c *Container) Exec(_ context.Context, cmd []string) (engine.ExecResult, error) {
	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		return engine.ExecResult{}, fmt.Errorf("container %s is terminated", c.id)
	}
	c.commands = append(c.commands, slices.Clone(cmd))
	c.mu.Unlock()
	if c.exec == nil {
		return engine.ExecResult{}, nil
	}
	return c.exec(cmd)
}

func (c *Container) Terminate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminated = true
	return nil
}

// Commands returns every command passed to Exec, in order.
func (c *Container) Commands() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.commands)
}

// Terminated reports whether Terminate was called.
func (c *Container) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated
}
