package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pressly/mongotest/engine"
	"github.com/pressly/mongotest/pkg/dockermanage"
)

// pruner removes containers carrying the managed label.
type pruner interface {
	StopManaged(ctx context.Context) error
	RemoveManaged(ctx context.Context) (int, error)
	Close() error
}

// state holds the state of the CLI and is passed to each command.
type state struct {
	version string
	root    rootConfig
	stdout  io.Writer
	stderr  io.Writer

	// engine is set with WithEngine; when nil, mongotest uses its default engine.
	engine    engine.Engine
	newPruner func(logger *slog.Logger) (pruner, error)
}

func (s *state) logger() *slog.Logger {
	level := slog.LevelWarn
	if s.root.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(s.stderr, &slog.HandlerOptions{Level: level}))
}

const (
	engineTestcontainers = "testcontainers"
	engineDockertest     = "dockertest"
)

// containerEngine returns the engine for "up". A nil engine means the mongotest default.
func (s *state) containerEngine(name string) (engine.Engine, error) {
	if s.engine != nil {
		return s.engine, nil
	}
	switch name {
	case engineTestcontainers:
		return nil, nil
	case engineDockertest:
		return engine.NewDockertest(s.logger())
	default:
		return nil, fmt.Errorf("unknown engine %q, must be %s or %s", name, engineTestcontainers, engineDockertest)
	}
}

func newDockerPruner(logger *slog.Logger) (pruner, error) {
	return dockermanage.NewManager(logger)
}
