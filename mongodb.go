package mongotest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/multierr"

	"github.com/pressly/mongotest/engine"
	"github.com/pressly/mongotest/pkg/dockermanage"
)

// MongoDB is the configuration of a MongoDB container that has not been started yet. It is
// immutable once [New] returns and may be started any number of times; each [MongoDB.Start]
// owns a separate container.
type MongoDB struct {
	image       string
	shell       string
	credentials *credentials
	engine      engine.Engine
	logger      *slog.Logger
}

// New returns a MongoDB for the given image, for example "mongo:7.0". An empty image means
// [DefaultImage].
//
// Username and password must be set together, or not at all; otherwise New returns
// [ErrPartialCredentials].
func New(image string, opts ...Option) (*MongoDB, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		image = DefaultImage
	}
	cfg := &config{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if (cfg.username == "") != (cfg.password == "") {
		return nil, ErrPartialCredentials
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	if cfg.engine == nil {
		cfg.engine = engine.NewTestcontainers(cfg.logger)
	}
	m := &MongoDB{
		image:  image,
		shell:  shellForImage(image),
		engine: cfg.engine,
		logger: cfg.logger.With(slog.String("logger", "mongotest")),
	}
	if cfg.username != "" {
		m.credentials = &credentials{
			username: cfg.username,
			password: cfg.password,
		}
	}
	return m, nil
}

// Image returns the image the container is started from.
func (m *MongoDB) Image() string {
	return m.image
}

func (m *MongoDB) request() engine.Request {
	return engine.Request{
		Image:        m.image,
		ExposedPorts: []string{containerPort},
		Env:          startupEnv(m.credentials),
		Cmd:          startupCommand(m.credentials),
		Labels: map[string]string{
			dockermanage.ManagedLabelKey: "mongodb",
		},
		WaitLog:        waitingForConnections,
		StartupTimeout: startupTimeout,
	}
}

// Start starts the container, initiates the replica set and waits for the node to become
// primary. On failure the container is terminated and no Container is returned.
//
// A readiness timeout is returned as the engine error. A failed shell command inside the
// container is returned as a *CommandError.
func (m *MongoDB) Start(ctx context.Context) (_ *Container, retErr error) {
	logger := m.logger.With(slog.String("image", m.image))
	c, err := m.engine.Run(ctx, m.request())
	if err != nil {
		logger.Error("mongodb container failed to start", slog.Any("error", err))
		return nil, fmt.Errorf("start mongodb container: %w", err)
	}
	logger = logger.With(slog.String("container_id", c.ID()))
	defer func() {
		if retErr != nil {
			logger.Error("mongodb bring-up failed", slog.Any("error", retErr))
			retErr = multierr.Append(retErr, c.Terminate(context.WithoutCancel(ctx)))
		}
	}()

	if err := m.eval(ctx, c, "initiate", initiateScript); err != nil {
		return nil, err
	}
	logger.Info("replica set initiated", slog.String("replica_set", ReplicaSetName))
	if err := m.eval(ctx, c, "wait-primary", waitPrimaryScript); err != nil {
		return nil, err
	}
	logger.Info("replica set primary ready")

	return &Container{
		container:   c,
		credentials: m.credentials,
	}, nil
}

func (m *MongoDB) eval(ctx context.Context, c engine.Container, step, script string) error {
	result, err := c.Exec(ctx, evalCommand(m.shell, m.credentials, script))
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if result.ExitCode != 0 {
		return &CommandError{
			Step:     step,
			ExitCode: result.ExitCode,
			Output:   result.Output,
		}
	}
	return nil
}
