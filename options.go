package mongotest

import (
	"errors"
	"io"
	"log/slog"

	"github.com/pressly/mongotest/engine"
)

// Option configures a [MongoDB] before it starts.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (f optionFunc) apply(cfg *config) error {
	return f(cfg)
}

type config struct {
	username string
	password string
	engine   engine.Engine
	logger   *slog.Logger
}

// WithUsername sets the root username. Requires [WithPassword].
func WithUsername(username string) Option {
	return optionFunc(func(cfg *config) error {
		if username == "" {
			return errors.New("username must not be empty")
		}
		cfg.username = username
		return nil
	})
}

// WithPassword sets the root password. Requires [WithUsername].
func WithPassword(password string) Option {
	return optionFunc(func(cfg *config) error {
		if password == "" {
			return errors.New("password must not be empty")
		}
		cfg.password = password
		return nil
	})
}

// WithEngine sets the engine used to run the container. Defaults to testcontainers-go.
func WithEngine(e engine.Engine) Option {
	return optionFunc(func(cfg *config) error {
		if e == nil {
			return errors.New("engine must not be nil")
		}
		cfg.engine = e
		return nil
	})
}

// WithLogger sets the logger for bring-up progress. Output is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(cfg *config) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		cfg.logger = logger
		return nil
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
