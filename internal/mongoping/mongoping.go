// Package mongoping checks from the host that a MongoDB node accepts connections and is primary.
package mongoping

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"
)

const (
	defaultTimeout = 30 * time.Second
	defaultDelay   = 500 * time.Millisecond
)

// Option configures WaitPrimary behavior.
type Option func(*waitConfig)

type waitConfig struct {
	timeout time.Duration
	delay   time.Duration
}

// WithTimeout sets the maximum time to wait. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(cfg *waitConfig) { cfg.timeout = d }
}

// WithDelay sets the interval between pings. Defaults to 500ms.
func WithDelay(d time.Duration) Option {
	return func(cfg *waitConfig) { cfg.delay = d }
}

// WaitPrimary pings the node at uri with a primary read preference until it answers. The
// connection is direct: the replica-set config advertises the container hostname, which the host
// cannot resolve.
func WaitPrimary(ctx context.Context, uri string, opts ...Option) error {
	cfg := &waitConfig{
		timeout: defaultTimeout,
		delay:   defaultDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", cfg.timeout)
	}
	if cfg.delay <= 0 {
		return fmt.Errorf("delay must be positive: %v", cfg.delay)
	}
	clientOpts := options.Client().
		ApplyURI(uri).
		SetDirect(true).
		SetServerSelectionTimeout(cfg.delay)
	if err := clientOpts.Validate(); err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	retryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	backoff := retry.NewConstant(cfg.delay)
	err := retry.Do(retryCtx, backoff, func(ctx context.Context) error {
		if err := ping(ctx, clientOpts); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mongodb primary not reachable within %s: %w", cfg.timeout, err)
	}
	return nil
}

func ping(ctx context.Context, clientOpts *options.ClientOptions) (retErr error) {
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}
	defer func() {
		retErr = multierr.Append(retErr, client.Disconnect(context.WithoutCancel(ctx)))
	}()
	return client.Ping(ctx, readpref.Primary())
}
