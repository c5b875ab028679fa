package testdb

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/pressly/mongotest"
)

// NewMongoDB starts a MongoDB replica-set container for the test and terminates it when the test
// ends, unless TESTDB_NOCLEANUP is set.
func NewMongoDB(t *testing.T, image string, opts ...mongotest.Option) *mongotest.Container {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	m, err := mongotest.New(image, append([]mongotest.Option{mongotest.WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatalf("configure mongodb: %v", err)
	}
	c, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("start mongodb: %v", err)
	}
	t.Cleanup(func() {
		if NoCleanup() {
			t.Logf("leaving container %s running: %s", c.ID(), c.ConnectionString())
			return
		}
		if err := c.Terminate(context.Background()); err != nil {
			t.Errorf("terminate mongodb: %v", err)
		}
	})
	return c
}
