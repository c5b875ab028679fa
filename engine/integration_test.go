//go:build integration

package engine

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngines(t *testing.T) {
	t.Parallel()

	dt, err := NewDockertest(nil)
	require.NoError(t, err)
	for name, e := range map[string]Engine{
		"testcontainers": NewTestcontainers(nil),
		"dockertest":     dt,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			testEngine(t, e)
		})
	}
}

func testEngine(t *testing.T, e Engine) {
	ctx := context.Background()
	c, err := e.Run(ctx, Request{
		Image:          "mongo:4.0.1",
		ExposedPorts:   []string{"27017/tcp"},
		Cmd:            []string{"--replSet", "rs0"},
		Labels:         map[string]string{"pressly.mongotest": "engine-test"},
		WaitLog:        regexp.MustCompile(`(?i)waiting for connections`),
		StartupTimeout: 2 * time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Terminate(context.Background())) })

	assert.NotEmpty(t, c.ID())
	assert.NotEmpty(t, c.Host())
	assert.Positive(t, c.MappedPort("27017/tcp"))
	assert.Zero(t, c.MappedPort("8080/tcp"))

	res, err := c.Exec(ctx, []string{"sh", "-c", "echo out; echo err >&2; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "out")
	assert.Contains(t, res.Output, "err")

	res, err = c.Exec(ctx, []string{"mongo", "--quiet", "--eval", "print(40 + 2)"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "42", strings.TrimSpace(res.Output))
}

func TestStartupTimeout(t *testing.T) {
	t.Parallel()

	dt, err := NewDockertest(nil)
	require.NoError(t, err)
	for name, e := range map[string]Engine{
		"testcontainers": NewTestcontainers(nil),
		"dockertest":     dt,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := e.Run(context.Background(), Request{
				Image:          "mongo:4.0.1",
				ExposedPorts:   []string{"27017/tcp"},
				WaitLog:        regexp.MustCompile(`this line is never logged`),
				StartupTimeout: 5 * time.Second,
			})
			require.Error(t, err)
		})
	}
}
