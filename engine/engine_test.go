package engine

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestcontainersValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTestcontainers(nil).Run(context.Background(), Request{})
	assert.EqualError(t, err, "image is required")
	_, err = NewTestcontainers(nil).Run(context.Background(), Request{Image: "mongo"})
	assert.EqualError(t, err, "wait log pattern is required")
}

func TestDockertestValidation(t *testing.T) {
	t.Parallel()

	e := &Dockertest{}
	_, err := e.Run(context.Background(), Request{})
	assert.EqualError(t, err, "image is required")
	_, err = e.Run(context.Background(), Request{Image: "mongo"})
	assert.EqualError(t, err, "wait log pattern is required")
	_, err = e.Run(context.Background(), Request{
		Image:   "mongo@sha256:0123abcd",
		WaitLog: regexp.MustCompile(`x`),
	})
	assert.ErrorContains(t, err, "image digests are not supported")
}

func TestSplitImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		image      string
		repository string
		tag        string
	}{
		{"mongo:4.0.1", "mongo", "4.0.1"},
		{"mongo", "mongo", "latest"},
		{"localhost:5000/mongo", "localhost:5000/mongo", "latest"},
		{"localhost:5000/mongo:7.0", "localhost:5000/mongo", "7.0"},
	}
	for _, tt := range tests {
		repository, tag, err := splitImage(tt.image)
		require.NoError(t, err)
		assert.Equal(t, tt.repository, repository, tt.image)
		assert.Equal(t, tt.tag, tag, tt.image)
	}
}
