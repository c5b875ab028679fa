package mongotest

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"github.com/pressly/mongotest/engine"
)

// Container is a running MongoDB replica-set node returned by [MongoDB.Start].
type Container struct {
	container   engine.Container
	credentials *credentials
}

// ID returns the container ID.
func (c *Container) ID() string {
	return c.container.ID()
}

// Host returns the host the mapped port is reachable on.
func (c *Container) Host() string {
	return c.container.Host()
}

// Port returns the host port mapped to [Port].
func (c *Container) Port() int {
	return c.container.MappedPort(containerPort)
}

// ConnectionString returns a mongodb:// URI for the node. Credentials, when configured, are
// included as userinfo and percent-escaped where needed.
func (c *Container) ConnectionString() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host(), strconv.Itoa(c.Port())),
	}
	if c.credentials != nil {
		u.User = url.UserPassword(c.credentials.username, c.credentials.password)
	}
	return u.String()
}

// Terminate stops and removes the container.
func (c *Container) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
