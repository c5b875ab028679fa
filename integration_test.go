//go:build integration

package mongotest_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/pressly/mongotest"
	"github.com/pressly/mongotest/internal/mongoping"
	"github.com/pressly/mongotest/internal/testdb"
)

func TestMain(m *testing.M) {
	testdb.WrapTestMain(m)
}

var noUserinfo = regexp.MustCompile(`^mongodb://[^@/]+:\d+$`)

func TestIntegrationNoCredentials(t *testing.T) {
	t.Parallel()

	c := testdb.NewMongoDB(t, "mongo:4.0.1")
	uri := c.ConnectionString()
	assert.Regexp(t, noUserinfo, uri)
	requireTransaction(t, uri)
}

func TestIntegrationCredentials(t *testing.T) {
	t.Parallel()

	c := testdb.NewMongoDB(t, "mongo:4.0.1",
		mongotest.WithUsername("root"),
		mongotest.WithPassword("pass"),
	)
	uri := c.ConnectionString()
	assert.Regexp(t, `^mongodb://root:pass@[^@/]+:\d+$`, uri)
	requireTransaction(t, uri)
}

func TestIntegrationModernShell(t *testing.T) {
	t.Parallel()

	c := testdb.NewMongoDB(t, "mongo:7.0")
	requireTransaction(t, c.ConnectionString())
}

func TestIntegrationConcurrentStarts(t *testing.T) {
	t.Parallel()

	m, err := mongotest.New(mongotest.DefaultImage)
	require.NoError(t, err)
	containers := make([]*mongotest.Container, 2)
	var g errgroup.Group
	for i := range containers {
		g.Go(func() error {
			c, err := m.Start(context.Background())
			if err != nil {
				return err
			}
			containers[i] = c
			return nil
		})
	}
	err = g.Wait()
	t.Cleanup(func() {
		for _, c := range containers {
			if c != nil && !testdb.NoCleanup() {
				_ = c.Terminate(context.Background())
			}
		}
	})
	require.NoError(t, err)
	assert.NotEqual(t, containers[0].ID(), containers[1].ID())
	assert.NotEqual(t, containers[0].ConnectionString(), containers[1].ConnectionString())
}

// requireTransaction commits a multi-document transaction, which only works on a replica set.
func requireTransaction(t *testing.T, uri string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	require.NoError(t, mongoping.WaitPrimary(ctx, uri))
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetDirect(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := client.Database("mongotest").Collection("items")
	// Collections cannot be created inside a transaction before 4.4.
	require.NoError(t, client.Database("mongotest").CreateCollection(ctx, "items"))

	session, err := client.StartSession()
	require.NoError(t, err)
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := coll.InsertOne(sc, bson.M{"name": "a"}); err != nil {
			return nil, err
		}
		return coll.InsertOne(sc, bson.M{"name": "b"})
	})
	require.NoError(t, err)

	n, err := coll.CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
