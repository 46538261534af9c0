package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/atmx/listing-metrics/internal/model"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() || os.Getenv("LISTINGS_INTEGRATION") != "true" {
		t.Skip("integration tests disabled (set LISTINGS_INTEGRATION=true to enable)")
	}

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCachedStore_ListingsInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	s := NewCachedStore(NewMemoryStore(), rdb, time.Minute)

	require.NoError(t, s.InsertListing(ctx, listing("a", 1)))

	got, err := s.ListListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))

	n, err := rdb.Exists(ctx, listingsKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "snapshot should be cached after a read")

	require.NoError(t, s.InsertListing(ctx, listing("b", 2)))
	got, err = s.ListListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	require.NoError(t, s.DeleteListing(ctx, "a"))
	got, err = s.ListListings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))
	assert.True(t, got[0].GrossProfit.Equal(d(2)))
}

func TestCachedStore_Products(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	s := NewCachedStore(NewMemoryStore(), rdb, time.Minute)

	p := &model.Product{ID: "p-1", Name: "Caneca", CostPrice: d(18.4)}
	require.NoError(t, s.CreateProduct(ctx, p))

	got, err := s.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, got.CostPrice.Equal(d(18.4)))

	p.CostPrice = d(20)
	require.NoError(t, s.UpdateProduct(ctx, p))
	got, err = s.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, got.CostPrice.Equal(d(20)), "stale cache: %s", got.CostPrice)

	require.NoError(t, s.DeleteProduct(ctx, "p-1"))
	_, err = s.GetProduct(ctx, "p-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
