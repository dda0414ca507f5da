package pkg

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestDistributedLimiter_Unlimited(t *testing.T) {
	l := NewDistributedLimiter(nil, "k", 0, 0, 0, zap.NewNop())
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(context.Background()))
	}
}

func TestDistributedLimiter_LocalBurst(t *testing.T) {
	l := NewDistributedLimiter(nil, "k", 1, 3, time.Minute, zap.NewNop())

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow(context.Background()) {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestDistributedLimiter_RedisFailureFallsBackToLocal(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()
	l := NewDistributedLimiter(client, "k", 100, 100, time.Second, zap.NewNop())

	assert.True(t, l.Allow(context.Background()))
}

func TestDistributedLimiter_SharedWindow(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = client.Close() })

	// two replicas, each locally generous, sharing a window of 5 requests
	a := NewDistributedLimiter(client, "test:rate", 5, 5, time.Minute, zap.NewNop())
	b := NewDistributedLimiter(client, "test:rate", 5, 5, time.Minute, zap.NewNop())
	a.windowLimit, b.windowLimit = 5, 5

	allowed := 0
	for i := 0; i < 5; i++ {
		if a.Allow(ctx) {
			allowed++
		}
		if b.Allow(ctx) {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)

	ttl, err := client.TTL(ctx, "test:rate").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
