package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestNew_GivesUpAfterConnectTimeout(t *testing.T) {
	start := time.Now()
	_, _, err := New(context.Background(), zap.NewNop(), Config{
		Addr:           "127.0.0.1:1",
		DialTimeout:    50 * time.Millisecond,
		MaxRetries:     -1,
		ConnectTimeout: 300 * time.Millisecond,
	})

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNew_Connects(t *testing.T) {
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

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	client, closer, err := New(ctx, zap.NewNop(), Config{Addr: endpoint})
	require.NoError(t, err)
	defer closer()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute).Err())
	assert.Equal(t, "v", client.Get(ctx, "k").Val())
}
