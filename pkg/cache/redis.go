// Package cache connects to the Redis instance backing the shared rate-limit window.
package cache

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds Redis connection options. Zero values fall back to defaults.
type Config struct {
	Addr            string
	Username        string
	Password        string
	DB              int
	UseTLS          bool
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	MaxRetries      int
	MaxRetryBackoff time.Duration
	MinRetryBackoff time.Duration
	// ConnectTimeout bounds how long New keeps retrying the initial PING.
	ConnectTimeout time.Duration
}

// New returns a configured redis.Client once a PING succeeds, retrying with
// exponential backoff for up to ConnectTimeout.
// Call the returned closer during shutdown.
func New(ctx context.Context, logger *zap.Logger, cfg Config) (*redis.Client, func(), error) {
	opts := &redis.Options{
		Addr:            cfg.Addr,
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     defaultDuration(cfg.DialTimeout, 3*time.Second),
		ReadTimeout:     defaultDuration(cfg.ReadTimeout, 2*time.Second),
		WriteTimeout:    defaultDuration(cfg.WriteTimeout, 2*time.Second),
		PoolSize:        defaultInt(cfg.PoolSize, 10),
		MinIdleConns:    defaultInt(cfg.MinIdleConns, 2),
		MaxRetries:      defaultInt(cfg.MaxRetries, 3),
		MinRetryBackoff: defaultDuration(cfg.MinRetryBackoff, 50*time.Millisecond),
		MaxRetryBackoff: defaultDuration(cfg.MaxRetryBackoff, 500*time.Millisecond),
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ping := func() error {
		err := client.Ping(ctx).Err()
		if err != nil {
			logger.Warn("redis not reachable yet", zap.String("addr", cfg.Addr), zap.Error(err))
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = defaultDuration(cfg.ConnectTimeout, 15*time.Second)
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	closer := func() {
		_ = client.Close()
	}
	return client, closer, nil
}

func defaultDuration(v, d time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return d
}

func defaultInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
