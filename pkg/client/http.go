package client

import (
	"net"
	"net/http"
	"time"
)

const (
	// a batch upload is scored in one request, so the whole-request deadline is generous
	defaultClientTimeout         = 60 * time.Second
	defaultResponseHeaderTimeout = 55 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 5 * time.Second
	defaultMaxIdleConnsPerHost   = 16
	defaultDialerTimeout         = 2 * time.Second
	defaultDialerKeepAlive       = 30 * time.Second
	defaultMaxRetryElapsed       = 10 * time.Second
)

// Config captures the transport and retry tunables. Zero values take defaults.
type Config struct {
	ClientTimeout         time.Duration
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	MaxIdleConnsPerHost   int
	DialerTimeout         time.Duration
	DialerKeepAlive       time.Duration

	// MaxRetryElapsed bounds retries of unavailable or throttled calls; 0 uses the default,
	// negative disables retries.
	MaxRetryElapsed time.Duration

	// HTTPClient replaces the built transport entirely, e.g. in tests.
	HTTPClient *http.Client
}

type Option func(*Config)

func WithClientTimeout(d time.Duration) Option {
	return func(c *Config) { c.ClientTimeout = d }
}
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(c *Config) { c.ResponseHeaderTimeout = d }
}
func WithDialerTimeout(d time.Duration) Option {
	return func(c *Config) { c.DialerTimeout = d }
}
func WithMaxRetryElapsed(d time.Duration) Option {
	return func(c *Config) { c.MaxRetryElapsed = d }
}
func WithHTTPClient(h *http.Client) Option {
	return func(c *Config) { c.HTTPClient = h }
}

func (c *Config) sanitize() {
	if c.ClientTimeout <= 0 {
		c.ClientTimeout = defaultClientTimeout
	}
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = defaultResponseHeaderTimeout
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
	if c.TLSHandshakeTimeout <= 0 {
		c.TLSHandshakeTimeout = defaultTLSHandshakeTimeout
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
	if c.DialerTimeout <= 0 {
		c.DialerTimeout = defaultDialerTimeout
	}
	if c.DialerKeepAlive <= 0 {
		c.DialerKeepAlive = defaultDialerKeepAlive
	}
	if c.MaxRetryElapsed == 0 {
		c.MaxRetryElapsed = defaultMaxRetryElapsed
	}
}

func newHTTPClient(cfg Config) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialerTimeout,
			KeepAlive: cfg.DialerKeepAlive,
		}).DialContext,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: tr, Timeout: cfg.ClientTimeout}
}
