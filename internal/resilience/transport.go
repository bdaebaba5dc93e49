package resilience

import (
	"net/http"
	"time"
)

// PoolConfig tunes the HTTP connection pool used for outbound API calls
type PoolConfig struct {
	MaxIdle     int
	MaxActive   int
	IdleTimeout time.Duration
	Timeout     time.Duration // Whole-request timeout; zero disables it
}

// DefaultPoolConfig returns sensible pool defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdle:     10,
		MaxActive:   20,
		IdleTimeout: 30 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// NewHTTPClient creates a client over a tuned, pooled transport
func NewHTTPClient(config PoolConfig) *http.Client {
	maxIdlePerHost := config.MaxIdle / 2
	if maxIdlePerHost < 1 {
		maxIdlePerHost = 1
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdle,
		MaxConnsPerHost:       config.MaxActive,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}
}

// PoolStats describes a client's pool configuration
func PoolStats(client *http.Client) map[string]interface{} {
	stats := map[string]interface{}{
		"timeout_ms": client.Timeout.Milliseconds(),
	}
	if t, ok := client.Transport.(*http.Transport); ok {
		stats["max_idle"] = t.MaxIdleConns
		stats["max_active"] = t.MaxConnsPerHost
		stats["idle_timeout_ms"] = t.IdleConnTimeout.Milliseconds()
	}
	return stats
}

// CloseIdle releases idle pooled connections
func CloseIdle(client *http.Client) {
	client.CloseIdleConnections()
}
