// Package timeouts holds the process-wide deadlines used around I/O.
//
// Values start at the defaults below. A process that runs a single App
// publishes that App's values with Configure; each App keeps its own copy
// for the deadlines it applies itself. Guidelines:
//   - Ping: health checks against the database and key-value store
//   - Session: loading or saving one session record
//   - Request: the whole handler chain for a single HTTP request
//   - Shutdown: draining in-flight requests when the server stops
package timeouts

import (
	"sync"
	"time"

	"github.com/dalemusser/information/internal/app/settings"
	"go.uber.org/zap"
)

const (
	DefaultPing     = 2 * time.Second
	DefaultSession  = 3 * time.Second
	DefaultRequest  = 30 * time.Second
	DefaultShutdown = 10 * time.Second
)

var mu sync.RWMutex

var (
	ping     = DefaultPing
	session  = DefaultSession
	request  = DefaultRequest
	shutdown = DefaultShutdown
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Session returns the timeout for a single session backend round trip.
func Session() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return session
}

// Request returns the deadline applied to each HTTP request.
func Request() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return request
}

// Shutdown returns how long the server waits for in-flight requests.
func Shutdown() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return shutdown
}

// Config holds timeout values. Zero values are ignored.
type Config struct {
	Ping     time.Duration
	Session  time.Duration
	Request  time.Duration
	Shutdown time.Duration
}

// FromSettings takes the request deadline from s and keeps the rest at
// their defaults.
func FromSettings(s settings.Settings) Config {
	return Config{Request: s.RequestTimeout}
}

// WithDefaults fills zero fields with the package defaults.
func (c Config) WithDefaults() Config {
	if c.Ping <= 0 {
		c.Ping = DefaultPing
	}
	if c.Session <= 0 {
		c.Session = DefaultSession
	}
	if c.Request <= 0 {
		c.Request = DefaultRequest
	}
	if c.Shutdown <= 0 {
		c.Shutdown = DefaultShutdown
	}
	return c
}

// Configure sets custom timeout values, keeping current values for zero
// fields. Call it during startup before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Session > 0 {
		session = cfg.Session
	}
	if cfg.Request > 0 {
		request = cfg.Request
	}
	if cfg.Shutdown > 0 {
		shutdown = cfg.Shutdown
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	session = DefaultSession
	request = DefaultRequest
	shutdown = DefaultShutdown
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Session: session, Request: request, Shutdown: shutdown}
}

// Fields renders the active configuration for a startup log line.
func Fields() []zap.Field { return Current().Fields() }

// Fields renders c for a log line.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.Duration("ping", c.Ping),
		zap.Duration("session", c.Session),
		zap.Duration("request", c.Request),
		zap.Duration("shutdown", c.Shutdown),
	}
}
