// internal/app/store/kvstore/kvstore.go
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dalemusser/information/internal/app/settings"
	"github.com/redis/go-redis/v9"
)

// DefaultPoolSize bounds concurrent connections per client.
const DefaultPoolSize = 20

// CacheConnectionError reports that the key-value store could not serve a
// command. It is raised by the first command that touches the store.
type CacheConnectionError struct {
	Addr string
	Op   string
	Err  error
}

func (e *CacheConnectionError) Error() string {
	return fmt.Sprintf("key-value store %s: %s failed: %v", e.Addr, e.Op, e.Err)
}

func (e *CacheConnectionError) Unwrap() error { return e.Err }

// Options configures a client.
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// OptionsFromSettings picks the key-value fields out of s.
func OptionsFromSettings(s settings.Settings) Options {
	return Options{
		Host:     s.RedisHost,
		Port:     s.RedisPort,
		Password: s.RedisPassword,
		PoolSize: DefaultPoolSize,
	}
}

// New constructs a pooled client. It does not dial; the pool connects on the
// first command, so an unreachable store surfaces there.
func New(opts Options) *redis.Client {
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     poolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Wrap converts a command error into *CacheConnectionError. It returns nil
// for nil and passes redis.Nil (key not found) through unchanged.
func Wrap(c *redis.Client, op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var cerr *CacheConnectionError
	if errors.As(err, &cerr) {
		return err
	}
	return &CacheConnectionError{Addr: c.Options().Addr, Op: op, Err: err}
}

// Ping checks the store is reachable.
func Ping(ctx context.Context, c *redis.Client) error {
	return Wrap(c, "ping", c.Ping(ctx).Err())
}
