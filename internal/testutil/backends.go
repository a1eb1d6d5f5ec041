package testutil

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/information/internal/app/settings"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// TestSecret is a 40-byte secret for tests only.
const TestSecret = "test-secret-key-for-testing-only-0123456"

// TestContext returns a context that times out after a few seconds.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// SetupRedis starts an in-process Redis that is closed when the test ends,
// plus a client pointed at it.
func SetupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// SetupSQLMock returns a sqlx handle backed by go-sqlmock with ping
// monitoring enabled.
func SetupSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// RedisOverride points settings at mr.
func RedisOverride(t *testing.T, mr *miniredis.Miniredis) settings.Override {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}
	return settings.WithRedis(mr.Host(), port)
}

// TestOverrides confines an app to the test: secret set, logs and session
// files under t.TempDir(), key-value store at mr (if not nil), and an
// in-memory SQLite database.
func TestOverrides(t *testing.T, mr *miniredis.Miniredis) []settings.Override {
	t.Helper()
	dir := t.TempDir()
	out := []settings.Override{
		settings.WithSecretKey([]byte(TestSecret)),
		settings.WithLogPath(filepath.Join(dir, "logs", "log")),
		settings.WithSessionDir(filepath.Join(dir, "sessions")),
		settings.WithDatabaseURI("sqlite://"),
	}
	if mr != nil {
		out = append(out, RedisOverride(t, mr))
	}
	return out
}

// TestSettings resolves development settings with TestOverrides and extra
// overrides applied on top.
func TestSettings(t *testing.T, mr *miniredis.Miniredis, extra ...settings.Override) settings.Settings {
	t.Helper()
	overrides := append(TestOverrides(t, mr), extra...)
	s, err := settings.NewRegistry(settings.Base()).Register("test", overrides...).Resolve("test")
	if err != nil {
		t.Fatalf("resolve test settings: %v", err)
	}
	return s
}
