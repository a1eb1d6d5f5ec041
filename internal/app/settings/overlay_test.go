package settings_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dalemusser/information/internal/app/settings"
)

func apply(t *testing.T, base settings.Settings, configFile string) settings.Settings {
	t.Helper()
	v, err := settings.NewViper(configFile)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	overrides, err := settings.Overlay(context.Background(), v)
	if err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	s, err := settings.NewRegistry(base).Register("t", overrides...).Resolve("t")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return s
}

func TestOverlay_NothingSet(t *testing.T) {
	s := apply(t, settings.Base(), "")
	if s.SecretKey.Len() != 0 {
		t.Error("expected no secret without INFO_SECRET_KEY")
	}
	if s.RedisAddr() != "127.0.0.1:6379" {
		t.Errorf("RedisAddr: got %q", s.RedisAddr())
	}
}

func TestOverlay_FromEnvironment(t *testing.T) {
	t.Setenv("INFO_SECRET_KEY", "from-env-0123456789abcdef0123456789")
	t.Setenv("INFO_REDIS_HOST", "cache.internal")
	t.Setenv("INFO_REDIS_PORT", "6380")
	t.Setenv("INFO_REDIS_PASSWORD", "pw")
	t.Setenv("INFO_DATABASE_URI", "postgres://u:p@db:5432/information")
	t.Setenv("INFO_LOG_PATH", "/var/log/information/log")

	s := apply(t, settings.Base(), "")
	if string(s.SecretKey.Bytes()) != "from-env-0123456789abcdef0123456789" {
		t.Error("secret key not taken from INFO_SECRET_KEY")
	}
	if s.RedisAddr() != "cache.internal:6380" {
		t.Errorf("RedisAddr: got %q", s.RedisAddr())
	}
	if s.RedisPassword != "pw" {
		t.Errorf("RedisPassword: got %q", s.RedisPassword)
	}
	if s.DatabaseURI != "postgres://u:p@db:5432/information" {
		t.Errorf("DatabaseURI: got %q", s.DatabaseURI)
	}
	if s.LogPath != "/var/log/information/log" {
		t.Errorf("LogPath: got %q", s.LogPath)
	}
}

func TestOverlay_OnlyPortSetKeepsHost(t *testing.T) {
	t.Setenv("INFO_REDIS_PORT", "7000")
	s := apply(t, settings.Base(), "")
	if s.RedisAddr() != "127.0.0.1:7000" {
		t.Errorf("RedisAddr: got %q", s.RedisAddr())
	}
}

func TestOverlay_MistypedPortFails(t *testing.T) {
	for _, raw := range []string{"63 79", "redis", "-1"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("INFO_REDIS_PORT", raw)
			v, err := settings.NewViper("")
			if err != nil {
				t.Fatalf("NewViper: %v", err)
			}
			if _, err := settings.Overlay(context.Background(), v); !errors.Is(err, settings.ErrInvalidSettings) {
				t.Errorf("INFO_REDIS_PORT=%q: expected ErrInvalidSettings, got %v", raw, err)
			}
		})
	}
}

func TestOverlay_ConfigFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "information.yaml")
	body := "listen_addr: \":8080\"\nsecret_key: from-file-0123456789abcdef0123456789\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INFO_LISTEN_ADDR", ":9090")

	s := apply(t, settings.Base(), path)
	if s.ListenAddr != ":9090" {
		t.Errorf("ListenAddr: env should win, got %q", s.ListenAddr)
	}
	if string(s.SecretKey.Bytes()) != "from-file-0123456789abcdef0123456789" {
		t.Error("secret key not taken from config file")
	}
}

func TestOverlay_DoesNotTouchLogLevel(t *testing.T) {
	t.Setenv("INFO_LOG_LEVEL", "DEBUG")
	v, _ := settings.NewViper("")
	overrides, _ := settings.Overlay(context.Background(), v)
	s, _ := settings.Default().Register("prod-overlay", append([]settings.Override{settings.WithLogLevel(settings.LevelWarning)}, overrides...)...).Resolve("prod-overlay")
	if s.LogLevel != settings.LevelWarning {
		t.Errorf("LogLevel: got %v, want WARNING", s.LogLevel)
	}
}

func TestVaultFromViper(t *testing.T) {
	v, _ := settings.NewViper("")
	if _, ok := settings.VaultFromViper(v); ok {
		t.Error("vault should be off without INFO_VAULT_ADDR")
	}

	t.Setenv("INFO_VAULT_ADDR", "http://vault:8200")
	t.Setenv("INFO_VAULT_PATH", "apps/information")
	v, _ = settings.NewViper("")
	src, ok := settings.VaultFromViper(v)
	if !ok {
		t.Fatal("expected vault source")
	}
	if src.Addr != "http://vault:8200" || src.Path != "apps/information" {
		t.Errorf("unexpected source: %+v", src)
	}
	if src.Mount != "secret" || src.Field != "secret_key" {
		t.Errorf("defaults not applied: %+v", src)
	}
}
