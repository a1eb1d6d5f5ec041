package settings_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dalemusser/information/internal/app/settings"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "super-secret-value-that-must-not-leak"

func resolvedWithSecret(t *testing.T) settings.Settings {
	t.Helper()
	reg := settings.NewRegistry(settings.Base()).
		Register("t", settings.WithSecretKey([]byte(testSecret)))
	s, err := reg.Resolve("t")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return s
}

func TestSecret_NotRenderedByFmt(t *testing.T) {
	s := resolvedWithSecret(t)
	for _, format := range []string{"%v", "%+v", "%#v", "%s", "%x", "%q"} {
		out := fmt.Sprintf(format, s)
		if strings.Contains(out, testSecret) {
			t.Errorf("%s leaked the secret: %s", format, out)
		}
		if strings.Contains(out, fmt.Sprintf("%x", []byte(testSecret))) {
			t.Errorf("%s leaked the secret as hex", format)
		}
	}
}

func TestSecret_NotRenderedByJSON(t *testing.T) {
	s := resolvedWithSecret(t)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if strings.Contains(string(b), testSecret) {
		t.Errorf("json leaked the secret: %s", b)
	}
}

func TestSecret_NotRenderedByZap(t *testing.T) {
	s := resolvedWithSecret(t)
	s.DatabaseURI = "mysql://root:hunter2@db:3306/information"

	core, logs := observer.New(zap.DebugLevel)
	zap.New(core).Info("settings", zap.Object("settings", s))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := fmt.Sprint(entries[0].ContextMap())
	if strings.Contains(fields, testSecret) {
		t.Errorf("zap leaked the secret: %s", fields)
	}
	if strings.Contains(fields, "hunter2") {
		t.Errorf("zap leaked the database password: %s", fields)
	}
}

func TestValidate_Defaults(t *testing.T) {
	s, _ := settings.Default().Resolve(settings.Development)
	if err := s.Validate(); err != nil {
		t.Errorf("development defaults should validate: %v", err)
	}
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	s, _ := settings.Default().Resolve(settings.Production)
	err := s.Validate()
	if !errors.Is(err, settings.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if !strings.Contains(err.Error(), "secret key") {
		t.Errorf("error should mention the secret key: %v", err)
	}
}

func TestValidate_CollectsProblems(t *testing.T) {
	s := settings.Base()
	s.RedisPort = 0
	s.SessionBackend = "cookie"
	s.SessionLifetime = 0

	err := s.Validate()
	var verr *settings.InvalidSettingsError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *InvalidSettingsError, got %v", err)
	}
	if len(verr.Problems) != 3 {
		t.Errorf("expected 3 problems, got %v", verr.Problems)
	}
}

func TestRedisAddr(t *testing.T) {
	s := settings.Base()
	if got := s.RedisAddr(); got != "127.0.0.1:6379" {
		t.Errorf("RedisAddr: got %q", got)
	}
}
