package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/information/internal/app/settings"
)

func TestNewRootCmd_Structure(t *testing.T) {
	cmd := NewRootCmd()
	if cmd.Use != "information" {
		t.Errorf("Use: got %q", cmd.Use)
	}
	want := map[string]bool{"serve": false, "settings": false, "envs": false}
	for _, c := range cmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %q", name)
		}
	}
	for _, flag := range []string{"env", "config"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing flag --%s", flag)
		}
	}
	if got := cmd.PersistentFlags().Lookup("env").DefValue; got != settings.Development {
		t.Errorf("--env default: got %q", got)
	}
}

func TestEnvsCmd(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"envs"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "development\nproduction\n" {
		t.Errorf("output: got %q", out.String())
	}
}

func TestSettingsCmd_RedactsSecret(t *testing.T) {
	t.Setenv("INFO_SECRET_KEY", "super-secret-value-that-must-not-print-0123")
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"settings", "--env", "production"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.Contains(out.String(), "super-secret-value") {
		t.Error("secret printed")
	}
	if !strings.Contains(out.String(), `"log_level": "WARNING"`) {
		t.Errorf("production log level missing:\n%s", out.String())
	}
}

func TestSettingsCmd_UnknownEnv(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"settings", "--env", "staging"})
	err := cmd.Execute()
	if !errors.Is(err, settings.ErrUnknownEnvironment) {
		t.Errorf("expected ErrUnknownEnvironment, got %v", err)
	}
}
