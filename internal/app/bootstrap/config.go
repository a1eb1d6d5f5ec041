// internal/app/bootstrap/config.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/information/internal/app/settings"
	"go.uber.org/zap"
)

// ResolveSettings returns the settings Bootstrap would run env with,
// layered in this order:
//   - the registry entry for env
//   - INFO_* environment variables, an optional config file, and Vault
//   - overrides passed with WithOverrides
//
// Only the settings-related options matter here. The result is neither
// validated nor given an ephemeral secret.
func ResolveSettings(ctx context.Context, env string, opts ...Option) (settings.Settings, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.resolve(ctx, env)
}

func (o options) resolve(ctx context.Context, env string) (settings.Settings, error) {
	s, err := o.registry.Resolve(env)
	if err != nil {
		return settings.Settings{}, err
	}

	var overrides []settings.Override
	if !o.skipEnv {
		v := o.viper
		if v == nil {
			if v, err = settings.NewViper(o.configFile); err != nil {
				return settings.Settings{}, err
			}
		}
		if overrides, err = settings.Overlay(ctx, v); err != nil {
			return settings.Settings{}, fmt.Errorf("settings overlay: %w", err)
		}
	}
	overrides = append(overrides, o.overrides...)
	for _, ov := range overrides {
		ov(&s)
	}
	return s, nil
}

// resolveSettings runs ResolveSettings for a.Env. A development bundle
// without a secret gets a random per-process key, so sessions do not
// survive a restart. Bundles with RequireSecret fail instead.
func resolveSettings(ctx context.Context, a *App) error {
	s, err := a.opts.resolve(ctx, a.Env)
	if err != nil {
		return err
	}

	if s.SecretKey.Len() == 0 && !s.RequireSecret {
		key, err := settings.NewEphemeralSecret()
		if err != nil {
			return err
		}
		s.SecretKey = key
		a.Logger.Warn("no secret key configured; using an ephemeral key for this process",
			zap.String("env", a.Env),
			zap.String("hint", "set "+settings.EnvPrefix+"_SECRET_KEY"))
	}

	if err := s.Validate(); err != nil {
		return err
	}

	a.Settings = s
	a.Logger.Info("settings resolved",
		zap.String("env", a.Env),
		zap.Object("settings", s))
	return nil
}
