// internal/app/settings/overlay.go
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the overlay,
// e.g. INFO_SECRET_KEY, INFO_REDIS_HOST.
const EnvPrefix = "INFO"

// overlayKeys are the only settings an operator may change at deploy time.
// Debug and log level stay with the environment definition.
var overlayKeys = []string{
	"secret_key",
	"database_uri",
	"redis_host",
	"redis_port",
	"redis_password",
	"session_dir",
	"log_path",
	"listen_addr",
	"vault_addr",
	"vault_token",
	"vault_mount",
	"vault_path",
	"vault_field",
}

// NewViper returns a viper instance bound to INFO_* environment variables.
// If configFile is not empty it is read as well; env vars win over the file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range overlayKeys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("vault_mount", "secret")
	v.SetDefault("vault_path", "information")
	v.SetDefault("vault_field", "secret_key")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Overlay turns deploy-time values into overrides applied after the
// environment's own. A Vault secret, when configured, wins over
// secret_key from env or file.
func Overlay(ctx context.Context, v *viper.Viper) ([]Override, error) {
	if v == nil {
		return nil, nil
	}
	var out []Override

	if v.IsSet("database_uri") {
		out = append(out, WithDatabaseURI(v.GetString("database_uri")))
	}
	if v.IsSet("redis_host") || v.IsSet("redis_port") {
		host := v.GetString("redis_host")
		var port int
		if v.IsSet("redis_port") {
			raw := v.Get("redis_port")
			p, err := cast.ToIntE(raw)
			if err != nil || p <= 0 {
				return nil, &InvalidSettingsError{Problems: []string{
					fmt.Sprintf("redis_port %q (%s_REDIS_PORT) is not a valid port", fmt.Sprint(raw), EnvPrefix),
				}}
			}
			port = p
		}
		out = append(out, func(s *Settings) {
			if host != "" {
				s.RedisHost = host
			}
			if port != 0 {
				s.RedisPort = port
			}
		})
	}
	if v.IsSet("redis_password") {
		out = append(out, WithRedisPassword(v.GetString("redis_password")))
	}
	if v.IsSet("session_dir") {
		out = append(out, WithSessionDir(v.GetString("session_dir")))
	}
	if v.IsSet("log_path") {
		out = append(out, WithLogPath(v.GetString("log_path")))
	}
	if v.IsSet("listen_addr") {
		out = append(out, WithListenAddr(v.GetString("listen_addr")))
	}
	if v.IsSet("secret_key") {
		out = append(out, WithSecretKey([]byte(v.GetString("secret_key"))))
	}

	if src, ok := VaultFromViper(v); ok {
		key, err := src.SecretKey(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, WithSecretKey(key))
	}
	return out, nil
}
