// internal/app/settings/vault.go
package settings

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/spf13/viper"
)

// VaultSource locates the secret key in a Vault KV v2 engine.
type VaultSource struct {
	Addr  string
	Token string
	Mount string // KV v2 mount, e.g. "secret"
	Path  string // secret path under the mount
	Field string // key inside the secret's data
}

// VaultFromViper reports whether vault_addr is configured and, if so,
// returns the source described by the vault_* keys.
func VaultFromViper(v *viper.Viper) (VaultSource, bool) {
	addr := v.GetString("vault_addr")
	if addr == "" {
		return VaultSource{}, false
	}
	return VaultSource{
		Addr:  addr,
		Token: v.GetString("vault_token"),
		Mount: v.GetString("vault_mount"),
		Path:  v.GetString("vault_path"),
		Field: v.GetString("vault_field"),
	}, true
}

// SecretKey reads the configured field from Vault.
func (src VaultSource) SecretKey(ctx context.Context) (Secret, error) {
	cfg := vault.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("vault config: %w", cfg.Error)
	}
	cfg.Address = src.Addr

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	if src.Token != "" {
		client.SetToken(src.Token)
	}

	kv, err := client.KVv2(src.Mount).Get(ctx, src.Path)
	if err != nil {
		return nil, fmt.Errorf("vault read %s/%s: %w", src.Mount, src.Path, err)
	}
	raw, ok := kv.Data[src.Field].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("vault secret %s/%s has no string field %q", src.Mount, src.Path, src.Field)
	}
	return Secret(raw), nil
}
