package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dalemusser/information/internal/app/bootstrap"
	"github.com/dalemusser/information/internal/app/settings"
	"github.com/dalemusser/information/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	env        string
	configFile string
}

// NewRootCmd builds the CLI. Running it without a subcommand serves HTTP.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "information",
		Short:         "Run the information web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, f)
		},
	}
	root.PersistentFlags().StringVar(&f.env, "env", settings.Development,
		"environment to run ("+strings.Join(settings.Default().Names(), ", ")+")")
	root.PersistentFlags().StringVar(&f.configFile, "config", "", "optional config file (env vars "+settings.EnvPrefix+"_* win over it)")

	root.AddCommand(newServeCmd(f))
	root.AddCommand(newSettingsCmd(f))
	root.AddCommand(newEnvsCmd())
	return root
}

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Bootstrap the application and serve HTTP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, f)
		},
	}
}

func serve(cmd *cobra.Command, f *rootFlags) error {
	ctx := cmd.Context()
	app, err := bootstrap.Bootstrap(ctx, f.env, bootstrap.WithConfigFile(f.configFile))
	if err != nil {
		return err
	}
	// One App per process, so its deadlines become the process-wide ones.
	timeouts.Configure(app.Timeouts)
	defer func() {
		if cerr := app.Close(); cerr != nil {
			zap.L().Error("close failed", zap.Error(cerr))
		}
	}()
	return app.Serve(ctx)
}

// newSettingsCmd prints the resolved settings with secrets redacted.
func newSettingsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the resolved settings for --env (secrets redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := bootstrap.ResolveSettings(cmd.Context(), f.env, bootstrap.WithConfigFile(f.configFile))
			if err != nil {
				return err
			}

			view := map[string]any{
				"env":                f.env,
				"debug":              s.Debug,
				"database_uri":       s.RedactedDatabaseURI(),
				"redis_addr":         s.RedisAddr(),
				"secret_key":         s.SecretKey,
				"secret_key_set":     s.SecretKey.Len() > 0,
				"session_backend":    s.SessionBackend,
				"session_use_signer": s.SessionUseSigner,
				"session_lifetime_s": int(s.SessionLifetime.Seconds()),
				"log_level":          s.LogLevel.String(),
				"log_path":           s.LogPath,
				"listen_addr":        s.ListenAddr,
				"secure_cookies":     s.SecureCookies,
				"require_secret":     s.RequireSecret,
				"request_timeout":    s.RequestTimeout.String(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(view); err != nil {
				return err
			}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("settings for %s are not usable: %w", f.env, err)
			}
			return nil
		},
	}
}

func newEnvsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List the known environment names",
		Run: func(cmd *cobra.Command, args []string) {
			for _, n := range settings.Default().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	}
}
