// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/dalemusser/information/internal/app/settings"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// options collects what callers can change about a bootstrap run. Settings
// themselves come from the registry plus overlays; these only say where to
// look and what to attach.
type options struct {
	registry      *settings.Registry
	overrides     []settings.Override
	viper         *viper.Viper
	configFile    string
	skipEnv       bool
	console       io.Writer
	earlyCore     zapcore.Core
	modules       []RouteModule
	sweepInterval time.Duration
}

// Option customizes Bootstrap.
type Option func(*options)

func defaultOptions() options {
	return options{
		registry: settings.Default(),
		console:  os.Stderr,
	}
}

// WithRegistry resolves settings from r instead of settings.Default().
func WithRegistry(r *settings.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithOverrides applies overrides after the environment's own and after the
// env/file overlay.
func WithOverrides(overrides ...settings.Override) Option {
	return func(o *options) { o.overrides = append(o.overrides, overrides...) }
}

// WithConfigFile reads an additional config file through viper.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithViper supplies a prepared viper instance for the overlay.
func WithViper(v *viper.Viper) Option {
	return func(o *options) { o.viper = v }
}

// WithoutEnvOverlay ignores INFO_* variables and config files.
func WithoutEnvOverlay() Option {
	return func(o *options) { o.skipEnv = true }
}

// WithConsole sets where console log lines go. Defaults to stderr.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithEarlyLogCore sets the core used for log lines written before the
// logging step runs. Defaults to the console at INFO.
func WithEarlyLogCore(c zapcore.Core) Option {
	return func(o *options) { o.earlyCore = c }
}

// WithRouteModules registers extra route modules after the built-in ones.
func WithRouteModules(mods ...RouteModule) Option {
	return func(o *options) { o.modules = append(o.modules, mods...) }
}

// WithSweepInterval sets how often expired in-memory or filesystem sessions
// are removed.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepInterval = d }
}
