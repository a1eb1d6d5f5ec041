// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/information/internal/app/features/errors"
	"github.com/dalemusser/information/internal/app/settings"
	"github.com/dalemusser/information/internal/app/system/logging"
	"github.com/dalemusser/information/internal/app/system/metrics"
	"github.com/dalemusser/information/internal/app/system/templates"
	"github.com/dalemusser/information/internal/app/system/timeouts"
	"github.com/dalemusser/information/internal/app/system/websession"
	"github.com/dalemusser/information/internal/app/system/workers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App is a bootstrapped application instance. Two Apps built in one
// process share nothing except the process-wide logger, which belongs to
// the most recently bootstrapped App that is still open.
type App struct {
	Env      string
	Settings settings.Settings
	DBDeps

	Sessions  *websession.Manager
	Router    chi.Router
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Templates *templates.Engine
	Errors    *errorsfeature.Handler
	Timeouts  timeouts.Config

	state   State
	opts    options
	logs    *logging.Switch
	sink    *logging.Logger
	restore func()
	protect []func(http.Handler) http.Handler
	cleanup *workers.SessionCleanup
	closers []func()
}

// Bootstrap runs Steps in order for the named environment and returns a
// ready App. The first failing step stops the run: resources opened by
// earlier steps are released and a *StepError naming the step is returned.
// An unknown environment fails in the first step, before any side effect.
func Bootstrap(ctx context.Context, env string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	early := o.earlyCore
	if early == nil {
		early = logging.ConsoleCore(o.console, zapcore.InfoLevel)
	}
	sw := logging.NewSwitch(early)

	a := &App{
		Env:    env,
		opts:   o,
		logs:   sw,
		Logger: sw.Logger(),
		state:  StateStarting,
	}

	for _, step := range Steps {
		if err := step.Run(ctx, a); err != nil {
			a.state = StateFailed
			a.Logger.Error("bootstrap step failed",
				zap.String("step", step.Name),
				zap.Error(err))
			a.release()
			return nil, &StepError{Step: step.Name, Err: err}
		}
	}

	a.state = StateReady
	a.Logger.Info("application ready",
		zap.String("env", env),
		zap.String("log_level", a.Settings.LogLevel.String()),
		zap.String("session_backend", string(a.Settings.SessionBackend)))
	return a, nil
}

// configureLogging opens the rotating file sink and points every logger
// handed out so far at it. The minimum level comes from settings, so lines
// below it written from here on by any component are dropped.
func configureLogging(ctx context.Context, a *App) error {
	cfg := logging.FromSettings(a.Settings)
	cfg.Console = a.opts.console
	sink, err := logging.New(cfg)
	if err != nil {
		return err
	}
	a.sink = sink
	a.logs.Set(sink.Logger.Core())
	a.restore = logging.Install(a.Logger)

	a.Logger.Info("logging configured",
		zap.String("level", a.Settings.LogLevel.String()),
		zap.String("path", cfg.Path),
		zap.Int("max_size_mb", cfg.MaxSizeMB),
		zap.Int("max_backups", cfg.MaxBackups))
	return nil
}

// onClose registers f to run when the App is closed, before backends are.
func (a *App) onClose(f func()) { a.closers = append(a.closers, f) }

// State reports where the App is in its lifecycle.
func (a *App) State() State { return a.state }

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.Router }
