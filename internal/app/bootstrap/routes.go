// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/information/internal/app/features/errors"
	healthfeature "github.com/dalemusser/information/internal/app/features/health"
	indexfeature "github.com/dalemusser/information/internal/app/features/index"
	"github.com/dalemusser/information/internal/app/system/csrfguard"
	"github.com/dalemusser/information/internal/app/system/metrics"
	"github.com/dalemusser/information/internal/app/system/ratelimit"
	"github.com/dalemusser/information/internal/app/system/templates"
	"github.com/dalemusser/information/internal/app/system/timeouts"
	"github.com/dalemusser/information/internal/app/system/websession"
	"github.com/dalemusser/information/internal/app/system/workers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouteModule mounts one group of routes. Modules run inside the CSRF and
// session middleware, so handlers can rely on websession.Current and
// csrfguard.Token.
type RouteModule struct {
	Name     string
	Register func(r chi.Router, a *App) error
}

// Message submissions allowed per client IP per minute.
const indexPostsPerMinute = 30

// IndexModule serves the landing page at "/".
var IndexModule = RouteModule{
	Name: "index",
	Register: func(r chi.Router, a *App) error {
		h := indexfeature.NewHandler(a.Templates, a.Errors, a.Logger.Named("index"))
		lim := ratelimit.New(indexPostsPerMinute, time.Minute)
		a.onClose(lim.Stop)
		r.Mount("/", indexfeature.Routes(h, lim))
		return nil
	},
}

/*─────────────────────────────────────────────────────────────────────────────*
| Shell                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// buildShell creates the router and the request-independent pieces every
// later step hangs off. No I/O.
func buildShell(ctx context.Context, a *App) error {
	a.Timeouts = timeouts.FromSettings(a.Settings).WithDefaults()

	eng := templates.New(a.Settings.Debug)
	if err := eng.Boot(a.Logger); err != nil {
		return err
	}
	a.Templates = eng
	a.Errors = errorsfeature.NewHandler(eng, a.Logger.Named("errors"))
	a.Metrics = metrics.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.Metrics.Middleware)
	r.Use(logRequests(a.Logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.Timeouts.Request))
	r.NotFound(a.Errors.NotFound)
	r.MethodNotAllowed(a.Errors.MethodNotAllowed)
	a.Router = r

	a.Logger.Debug("application shell constructed", a.Timeouts.Fields()...)
	return nil
}

// logRequests writes one line per request once the response is done.
func logRequests(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request protection                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// installCSRF puts the anti-forgery check in front of every route module.
// Rejected requests get a 400 page and never reach a handler.
func installCSRF(ctx context.Context, a *App) error {
	cfg := csrfguard.ConfigFromSettings(a.Settings)
	cfg.FailureHandler = http.HandlerFunc(a.Errors.CSRFFailure)
	guard, err := csrfguard.New(cfg, a.Logger.Named("csrf"))
	if err != nil {
		return err
	}
	a.protect = append(a.protect, guard)
	a.Logger.Info("csrf protection installed", zap.Bool("secure", cfg.Secure))
	return nil
}

// installSessions builds the session store for the configured backend and
// adds the middleware that loads each request's session. Backends without
// native expiry get a sweeper.
func installSessions(ctx context.Context, a *App) error {
	mgr, err := websession.NewManager(a.Settings, a.Redis, a.Logger.Named("sessions"))
	if err != nil {
		return err
	}
	a.Sessions = mgr
	a.protect = append(a.protect, mgr.LoadSession)

	if sw := mgr.Sweeper(); sw != nil {
		a.cleanup = workers.NewSessionCleanup(sw, a.Logger.Named("workers"), a.opts.sweepInterval)
		a.cleanup.Start()
	}
	a.Logger.Info("session middleware installed",
		zap.String("backend", string(mgr.Backend())),
		zap.Bool("sweeper", a.cleanup != nil))
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Routes                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// registerRoutes mounts the operational endpoints on the bare router and the
// route modules inside the CSRF and session chain.
func registerRoutes(ctx context.Context, a *App) error {
	healthHandler := healthfeature.NewHandler(a.DB, a.Redis, a.Logger.Named("health"))
	a.Router.Mount("/health", healthfeature.Routes(healthHandler))
	a.Router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	modules := append([]RouteModule{IndexModule}, a.opts.modules...)
	var regErr error
	a.Router.Group(func(r chi.Router) {
		r.Use(a.protect...)
		for _, m := range modules {
			if err := m.Register(r, a); err != nil {
				regErr = fmt.Errorf("route module %s: %w", m.Name, err)
				return
			}
			a.Logger.Debug("route module registered", zap.String("module", m.Name))
		}
	})
	return regErr
}
