// Package csrfguard wraps gorilla/csrf with the app's settings.
//
// Every request with an unsafe method (anything but GET, HEAD, OPTIONS,
// TRACE) must carry a token matching the signed CSRF cookie, either in the
// csrf_token form field or the X-CSRFToken header. Requests that fail are
// answered with 400 before the route handler runs.
package csrfguard

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/information/internal/app/settings"
	"github.com/dalemusser/information/internal/app/system/keys"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const (
	FieldName  = "csrf_token"
	HeaderName = "X-CSRFToken"
	CookieName = "csrf"
)

// Config configures the guard.
type Config struct {
	Secret         []byte
	Secure         bool
	MaxAge         int
	TrustedOrigins []string
	// FailureHandler renders the rejection. It should write a 4xx status.
	// Defaults to a plain 400.
	FailureHandler http.Handler
}

// ConfigFromSettings builds a Config from s.
func ConfigFromSettings(s settings.Settings) Config {
	return Config{
		Secret: s.SecretKey.Bytes(),
		Secure: s.SecureCookies,
		MaxAge: int(s.SessionLifetime.Seconds()),
	}
}

// New returns the CSRF middleware.
func New(cfg Config, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	key, err := keys.CSRFKey(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("csrf key: %w", err)
	}

	failure := cfg.FailureHandler
	if failure == nil {
		failure = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "The CSRF token is missing or invalid.", http.StatusBadRequest)
		})
	}
	onFailure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("csrf validation failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.NamedError("reason", csrf.FailureReason(r)))
		failure.ServeHTTP(w, r)
	})

	opts := []csrf.Option{
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.CookieName(CookieName),
		csrf.FieldName(FieldName),
		csrf.RequestHeader(HeaderName),
		csrf.ErrorHandler(onFailure),
	}
	if cfg.MaxAge > 0 {
		opts = append(opts, csrf.MaxAge(cfg.MaxAge))
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	protect := csrf.Protect(key, opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// gorilla/csrf assumes HTTPS and enforces a Referer check unless
			// told the request arrived over plain HTTP.
			if !isHTTPS(r) {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}, nil
}

// Token returns the masked token for the current request, for templates and
// response headers.
func Token(r *http.Request) string { return csrf.Token(r) }

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
