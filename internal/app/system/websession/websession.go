// internal/app/system/websession/websession.go
package websession

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/information/internal/app/settings"
	"github.com/dalemusser/information/internal/app/store/kvstore"
	"github.com/dalemusser/information/internal/app/store/sessions"
	"github.com/dalemusser/information/internal/app/system/keys"
	gsessions "github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sweeper removes expired sessions from backends that do not expire them
// on their own.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Manager owns the session store selected by settings and the middleware
// that loads the session for each request.
type Manager struct {
	store   gsessions.Store
	opts    *gsessions.Options
	name    string
	backend settings.SessionBackend
	sweeper Sweeper
	log     *zap.Logger
}

// NewManager builds the store for s.SessionBackend. The key-value backend
// uses kv directly, so sessions and the rest of the app share one client.
func NewManager(s settings.Settings, kv *redis.Client, logger *zap.Logger) (*Manager, error) {
	hashKey, err := keys.SessionHashKey(s.SecretKey.Bytes())
	if err != nil {
		return nil, fmt.Errorf("session signing key: %w", err)
	}

	// Lax keeps the cookie off cross-site POSTs; CSRF tokens cover the rest.
	opts := gsessions.Options{
		Path:     "/",
		MaxAge:   int(s.SessionLifetime / time.Second),
		Secure:   s.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	m := &Manager{
		name:    s.SessionCookieName,
		backend: s.SessionBackend,
		log:     logger,
	}

	switch s.SessionBackend {
	case settings.SessionRedis:
		if kv == nil {
			return nil, errors.New("redis session backend needs a key-value client")
		}
		st := sessions.NewStore(sessions.Config{
			Backend:  sessions.NewRedisBackend(kv),
			HashKey:  hashKey,
			Sign:     s.SessionUseSigner,
			Lifetime: s.SessionLifetime,
			Options:  opts,
		}, logger)
		m.store, m.opts = st, st.Options

	case settings.SessionMemory:
		mem := sessions.NewMemoryBackend()
		st := sessions.NewStore(sessions.Config{
			Backend:  mem,
			HashKey:  hashKey,
			Sign:     s.SessionUseSigner,
			Lifetime: s.SessionLifetime,
			Options:  opts,
		}, logger)
		m.store, m.opts, m.sweeper = st, st.Options, mem

	case settings.SessionFilesystem:
		fs, err := sessions.NewFilesystemStore(s.SessionDir, hashKey, s.SessionLifetime, opts)
		if err != nil {
			return nil, err
		}
		m.store, m.opts = fs, fs.Options
		m.sweeper = sessions.NewDirSweeper(s.SessionDir, s.SessionLifetime)

	default:
		return nil, fmt.Errorf("unknown session backend %q", s.SessionBackend)
	}

	logger.Info("session store initialized",
		zap.String("backend", string(s.SessionBackend)),
		zap.Bool("signed", s.SessionUseSigner || s.SessionBackend == settings.SessionFilesystem),
		zap.Bool("secure", s.SecureCookies),
		zap.Duration("lifetime", s.SessionLifetime))

	return m, nil
}

// Backend returns the configured backend kind.
func (m *Manager) Backend() settings.SessionBackend { return m.backend }

// Sweeper returns the backend's sweeper, or nil if the backend expires
// sessions itself.
func (m *Manager) Sweeper() Sweeper { return m.sweeper }

// GetSession returns the request's session. A cookie that cannot be decoded
// or verified yields a new empty session and no error; only a key-value store
// failure is returned.
func (m *Manager) GetSession(r *http.Request) (*gsessions.Session, error) {
	sess, err := m.store.Get(r, m.name)
	if err == nil {
		return sess, nil
	}
	var cerr *kvstore.CacheConnectionError
	if errors.As(err, &cerr) {
		return sess, err
	}

	m.log.Debug("session cookie invalid; using a new session", zap.Error(err))
	if sess == nil || !sess.IsNew {
		sess = gsessions.NewSession(m.store, m.name)
		opts := *m.opts
		sess.Options = &opts
		sess.IsNew = true
	}
	return sess, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware & request helpers                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const sessionKey ctxKey = "session"

// LoadSession puts the request's session into the context. If the session
// backend is unreachable the request fails with 503; other requests and the
// shared client are unaffected.
func (m *Manager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.GetSession(r)
		if err != nil {
			m.log.Error("session backend unavailable",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Current returns the session loaded by LoadSession.
func Current(r *http.Request) (*gsessions.Session, bool) {
	sess, ok := r.Context().Value(sessionKey).(*gsessions.Session)
	return sess, ok
}

// Save persists the current session and writes its cookie. It must be called
// before the response body is written.
func Save(w http.ResponseWriter, r *http.Request) error {
	sess, ok := Current(r)
	if !ok {
		return errors.New("no session in request context")
	}
	return sess.Save(r, w)
}
