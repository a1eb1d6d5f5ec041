// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Backend persists serialized session values by session id.
type Backend interface {
	Load(ctx context.Context, id string) (data []byte, found bool, err error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Store is a gorilla/sessions Store that keeps session values server-side in
// a Backend and puts only the session id in the cookie.
//
// With signing on, the id is HMAC-signed (securecookie) before it reaches the
// client and verified on every request. A cookie that fails verification, or
// names a session the backend no longer has, yields a fresh empty session and
// no error. Backend failures are returned as errors.
type Store struct {
	Options *gsessions.Options

	backend    Backend
	codecs     []securecookie.Codec // nil when unsigned
	serializer securecookie.GobEncoder
	lifetime   time.Duration
	log        *zap.Logger
}

// Config collects what NewStore needs.
type Config struct {
	Backend  Backend
	HashKey  []byte // HMAC key for signing ids; required when Sign is true
	Sign     bool
	Lifetime time.Duration
	Options  gsessions.Options
}

// NewStore builds a Store. Options.MaxAge defaults to Lifetime.
func NewStore(cfg Config, logger *zap.Logger) *Store {
	opts := cfg.Options
	if opts.MaxAge == 0 {
		opts.MaxAge = int(cfg.Lifetime / time.Second)
	}
	if opts.Path == "" {
		opts.Path = "/"
	}

	s := &Store{
		Options:  &opts,
		backend:  cfg.Backend,
		lifetime: cfg.Lifetime,
		log:      logger,
	}
	if cfg.Sign {
		s.codecs = securecookie.CodecsFromPairs(cfg.HashKey)
		for _, c := range s.codecs {
			if sc, ok := c.(*securecookie.SecureCookie); ok {
				sc.MaxAge(opts.MaxAge)
			}
		}
	}
	return s
}

// Signed reports whether session ids are signed.
func (s *Store) Signed() bool { return s.codecs != nil }

// Get returns the cached session for this request, or loads it.
func (s *Store) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie, or returns a new one.
func (s *Store) New(r *http.Request, name string) (*gsessions.Session, error) {
	session := gsessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	id, ok := s.decodeID(name, c.Value)
	if !ok {
		s.log.Debug("session cookie rejected; starting a new session",
			zap.String("cookie", name))
		return session, nil
	}

	data, found, err := s.backend.Load(r.Context(), id)
	if err != nil {
		return session, err
	}
	if !found {
		return session, nil
	}
	if err := s.serializer.Deserialize(data, &session.Values); err != nil {
		s.log.Warn("session data undecodable; starting a new session", zap.Error(err))
		session.Values = make(map[interface{}]interface{})
		return session, nil
	}

	session.ID = id
	session.IsNew = false
	return session, nil
}

// Save writes the session to the backend and sets the cookie. A negative
// MaxAge deletes the session and expires the cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *gsessions.Session) error {
	if session.Options.MaxAge < 0 {
		var err error
		if session.ID != "" {
			err = s.backend.Delete(r.Context(), session.ID)
		}
		http.SetCookie(w, gsessions.NewCookie(session.Name(), "", session.Options))
		return err
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	data, err := s.serializer.Serialize(session.Values)
	if err != nil {
		return err
	}

	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if ttl == 0 {
		ttl = s.lifetime
	}
	if err := s.backend.Save(r.Context(), session.ID, data, ttl); err != nil {
		return err
	}

	value, err := s.encodeID(session.Name(), session.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, gsessions.NewCookie(session.Name(), value, session.Options))
	return nil
}

func (s *Store) encodeID(name, id string) (string, error) {
	if s.codecs == nil {
		return id, nil
	}
	return securecookie.EncodeMulti(name, id, s.codecs...)
}

func (s *Store) decodeID(name, value string) (string, bool) {
	var id string
	if s.codecs == nil {
		id = value
	} else if err := securecookie.DecodeMulti(name, value, &id, s.codecs...); err != nil {
		return "", false
	}
	// Ids are always ours; anything else is a forged or stale cookie.
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
