package websession_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/information/internal/app/settings"
	"github.com/dalemusser/information/internal/app/system/websession"
	"github.com/dalemusser/information/internal/testutil"
	"go.uber.org/zap"
)

// counter increments "n" in the session and saves it.
func counter(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := websession.Current(r)
		if !ok {
			t.Error("no session in context")
			return
		}
		n, _ := sess.Values["n"].(int)
		sess.Values["n"] = n + 1
		if err := websession.Save(w, r); err != nil {
			t.Errorf("Save: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, cookies []*http.Cookie) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req := testutil.WithCookies(testutil.NewRequest("GET", "/"), cookies)
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewManager_Backends(t *testing.T) {
	mr, client := testutil.SetupRedis(t)

	for _, backend := range []settings.SessionBackend{
		settings.SessionRedis, settings.SessionMemory, settings.SessionFilesystem,
	} {
		t.Run(string(backend), func(t *testing.T) {
			s := testutil.TestSettings(t, mr, settings.WithSessionBackend(backend))
			m, err := websession.NewManager(s, client, zap.NewNop())
			if err != nil {
				t.Fatalf("NewManager: %v", err)
			}
			if m.Backend() != backend {
				t.Errorf("Backend: got %q", m.Backend())
			}
			if (m.Sweeper() == nil) != (backend == settings.SessionRedis) {
				t.Errorf("Sweeper presence wrong for %s", backend)
			}

			h := m.LoadSession(counter(t))
			first := hit(h, nil)
			first.AssertStatus(t, http.StatusOK)
			c := first.Cookie("session")
			if c == nil {
				t.Fatal("no session cookie")
			}
			if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
				t.Errorf("cookie attributes: %+v", c)
			}

			second := hit(h, []*http.Cookie{c})
			second.AssertStatus(t, http.StatusOK)
		})
	}
}

func TestNewManager_RedisNeedsClient(t *testing.T) {
	s := testutil.TestSettings(t, nil)
	if _, err := websession.NewManager(s, nil, zap.NewNop()); err == nil {
		t.Error("expected error without a key-value client")
	}
}

func TestNewManager_NeedsSecret(t *testing.T) {
	s := settings.Base()
	if _, err := websession.NewManager(s, nil, zap.NewNop()); err == nil {
		t.Error("expected error without a secret key")
	}
}

func TestLoadSession_PersistsAcrossRequests(t *testing.T) {
	mr, client := testutil.SetupRedis(t)
	s := testutil.TestSettings(t, mr)
	m, err := websession.NewManager(s, client, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	var seen int
	h := m.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := websession.Current(r)
		n, _ := sess.Values["n"].(int)
		seen = n + 1
		sess.Values["n"] = seen
		_ = websession.Save(w, r)
	}))

	c := hit(h, nil).Cookie("session")
	c2 := hit(h, []*http.Cookie{c}).Cookie("session")
	hit(h, []*http.Cookie{c2})
	if seen != 3 {
		t.Errorf("counter: got %d, want 3", seen)
	}
	if len(mr.Keys()) != 1 {
		t.Errorf("expected one session in redis, got %v", mr.Keys())
	}
}

func TestLoadSession_TamperedCookieIsNewSession(t *testing.T) {
	for _, backend := range []settings.SessionBackend{settings.SessionRedis, settings.SessionFilesystem} {
		t.Run(string(backend), func(t *testing.T) {
			mr, client := testutil.SetupRedis(t)
			s := testutil.TestSettings(t, mr, settings.WithSessionBackend(backend))
			m, err := websession.NewManager(s, client, zap.NewNop())
			if err != nil {
				t.Fatalf("NewManager: %v", err)
			}

			var isNew bool
			var values int
			h := m.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sess, _ := websession.Current(r)
				isNew = sess.IsNew
				values = len(sess.Values)
				sess.Values["user"] = "alice"
				_ = websession.Save(w, r)
			}))

			c := hit(h, nil).Cookie("session")
			b := []byte(c.Value)
			b[len(b)/2] ^= 0x01

			rec := hit(h, []*http.Cookie{{Name: "session", Value: string(b)}})
			rec.AssertStatus(t, http.StatusOK)
			if !isNew || values != 0 {
				t.Errorf("tampered cookie: IsNew=%v values=%d", isNew, values)
			}
			if rec.Cookie("session") == nil {
				t.Error("expected a replacement session cookie")
			}
		})
	}
}

func TestLoadSession_CacheDownIs503(t *testing.T) {
	mr, client := testutil.SetupRedis(t)
	s := testutil.TestSettings(t, mr)
	m, err := websession.NewManager(s, client, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	called := false
	h := m.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = websession.Save(w, r)
	}))
	c := hit(h, nil).Cookie("session")

	mr.Close()
	called = false

	rec := hit(h, []*http.Cookie{c})
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	if called {
		t.Error("handler should not run when the session store is down")
	}
}

func TestSave_WithoutMiddleware(t *testing.T) {
	rec := testutil.NewRecorder()
	if err := websession.Save(rec, testutil.NewRequest("GET", "/")); err == nil {
		t.Error("expected error without a loaded session")
	}
}
