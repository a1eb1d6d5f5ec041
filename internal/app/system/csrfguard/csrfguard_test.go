package csrfguard

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const secret = "test-secret-key-for-testing-only-0123456"

// newGuarded wraps a handler that records whether it ran and exposes the
// token on GET.
func newGuarded(t *testing.T) (http.Handler, *int) {
	t.Helper()
	mw, err := New(Config{Secret: []byte(secret)}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	calls := 0
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			w.Header().Set(HeaderName, Token(r))
			return
		}
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &calls
}

// fetchToken performs a GET and returns the token and cookies.
func fetchToken(t *testing.T, h http.Handler) (string, []*http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	token := rec.Header().Get(HeaderName)
	if token == "" {
		t.Fatal("no token issued")
	}
	return token, rec.Result().Cookies()
}

func post(h http.Handler, form url.Values, header string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if header != "" {
		req.Header.Set(HeaderName, header)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuard_SafeMethodsPass(t *testing.T) {
	h, _ := newGuarded(t)
	for _, m := range []string{"GET", "HEAD", "OPTIONS"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(m, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", m, rec.Code)
		}
	}
}

func TestGuard_MissingTokenRejectedBeforeHandler(t *testing.T) {
	h, calls := newGuarded(t)
	_, cookies := fetchToken(t, h)

	rec := post(h, url.Values{"message": {"hi"}}, "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if *calls != 0 {
		t.Errorf("handler ran %d times", *calls)
	}
}

func TestGuard_NoCookieRejected(t *testing.T) {
	h, calls := newGuarded(t)
	token, _ := fetchToken(t, h)

	rec := post(h, url.Values{FieldName: {token}}, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if *calls != 0 {
		t.Error("handler ran without a csrf cookie")
	}
}

func TestGuard_WrongTokenRejected(t *testing.T) {
	h, calls := newGuarded(t)
	_, cookies := fetchToken(t, h)
	otherToken, _ := fetchToken(t, h)

	rec := post(h, url.Values{FieldName: {otherToken}}, "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if *calls != 0 {
		t.Error("handler ran with another client's token")
	}
}

func TestGuard_ValidFormTokenPasses(t *testing.T) {
	h, calls := newGuarded(t)
	token, cookies := fetchToken(t, h)

	rec := post(h, url.Values{FieldName: {token}}, "", cookies)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rec.Code)
	}
	if *calls != 1 {
		t.Errorf("handler calls: got %d, want 1", *calls)
	}
}

func TestGuard_ValidHeaderTokenPasses(t *testing.T) {
	h, calls := newGuarded(t)
	token, cookies := fetchToken(t, h)

	rec := post(h, url.Values{}, token, cookies)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rec.Code)
	}
	if *calls != 1 {
		t.Errorf("handler calls: got %d, want 1", *calls)
	}
}

func TestGuard_CustomFailureHandler(t *testing.T) {
	mw, err := New(Config{
		Secret: []byte(secret),
		FailureHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d, want 418", rec.Code)
	}
}

func TestNew_EmptySecret(t *testing.T) {
	if _, err := New(Config{}, zap.NewNop()); err == nil {
		t.Error("expected error for empty secret")
	}
}
