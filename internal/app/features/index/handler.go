package index

import (
	"net/http"
	"unicode/utf8"

	errorsfeature "github.com/dalemusser/information/internal/app/features/errors"
	"github.com/dalemusser/information/internal/app/system/csrfguard"
	"github.com/dalemusser/information/internal/app/system/htmlsanitize"
	"github.com/dalemusser/information/internal/app/system/templates"
	"github.com/dalemusser/information/internal/app/system/websession"
	"go.uber.org/zap"
)

// Session keys written by this module.
const (
	visitsKey  = "visits"
	messageKey = "message"
)

// MaxMessageLen is the longest message accepted, in characters.
const MaxMessageLen = 280

// Handler serves the landing page.
type Handler struct {
	tpl  *templates.Engine
	errs *errorsfeature.Handler
	Log  *zap.Logger
}

func NewHandler(tpl *templates.Engine, errs *errorsfeature.Handler, logger *zap.Logger) *Handler {
	return &Handler{
		tpl:  tpl,
		errs: errs,
		Log:  logger,
	}
}

type pageData struct {
	Title      string
	Visits     int
	Message    string
	CSRFField  string
	CSRFToken  string
	MaxMessage int
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeIndex counts the visit in the session and renders the page with a
// fresh CSRF token in both the form and the X-CSRFToken header.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := websession.Current(r)
	if !ok {
		h.Log.Error("index: no session in context")
		h.errs.Unavailable(w, r)
		return
	}

	visits, _ := sess.Values[visitsKey].(int)
	visits++
	sess.Values[visitsKey] = visits
	if err := websession.Save(w, r); err != nil {
		h.Log.Error("index: save session", zap.Error(err))
		h.errs.Unavailable(w, r)
		return
	}

	msg, _ := sess.Values[messageKey].(string)
	token := csrfguard.Token(r)
	w.Header().Set(csrfguard.HeaderName, token)

	h.tpl.Render(w, r, "index", pageData{
		Title:      "Information",
		Visits:     visits,
		Message:    msg,
		CSRFField:  csrfguard.FieldName,
		CSRFToken:  token,
		MaxMessage: MaxMessageLen,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST / – store a message                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleMessage stores the submitted message, stripped of markup, in the
// session and redirects back to the page. The CSRF guard has already checked
// the token.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errs.Render(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	msg := htmlsanitize.PlainText(r.PostFormValue("message"))
	if msg == "" {
		h.errs.Render(w, r, http.StatusBadRequest, "A message is required.")
		return
	}
	if utf8.RuneCountInString(msg) > MaxMessageLen {
		h.errs.Render(w, r, http.StatusBadRequest, "The message is too long.")
		return
	}

	sess, ok := websession.Current(r)
	if !ok {
		h.Log.Error("index: no session in context")
		h.errs.Unavailable(w, r)
		return
	}
	sess.Values[messageKey] = msg
	if err := websession.Save(w, r); err != nil {
		h.Log.Error("index: save session", zap.Error(err))
		h.errs.Unavailable(w, r)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
