// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/information/internal/app/system/templates"
	"go.uber.org/zap"
)

// pageData is the view model for error pages.
type pageData struct {
	Title   string
	Status  int
	Message string
	BackURL string
}

// Handler renders the app's error pages. No backends needed.
type Handler struct {
	tpl *templates.Engine
	log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(tpl *templates.Engine, logger *zap.Logger) *Handler {
	return &Handler{tpl: tpl, log: logger}
}

// NotFound is the router's 404 handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusNotFound, "The page you asked for does not exist.")
}

// MethodNotAllowed is the router's 405 handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusMethodNotAllowed, "That method is not supported here.")
}

// CSRFFailure answers a request whose CSRF token was missing or invalid.
// The route handler has not run.
func (h *Handler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusBadRequest, "The form has expired or is invalid. Reload the page and try again.")
}

// Unavailable answers when a backend needed for the request is down.
func (h *Handler) Unavailable(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusServiceUnavailable, "The service is temporarily unavailable.")
}
