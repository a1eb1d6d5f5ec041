// internal/app/features/index/routes.go
package index

import (
	"github.com/dalemusser/information/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the index subrouter, mounted at "/". When postLimit is not
// nil it throttles message submissions per client IP.
func Routes(h *Handler, postLimit *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeIndex)
	if postLimit != nil {
		r.With(postLimit.Middleware).Post("/", h.HandleMessage)
	} else {
		r.Post("/", h.HandleMessage)
	}
	return r
}
