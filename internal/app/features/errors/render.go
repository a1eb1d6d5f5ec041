// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Render writes an error page with the given status. JSON clients get a
// JSON body instead of HTML.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed",
			zap.Int("status", status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
		return
	}

	h.tpl.RenderStatus(w, r, status, "error_page", pageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: msg,
		BackURL: "/",
	})
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "application/json" || r.Header.Get("Content-Type") == "application/json"
}
