package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/information/internal/app/store/kvstore"
	"github.com/dalemusser/information/internal/app/store/sqldb"
	"github.com/dalemusser/information/internal/app/system/timeouts"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB  *sqlx.DB
	KV  *redis.Client
	Log *zap.Logger
}

// NewHandler constructs a health Handler with the relational handle, the
// key-value client, and a logger.
func NewHandler(db *sqlx.DB, kv *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		KV:  kv,
		Log: logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "cache":"connected" }
//
// If either backend fails: 503 and
//
//	{ "status":"error", "database":"disconnected", "cache":"connected", "message":"Database unavailable" }
//
// Driver error text is logged, not returned, since it can carry hostnames.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Cache:    "connected",
	}

	if err := sqldb.Ping(ctx, h.DB); err != nil {
		h.Log.Error("health-check: database ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}

	if err := kvstore.Ping(ctx, h.KV); err != nil {
		h.Log.Error("health-check: key-value ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Cache = "disconnected"
		if resp.Message == "" {
			resp.Message = "Cache unavailable"
		} else {
			resp.Message = "Database and cache unavailable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
