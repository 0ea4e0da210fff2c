package handler

import (
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"socialwave/internal/database"
	"socialwave/internal/httputil"
)

// HealthHandler reports whether the server can reach its stores.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /api/health
// Pings the database on every call instead of reporting a stale flag.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		log.Printf("[HealthHandler] database unreachable: %v", err)
		httputil.WriteInternalError(w, "Database unreachable")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
