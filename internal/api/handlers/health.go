package handlers

import (
	"database/sql"
	"net/http"

	"github.com/mehul-pande/accountgate/internal/pkg/utils"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check responds 200 when the service and its database are reachable.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	utils.WriteJSON(w, code, map[string]string{"status": status})
}
