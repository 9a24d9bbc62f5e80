package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The server is ready once the storage
// engine answers queries.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ledger.TokenCount(r.Context()); err != nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "NM-SYS-5001", "storage not ready")
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
