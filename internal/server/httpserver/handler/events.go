package handler

import (
	"net/http"
	"strconv"
)

// maxEventLimit bounds a single events page.
const maxEventLimit = 1000

// handleEvents handles GET /v1/events.
//
// Query parameters:
//
//	after - return events with sequence number greater than this (default 0)
//	limit - maximum number of events to return (default 100, max 1000)
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.ring == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "NM-SYS-5000", "event feed not enabled")
		return
	}

	query := r.URL.Query()

	var after uint64
	if s := query.Get("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid after parameter")
			return
		}
		after = v
	}

	limit := 100
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid limit parameter")
			return
		}
		limit = v
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events := h.ring.Since(after, limit)

	h.writeJSON(w, r, http.StatusOK, EventsResponse{
		Events:  events,
		LastSeq: h.ring.LastSeq(),
	})
}
