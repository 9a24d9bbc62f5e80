package handler

import (
	"net/http"
	"time"

	"github.com/nftmesh/nftmesh-go/internal/infra/buildinfo"
	"github.com/nftmesh/nftmesh-go/internal/storage/snapshot"
)

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.ledger.TokenCount(r.Context())
	if err != nil {
		h.handleLedgerError(w, r, "admin_status", err)
		return
	}

	status := map[string]any{
		"status":  "running",
		"version": buildinfo.Get().Version,
		"tokens":  tokens,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if stats, err := h.store.KV().Stats(r.Context()); err == nil {
		status["storage"] = map[string]uint64{
			"total_keys": stats.TotalKeys,
			"total_size": stats.TotalSize,
		}
	}

	if h.ring != nil {
		status["events"] = map[string]uint64{
			"last_seq": h.ring.LastSeq(),
			"buffered": uint64(h.ring.Len()),
		}
	}

	h.writeJSON(w, r, http.StatusOK, status)
}

// handleCreateSnapshot handles POST /admin/v1/backups/snapshots.
func (h *Handler) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "NM-SYS-5000", "snapshots not configured")
		return
	}

	state, err := h.ledger.Export(r.Context(), h.store)
	if err != nil {
		h.handleLedgerError(w, r, "snapshot_create", err)
		return
	}

	info, err := h.snapshots.Create(state)
	if err != nil {
		h.logger.Error("snapshot create failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "NM-SYS-5001", "snapshot create failed")
		return
	}
	h.observe("snapshot_create", nil)

	h.writeJSON(w, r, http.StatusCreated, snapshotToResponse(info))
}

// handleListSnapshots handles GET /admin/v1/backups/snapshots.
func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "NM-SYS-5000", "snapshots not configured")
		return
	}

	infos, err := h.snapshots.List()
	if err != nil {
		h.logger.Error("snapshot list failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "NM-SYS-5001", "snapshot list failed")
		return
	}

	out := make([]SnapshotResponse, len(infos))
	for i, info := range infos {
		out[i] = snapshotToResponse(info)
	}

	h.writeJSON(w, r, http.StatusOK, ListSnapshotsResponse{Snapshots: out})
}

// handlePruneSnapshots handles POST /admin/v1/backups/snapshots/prune.
func (h *Handler) handlePruneSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "NM-SYS-5000", "snapshots not configured")
		return
	}

	if err := h.snapshots.Prune(); err != nil {
		h.logger.Error("snapshot prune failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "NM-SYS-5001", "snapshot prune failed")
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func snapshotToResponse(info *snapshot.Info) SnapshotResponse {
	return SnapshotResponse{
		ID:         info.ID,
		TokenCount: info.TokenCount,
		CreatedAt:  info.CreatedAt,
		Size:       info.Size,
		Checksum:   info.Checksum,
	}
}
