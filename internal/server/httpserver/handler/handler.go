package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
	"github.com/nftmesh/nftmesh-go/internal/core/ledger"
	"github.com/nftmesh/nftmesh-go/internal/notify"
	"github.com/nftmesh/nftmesh-go/internal/storage"
	"github.com/nftmesh/nftmesh-go/internal/storage/snapshot"
	"github.com/nftmesh/nftmesh-go/internal/telemetry/logger"
	"github.com/nftmesh/nftmesh-go/internal/telemetry/metric"
)

// CallerHeader carries the account on whose behalf a mutation runs.
// Every mutating endpoint requires it.
const CallerHeader = "X-Nftmesh-Caller"

// Handler is the main HTTP handler that routes requests to the ledger.
type Handler struct {
	ledger    *ledger.Ledger
	store     *storage.Store
	snapshots *snapshot.Manager
	ring      *notify.Ring
	metrics   *metric.Metrics
	logger    *slog.Logger
	mux       *http.ServeMux
}

// Config wires the handler's collaborators. Snapshots and Ring are
// optional; the corresponding endpoints report unavailable when nil.
type Config struct {
	Ledger    *ledger.Ledger
	Store     *storage.Store
	Snapshots *snapshot.Manager
	Ring      *notify.Ring
	Metrics   *metric.Metrics
	Logger    *slog.Logger
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		ledger:    cfg.Ledger,
		store:     cfg.Store,
		snapshots: cfg.Snapshots,
		ring:      cfg.Ring,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		mux:       http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Query endpoints
	h.mux.HandleFunc("GET /v1/supply", h.handleSupply)
	h.mux.HandleFunc("GET /v1/tokens/{id}", h.handleGetToken)
	h.mux.HandleFunc("GET /v1/tokens/{id}/owner", h.handleGetOwner)
	h.mux.HandleFunc("GET /v1/tokens/{id}/approved", h.handleGetApproved)
	h.mux.HandleFunc("GET /v1/accounts/{account}/balance", h.handleGetBalance)
	h.mux.HandleFunc("GET /v1/accounts/{owner}/operators/{operator}", h.handleGetOperator)

	// Mutation endpoints
	h.mux.HandleFunc("POST /v1/tokens/mint", h.handleMint)
	h.mux.HandleFunc("POST /v1/tokens/{id}/burn", h.handleBurn)
	h.mux.HandleFunc("POST /v1/tokens/{id}/approve", h.handleApprove)
	h.mux.HandleFunc("POST /v1/tokens/{id}/transfer", h.handleTransfer)
	h.mux.HandleFunc("POST /v1/tokens/{id}/transfer-from", h.handleTransferFrom)
	h.mux.HandleFunc("POST /v1/operators", h.handleSetOperator)

	// Event feed
	h.mux.HandleFunc("GET /v1/events", h.handleEvents)

	// Admin endpoints
	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/backups/snapshots", h.handleCreateSnapshot)
	h.mux.HandleFunc("GET /admin/v1/backups/snapshots", h.handleListSnapshots)
	h.mux.HandleFunc("POST /admin/v1/backups/snapshots/prune", h.handlePruneSnapshots)
}

// writeJSON writes a JSON response with the standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with the standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewErrorResponse(requestID, code, message)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleLedgerError converts ledger errors to HTTP responses and records
// the operation outcome.
func (h *Handler) handleLedgerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.observe(op, err)

	if domain.IsDomainError(err, "") {
		code := domain.GetErrorCode(err)
		status := errorCodeToHTTPStatus(code)
		if status >= 500 {
			h.logger.Error("ledger operation failed",
				"request_id", logger.RequestIDFromContext(r.Context()),
				"op", op, "error", err)
		}
		h.writeError(w, r, status, code, err.Error())
		return
	}

	h.logger.Error("internal error", "op", op, "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "NM-SYS-5000", "internal server error")
}

// observe records the outcome of a ledger operation.
func (h *Handler) observe(op string, err error) {
	if h.metrics == nil {
		return
	}

	outcome := metric.OutcomeOK
	switch {
	case err == nil:
	case domain.IsCorruption(err):
		outcome = metric.OutcomeCorruption
	case strings.HasPrefix(domain.GetErrorCode(err), "NM-LEDG-4"):
		outcome = metric.OutcomeRejected
	default:
		outcome = metric.OutcomeError
	}
	h.metrics.ObserveOp(op, outcome)
}

// refreshTokenGauge updates the token count gauge after a mint or burn.
func (h *Handler) refreshTokenGauge(r *http.Request) {
	if h.metrics == nil {
		return
	}
	if n, err := h.ledger.TokenCount(r.Context()); err == nil {
		h.metrics.TokensTotal.Set(float64(n))
	}
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4030"), strings.HasSuffix(code, "-4031"),
		strings.HasSuffix(code, "-4032"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "NM-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// callerAccount extracts and validates the caller account from the
// request header.
func (h *Handler) callerAccount(w http.ResponseWriter, r *http.Request) (domain.Account, bool) {
	raw := r.Header.Get(CallerHeader)
	if raw == "" {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1002", CallerHeader+" header is required")
		return domain.ZeroAccount, false
	}

	caller, err := domain.ParseAccount(raw)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid caller account")
		return domain.ZeroAccount, false
	}
	return caller, true
}

// pathTokenID extracts and validates the {id} path segment.
func (h *Handler) pathTokenID(w http.ResponseWriter, r *http.Request) (domain.TokenID, bool) {
	id, err := domain.ParseTokenID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid token id")
		return 0, false
	}
	return id, true
}
