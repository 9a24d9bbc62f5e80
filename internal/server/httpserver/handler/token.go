package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
)

// ============================================================================
// Queries
// ============================================================================

// handleSupply handles GET /v1/supply.
func (h *Handler) handleSupply(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.TokenCount(r.Context())
	if err != nil {
		h.handleLedgerError(w, r, "supply", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, SupplyResponse{Tokens: n})
}

// handleGetToken handles GET /v1/tokens/{id}.
func (h *Handler) handleGetToken(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	owner, exists, err := h.ledger.OwnerOf(r.Context(), id)
	if err != nil {
		h.handleLedgerError(w, r, "owner_of", err)
		return
	}
	if !exists {
		h.writeError(w, r, http.StatusNotFound, "NM-LEDG-4040", "token not found")
		return
	}

	approved, _, err := h.ledger.GetApproved(r.Context(), id)
	if err != nil {
		h.handleLedgerError(w, r, "get_approved", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, TokenResponse{
		ID:       uint32(id),
		Owner:    string(owner),
		Approved: string(approved),
	})
}

// handleGetOwner handles GET /v1/tokens/{id}/owner.
func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	owner, exists, err := h.ledger.OwnerOf(r.Context(), id)
	if err != nil {
		h.handleLedgerError(w, r, "owner_of", err)
		return
	}
	if !exists {
		h.writeError(w, r, http.StatusNotFound, "NM-LEDG-4040", "token not found")
		return
	}

	h.writeJSON(w, r, http.StatusOK, OwnerResponse{ID: uint32(id), Owner: string(owner)})
}

// handleGetApproved handles GET /v1/tokens/{id}/approved.
//
// A token with no outstanding approval reports an empty approved field;
// querying a nonexistent token is not an error, matching the ledger's
// absence-is-empty read semantics.
func (h *Handler) handleGetApproved(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	approved, _, err := h.ledger.GetApproved(r.Context(), id)
	if err != nil {
		h.handleLedgerError(w, r, "get_approved", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ApprovedResponse{ID: uint32(id), Approved: string(approved)})
}

// handleGetBalance handles GET /v1/accounts/{account}/balance.
func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(r.PathValue("account"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid account")
		return
	}

	balance, err := h.ledger.BalanceOf(r.Context(), account)
	if err != nil {
		h.handleLedgerError(w, r, "balance_of", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, BalanceResponse{
		Account: string(account),
		Balance: balance,
	})
}

// handleGetOperator handles GET /v1/accounts/{owner}/operators/{operator}.
func (h *Handler) handleGetOperator(w http.ResponseWriter, r *http.Request) {
	owner, err := domain.ParseAccount(r.PathValue("owner"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid owner account")
		return
	}
	operator, err := domain.ParseAccount(r.PathValue("operator"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid operator account")
		return
	}

	approved, err := h.ledger.IsApprovedForAll(r.Context(), owner, operator)
	if err != nil {
		h.handleLedgerError(w, r, "is_approved_for_all", err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, OperatorResponse{
		Owner:    string(owner),
		Operator: string(operator),
		Approved: approved,
	})
}

// ============================================================================
// Mutations
// ============================================================================

// handleMint handles POST /v1/tokens/mint.
func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAccount(w, r)
	if !ok {
		return
	}

	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-SYS-4000", "invalid request body")
		return
	}

	id := domain.TokenID(req.TokenID)
	if err := h.ledger.Mint(r.Context(), caller, id); err != nil {
		h.handleLedgerError(w, r, "mint", err)
		return
	}
	h.observe("mint", nil)
	h.refreshTokenGauge(r)

	h.writeJSON(w, r, http.StatusCreated, TokenResponse{
		ID:    req.TokenID,
		Owner: string(caller),
	})
}

// handleBurn handles POST /v1/tokens/{id}/burn.
func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Burn(r.Context(), caller, id); err != nil {
		h.handleLedgerError(w, r, "burn", err)
		return
	}
	h.observe("burn", nil)
	h.refreshTokenGauge(r)

	h.writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handleApprove handles POST /v1/tokens/{id}/approve.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-SYS-4000", "invalid request body")
		return
	}

	// An empty to clears the outstanding approval.
	if req.To == "" {
		if err := h.ledger.ClearApproval(r.Context(), caller, id); err != nil {
			h.handleLedgerError(w, r, "clear_approval", err)
			return
		}
		h.observe("clear_approval", nil)

		h.writeJSON(w, r, http.StatusOK, ApprovedResponse{ID: uint32(id)})
		return
	}

	to, err := domain.ParseAccount(req.To)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid to account")
		return
	}

	if err := h.ledger.Approve(r.Context(), caller, to, id); err != nil {
		h.handleLedgerError(w, r, "approve", err)
		return
	}
	h.observe("approve", nil)

	h.writeJSON(w, r, http.StatusOK, ApprovedResponse{ID: uint32(id), Approved: string(to)})
}

// handleTransfer handles POST /v1/tokens/{id}/transfer.
func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-SYS-4000", "invalid request body")
		return
	}
	to, err := domain.ParseAccount(req.To)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid to account")
		return
	}

	if err := h.ledger.Transfer(r.Context(), caller, to, id); err != nil {
		h.handleLedgerError(w, r, "transfer", err)
		return
	}
	h.observe("transfer", nil)

	h.writeJSON(w, r, http.StatusOK, TokenResponse{ID: uint32(id), Owner: string(to)})
}

// handleTransferFrom handles POST /v1/tokens/{id}/transfer-from.
func (h *Handler) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAccount(w, r)
	if !ok {
		return
	}
	id, ok := h.pathTokenID(w, r)
	if !ok {
		return
	}

	var req TransferFromRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-SYS-4000", "invalid request body")
		return
	}
	from, err := domain.ParseAccount(req.From)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid from account")
		return
	}
	to, err := domain.ParseAccount(req.To)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid to account")
		return
	}

	if err := h.ledger.TransferFrom(r.Context(), caller, from, to, id); err != nil {
		h.handleLedgerError(w, r, "transfer_from", err)
		return
	}
	h.observe("transfer_from", nil)

	h.writeJSON(w, r, http.StatusOK, TokenResponse{ID: uint32(id), Owner: string(to)})
}

// handleSetOperator handles POST /v1/operators.
func (h *Handler) handleSetOperator(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAccount(w, r)
	if !ok {
		return
	}

	var req SetOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-SYS-4000", "invalid request body")
		return
	}
	operator, err := domain.ParseAccount(req.Operator)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "NM-ARG-1001", "invalid operator account")
		return
	}

	if err := h.ledger.SetApprovalForAll(r.Context(), caller, operator, req.Approved); err != nil {
		h.handleLedgerError(w, r, "set_approval_for_all", err)
		return
	}
	h.observe("set_approval_for_all", nil)

	h.writeJSON(w, r, http.StatusOK, OperatorResponse{
		Owner:    string(caller),
		Operator: string(operator),
		Approved: req.Approved,
	})
}
