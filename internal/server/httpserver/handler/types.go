package handler

import (
	"time"

	"github.com/nftmesh/nftmesh-go/internal/notify"
)

// Response is the standard API response envelope. All JSON responses use
// this format except /metrics, which uses the Prometheus exposition format.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// TokenResponse describes one token's ownership row.
type TokenResponse struct {
	ID       uint32 `json:"id"`
	Owner    string `json:"owner"`
	Approved string `json:"approved,omitempty"`
}

// OwnerResponse is the response body for GET /v1/tokens/{id}/owner.
type OwnerResponse struct {
	ID    uint32 `json:"id"`
	Owner string `json:"owner"`
}

// ApprovedResponse is the response body for GET /v1/tokens/{id}/approved.
type ApprovedResponse struct {
	ID       uint32 `json:"id"`
	Approved string `json:"approved,omitempty"`
}

// BalanceResponse is the response body for GET /v1/accounts/{account}/balance.
type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint32 `json:"balance"`
}

// OperatorResponse is the response body for operator approval queries
// and mutations.
type OperatorResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// SupplyResponse is the response body for GET /v1/supply.
type SupplyResponse struct {
	Tokens uint64 `json:"tokens"`
}

// MintRequest is the request body for POST /v1/tokens/mint.
type MintRequest struct {
	TokenID uint32 `json:"token_id"`
}

// ApproveRequest is the request body for POST /v1/tokens/{id}/approve.
// An empty To clears the outstanding approval.
type ApproveRequest struct {
	To string `json:"to"`
}

// TransferRequest is the request body for POST /v1/tokens/{id}/transfer.
type TransferRequest struct {
	To string `json:"to"`
}

// TransferFromRequest is the request body for POST /v1/tokens/{id}/transfer-from.
type TransferFromRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SetOperatorRequest is the request body for POST /v1/operators.
type SetOperatorRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// EventsResponse is the response body for GET /v1/events.
type EventsResponse struct {
	Events  []notify.Event `json:"events"`
	LastSeq uint64         `json:"last_seq"`
}

// SnapshotResponse describes one snapshot file.
type SnapshotResponse struct {
	ID         string `json:"id"`
	TokenCount uint64 `json:"token_count"`
	CreatedAt  int64  `json:"created_at"`
	Size       int64  `json:"size"`
	Checksum   string `json:"checksum"`
}

// ListSnapshotsResponse is the response body for GET /admin/v1/backups/snapshots.
type ListSnapshotsResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
}
