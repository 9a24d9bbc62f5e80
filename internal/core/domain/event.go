// Package domain defines the core domain models for NFTMesh.
package domain

// TransferEvent records an ownership change. Mint sets From to the zero
// sentinel ("token created"); burn sets To to the zero sentinel ("token
// destroyed"). There is no separate creation or destruction event.
type TransferEvent struct {
	From Account `json:"from"`
	To   Account `json:"to"`
	ID   TokenID `json:"id"`
}

// ApprovalEvent records a single-token approval grant.
type ApprovalEvent struct {
	From Account `json:"from"`
	To   Account `json:"to"`
	ID   TokenID `json:"id"`
}

// ApprovalForAllEvent records an operator approval toggle.
type ApprovalForAllEvent struct {
	Owner    Account `json:"owner"`
	Operator Account `json:"operator"`
	Approved bool    `json:"approved"`
}

// Sink receives ledger events. Delivery is fire-and-forget: the ledger
// does not wait for acknowledgment and a sink must not call back into the
// ledger. Events within a single operation arrive in emission order.
//
// A successful operation emits exactly one event; a failed operation
// emits none.
type Sink interface {
	Transfer(e TransferEvent)
	Approval(e ApprovalEvent)
	ApprovalForAll(e ApprovalForAllEvent)
}

// NopSink is a Sink that discards all events.
type NopSink struct{}

// Transfer implements Sink.
func (NopSink) Transfer(TransferEvent) {}

// Approval implements Sink.
func (NopSink) Approval(ApprovalEvent) {}

// ApprovalForAll implements Sink.
func (NopSink) ApprovalForAll(ApprovalForAllEvent) {}
