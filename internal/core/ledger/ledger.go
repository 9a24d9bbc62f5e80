// Package ledger implements the NFTMesh ownership ledger.
package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
	"github.com/nftmesh/nftmesh-go/internal/storage/snapshot"
)

// Ledger is the token ownership state machine.
//
// Every mutating operation takes the caller account explicitly; the
// ledger never authenticates callers, it trusts the identity supplied by
// the caller context. Operations validate before they mutate: a failed
// call leaves state unchanged and emits no event. The only exceptions are
// the defensive re-checks inside the transfer path, which re-verify what
// earlier steps already guarantee and surface corruption (5xxx) errors if
// the guarantee ever breaks.
type Ledger struct {
	mu     sync.Mutex
	store  Store
	sink   domain.Sink
	logger *slog.Logger
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithSink sets the event notification sink.
func WithSink(sink domain.Sink) Option {
	return func(l *Ledger) {
		l.sink = sink
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a Ledger over the given store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		sink:   domain.NopSink{},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// ============================================================================
// Queries
// ============================================================================

// BalanceOf returns the number of tokens owned by owner, zero if the
// account has never held a token.
func (l *Ledger) BalanceOf(ctx context.Context, owner domain.Account) (uint32, error) {
	count, _, err := l.store.Balance(ctx, owner)
	if err != nil {
		return 0, domain.ErrStorageError.WithCause(err)
	}
	return count, nil
}

// OwnerOf returns the current owner of id, with ok=false if the token
// does not exist.
func (l *Ledger) OwnerOf(ctx context.Context, id domain.TokenID) (domain.Account, bool, error) {
	owner, ok, err := l.store.Owner(ctx, id)
	if err != nil {
		return domain.ZeroAccount, false, domain.ErrStorageError.WithCause(err)
	}
	return owner, ok, nil
}

// GetApproved returns the approved spender for id, with ok=false if no
// single-token approval is outstanding.
func (l *Ledger) GetApproved(ctx context.Context, id domain.TokenID) (domain.Account, bool, error) {
	spender, ok, err := l.store.Approved(ctx, id)
	if err != nil {
		return domain.ZeroAccount, false, domain.ErrStorageError.WithCause(err)
	}
	return spender, ok, nil
}

// IsApprovedForAll reports whether operator may transfer any token owned
// by owner.
func (l *Ledger) IsApprovedForAll(ctx context.Context, owner, operator domain.Account) (bool, error) {
	approved, err := l.store.Operator(ctx, domain.OperatorPair{Owner: owner, Operator: operator})
	if err != nil {
		return false, domain.ErrStorageError.WithCause(err)
	}
	return approved, nil
}

// TokenCount returns the number of existing tokens.
func (l *Ledger) TokenCount(ctx context.Context) (uint64, error) {
	n, err := l.store.CountTokens(ctx)
	if err != nil {
		return 0, domain.ErrStorageError.WithCause(err)
	}
	return n, nil
}

// Exporter captures the full ledger state in one pass. The storage layer
// implements it with prefix scans that are only consistent while the
// ledger is quiesced.
type Exporter interface {
	Export(ctx context.Context) (*snapshot.State, error)
}

// Export produces a point-in-time copy of the ledger state. The
// operation lock is held for the duration of the call, so no mutation
// can interleave with the exporter's scans. All snapshot writers must go
// through here rather than calling the exporter directly.
func (l *Ledger) Export(ctx context.Context, exp Exporter) (*snapshot.State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return exp.Export(ctx)
}

// ============================================================================
// Mutations
// ============================================================================

// Mint creates token id and makes caller its owner.
//
// Fails with ErrTokenExists if the token already exists and ErrNotAllowed
// if caller is the zero sentinel. Emits a Transfer event from the zero
// sentinel; mint doubles as the "token created" notification.
func (l *Ledger) Mint(ctx context.Context, caller domain.Account, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.IsZero() {
		return domain.ErrNotAllowed.WithDetails("zero account cannot mint")
	}

	if err := l.addTokenTo(ctx, caller, id); err != nil {
		return err
	}

	l.logger.Debug("token minted", "id", id, "owner", caller.String())
	l.sink.Transfer(domain.TransferEvent{From: domain.ZeroAccount, To: caller, ID: id})
	return nil
}

// Burn destroys token id. Only the current owner may burn.
//
// Fails with ErrTokenNotFound if the token does not exist and ErrNotOwner
// if caller is not the recorded owner. Any outstanding single-token
// approval is cleared with the token. Emits a Transfer event to the zero
// sentinel; burn doubles as the "token destroyed" notification.
func (l *Ledger) Burn(ctx context.Context, caller domain.Account, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Step 1: Existence and ownership check
	owner, ok, err := l.store.Owner(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if !ok {
		return domain.ErrTokenNotFound
	}
	if owner != caller {
		return domain.ErrNotOwner
	}

	// Step 2: Decrement the owner's balance
	if err := l.decreaseCounterOf(ctx, caller); err != nil {
		return err
	}

	// Step 3: Remove the ownership entry
	if _, err := l.store.DeleteOwner(ctx, id); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	// Step 4: Clear any stale single-token approval
	if err := l.clearApproval(ctx, id); err != nil {
		return err
	}

	l.logger.Debug("token burned", "id", id, "owner", caller.String())
	l.sink.Transfer(domain.TransferEvent{From: caller, To: domain.ZeroAccount, ID: id})
	return nil
}

// Approve grants to the right to transfer token id on the owner's behalf.
//
// The caller must be the current owner or an approved operator for the
// owner; otherwise ErrNotAllowed. A token that does not exist has no
// owner, so no caller can be authorized for it. The zero sentinel cannot
// be an approval target. Approve does not overwrite: an outstanding
// approval must be cleared (implicitly by transfer, or explicitly by
// ClearApproval) before a new one can be granted, otherwise
// ErrCannotInsert.
func (l *Ledger) Approve(ctx context.Context, caller, to domain.Account, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Step 1: Authorization: owner or operator of the owner
	if err := l.ownerOrOperator(ctx, caller, id); err != nil {
		return err
	}

	// Step 2: Target must be a real account
	if to.IsZero() {
		return domain.ErrNotAllowed.WithDetails("zero account cannot be approved")
	}

	// Step 3: Insert; existing approval is not overwritten
	if _, occupied, err := l.store.Approved(ctx, id); err != nil {
		return domain.ErrStorageError.WithCause(err)
	} else if occupied {
		return domain.ErrCannotInsert.WithDetails("approval already outstanding for token " + id.String())
	}
	if err := l.store.SetApproved(ctx, id, to); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	l.sink.Approval(domain.ApprovalEvent{From: caller, To: to, ID: id})
	return nil
}

// ClearApproval removes the outstanding single-token approval for id.
//
// Authorization matches Approve: the caller must be the current owner or
// an approved operator for the owner, otherwise ErrNotAllowed. Clearing
// when no approval is outstanding succeeds without effect. An Approval
// event with the zero sentinel as target is emitted when an approval was
// actually removed.
func (l *Ledger) ClearApproval(ctx context.Context, caller domain.Account, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ownerOrOperator(ctx, caller, id); err != nil {
		return err
	}

	removed, err := l.store.DeleteApproved(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if !removed {
		return nil
	}

	l.logger.Debug("approval cleared", "id", id, "caller", caller.String())
	l.sink.Approval(domain.ApprovalEvent{From: caller, To: domain.ZeroAccount, ID: id})
	return nil
}

// SetApprovalForAll grants or revokes operator's right to transfer any
// current or future token owned by caller.
//
// Self-approval and the zero sentinel are rejected with ErrNotAllowed.
// The toggle is idempotent: an existing entry is overwritten. Exactly one
// ApprovalForAll event is emitted per successful call, after the map
// update is applied.
func (l *Ledger) SetApprovalForAll(ctx context.Context, caller, operator domain.Account, approved bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pair := domain.OperatorPair{Owner: caller, Operator: operator}
	if !pair.Valid() {
		return domain.ErrNotAllowed.WithDetails("operator must be a real account other than the owner")
	}

	if err := l.store.SetOperator(ctx, pair, approved); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	l.sink.ApprovalForAll(domain.ApprovalForAllEvent{Owner: caller, Operator: operator, Approved: approved})
	return nil
}

// Transfer moves token id from the caller to destination.
func (l *Ledger) Transfer(ctx context.Context, caller, destination domain.Account, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.transferTokenFrom(ctx, caller, caller, destination, id)
}

// TransferFrom moves token id from from to to on behalf of caller.
//
// The caller must satisfy the approval test (owner, approved spender, or
// approved operator). from must name the token's true current owner;
// ErrNotOwner otherwise. The ledger never transfers a token away from an
// owner the caller did not name.
func (l *Ledger) TransferFrom(ctx context.Context, caller, from, to domain.Account, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.transferTokenFrom(ctx, caller, from, to, id)
}

// transferTokenFrom is the single transfer state machine behind Transfer
// and TransferFrom. Steps short-circuit in order; all validation precedes
// the first mutation.
func (l *Ledger) transferTokenFrom(ctx context.Context, caller, from, to domain.Account, id domain.TokenID) error {
	// Step 1: Existence check
	owner, exists, err := l.store.Owner(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if !exists {
		return domain.ErrTokenNotFound
	}

	// Step 2: Authorization check
	ok, err := l.approvedOrOwner(ctx, caller, owner, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotApproved
	}

	// Step 3: from must be the true current owner
	if from != owner {
		return domain.ErrNotOwner.WithDetails("from does not match token owner")
	}

	// Step 4: Destination must be a real account
	if to.IsZero() {
		return domain.ErrNotAllowed.WithDetails("zero account cannot receive a transfer")
	}

	// Step 5: Clear any outstanding approval (idempotent)
	if err := l.clearApproval(ctx, id); err != nil {
		return err
	}

	// Step 6: Remove from the sender's holdings
	if err := l.removeTokenFrom(ctx, from, id); err != nil {
		return err
	}

	// Step 7: Add to the receiver's holdings
	if err := l.addTokenTo(ctx, to, id); err != nil {
		return err
	}

	l.logger.Debug("token transferred", "id", id, "from", from.String(), "to", to.String())
	l.sink.Transfer(domain.TransferEvent{From: from, To: to, ID: id})
	return nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// approvedOrOwner reports whether caller may move token id: a non-zero
// account that is the owner, the approved spender, or an approved
// operator for the owner.
func (l *Ledger) approvedOrOwner(ctx context.Context, caller, owner domain.Account, id domain.TokenID) (bool, error) {
	if caller.IsZero() {
		return false, nil
	}
	if caller == owner {
		return true, nil
	}

	spender, ok, err := l.store.Approved(ctx, id)
	if err != nil {
		return false, domain.ErrStorageError.WithCause(err)
	}
	if ok && spender == caller {
		return true, nil
	}

	approved, err := l.store.Operator(ctx, domain.OperatorPair{Owner: owner, Operator: caller})
	if err != nil {
		return false, domain.ErrStorageError.WithCause(err)
	}
	return approved, nil
}

// ownerOrOperator returns ErrNotAllowed unless caller is the current
// owner of id or an approved operator for the owner. A token that does
// not exist has no owner, so no caller is authorized for it.
func (l *Ledger) ownerOrOperator(ctx context.Context, caller domain.Account, id domain.TokenID) error {
	owner, exists, err := l.store.Owner(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	authorized := exists && owner == caller
	if !authorized && exists {
		authorized, err = l.store.Operator(ctx, domain.OperatorPair{Owner: owner, Operator: caller})
		if err != nil {
			return domain.ErrStorageError.WithCause(err)
		}
	}
	if !authorized {
		return domain.ErrNotAllowed
	}
	return nil
}

// clearApproval removes the single-token approval for id. Absence is not
// an error; clearing is idempotent.
func (l *Ledger) clearApproval(ctx context.Context, id domain.TokenID) error {
	if _, err := l.store.DeleteApproved(ctx, id); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// removeTokenFrom deletes the ownership entry for id and decrements
// from's balance. The existence re-check is defensive: the transfer path
// verified it one step earlier, so ErrTokenNotFound here signals
// corruption between steps, not a user error.
func (l *Ledger) removeTokenFrom(ctx context.Context, from domain.Account, id domain.TokenID) error {
	_, ok, err := l.store.Owner(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if !ok {
		return domain.ErrTokenNotFound
	}

	if err := l.decreaseCounterOf(ctx, from); err != nil {
		return err
	}

	removed, err := l.store.DeleteOwner(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if !removed {
		return domain.ErrCannotRemove.WithDetails("ownership entry vanished for token " + id.String())
	}
	return nil
}

// addTokenTo inserts the ownership entry for id and increments to's
// balance, creating the balance entry at 1 if absent. The occupancy check
// is defensive on the transfer path (the sender's entry was just removed)
// and the real TokenExists check on the mint path.
func (l *Ledger) addTokenTo(ctx context.Context, to domain.Account, id domain.TokenID) error {
	_, occupied, err := l.store.Owner(ctx, id)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if occupied {
		return domain.ErrTokenExists
	}

	if to.IsZero() {
		return domain.ErrNotAllowed.WithDetails("zero account cannot own a token")
	}

	count, _, err := l.store.Balance(ctx, to)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if err := l.store.SetBalance(ctx, to, count+1); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if err := l.store.SetOwner(ctx, id, to); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// decreaseCounterOf decrements of's balance. A missing or zero balance
// entry for an account that owns a token means the derived balance map
// disagrees with the ownership map: corruption, reported as
// ErrCannotFetchValue.
func (l *Ledger) decreaseCounterOf(ctx context.Context, of domain.Account) error {
	count, ok, err := l.store.Balance(ctx, of)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if !ok || count == 0 {
		return domain.ErrCannotFetchValue.WithDetails("balance counter missing for " + of.String())
	}
	return l.store.SetBalance(ctx, of, count-1)
}
