// Package ledger implements the NFTMesh ownership ledger.
package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
	"github.com/nftmesh/nftmesh-go/internal/storage/snapshot"
)

// memStore is a plain map-backed Store for ledger tests. The production
// implementations live in internal/storage; tests here only need the map
// semantics the interface contracts.
type memStore struct {
	owners    map[domain.TokenID]domain.Account
	approvals map[domain.TokenID]domain.Account
	balances  map[domain.Account]uint32
	operators map[domain.OperatorPair]bool
}

func newMemStore() *memStore {
	return &memStore{
		owners:    make(map[domain.TokenID]domain.Account),
		approvals: make(map[domain.TokenID]domain.Account),
		balances:  make(map[domain.Account]uint32),
		operators: make(map[domain.OperatorPair]bool),
	}
}

func (s *memStore) Owner(_ context.Context, id domain.TokenID) (domain.Account, bool, error) {
	owner, ok := s.owners[id]
	return owner, ok, nil
}

func (s *memStore) SetOwner(_ context.Context, id domain.TokenID, owner domain.Account) error {
	s.owners[id] = owner
	return nil
}

func (s *memStore) DeleteOwner(_ context.Context, id domain.TokenID) (bool, error) {
	_, ok := s.owners[id]
	delete(s.owners, id)
	return ok, nil
}

func (s *memStore) Approved(_ context.Context, id domain.TokenID) (domain.Account, bool, error) {
	spender, ok := s.approvals[id]
	return spender, ok, nil
}

func (s *memStore) SetApproved(_ context.Context, id domain.TokenID, spender domain.Account) error {
	s.approvals[id] = spender
	return nil
}

func (s *memStore) DeleteApproved(_ context.Context, id domain.TokenID) (bool, error) {
	_, ok := s.approvals[id]
	delete(s.approvals, id)
	return ok, nil
}

func (s *memStore) Balance(_ context.Context, account domain.Account) (uint32, bool, error) {
	count, ok := s.balances[account]
	return count, ok, nil
}

func (s *memStore) SetBalance(_ context.Context, account domain.Account, count uint32) error {
	s.balances[account] = count
	return nil
}

func (s *memStore) Operator(_ context.Context, pair domain.OperatorPair) (bool, error) {
	return s.operators[pair], nil
}

func (s *memStore) SetOperator(_ context.Context, pair domain.OperatorPair, approved bool) error {
	s.operators[pair] = approved
	return nil
}

func (s *memStore) CountTokens(_ context.Context) (uint64, error) {
	return uint64(len(s.owners)), nil
}

// captureSink records emitted events in order.
type captureSink struct {
	transfers       []domain.TransferEvent
	approvals       []domain.ApprovalEvent
	approvalForAlls []domain.ApprovalForAllEvent
}

func (c *captureSink) Transfer(e domain.TransferEvent) { c.transfers = append(c.transfers, e) }
func (c *captureSink) Approval(e domain.ApprovalEvent) { c.approvals = append(c.approvals, e) }
func (c *captureSink) ApprovalForAll(e domain.ApprovalForAllEvent) {
	c.approvalForAlls = append(c.approvalForAlls, e)
}

func (c *captureSink) total() int {
	return len(c.transfers) + len(c.approvals) + len(c.approvalForAlls)
}

const (
	alice = domain.Account("alice")
	bob   = domain.Account("bob")
	carol = domain.Account("carol")
	eve   = domain.Account("eve")
)

func newTestLedger(t *testing.T) (*Ledger, *memStore, *captureSink) {
	t.Helper()
	store := newMemStore()
	sink := &captureSink{}
	return New(store, WithSink(sink)), store, sink
}

// checkInvariants verifies the ledger-wide invariants: every balance
// equals the number of ownership entries naming that account, no owner is
// the zero sentinel, and no approval names the zero sentinel.
func checkInvariants(t *testing.T, store *memStore) {
	t.Helper()

	owned := make(map[domain.Account]uint32)
	for id, owner := range store.owners {
		if owner.IsZero() {
			t.Errorf("token %d owned by zero sentinel", id)
		}
		owned[owner]++
	}

	for account, count := range store.balances {
		if count != owned[account] {
			t.Errorf("balance of %s = %d, ownership entries = %d", account, count, owned[account])
		}
	}
	for account, count := range owned {
		if store.balances[account] != count {
			t.Errorf("account %s owns %d tokens but balance entry = %d", account, count, store.balances[account])
		}
	}

	for id, spender := range store.approvals {
		if spender.IsZero() {
			t.Errorf("token %d approved to zero sentinel", id)
		}
	}
}

// ============================================================================
// Mint
// ============================================================================

func TestMint(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	owner, ok, err := l.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("OwnerOf() error = %v", err)
	}
	if !ok || owner != alice {
		t.Errorf("OwnerOf(1) = %v, %v, want alice, true", owner, ok)
	}

	balance, err := l.BalanceOf(ctx, alice)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if balance != 1 {
		t.Errorf("BalanceOf(alice) = %d, want 1", balance)
	}

	// Mint emits a Transfer from the zero sentinel.
	if len(sink.transfers) != 1 {
		t.Fatalf("transfers emitted = %d, want 1", len(sink.transfers))
	}
	e := sink.transfers[0]
	if !e.From.IsZero() || e.To != alice || e.ID != 1 {
		t.Errorf("transfer event = %+v, want from=<zero> to=alice id=1", e)
	}

	checkInvariants(t, store)
}

func TestMint_Duplicate(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	emitted := sink.total()

	err := l.Mint(ctx, bob, 1)
	if !errors.Is(err, domain.ErrTokenExists) {
		t.Errorf("second Mint() error = %v, want ErrTokenExists", err)
	}

	// Ownership and balances unchanged, no extra event.
	if owner := store.owners[1]; owner != alice {
		t.Errorf("owner after failed mint = %v, want alice", owner)
	}
	if balance, _ := l.BalanceOf(ctx, bob); balance != 0 {
		t.Errorf("BalanceOf(bob) = %d, want 0", balance)
	}
	if sink.total() != emitted {
		t.Errorf("events after failed mint = %d, want %d", sink.total(), emitted)
	}

	checkInvariants(t, store)
}

func TestMint_ZeroCaller(t *testing.T) {
	l, store, sink := newTestLedger(t)

	err := l.Mint(context.Background(), domain.ZeroAccount, 1)
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("Mint(zero) error = %v, want ErrNotAllowed", err)
	}
	if len(store.owners) != 0 || sink.total() != 0 {
		t.Error("failed mint must not mutate state or emit events")
	}
}

func TestMint_BalanceAccumulates(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	for id := domain.TokenID(1); id <= 5; id++ {
		if err := l.Mint(ctx, alice, id); err != nil {
			t.Fatalf("Mint(%d) error = %v", id, err)
		}
	}

	if balance, _ := l.BalanceOf(ctx, alice); balance != 5 {
		t.Errorf("BalanceOf(alice) = %d, want 5", balance)
	}
	if n, _ := l.TokenCount(ctx); n != 5 {
		t.Errorf("TokenCount() = %d, want 5", n)
	}

	checkInvariants(t, store)
}

// ============================================================================
// Queries on absent state
// ============================================================================

func TestQueries_AbsentState(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if balance, err := l.BalanceOf(ctx, alice); err != nil || balance != 0 {
		t.Errorf("BalanceOf(absent) = %d, %v, want 0, nil", balance, err)
	}
	if _, ok, err := l.OwnerOf(ctx, 99); err != nil || ok {
		t.Errorf("OwnerOf(absent) ok = %v, err = %v, want false, nil", ok, err)
	}
	if _, ok, err := l.GetApproved(ctx, 99); err != nil || ok {
		t.Errorf("GetApproved(absent) ok = %v, err = %v, want false, nil", ok, err)
	}
	if approved, err := l.IsApprovedForAll(ctx, alice, bob); err != nil || approved {
		t.Errorf("IsApprovedForAll(absent) = %v, %v, want false, nil", approved, err)
	}
}

// ============================================================================
// Transfer
// ============================================================================

func TestTransfer(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if err := l.Transfer(ctx, alice, bob, 1); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	owner, _, _ := l.OwnerOf(ctx, 1)
	if owner != bob {
		t.Errorf("OwnerOf(1) = %v, want bob", owner)
	}
	if balance, _ := l.BalanceOf(ctx, alice); balance != 0 {
		t.Errorf("BalanceOf(alice) = %d, want 0", balance)
	}
	if balance, _ := l.BalanceOf(ctx, bob); balance != 1 {
		t.Errorf("BalanceOf(bob) = %d, want 1", balance)
	}

	e := sink.transfers[len(sink.transfers)-1]
	if e.From != alice || e.To != bob || e.ID != 1 {
		t.Errorf("transfer event = %+v, want from=alice to=bob id=1", e)
	}

	checkInvariants(t, store)
}

func TestTransfer_ClearsApproval(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if err := l.Transfer(ctx, alice, bob, 1); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	// The approval must not carry over to the new owner.
	if _, ok, _ := l.GetApproved(ctx, 1); ok {
		t.Error("approval should be cleared by transfer")
	}

	checkInvariants(t, store)
}

func TestTransfer_Unauthorized(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	emitted := sink.total()

	err := l.Transfer(ctx, eve, eve, 1)
	if !errors.Is(err, domain.ErrNotApproved) {
		t.Errorf("Transfer() error = %v, want ErrNotApproved", err)
	}

	// No state change, no event.
	if owner, _, _ := l.OwnerOf(ctx, 1); owner != alice {
		t.Errorf("owner after rejected transfer = %v, want alice", owner)
	}
	if sink.total() != emitted {
		t.Error("rejected transfer must not emit events")
	}

	checkInvariants(t, store)
}

func TestTransfer_TokenNotFound(t *testing.T) {
	l, _, _ := newTestLedger(t)

	err := l.Transfer(context.Background(), alice, bob, 42)
	if !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Transfer(missing) error = %v, want ErrTokenNotFound", err)
	}
}

func TestTransfer_ToZeroAccount(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	emitted := sink.total()

	err := l.Transfer(ctx, alice, domain.ZeroAccount, 1)
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("Transfer(to zero) error = %v, want ErrNotAllowed", err)
	}

	// The rejection happens before any mutation: alice still owns the
	// token and her balance is intact.
	if owner, _, _ := l.OwnerOf(ctx, 1); owner != alice {
		t.Errorf("owner after rejected transfer = %v, want alice", owner)
	}
	if balance, _ := l.BalanceOf(ctx, alice); balance != 1 {
		t.Errorf("BalanceOf(alice) = %d, want 1", balance)
	}
	if sink.total() != emitted {
		t.Error("rejected transfer must not emit events")
	}

	checkInvariants(t, store)
}

func TestTransferFrom_ByApprovedSpender(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if err := l.TransferFrom(ctx, carol, alice, bob, 1); err != nil {
		t.Fatalf("TransferFrom() error = %v", err)
	}

	if owner, _, _ := l.OwnerOf(ctx, 1); owner != bob {
		t.Errorf("OwnerOf(1) = %v, want bob", owner)
	}
	if _, ok, _ := l.GetApproved(ctx, 1); ok {
		t.Error("approval should be consumed by the transfer")
	}

	checkInvariants(t, store)
}

func TestTransferFrom_ByOperator(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Mint(ctx, alice, 2); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("SetApprovalForAll() error = %v", err)
	}

	// The operator may move any of alice's tokens, including ones minted
	// before or after the grant.
	if err := l.TransferFrom(ctx, carol, alice, bob, 1); err != nil {
		t.Fatalf("TransferFrom(1) error = %v", err)
	}
	if err := l.Mint(ctx, alice, 3); err != nil {
		t.Fatalf("Mint(3) error = %v", err)
	}
	if err := l.TransferFrom(ctx, carol, alice, bob, 3); err != nil {
		t.Fatalf("TransferFrom(3) error = %v", err)
	}

	checkInvariants(t, store)
}

func TestTransferFrom_OperatorScopedToOwner(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Mint(ctx, bob, 2); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("SetApprovalForAll() error = %v", err)
	}

	// carol is alice's operator, which confers nothing over bob's tokens.
	err := l.TransferFrom(ctx, carol, bob, eve, 2)
	if !errors.Is(err, domain.ErrNotApproved) {
		t.Errorf("TransferFrom(bob's token) error = %v, want ErrNotApproved", err)
	}
}

func TestTransferFrom_RevokedOperator(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("grant error = %v", err)
	}
	if err := l.SetApprovalForAll(ctx, alice, carol, false); err != nil {
		t.Fatalf("revoke error = %v", err)
	}

	err := l.TransferFrom(ctx, carol, alice, bob, 1)
	if !errors.Is(err, domain.ErrNotApproved) {
		t.Errorf("TransferFrom after revoke error = %v, want ErrNotApproved", err)
	}
}

func TestTransferFrom_FromMustMatchOwner(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	emitted := sink.total()

	// alice is fully authorized for the token, but names the wrong from:
	// the ledger refuses rather than silently moving the token away from
	// its real owner.
	err := l.TransferFrom(ctx, alice, bob, carol, 1)
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("TransferFrom(wrong from) error = %v, want ErrNotOwner", err)
	}

	if owner, _, _ := l.OwnerOf(ctx, 1); owner != alice {
		t.Errorf("owner = %v, want alice", owner)
	}
	if sink.total() != emitted {
		t.Error("rejected transfer must not emit events")
	}

	checkInvariants(t, store)
}

// ============================================================================
// Approve
// ============================================================================

func TestApprove(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	spender, ok, _ := l.GetApproved(ctx, 1)
	if !ok || spender != carol {
		t.Errorf("GetApproved(1) = %v, %v, want carol, true", spender, ok)
	}

	if len(sink.approvals) != 1 {
		t.Fatalf("approval events = %d, want 1", len(sink.approvals))
	}
	e := sink.approvals[0]
	if e.From != alice || e.To != carol || e.ID != 1 {
		t.Errorf("approval event = %+v, want from=alice to=carol id=1", e)
	}

	checkInvariants(t, store)
}

func TestApprove_ByOperator(t *testing.T) {
	l, _, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("SetApprovalForAll() error = %v", err)
	}

	// An operator may grant single-token approvals on the owner's behalf.
	if err := l.Approve(ctx, carol, bob, 1); err != nil {
		t.Fatalf("Approve() by operator error = %v", err)
	}

	spender, ok, _ := l.GetApproved(ctx, 1)
	if !ok || spender != bob {
		t.Errorf("GetApproved(1) = %v, %v, want bob, true", spender, ok)
	}
	// The event names the operator who granted it, not the owner.
	if e := sink.approvals[0]; e.From != carol {
		t.Errorf("approval event from = %v, want carol", e.From)
	}
}

func TestApprove_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(ctx context.Context, l *Ledger) error
		caller  domain.Account
		to      domain.Account
		id      domain.TokenID
		wantErr *domain.DomainError
	}{
		{
			name:    "nonexistent token",
			setup:   func(context.Context, *Ledger) error { return nil },
			caller:  alice,
			to:      bob,
			id:      42,
			wantErr: domain.ErrNotAllowed,
		},
		{
			name: "caller neither owner nor operator",
			setup: func(ctx context.Context, l *Ledger) error {
				return l.Mint(ctx, alice, 1)
			},
			caller:  eve,
			to:      bob,
			id:      1,
			wantErr: domain.ErrNotAllowed,
		},
		{
			name: "zero target",
			setup: func(ctx context.Context, l *Ledger) error {
				return l.Mint(ctx, alice, 1)
			},
			caller:  alice,
			to:      domain.ZeroAccount,
			id:      1,
			wantErr: domain.ErrNotAllowed,
		},
		{
			name: "approval already outstanding",
			setup: func(ctx context.Context, l *Ledger) error {
				if err := l.Mint(ctx, alice, 1); err != nil {
					return err
				}
				return l.Approve(ctx, alice, carol, 1)
			},
			caller:  alice,
			to:      bob,
			id:      1,
			wantErr: domain.ErrCannotInsert,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store, _ := newTestLedger(t)
			ctx := context.Background()
			if err := tt.setup(ctx, l); err != nil {
				t.Fatalf("setup error = %v", err)
			}

			err := l.Approve(ctx, tt.caller, tt.to, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Approve() error = %v, want %v", err, tt.wantErr)
			}

			checkInvariants(t, store)
		})
	}
}

func TestApprove_AfterTransferClears(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := l.Transfer(ctx, alice, bob, 1); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}

	// Transfer cleared the approval, so the new owner can approve again.
	if err := l.Approve(ctx, bob, carol, 1); err != nil {
		t.Errorf("Approve() after transfer error = %v", err)
	}
}

// ============================================================================
// ClearApproval
// ============================================================================

func TestClearApproval(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if err := l.ClearApproval(ctx, alice, 1); err != nil {
		t.Fatalf("ClearApproval() error = %v", err)
	}
	if _, ok, _ := l.GetApproved(ctx, 1); ok {
		t.Error("approval should be cleared")
	}

	// The clear event names the zero sentinel as target.
	if len(sink.approvals) != 2 {
		t.Fatalf("approval events = %d, want 2", len(sink.approvals))
	}
	e := sink.approvals[1]
	if e.From != alice || e.To != domain.ZeroAccount || e.ID != 1 {
		t.Errorf("clear event = %+v, want from=alice to=zero id=1", e)
	}

	// The slot is free again, so a fresh approval succeeds.
	if err := l.Approve(ctx, alice, bob, 1); err != nil {
		t.Errorf("Approve() after clear error = %v", err)
	}

	checkInvariants(t, store)
}

func TestClearApproval_ByOperator(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, bob, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("SetApprovalForAll() error = %v", err)
	}

	if err := l.ClearApproval(ctx, carol, 1); err != nil {
		t.Fatalf("ClearApproval() by operator error = %v", err)
	}
	if _, ok, _ := l.GetApproved(ctx, 1); ok {
		t.Error("approval should be cleared")
	}
}

func TestClearApproval_Idempotent(t *testing.T) {
	l, _, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	// Nothing outstanding; clearing succeeds and emits no event.
	if err := l.ClearApproval(ctx, alice, 1); err != nil {
		t.Errorf("ClearApproval() error = %v", err)
	}
	if len(sink.approvals) != 0 {
		t.Errorf("approval events = %d, want 0", len(sink.approvals))
	}
}

func TestClearApproval_Rejections(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if err := l.ClearApproval(ctx, eve, 1); !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("ClearApproval(stranger) error = %v, want ErrNotAllowed", err)
	}
	// The approved spender alone may not clear its own grant.
	if err := l.ClearApproval(ctx, carol, 1); !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("ClearApproval(spender) error = %v, want ErrNotAllowed", err)
	}
	if err := l.ClearApproval(ctx, alice, 42); !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("ClearApproval(missing token) error = %v, want ErrNotAllowed", err)
	}

	if spender, ok, _ := l.GetApproved(ctx, 1); !ok || spender != carol {
		t.Errorf("GetApproved(1) = %v, %v, want carol, true", spender, ok)
	}
}

// ============================================================================
// SetApprovalForAll
// ============================================================================

func TestSetApprovalForAll(t *testing.T) {
	l, _, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("SetApprovalForAll() error = %v", err)
	}

	approved, err := l.IsApprovedForAll(ctx, alice, carol)
	if err != nil {
		t.Fatalf("IsApprovedForAll() error = %v", err)
	}
	if !approved {
		t.Error("IsApprovedForAll(alice, carol) = false, want true")
	}

	// The grant is directional.
	if approved, _ := l.IsApprovedForAll(ctx, carol, alice); approved {
		t.Error("IsApprovedForAll(carol, alice) = true, want false")
	}

	// Exactly one event per call.
	if len(sink.approvalForAlls) != 1 {
		t.Fatalf("approval-for-all events = %d, want 1", len(sink.approvalForAlls))
	}
	e := sink.approvalForAlls[0]
	if e.Owner != alice || e.Operator != carol || !e.Approved {
		t.Errorf("event = %+v, want owner=alice operator=carol approved=true", e)
	}
}

func TestSetApprovalForAll_Toggle(t *testing.T) {
	l, _, sink := newTestLedger(t)
	ctx := context.Background()

	// Idempotent overwrite: repeated toggles always succeed and each
	// emits exactly one event.
	sequence := []bool{true, true, false, true, false}
	for _, approved := range sequence {
		if err := l.SetApprovalForAll(ctx, alice, carol, approved); err != nil {
			t.Fatalf("SetApprovalForAll(%v) error = %v", approved, err)
		}
	}

	if approved, _ := l.IsApprovedForAll(ctx, alice, carol); approved {
		t.Error("final state should be revoked")
	}
	if len(sink.approvalForAlls) != len(sequence) {
		t.Errorf("events = %d, want %d", len(sink.approvalForAlls), len(sequence))
	}
}

func TestSetApprovalForAll_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		caller   domain.Account
		operator domain.Account
	}{
		{name: "self approval", caller: alice, operator: alice},
		{name: "zero operator", caller: alice, operator: domain.ZeroAccount},
		{name: "zero caller", caller: domain.ZeroAccount, operator: bob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, sink := newTestLedger(t)

			err := l.SetApprovalForAll(context.Background(), tt.caller, tt.operator, true)
			if !errors.Is(err, domain.ErrNotAllowed) {
				t.Errorf("SetApprovalForAll() error = %v, want ErrNotAllowed", err)
			}
			if sink.total() != 0 {
				t.Error("rejected call must not emit events")
			}
		})
	}
}

// ============================================================================
// Burn
// ============================================================================

func TestBurn(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Burn(ctx, alice, 1); err != nil {
		t.Fatalf("Burn() error = %v", err)
	}

	if _, ok, _ := l.OwnerOf(ctx, 1); ok {
		t.Error("token should not exist after burn")
	}
	if balance, _ := l.BalanceOf(ctx, alice); balance != 0 {
		t.Errorf("BalanceOf(alice) = %d, want 0", balance)
	}
	if n, _ := l.TokenCount(ctx); n != 0 {
		t.Errorf("TokenCount() = %d, want 0", n)
	}

	// Burn emits a Transfer to the zero sentinel.
	e := sink.transfers[len(sink.transfers)-1]
	if e.From != alice || !e.To.IsZero() || e.ID != 1 {
		t.Errorf("burn event = %+v, want from=alice to=<zero> id=1", e)
	}

	checkInvariants(t, store)
}

func TestBurn_ClearsApproval(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if err := l.Approve(ctx, alice, carol, 1); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := l.Burn(ctx, alice, 1); err != nil {
		t.Fatalf("Burn() error = %v", err)
	}

	// No stale approval survives the token.
	if _, ok := store.approvals[1]; ok {
		t.Error("approval entry should be cleared by burn")
	}

	// Re-minting the same ID starts clean.
	if err := l.Mint(ctx, bob, 1); err != nil {
		t.Fatalf("re-Mint() error = %v", err)
	}
	if _, ok, _ := l.GetApproved(ctx, 1); ok {
		t.Error("re-minted token should have no approval")
	}

	checkInvariants(t, store)
}

func TestBurn_Rejections(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if err := l.Burn(ctx, bob, 1); !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("Burn(non-owner) error = %v, want ErrNotOwner", err)
	}
	if err := l.Burn(ctx, alice, 42); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Burn(missing) error = %v, want ErrTokenNotFound", err)
	}

	// An approved operator still cannot burn; burn is owner-only.
	if err := l.SetApprovalForAll(ctx, alice, carol, true); err != nil {
		t.Fatalf("SetApprovalForAll() error = %v", err)
	}
	if err := l.Burn(ctx, carol, 1); !errors.Is(err, domain.ErrNotOwner) {
		t.Errorf("Burn(operator) error = %v, want ErrNotOwner", err)
	}

	if owner, _, _ := l.OwnerOf(ctx, 1); owner != alice {
		t.Errorf("owner = %v, want alice", owner)
	}
	if len(sink.transfers) != 1 {
		t.Errorf("transfer events = %d, want 1 (mint only)", len(sink.transfers))
	}

	checkInvariants(t, store)
}

// ============================================================================
// Corruption detection
// ============================================================================

func TestBurn_MissingBalanceCounter(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	// Corrupt the derived state directly: ownership entry without a
	// balance counter.
	store.owners[1] = alice

	err := l.Burn(ctx, alice, 1)
	if !errors.Is(err, domain.ErrCannotFetchValue) {
		t.Errorf("Burn() error = %v, want ErrCannotFetchValue", err)
	}
	if !domain.IsCorruption(err) {
		t.Error("missing balance counter should classify as corruption")
	}
	if sink.total() != 0 {
		t.Error("failed burn must not emit events")
	}
}

func TestTransfer_MissingBalanceCounter(t *testing.T) {
	l, store, _ := newTestLedger(t)
	ctx := context.Background()

	store.owners[1] = alice

	err := l.Transfer(ctx, alice, bob, 1)
	if !errors.Is(err, domain.ErrCannotFetchValue) {
		t.Errorf("Transfer() error = %v, want ErrCannotFetchValue", err)
	}
}

// ============================================================================
// Operation sequences
// ============================================================================

func TestLedger_Sequence(t *testing.T) {
	l, store, sink := newTestLedger(t)
	ctx := context.Background()

	// A realistic mixed sequence; invariants must hold at every step.
	steps := []struct {
		name string
		op   func() error
	}{
		{"mint 1 to alice", func() error { return l.Mint(ctx, alice, 1) }},
		{"mint 2 to alice", func() error { return l.Mint(ctx, alice, 2) }},
		{"mint 3 to bob", func() error { return l.Mint(ctx, bob, 3) }},
		{"alice approves carol for 1", func() error { return l.Approve(ctx, alice, carol, 1) }},
		{"carol moves 1 to bob", func() error { return l.TransferFrom(ctx, carol, alice, bob, 1) }},
		{"bob grants eve operator", func() error { return l.SetApprovalForAll(ctx, bob, eve, true) }},
		{"eve moves 3 to carol", func() error { return l.TransferFrom(ctx, eve, bob, carol, 3) }},
		{"alice burns 2", func() error { return l.Burn(ctx, alice, 2) }},
		{"bob burns 1", func() error { return l.Burn(ctx, bob, 1) }},
	}

	for _, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("%s: error = %v", step.name, err)
		}
		checkInvariants(t, store)
	}

	if n, _ := l.TokenCount(ctx); n != 1 {
		t.Errorf("TokenCount() = %d, want 1", n)
	}
	if owner, _, _ := l.OwnerOf(ctx, 3); owner != carol {
		t.Errorf("OwnerOf(3) = %v, want carol", owner)
	}

	// One event per successful operation.
	if sink.total() != len(steps) {
		t.Errorf("events = %d, want %d", sink.total(), len(steps))
	}
}

// ============================================================================
// Export
// ============================================================================

// gatedExporter signals when its Export starts and then blocks until
// released, so tests can hold the export open.
type gatedExporter struct {
	entered chan struct{}
	release chan struct{}
}

func (e *gatedExporter) Export(context.Context) (*snapshot.State, error) {
	close(e.entered)
	<-e.release
	return &snapshot.State{}, nil
}

func TestExport_BlocksMutations(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.Mint(ctx, alice, 1); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	exp := &gatedExporter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	exportDone := make(chan error, 1)
	go func() {
		_, err := l.Export(ctx, exp)
		exportDone <- err
	}()

	select {
	case <-exp.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("export never started")
	}

	mintDone := make(chan error, 1)
	go func() {
		mintDone <- l.Mint(ctx, bob, 2)
	}()

	// While the export is open no mutation may complete.
	select {
	case err := <-mintDone:
		t.Fatalf("Mint() completed during export, error = %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(exp.release)

	if err := <-exportDone; err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := <-mintDone; err != nil {
		t.Fatalf("Mint() after export error = %v", err)
	}
}
