// Package ledger implements the NFTMesh ownership ledger.
package ledger

import (
	"context"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
)

// Store is the abstract state the ledger operates on: the four associative
// maps of the data model. Implementations live in internal/storage
// (in-memory and Badger-backed).
//
// Presence is part of the contract. A token exists exactly when Owner
// reports ok=true; an absent balance entry is equivalent to zero; an
// absent operator entry is equivalent to false. Lookups never return
// domain errors for absence; the ledger derives those itself.
//
// Implementations only need point-lookup consistency; the ledger holds a
// mutex across every multi-step operation.
type Store interface {
	// Owner returns the current owner of id, with ok=false if the token
	// does not exist.
	Owner(ctx context.Context, id domain.TokenID) (owner domain.Account, ok bool, err error)

	// SetOwner inserts or replaces the ownership entry for id.
	SetOwner(ctx context.Context, id domain.TokenID, owner domain.Account) error

	// DeleteOwner removes the ownership entry for id, with ok=false if no
	// entry existed.
	DeleteOwner(ctx context.Context, id domain.TokenID) (ok bool, err error)

	// Approved returns the single-token approved spender for id, with
	// ok=false if no approval is outstanding.
	Approved(ctx context.Context, id domain.TokenID) (spender domain.Account, ok bool, err error)

	// SetApproved inserts or replaces the approval entry for id.
	SetApproved(ctx context.Context, id domain.TokenID, spender domain.Account) error

	// DeleteApproved removes the approval entry for id, with ok=false if
	// no entry existed.
	DeleteApproved(ctx context.Context, id domain.TokenID) (ok bool, err error)

	// Balance returns the owned-token count for account, with ok=false if
	// no balance entry exists. Absence and zero are equivalent to readers;
	// the distinction only matters to the ledger's corruption checks.
	Balance(ctx context.Context, account domain.Account) (count uint32, ok bool, err error)

	// SetBalance inserts or replaces the balance entry for account.
	SetBalance(ctx context.Context, account domain.Account, count uint32) error

	// Operator returns the operator-approval flag for the pair,
	// defaulting to false if no entry exists.
	Operator(ctx context.Context, pair domain.OperatorPair) (bool, error)

	// SetOperator inserts or replaces the operator-approval entry.
	SetOperator(ctx context.Context, pair domain.OperatorPair, approved bool) error

	// CountTokens returns the number of ownership entries (the number of
	// existing tokens).
	CountTokens(ctx context.Context) (uint64, error)
}
