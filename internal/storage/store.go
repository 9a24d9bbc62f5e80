package storage

import (
	"context"
	"errors"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
)

// Store adapts a flat KV engine to the ledger's four-map view. It is a
// pure codec layer: prefix-keyed encoding on the way in, decoding on the
// way out, and translation of KV absence into the ledger's presence
// contract. All engine errors surface as ErrStorageError with the cause
// attached.
type Store struct {
	kv KV
}

// NewStore wraps kv as a ledger state store.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// KV exposes the underlying engine, for stats and lifecycle management.
func (s *Store) KV() KV {
	return s.kv
}

// Owner returns the current owner of id, with ok=false if the token does
// not exist.
func (s *Store) Owner(ctx context.Context, id domain.TokenID) (domain.Account, bool, error) {
	value, err := s.kv.Get(ctx, ownerKey(id))
	if errors.Is(err, ErrKeyNotFound) {
		return domain.ZeroAccount, false, nil
	}
	if err != nil {
		return domain.ZeroAccount, false, storageErr("read owner entry", err)
	}
	return domain.Account(value), true, nil
}

// SetOwner inserts or replaces the ownership entry for id.
func (s *Store) SetOwner(ctx context.Context, id domain.TokenID, owner domain.Account) error {
	if err := s.kv.Set(ctx, ownerKey(id), []byte(owner)); err != nil {
		return storageErr("write owner entry", err)
	}
	return nil
}

// DeleteOwner removes the ownership entry for id, with ok=false if no
// entry existed.
func (s *Store) DeleteOwner(ctx context.Context, id domain.TokenID) (bool, error) {
	return s.deleteExisting(ctx, ownerKey(id), "delete owner entry")
}

// Approved returns the approved spender for id, with ok=false if no
// approval is outstanding.
func (s *Store) Approved(ctx context.Context, id domain.TokenID) (domain.Account, bool, error) {
	value, err := s.kv.Get(ctx, approvalKey(id))
	if errors.Is(err, ErrKeyNotFound) {
		return domain.ZeroAccount, false, nil
	}
	if err != nil {
		return domain.ZeroAccount, false, storageErr("read approval entry", err)
	}
	return domain.Account(value), true, nil
}

// SetApproved inserts or replaces the approval entry for id.
func (s *Store) SetApproved(ctx context.Context, id domain.TokenID, spender domain.Account) error {
	if err := s.kv.Set(ctx, approvalKey(id), []byte(spender)); err != nil {
		return storageErr("write approval entry", err)
	}
	return nil
}

// DeleteApproved removes the approval entry for id, with ok=false if no
// entry existed.
func (s *Store) DeleteApproved(ctx context.Context, id domain.TokenID) (bool, error) {
	return s.deleteExisting(ctx, approvalKey(id), "delete approval entry")
}

// Balance returns the owned-token count for account, with ok=false if no
// balance entry exists.
func (s *Store) Balance(ctx context.Context, account domain.Account) (uint32, bool, error) {
	value, err := s.kv.Get(ctx, balanceKey(account))
	if errors.Is(err, ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storageErr("read balance entry", err)
	}
	count, ok := decodeCount(value)
	if !ok {
		return 0, false, domain.ErrStorageError.WithDetails("balance entry for " + account.String() + " is not a 4-byte counter")
	}
	return count, true, nil
}

// SetBalance inserts or replaces the balance entry for account.
func (s *Store) SetBalance(ctx context.Context, account domain.Account, count uint32) error {
	if err := s.kv.Set(ctx, balanceKey(account), encodeCount(count)); err != nil {
		return storageErr("write balance entry", err)
	}
	return nil
}

// Operator returns the operator-approval flag for the pair, defaulting to
// false if no entry exists.
func (s *Store) Operator(ctx context.Context, pair domain.OperatorPair) (bool, error) {
	value, err := s.kv.Get(ctx, operatorKey(pair))
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("read operator entry", err)
	}
	return decodeBool(value), nil
}

// SetOperator inserts or replaces the operator-approval entry.
func (s *Store) SetOperator(ctx context.Context, pair domain.OperatorPair, approved bool) error {
	if err := s.kv.Set(ctx, operatorKey(pair), encodeBool(approved)); err != nil {
		return storageErr("write operator entry", err)
	}
	return nil
}

// CountTokens returns the number of ownership entries.
func (s *Store) CountTokens(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.kv.Scan(ctx, prefixOwner, func(_, _ []byte) bool {
		count++
		return true
	})
	if err != nil {
		return 0, storageErr("scan owner entries", err)
	}
	return count, nil
}

// deleteExisting deletes key and reports whether an entry existed. The KV
// interface treats deleting an absent key as a no-op, so existence is
// probed first; the ledger's mutex makes the two steps atomic.
func (s *Store) deleteExisting(ctx context.Context, key []byte, op string) (bool, error) {
	_, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(op, err)
	}
	if err := s.kv.Delete(ctx, key); err != nil {
		return false, storageErr(op, err)
	}
	return true, nil
}

// storageErr wraps an engine error as a domain storage error.
func storageErr(op string, err error) error {
	return domain.ErrStorageError.WithDetails(op).WithCause(err)
}
