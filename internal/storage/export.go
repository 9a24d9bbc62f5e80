package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
	"github.com/nftmesh/nftmesh-go/internal/storage/snapshot"
)

// Export captures the full ledger state for snapshotting. Export scans
// each prefix separately and does not see a single point-in-time view on
// its own, so callers go through the ledger's Export, which holds the
// operation lock for the duration.
func (s *Store) Export(ctx context.Context) (*snapshot.State, error) {
	approvals := map[domain.TokenID]domain.Account{}
	err := s.kv.Scan(ctx, prefixApproval, func(key, value []byte) bool {
		id, ok := decodeTokenKey(prefixApproval, key)
		if !ok {
			return true
		}
		approvals[id] = domain.Account(value)
		return true
	})
	if err != nil {
		return nil, storageErr("scan approval entries", err)
	}

	state := &snapshot.State{
		Balances: map[string]uint32{},
	}

	err = s.kv.Scan(ctx, prefixOwner, func(key, value []byte) bool {
		id, ok := decodeTokenKey(prefixOwner, key)
		if !ok {
			return true
		}
		state.Tokens = append(state.Tokens, snapshot.TokenEntry{
			ID:       id,
			Owner:    domain.Account(value),
			Approved: approvals[id],
		})
		return true
	})
	if err != nil {
		return nil, storageErr("scan owner entries", err)
	}

	err = s.kv.Scan(ctx, prefixBalance, func(key, value []byte) bool {
		count, ok := decodeCount(value)
		if !ok {
			return true
		}
		account := string(key[len(prefixBalance):])
		state.Balances[account] = count
		return true
	})
	if err != nil {
		return nil, storageErr("scan balance entries", err)
	}

	err = s.kv.Scan(ctx, prefixOperator, func(key, value []byte) bool {
		suffix := key[len(prefixOperator):]
		sep := bytes.IndexByte(suffix, 0)
		if sep < 0 {
			return true
		}
		state.Operators = append(state.Operators, snapshot.OperatorEntry{
			Owner:    domain.Account(suffix[:sep]),
			Operator: domain.Account(suffix[sep+1:]),
			Approved: decodeBool(value),
		})
		return true
	})
	if err != nil {
		return nil, storageErr("scan operator entries", err)
	}

	return state, nil
}

// Restore writes a snapshot state into the store. The store must be
// empty; Restore does not clear prior entries.
func (s *Store) Restore(ctx context.Context, state *snapshot.State) error {
	for _, tok := range state.Tokens {
		if tok.Owner.IsZero() {
			return fmt.Errorf("storage: restore: token %s has no owner", tok.ID)
		}
		if err := s.SetOwner(ctx, tok.ID, tok.Owner); err != nil {
			return err
		}
		if !tok.Approved.IsZero() {
			if err := s.SetApproved(ctx, tok.ID, tok.Approved); err != nil {
				return err
			}
		}
	}

	for account, count := range state.Balances {
		if err := s.SetBalance(ctx, domain.Account(account), count); err != nil {
			return err
		}
	}

	for _, op := range state.Operators {
		pair := domain.OperatorPair{Owner: op.Owner, Operator: op.Operator}
		if err := s.SetOperator(ctx, pair, op.Approved); err != nil {
			return err
		}
	}

	return nil
}

// decodeTokenKey extracts the token ID from a prefix-keyed token entry.
func decodeTokenKey(prefix, key []byte) (domain.TokenID, bool) {
	if len(key) != len(prefix)+4 {
		return 0, false
	}
	return domain.TokenID(binary.BigEndian.Uint32(key[len(prefix):])), true
}
