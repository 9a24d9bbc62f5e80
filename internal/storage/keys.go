package storage

import (
	"encoding/binary"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
)

// Key space layout. Each ledger map gets its own single-byte prefix
// followed by a separator, so prefix scans see exactly one map:
//
//	o/ -> [token id be32] => owner account
//	a/ -> [token id be32] => approved spender account
//	b/ -> [account]       => balance counter be32
//	p/ -> [owner \x00 operator] => 0x00 | 0x01
var (
	prefixOwner    = []byte("o/")
	prefixApproval = []byte("a/")
	prefixBalance  = []byte("b/")
	prefixOperator = []byte("p/")
)

// ownerKey returns the ownership-map key for id.
func ownerKey(id domain.TokenID) []byte {
	return tokenKey(prefixOwner, id)
}

// approvalKey returns the approval-map key for id.
func approvalKey(id domain.TokenID) []byte {
	return tokenKey(prefixApproval, id)
}

// balanceKey returns the balance-map key for account.
func balanceKey(account domain.Account) []byte {
	key := make([]byte, 0, len(prefixBalance)+len(account))
	key = append(key, prefixBalance...)
	key = append(key, account...)
	return key
}

// operatorKey returns the operator-map key for the (owner, operator) pair.
func operatorKey(pair domain.OperatorPair) []byte {
	suffix := pair.Key()
	key := make([]byte, 0, len(prefixOperator)+len(suffix))
	key = append(key, prefixOperator...)
	key = append(key, suffix...)
	return key
}

// tokenKey encodes a token ID big-endian under the given prefix, keeping
// scans within a prefix ordered by ID.
func tokenKey(prefix []byte, id domain.TokenID) []byte {
	key := make([]byte, len(prefix)+4)
	copy(key, prefix)
	binary.BigEndian.PutUint32(key[len(prefix):], uint32(id))
	return key
}

// encodeCount encodes a balance counter.
func encodeCount(count uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, count)
	return buf
}

// decodeCount decodes a balance counter. Short values are rejected by the
// caller as corruption.
func decodeCount(value []byte) (uint32, bool) {
	if len(value) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(value), true
}

// encodeBool encodes an operator-approval flag.
func encodeBool(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// decodeBool decodes an operator-approval flag.
func decodeBool(value []byte) bool {
	return len(value) == 1 && value[0] == 0x01
}
