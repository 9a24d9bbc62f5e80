// Package domain defines the core domain models for NFTMesh.
package domain

import (
	"strconv"
)

// TokenID identifies a unique, non-divisible token. A token exists exactly
// when the ownership map holds an entry for its ID; there is no separate
// token record.
type TokenID uint32

// String returns the decimal representation of the token ID.
func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseTokenID parses a decimal token ID.
// Returns ErrInvalidArgument if s is not an unsigned 32-bit integer.
func ParseTokenID(s string) (TokenID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, ErrInvalidArgument.WithDetails("malformed token id: " + strconv.Quote(truncate(s, 32)))
	}
	return TokenID(v), nil
}
