// Package domain defines the core domain models for NFTMesh.
package domain

import (
	"strconv"
	"strings"
)

// Account constraints.
const (
	// MaxAccountLength is the maximum length of an account identifier.
	MaxAccountLength = 128
)

// Account identifies a party that can own tokens. Accounts are opaque
// identifiers supplied by the caller context; the ledger never
// authenticates them. The empty string is the zero sentinel.
type Account string

// ZeroAccount is the "no account" sentinel. It appears as the transfer
// source on mint and the transfer destination on burn, and is forbidden
// as a real owner, transfer destination, or approval target.
const ZeroAccount Account = ""

// IsZero reports whether the account is the zero sentinel.
func (a Account) IsZero() bool {
	return a == ZeroAccount
}

// String returns the account identifier, or "<zero>" for the sentinel.
// The sentinel rendering is for logs and events only; it never round-trips
// back into a real account.
func (a Account) String() string {
	if a.IsZero() {
		return "<zero>"
	}
	return string(a)
}

// ValidateAccountFormat checks if a string is a well-formed account
// identifier. A valid account is non-empty, at most MaxAccountLength
// characters, and contains no whitespace or control characters.
func ValidateAccountFormat(s string) bool {
	if s == "" || len(s) > MaxAccountLength {
		return false
	}
	for _, r := range s {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}

// ParseAccount validates s and returns it as an Account.
// Returns ErrInvalidArgument if the format is invalid.
func ParseAccount(s string) (Account, error) {
	if !ValidateAccountFormat(s) {
		return ZeroAccount, ErrInvalidArgument.WithDetails("malformed account: " + strconv.Quote(truncate(s, 32)))
	}
	return Account(s), nil
}

// truncate shortens s for inclusion in error details.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// OperatorPair is the (owner, operator) key of the operator-approval map.
// The pair is ordered: approval granted by owner A to operator B says
// nothing about tokens owned by B.
type OperatorPair struct {
	Owner    Account `json:"owner"`
	Operator Account `json:"operator"`
}

// Valid reports whether the pair can carry an operator approval:
// both parties are real accounts and distinct from each other.
func (p OperatorPair) Valid() bool {
	return !p.Owner.IsZero() && !p.Operator.IsZero() && p.Owner != p.Operator
}

// Key returns a stable string key for the pair, usable as a KV suffix.
func (p OperatorPair) Key() string {
	var b strings.Builder
	b.Grow(len(p.Owner) + len(p.Operator) + 1)
	b.WriteString(string(p.Owner))
	b.WriteByte(0)
	b.WriteString(string(p.Operator))
	return b.String()
}
