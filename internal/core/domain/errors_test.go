// Package domain defines the core domain models for NFTMesh.
package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "without details",
			err:  NewDomainError("NM-LEDG-4040", "token not found"),
			want: "[NM-LEDG-4040] token not found",
		},
		{
			name: "with details",
			err:  NewDomainError("NM-LEDG-4040", "token not found").WithDetails("id 42"),
			want: "[NM-LEDG-4040] token not found: id 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	// Sentinel comparison works by code, so wrapped copies still match.
	err := ErrTokenNotFound.WithDetails("id 7").WithCause(fmt.Errorf("lookup failed"))

	if !errors.Is(err, ErrTokenNotFound) {
		t.Error("errors.Is should match sentinel by code")
	}
	if errors.Is(err, ErrTokenExists) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("kv: io failure")
	err := ErrCannotFetchValue.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrNotOwner, "NM-LEDG-4030") {
		t.Error("IsDomainError should match by code")
	}
	if IsDomainError(ErrNotOwner, "NM-LEDG-4031") {
		t.Error("IsDomainError should not match a different code")
	}
	if !IsDomainError(ErrNotOwner, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if IsDomainError(fmt.Errorf("plain"), "") {
		t.Error("IsDomainError should reject non-domain errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(ErrNotApproved); got != "NM-LEDG-4031" {
		t.Errorf("GetErrorCode() = %q, want %q", got, "NM-LEDG-4031")
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}

func TestIsCorruption(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrCannotInsert, true},
		{ErrCannotRemove, true},
		{ErrCannotFetchValue.WithDetails("balance missing"), true},
		{ErrNotOwner, false},
		{ErrTokenNotFound, false},
		{ErrTokenExists, false},
		{ErrNotAllowed, false},
		{ErrNotApproved, false},
	}

	for _, tt := range tests {
		if got := IsCorruption(tt.err); got != tt.want {
			t.Errorf("IsCorruption(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestLedgerErrorCodes_Closed(t *testing.T) {
	// The ledger taxonomy is closed: eight errors, unique codes.
	sentinels := []*DomainError{
		ErrNotOwner,
		ErrNotApproved,
		ErrTokenExists,
		ErrTokenNotFound,
		ErrCannotInsert,
		ErrCannotRemove,
		ErrCannotFetchValue,
		ErrNotAllowed,
	}

	seen := make(map[string]bool)
	for _, s := range sentinels {
		if seen[s.Code] {
			t.Errorf("duplicate error code %q", s.Code)
		}
		seen[s.Code] = true
	}
	if len(seen) != 8 {
		t.Errorf("ledger taxonomy has %d codes, want 8", len(seen))
	}
}
