// Package domain defines the core domain models for NFTMesh.
package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestAccount_IsZero(t *testing.T) {
	if !ZeroAccount.IsZero() {
		t.Error("ZeroAccount.IsZero() should be true")
	}
	if Account("alice").IsZero() {
		t.Error("real account should not be zero")
	}
}

func TestAccount_String(t *testing.T) {
	if got := ZeroAccount.String(); got != "<zero>" {
		t.Errorf("ZeroAccount.String() = %q, want %q", got, "<zero>")
	}
	if got := Account("alice").String(); got != "alice" {
		t.Errorf("Account.String() = %q, want %q", got, "alice")
	}
}

func TestValidateAccountFormat(t *testing.T) {
	tests := []struct {
		name    string
		account string
		valid   bool
	}{
		{name: "simple", account: "alice", valid: true},
		{name: "address style", account: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", valid: true},
		{name: "max length", account: strings.Repeat("a", MaxAccountLength), valid: true},
		{name: "empty", account: "", valid: false},
		{name: "too long", account: strings.Repeat("a", MaxAccountLength+1), valid: false},
		{name: "embedded space", account: "ali ce", valid: false},
		{name: "control character", account: "ali\nce", valid: false},
		{name: "tab", account: "ali\tce", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAccountFormat(tt.account); got != tt.valid {
				t.Errorf("ValidateAccountFormat(%q) = %v, want %v", tt.account, got, tt.valid)
			}
		})
	}
}

func TestParseAccount(t *testing.T) {
	acct, err := ParseAccount("bob")
	if err != nil {
		t.Fatalf("ParseAccount() error = %v", err)
	}
	if acct != Account("bob") {
		t.Errorf("ParseAccount() = %q, want %q", acct, "bob")
	}

	if _, err := ParseAccount(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseAccount(empty) error = %v, want ErrInvalidArgument", err)
	}
}

func TestOperatorPair_Valid(t *testing.T) {
	tests := []struct {
		name string
		pair OperatorPair
		want bool
	}{
		{name: "distinct accounts", pair: OperatorPair{Owner: "alice", Operator: "bob"}, want: true},
		{name: "self approval", pair: OperatorPair{Owner: "alice", Operator: "alice"}, want: false},
		{name: "zero owner", pair: OperatorPair{Owner: ZeroAccount, Operator: "bob"}, want: false},
		{name: "zero operator", pair: OperatorPair{Owner: "alice", Operator: ZeroAccount}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pair.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperatorPair_Key(t *testing.T) {
	// Keys must distinguish pairs whose concatenation collides.
	a := OperatorPair{Owner: "ab", Operator: "c"}
	b := OperatorPair{Owner: "a", Operator: "bc"}
	if a.Key() == b.Key() {
		t.Error("distinct pairs should produce distinct keys")
	}

	// The pair is ordered.
	fwd := OperatorPair{Owner: "alice", Operator: "bob"}
	rev := OperatorPair{Owner: "bob", Operator: "alice"}
	if fwd.Key() == rev.Key() {
		t.Error("reversed pairs should produce distinct keys")
	}
}

func TestParseTokenID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TokenID
		wantErr bool
	}{
		{name: "zero", input: "0", want: 0},
		{name: "typical", input: "42", want: 42},
		{name: "max uint32", input: "4294967295", want: 4294967295},
		{name: "overflow", input: "4294967296", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokenID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ParseTokenID(%q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTokenID(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTokenID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
