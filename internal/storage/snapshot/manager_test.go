package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
	"github.com/nftmesh/nftmesh-go/pkg/crypto/adaptive"
)

func testState() *State {
	return &State{
		Tokens: []TokenEntry{
			{ID: 1, Owner: "alice"},
			{ID: 2, Owner: "alice", Approved: "bob"},
			{ID: 3, Owner: "carol"},
		},
		Balances: map[string]uint32{
			"alice": 2,
			"carol": 1,
		},
		Operators: []OperatorEntry{
			{Owner: "alice", Operator: "dave", Approved: true},
		},
	}
}

func newTestManager(t *testing.T, cipher adaptive.Cipher) *Manager {
	t.Helper()

	dir, err := os.MkdirTemp("", "snapshot-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := DefaultConfig(dir)
	cfg.Cipher = cipher
	cfg.NodeID = "node-1"

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return mgr
}

func TestManager_CreateAndLoad(t *testing.T) {
	mgr := newTestManager(t, nil)

	info, err := mgr.Create(testState())
	if err != nil {
		t.Fatal(err)
	}
	if info.TokenCount != 3 {
		t.Errorf("expected token count 3, got %d", info.TokenCount)
	}
	if info.Checksum == "" {
		t.Error("expected non-empty checksum")
	}

	state, loaded, err := mgr.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != info.ID {
		t.Errorf("expected snapshot %s, got %s", info.ID, loaded.ID)
	}
	if loaded.NodeID != "node-1" {
		t.Errorf("expected node-1, got %s", loaded.NodeID)
	}

	if len(state.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(state.Tokens))
	}
	if state.Tokens[1].Approved != "bob" {
		t.Errorf("expected approval to survive, got %q", state.Tokens[1].Approved)
	}
	if state.Balances["alice"] != 2 {
		t.Errorf("expected alice balance 2, got %d", state.Balances["alice"])
	}
	if len(state.Operators) != 1 || !state.Operators[0].Approved {
		t.Errorf("operator entry did not survive: %v", state.Operators)
	}
}

func TestManager_LoadNoSnapshots(t *testing.T) {
	mgr := newTestManager(t, nil)

	_, _, err := mgr.Load()
	if !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("expected ErrNoSnapshots, got %v", err)
	}
}

func TestManager_LoadLatest(t *testing.T) {
	mgr := newTestManager(t, nil)

	if _, err := mgr.Create(testState()); err != nil {
		t.Fatal(err)
	}

	second := &State{
		Tokens:   []TokenEntry{{ID: 9, Owner: "erin"}},
		Balances: map[string]uint32{"erin": 1},
	}
	info2, err := mgr.Create(second)
	if err != nil {
		t.Fatal(err)
	}

	state, loaded, err := mgr.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != info2.ID {
		t.Errorf("expected newest snapshot %s, got %s", info2.ID, loaded.ID)
	}
	if len(state.Tokens) != 1 || state.Tokens[0].Owner != "erin" {
		t.Errorf("unexpected state: %v", state.Tokens)
	}
}

func TestManager_CorruptedFallback(t *testing.T) {
	mgr := newTestManager(t, nil)

	info1, err := mgr.Create(testState())
	if err != nil {
		t.Fatal(err)
	}
	info2, err := mgr.Create(testState())
	if err != nil {
		t.Fatal(err)
	}

	// Corrupt the newest file.
	data, err := os.ReadFile(info2.Path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)/2] ^= 0xff
	if err := os.WriteFile(info2.Path, data, 0600); err != nil {
		t.Fatal(err)
	}

	_, loaded, err := mgr.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != info1.ID {
		t.Errorf("expected fallback to %s, got %s", info1.ID, loaded.ID)
	}
}

func TestManager_Encrypted(t *testing.T) {
	key, err := GenerateKey(32)
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := adaptive.NewWithType(key, adaptive.CipherChaCha20)
	if err != nil {
		t.Fatal(err)
	}

	mgr := newTestManager(t, cipher)

	info, err := mgr.Create(testState())
	if err != nil {
		t.Fatal(err)
	}

	// Plaintext account names must not appear in the file.
	raw, err := os.ReadFile(info.Path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("alice")) {
		t.Error("encrypted snapshot leaks plaintext state")
	}

	state, _, err := mgr.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Tokens) != 3 {
		t.Errorf("expected 3 tokens after decrypt, got %d", len(state.Tokens))
	}

	// A manager without the cipher cannot read it.
	plain, err := NewManager(Config{Dir: filepath.Dir(info.Path)})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := plain.Load(); !errors.Is(err, ErrEncrypted) {
		t.Errorf("expected ErrEncrypted, got %v", err)
	}
}

func TestManager_Prune(t *testing.T) {
	dir, err := os.MkdirTemp("", "snapshot-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := DefaultConfig(dir)
	cfg.RetentionCount = 2
	cfg.RetentionDays = -1 // Count-only retention

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if _, err := mgr.Create(testState()); err != nil {
			t.Fatal(err)
		}
	}

	if err := mgr.Prune(); err != nil {
		t.Fatal(err)
	}

	infos, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Errorf("expected 2 snapshots after prune, got %d", len(infos))
	}
}

func TestManager_DomainRoundTrip(t *testing.T) {
	mgr := newTestManager(t, nil)

	in := &State{
		Tokens:   []TokenEntry{{ID: 42, Owner: domain.Account("owner-a"), Approved: domain.Account("spender-b")}},
		Balances: map[string]uint32{"owner-a": 1},
	}
	if _, err := mgr.Create(in); err != nil {
		t.Fatal(err)
	}

	out, _, err := mgr.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out.Tokens[0].ID != 42 || out.Tokens[0].Owner != "owner-a" {
		t.Errorf("unexpected token entry: %+v", out.Tokens[0])
	}
}
