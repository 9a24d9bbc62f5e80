package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryEngine_BasicOperations(t *testing.T) {
	engine := NewMemoryEngine()
	defer engine.Close()

	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("k1"), []byte("v1")); err != nil {
			t.Fatal(err)
		}

		got, err := engine.Get(ctx, []byte("k1"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "v1" {
			t.Errorf("expected v1, got %s", got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("missing"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("k2"), []byte("v2")); err != nil {
			t.Fatal(err)
		}
		if err := engine.Delete(ctx, []byte("k2")); err != nil {
			t.Fatal(err)
		}
		_, err := engine.Get(ctx, []byte("k2"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete absent key is no-op", func(t *testing.T) {
		if err := engine.Delete(ctx, []byte("never-set")); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("Get copies value", func(t *testing.T) {
		if err := engine.Set(ctx, []byte("k3"), []byte("abc")); err != nil {
			t.Fatal(err)
		}
		got, err := engine.Get(ctx, []byte("k3"))
		if err != nil {
			t.Fatal(err)
		}
		got[0] = 'X'

		again, err := engine.Get(ctx, []byte("k3"))
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != "abc" {
			t.Errorf("stored value mutated through returned slice: %s", again)
		}
	})
}

func TestMemoryEngine_Scan(t *testing.T) {
	engine := NewMemoryEngine()
	defer engine.Close()

	ctx := context.Background()

	entries := map[string]string{
		"o/1": "alice",
		"o/2": "bob",
		"o/3": "charlie",
		"b/a": "x",
	}
	for k, v := range entries {
		if err := engine.Set(ctx, []byte(k), []byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[string]string{}
	err := engine.Scan(ctx, []byte("o/"), func(key, value []byte) bool {
		seen[string(key)] = string(value)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(seen), seen)
	}
	if seen["o/2"] != "bob" {
		t.Errorf("expected bob at o/2, got %q", seen["o/2"])
	}

	// Early stop
	count := 0
	err = engine.Scan(ctx, []byte("o/"), func(_, _ []byte) bool {
		count++
		return false
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected scan to stop after 1 entry, got %d", count)
	}
}

func TestMemoryEngine_Stats(t *testing.T) {
	engine := NewMemoryEngine()
	defer engine.Close()

	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := engine.Set(ctx, []byte(k), []byte("v")); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalKeys != 3 {
		t.Errorf("expected 3 keys, got %d", stats.TotalKeys)
	}
}

func TestMemoryEngine_Closed(t *testing.T) {
	engine := NewMemoryEngine()
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := engine.Get(ctx, []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after close: expected ErrClosed, got %v", err)
	}
	if err := engine.Set(ctx, []byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after close: expected ErrClosed, got %v", err)
	}
}
