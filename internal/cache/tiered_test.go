package cache

import (
	"context"
	"testing"
	"time"
)

func TestTieredCache_L1Miss_L2Hit(t *testing.T) {
	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	tc := NewTieredCache(l1, l2, time.Minute)
	defer tc.Close()

	ctx := context.Background()

	// Seed only L2, simulating a value written by another instance.
	if err := l2.Set(ctx, "k", []byte("shared"), time.Minute); err != nil {
		t.Fatalf("seed L2 failed: %v", err)
	}

	val, err := tc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "shared" {
		t.Fatalf("expected 'shared', got %q", val)
	}

	// L1 should now be populated.
	if _, err := l1.Get(ctx, "k"); err != nil {
		t.Fatalf("L1 not populated on L2 hit: %v", err)
	}
}

func TestTieredCache_WritesBothLayers(t *testing.T) {
	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	tc := NewTieredCache(l1, l2, time.Minute)
	defer tc.Close()

	ctx := context.Background()

	if err := tc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := l1.Get(ctx, "k"); err != nil {
		t.Fatalf("L1 missing after Set: %v", err)
	}
	if _, err := l2.Get(ctx, "k"); err != nil {
		t.Fatalf("L2 missing after Set: %v", err)
	}
}

func TestTieredCache_L1TTLBoundedByEntryTTL(t *testing.T) {
	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	tc := NewTieredCache(l1, l2, time.Hour)
	defer tc.Close()

	ctx := context.Background()

	// A 10ms entry must not linger in L1 for the full hour.
	if err := tc.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := tc.Get(ctx, "k"); err != ErrNotFound {
		t.Fatalf("entry outlived its TTL via L1: %v", err)
	}
}

func TestTieredCache_Clear(t *testing.T) {
	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	tc := NewTieredCache(l1, l2, time.Minute)
	defer tc.Close()

	ctx := context.Background()

	if err := tc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := tc.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := tc.Get(ctx, "k"); err != ErrNotFound {
		t.Fatalf("key survived Clear: %v", err)
	}
}
