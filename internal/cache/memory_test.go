package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "github:get_repo:owner/repo", []byte("value1"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "github:get_repo:owner/repo")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Fatalf("expected 'value1', got '%s'", string(val))
	}
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	_, err := c.Get(context.Background(), "never-set")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "expiring", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "expiring")
	if err != nil {
		t.Fatalf("Get failed immediately after set: %v", err)
	}
	if string(val) != "value" {
		t.Fatalf("expected 'value', got '%s'", string(val))
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "expiring"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after expiry, got: %v", err)
	}
	// Lazy expiry should have dropped the entry entirely.
	if ok, _ := c.Exists(ctx, "expiring"); ok {
		t.Fatal("expired entry still reported as existing")
	}
}

func TestMemoryCache_ZeroTTL(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set with zero TTL failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrNotFound {
		t.Fatalf("zero TTL entry should be absent, got: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set with negative TTL failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrNotFound {
		t.Fatalf("negative TTL entry should be absent, got: %v", err)
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v1"), 10*time.Millisecond); err != nil {
		t.Fatalf("first Set failed: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	// Expiry must be governed by the second TTL.
	time.Sleep(20 * time.Millisecond)

	val, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if string(val) != "v2" {
		t.Fatalf("expected 'v2', got '%s'", string(val))
	}
}

func TestMemoryCache_EmptyValueIsNotAMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "empty", []byte{}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "empty")
	if err != nil {
		t.Fatalf("empty value conflated with a miss: %v", err)
	}
	if len(val) != 0 {
		t.Fatalf("expected empty value, got %q", val)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("jenkins:jobs:%d", i)
		if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("jenkins:jobs:%d", i)
		if _, err := c.Get(ctx, key); err != ErrNotFound {
			t.Fatalf("key %s survived Clear: %v", key, err)
		}
	}
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("abc"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	val[0] = 'x'

	val2, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if string(val2) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", val2)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()

	const goroutines = 32
	const ops = 200

	var wg sync.WaitGroup
	wg.Add(goroutines * 3)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := fmt.Sprintf("key-%d", i%16)
				_ = c.Set(ctx, key, []byte(fmt.Sprintf("writer-%d-%d", id, i)), time.Minute)
			}
		}(g)
		go func() {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := fmt.Sprintf("key-%d", i%16)
				if val, err := c.Get(ctx, key); err == nil {
					// A read must observe a complete write, never a torn one.
					if len(val) > 0 && string(val[:7]) != "writer-" {
						t.Errorf("torn read: %q", val)
						return
					}
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				if i%50 == 0 {
					_ = c.Clear(ctx)
				}
			}
		}()
	}
	wg.Wait()
}
