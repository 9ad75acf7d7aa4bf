package cache

import (
	"testing"
	"time"
)

func TestTTLGetSet(t *testing.T) {
	c := NewTTL[int](time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss")
	}
	c.Set("a", 42)
	v, ok := c.Get("a")
	if !ok || v != 42 {
		t.Fatalf("expected hit with 42, got %d ok=%v", v, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL[string](10 * time.Millisecond)
	c.Set("a", "x")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestTTLInvalidateAndClear(t *testing.T) {
	c := NewTTL[string](time.Minute)
	c.Set("a", "x")
	c.Set("b", "y")

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a invalidated")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestTTLCleanExpired(t *testing.T) {
	c := NewTTL[int](10 * time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Size())
	}
}
