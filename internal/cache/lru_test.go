package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	// "b" is now least recently used and should be evicted
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v", v, ok)
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still readable")
	}
	if ok := c.Touch("k"); ok {
		t.Error("expired entry still touchable")
	}
}

func TestLRUTouchExtends(t *testing.T) {
	c := NewLRU[string](10, 50*time.Millisecond)
	c.Set("k", "v")

	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		if !c.Touch("k") {
			t.Fatalf("entry expired despite touch on iteration %d", i)
		}
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRU[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after cleanup", c.Size())
	}
}
