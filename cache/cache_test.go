package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newWithClock[T any](ttl time.Duration) (*Cache[T], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[T](ttl)
	c.now = clock.Now
	return c, clock
}

func TestCacheSetGet(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")

	val, exists := c.Get("key1")
	if !exists {
		t.Fatal("key1 should exist")
	}
	if val != "value1" {
		t.Fatalf("expected 'value1', got '%s'", val)
	}
}

func TestCacheGetMissing(t *testing.T) {
	c := New[string](0)

	if _, exists := c.Get("missing"); exists {
		t.Fatal("missing key should not exist")
	}
}

func TestCacheTTL(t *testing.T) {
	c, clock := newWithClock[string](time.Minute)
	c.Set("key1", "value1")

	if _, exists := c.Get("key1"); !exists {
		t.Fatal("key1 should exist immediately after set")
	}

	clock.Advance(time.Minute + time.Second)

	if _, exists := c.Get("key1"); exists {
		t.Fatal("key1 should be expired after TTL")
	}
}

func TestCacheZeroTTL(t *testing.T) {
	c, clock := newWithClock[string](0)
	c.Set("key1", "value1")

	clock.Advance(24 * time.Hour)

	val, exists := c.Get("key1")
	if !exists {
		t.Fatal("key1 should never expire with TTL=0")
	}
	if val != "value1" {
		t.Fatalf("expected 'value1', got '%s'", val)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string](0)
	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")

	c.Delete("key1")
	if _, exists := c.Get("key1"); exists {
		t.Fatal("key1 should be deleted")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestCacheCleanExpired(t *testing.T) {
	c, clock := newWithClock[string](time.Minute)
	c.Set("key1", "value1")
	c.Set("key2", "value2")

	clock.Advance(2 * time.Minute)
	c.Set("key3", "value3")

	c.CleanExpired()

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, exists := c.Get("key3"); !exists {
		t.Fatal("non-expired key3 should still exist")
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c, clock := newWithClock[int](time.Minute)
	loads := 0
	load := func() (int, error) {
		loads++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("answer", load)
		if err != nil {
			t.Fatalf("GetOrLoad() error = %v", err)
		}
		if v != 42 {
			t.Fatalf("GetOrLoad() = %d, want 42", v)
		}
	}
	if loads != 1 {
		t.Errorf("load called %d times, want 1", loads)
	}

	clock.Advance(2 * time.Minute)
	if _, err := c.GetOrLoad("answer", load); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if loads != 2 {
		t.Errorf("load called %d times after expiry, want 2", loads)
	}
}

func TestCacheGetOrLoadError(t *testing.T) {
	c := New[int](0)
	boom := errors.New("boom")

	_, err := c.GetOrLoad("key", func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("GetOrLoad() error = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Error("failed load should not store anything")
	}
}

func TestCacheThreadSafety(t *testing.T) {
	c := New[int](0)
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("key", id*100+j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get("key")
			}
		}()
	}
	wg.Wait()

	if _, ok := c.Get("key"); !ok {
		t.Fatal("key should exist after concurrent writes")
	}
}
