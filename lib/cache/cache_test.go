package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

// TestCachePutGet tests basic insert and lookup
func TestCachePutGet(t *testing.T) {
	c := New("test-put-get", 10)
	defer c.Close()

	c.Put(1, []byte(`{"id":1}`))

	got, ok := c.Get(1)
	if !ok {
		t.Fatal("key 1 should be cached")
	}
	if !bytes.Equal(got, []byte(`{"id":1}`)) {
		t.Errorf("expected cached body, got %s", got)
	}

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should miss")
	}
}

// TestCachePutReplaces tests that a second put overwrites the value
func TestCachePutReplaces(t *testing.T) {
	c := New("test-put-replaces", 10)
	defer c.Close()

	c.Put(1, []byte("old"))
	c.Put(1, []byte("new"))

	got, _ := c.Get(1)
	if !bytes.Equal(got, []byte("new")) {
		t.Errorf("expected new value, got %s", got)
	}

	c.Sync()
	if c.Len() != 1 {
		t.Errorf("replacing a key must not grow the cache, len is %d", c.Len())
	}
}

// TestCacheRemove tests invalidation
func TestCacheRemove(t *testing.T) {
	c := New("test-remove", 10)
	defer c.Close()

	c.Put(1, []byte("x"))
	c.Remove(1)

	if _, ok := c.Get(1); ok {
		t.Error("removed key should miss")
	}

	// removing an absent key must be a no-op
	c.Remove(99)
	c.Sync()
}

// TestCacheEvictsAtCapacity tests that inserting one entry past capacity
// settles back to exactly the capacity
func TestCacheEvictsAtCapacity(t *testing.T) {
	c := New("test-evict-capacity", 3)
	defer c.Close()

	for id := int32(1); id <= 4; id++ {
		c.Put(id, []byte{byte(id)})
	}
	c.Sync()

	if c.Len() != 3 {
		t.Errorf("expected 3 entries after eviction, got %d", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Error("key 1 was the least recently accessed and should be evicted")
	}
	if _, ok := c.Get(4); !ok {
		t.Error("key 4 was just inserted and should be cached")
	}
}

// TestCacheEvictsLeastRecentlyAccessed tests that a read protects its key
// from the next eviction
func TestCacheEvictsLeastRecentlyAccessed(t *testing.T) {
	c := New("test-evict-lru", 2)
	defer c.Close()

	c.Put(1, []byte("a"))
	c.Put(2, []byte("b"))

	// touch key 1, making key 2 the eviction victim
	if _, ok := c.Get(1); !ok {
		t.Fatal("key 1 should be cached")
	}

	c.Put(3, []byte("c"))
	c.Sync()

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("key 1 was touched and should survive")
	}
	if _, ok := c.Get(3); !ok {
		t.Error("key 3 was just inserted and should be cached")
	}
}

// TestCacheDefaultCapacity tests the capacity fallback
func TestCacheDefaultCapacity(t *testing.T) {
	c := New("test-default-capacity", 0)
	defer c.Close()

	if c.capacity != DefaultCapacity {
		t.Errorf("expected capacity %d, got %d", DefaultCapacity, c.capacity)
	}
}

// TestCacheSyncAfterClose tests that Sync does not block on a closed cache
func TestCacheSyncAfterClose(t *testing.T) {
	c := New("test-sync-after-close", 10)
	c.Put(1, []byte("x"))
	c.Close()

	// pushing onto a closed queue fails fast, so this must return instead
	// of blocking on a barrier the janitor will never process
	c.Sync()
}

// TestCacheConcurrentAccess is a smoke test for concurrent readers and
// writers against a small cache
func TestCacheConcurrentAccess(t *testing.T) {
	c := New("test-concurrent", 64)
	defer c.Close()

	const goroutines = 8
	const opsPerGoroutine = 2000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				id := int32((seed*opsPerGoroutine + i) % 256)
				switch i % 3 {
				case 0:
					c.Put(id, []byte(fmt.Sprintf("v%d", id)))
				case 1:
					c.Get(id)
				default:
					c.Remove(id)
				}
			}
		}(g)
	}
	wg.Wait()
	c.Sync()

	if c.Len() < 0 || c.Len() > 256 {
		t.Errorf("cache size out of bounds: %d", c.Len())
	}
}
