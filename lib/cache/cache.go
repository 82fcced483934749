package cache

import (
	"fmt"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/essildoor/tengu-travels/lib/cache/internal"
)

var log = logger.GetLogger("cache")

// DefaultCapacity bounds a cache when no explicit capacity is configured.
const DefaultCapacity = 1000

// EntityCache caches rendered entity responses keyed by entity id.
//
// Reads and writes go straight to the concurrent primary map; every
// mutation additionally enqueues a maintenance task for the janitor
// goroutine, which owns the recency index exclusively (see package doc).
type EntityCache struct {
	name     string
	capacity int

	storage *xsync.MapOf[int32, []byte]
	tasks   *internal.TaskQueue
	clock   atomic.Uint64 // logical access time, monotonically increasing
	janitor chan struct{} // closed when the janitor drained everything

	hits   *metrics.Counter
	misses *metrics.Counter
}

// New creates a cache named for metrics purposes and starts its janitor.
// A capacity of 0 or less falls back to DefaultCapacity.
func New(name string, capacity int) *EntityCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &EntityCache{
		name:     name,
		capacity: capacity,
		storage:  xsync.NewMapOf[int32, []byte](),
		tasks:    internal.NewTaskQueue(),
		janitor:  make(chan struct{}),
		hits:     metrics.GetOrCreateCounter(fmt.Sprintf(`tengu_cache_hits_total{cache=%q}`, name)),
		misses:   metrics.GetOrCreateCounter(fmt.Sprintf(`tengu_cache_misses_total{cache=%q}`, name)),
	}
	go c.runJanitor()
	return c
}

// Get returns the cached response for id. A hit schedules an asynchronous
// recency touch; the caller never waits on the bookkeeping.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *EntityCache) Get(id int32) ([]byte, bool) {
	value, ok := c.storage.Load(id)
	if !ok {
		c.misses.Inc()
		return nil, false
	}
	c.hits.Inc()
	c.tasks.Push(&internal.Task{Op: internal.OpTouch, Key: id, Tick: c.clock.Add(1)})
	return value, true
}

// Put inserts or replaces the cached response for id. When the cache is at
// capacity, eviction of the single least recently accessed entry is
// scheduled before the insert; the eviction runs asynchronously, so the
// capacity may transiently be exceeded by in-flight inserts.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *EntityCache) Put(id int32, value []byte) {
	if c.storage.Size() >= c.capacity {
		c.tasks.Push(&internal.Task{Op: internal.OpEvict})
	}
	c.storage.Store(id, value)
	c.tasks.Push(&internal.Task{Op: internal.OpAdd, Key: id, Tick: c.clock.Add(1)})
}

// Remove drops the cached response for id, if any.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *EntityCache) Remove(id int32) {
	c.storage.Delete(id)
	c.tasks.Push(&internal.Task{Op: internal.OpRemove, Key: id})
}

// Len returns the current number of cached entries.
func (c *EntityCache) Len() int {
	return c.storage.Size()
}

// Sync blocks until every maintenance task enqueued before the call has
// been processed by the janitor.
func (c *EntityCache) Sync() {
	done := make(chan struct{})
	if !c.tasks.Push(&internal.Task{Op: internal.OpSync, Done: done}) {
		return
	}
	<-done
}

// Close stops the janitor after it drained all pending tasks. The cache
// must not be used afterwards.
func (c *EntityCache) Close() {
	c.tasks.Close()
	<-c.janitor
}

// runJanitor is the single consumer of the task queue and the exclusive
// owner of the recency index.
func (c *EntityCache) runJanitor() {
	defer close(c.janitor)

	recency := internal.NewRecencyIndex()
	for task := range c.tasks.Recv() {
		switch task.Op {
		case internal.OpAdd, internal.OpTouch:
			recency.AddItem(task.Key, task.Tick)
		case internal.OpRemove:
			recency.RemoveByKey(task.Key)
		case internal.OpEvict:
			if key, ok := recency.PopOldest(); ok {
				c.storage.Delete(key)
				log.Debugf("cache %s evicted entry %d", c.name, key)
			}
		case internal.OpSync:
			close(task.Done)
		default:
			log.Errorf("cache %s: unknown maintenance task %d", c.name, task.Op)
		}
	}
}
