package store

import "sync"

// table is the generic keyed collection underlying every entity store.
// One reader/writer mutex guards the primary map; sibling stores in this
// package may take the mutex directly when the cross-store lock order
// requires it.
type table[V any] struct {
	mu    sync.RWMutex
	items map[int32]*V
}

func newTable[V any](sizeHint int) *table[V] {
	return &table[V]{items: make(map[int32]*V, sizeHint)}
}

// get returns a copy of the record for id.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *table[V]) get(id int32) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.items[id]; ok {
		return *v, true
	}
	var zero V
	return zero, false
}

// has reports whether a record with id exists.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *table[V]) has(id int32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.items[id]
	return ok
}

// size returns the number of records.
func (t *table[V]) size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// createWith runs the optimistic-then-pessimistic insert protocol for id.
// The existence check is done first under the read lock, then repeated
// under the write lock: another writer may have inserted the id in the
// window between the two locks. build is invoked under the write lock only
// after the re-check passed; it returns the record to insert, or a non-OK
// status to abort. Everything build does happens atomically with respect
// to concurrent readers of this table.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *table[V]) createWith(id int32, build func() (*V, Status)) Status {
	t.mu.RLock()
	_, exists := t.items[id]
	t.mu.RUnlock()
	if exists {
		return StatusConflict
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists = t.items[id]; exists {
		return StatusConflict
	}
	v, st := build()
	if st != StatusOK {
		return st
	}
	t.items[id] = v
	return StatusOK
}

// updateWith runs the same double-check protocol for an update of id.
// apply is invoked on the live record under the write lock; it must either
// fully apply the patch and return StatusOK, or leave the record untouched
// and return the failure status.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *table[V]) updateWith(id int32, apply func(*V) Status) Status {
	t.mu.RLock()
	_, exists := t.items[id]
	t.mu.RUnlock()
	if !exists {
		return StatusNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	v, exists := t.items[id]
	if !exists {
		return StatusNotFound
	}
	return apply(v)
}
