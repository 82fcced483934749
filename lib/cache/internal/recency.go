// Package internal holds the bookkeeping structures of the response cache:
// the recency index and the maintenance task queue feeding the janitor.
// Neither is safe for concurrent use on its own; both are owned by the
// cache's single janitor goroutine.
package internal

import "container/heap"

// recencyItem ties an entity id to the logical tick of its last access.
type recencyItem struct {
	Key  int32  // entity id
	Tick uint64 // logical access time
	pos  int    // index in the heap slice, maintained by the heap package
}

// RecencyIndex is a min-heap over last-access ticks combined with a map for
// O(1) key lookup. Peeking the root yields the least recently accessed
// entry; AddItem either inserts a key or moves it when the tick changed.
type RecencyIndex struct {
	items []*recencyItem
	byKey map[int32]*recencyItem
}

func NewRecencyIndex() *RecencyIndex {
	return &RecencyIndex{
		items: make([]*recencyItem, 0),
		byKey: make(map[int32]*recencyItem),
	}
}

// Len returns the number of tracked keys (part of heap.Interface).
func (r *RecencyIndex) Len() int { return len(r.items) }

// Less orders by tick, oldest access first (part of heap.Interface).
func (r *RecencyIndex) Less(i, j int) bool {
	return r.items[i].Tick < r.items[j].Tick
}

// Swap exchanges items at positions i and j (part of heap.Interface).
func (r *RecencyIndex) Swap(i, j int) {
	r.items[i], r.items[j] = r.items[j], r.items[i]
	r.items[i].pos = i
	r.items[j].pos = j
}

// Push appends an item (part of heap.Interface).
func (r *RecencyIndex) Push(x interface{}) {
	it := x.(*recencyItem)
	it.pos = len(r.items)
	r.items = append(r.items, it)
	r.byKey[it.Key] = it
}

// Pop removes and returns the last item (part of heap.Interface).
func (r *RecencyIndex) Pop() interface{} {
	old := r.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // avoid memory leak
	it.pos = -1
	r.items = old[:n-1]
	delete(r.byKey, it.Key)
	return it
}

// AddItem records an access of key at the given tick, inserting the key or
// re-sorting it when already tracked.
func (r *RecencyIndex) AddItem(key int32, tick uint64) {
	if it, exists := r.byKey[key]; exists {
		it.Tick = tick
		heap.Fix(r, it.pos)
		return
	}
	heap.Push(r, &recencyItem{Key: key, Tick: tick})
}

// RemoveByKey drops a key from the index. Reports whether it was tracked.
func (r *RecencyIndex) RemoveByKey(key int32) bool {
	it, exists := r.byKey[key]
	if !exists {
		return false
	}
	heap.Remove(r, it.pos)
	return true
}

// PopOldest removes and returns the least recently accessed key.
func (r *RecencyIndex) PopOldest() (int32, bool) {
	if len(r.items) == 0 {
		return 0, false
	}
	it := heap.Pop(r).(*recencyItem)
	return it.Key, true
}

// Contains reports whether a key is tracked.
func (r *RecencyIndex) Contains(key int32) bool {
	_, exists := r.byKey[key]
	return exists
}
