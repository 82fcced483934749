// Package cache provides a bounded cache for rendered entity responses
// with approximate least-recently-used eviction.
//
// The primary storage map is concurrent-safe and serves reads and writes
// without any extra locking. All recency bookkeeping (the access-ordered
// index and eviction of the oldest entry) runs on a single janitor
// goroutine fed by a lock-free task queue, so the index itself needs no
// locks and the hot read path never waits on eviction bookkeeping. The
// trade-off is precision: recency updates become visible to the evictor
// eventually, not immediately, and capacity is a soft bound that in-flight
// inserts can transiently exceed.
package cache
