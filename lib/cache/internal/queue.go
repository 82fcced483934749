package internal

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Maintenance tasks
// --------------------------------------------------------------------------

type TaskOp int

const (
	OpAdd    TaskOp = iota // key entered the cache at Tick
	OpTouch                // key was read at Tick
	OpRemove               // key left the cache
	OpEvict                // drop the least recently accessed key
	OpSync                 // barrier: close Done once all prior tasks ran
)

// Task is one unit of recency bookkeeping handed to the janitor.
type Task struct {
	Op   TaskOp
	Key  int32
	Tick uint64
	Done chan struct{} // only set for OpSync
}

// --------------------------------------------------------------------------
// Lock-free MPSC task queue
// --------------------------------------------------------------------------

// taskNode is a single element in the queue's linked list.
type taskNode struct {
	value *Task
	next  atomic.Pointer[taskNode]
}

// TaskQueue is a lock-free multi-producer single-consumer queue carrying
// maintenance tasks from the cache's public methods to the janitor.
// Any number of goroutines may Push concurrently; exactly one consumer
// drains the Recv channel. Producers never block on the consumer: pushes
// append to a linked list with atomic pointer operations, and a dedicated
// forwarder moves items onto the output channel.
type TaskQueue struct {
	head     atomic.Pointer[taskNode]
	tail     atomic.Pointer[taskNode]
	out      chan *Task
	consumer sync.WaitGroup
	closed   atomic.Bool

	// condition variable for efficient waiting when the queue runs dry
	mu   sync.Mutex
	cond *sync.Cond
}

func NewTaskQueue() *TaskQueue {
	sentinel := &taskNode{}

	q := &TaskQueue{out: make(chan *Task)}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.forward()

	return q
}

// Push appends a task. Returns false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *TaskQueue) Push(t *Task) bool {
	if t == nil || q.closed.Load() {
		return false
	}

	newNode := &taskNode{value: t}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()
		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// the CAS below may fail if another producer already helped
				// move the tail forward, which is fine
				q.tail.CompareAndSwap(tailNode, newNode)
				q.cond.Signal()
				return true
			}
		} else {
			// help a producer that appended but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// exponential backoff under contention: spin first, yield later
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// forward continuously moves tasks from the linked list to the output
// channel, freeing consumed nodes as it goes.
func (q *TaskQueue) forward() {
	defer q.consumer.Done()
	defer close(q.out)

	for {
		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			hasItems = true

			value := next.value
			q.head.Store(next)
			q.out <- value
			next.value = nil
		}

		if !hasItems && q.closed.Load() {
			return
		}

		if !hasItems {
			q.mu.Lock()
			// double-check after acquiring the lock, a producer may have
			// pushed between the scan above and here
			head := q.head.Load()
			if head.next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the receive-only channel the janitor drains.
func (q *TaskQueue) Recv() <-chan *Task {
	return q.out
}

// Close stops accepting new tasks. Tasks already queued are still
// delivered before the Recv channel closes.
func (q *TaskQueue) Close() {
	q.closed.Store(true)
	q.cond.Signal()
}
