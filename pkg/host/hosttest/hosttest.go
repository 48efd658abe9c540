// Package hosttest provides deterministic in-memory hosts for testing
// code built on pkg/host.
//
// Both hosts are driven by an explicit stepped clock: nothing fires
// until Advance is called, and everything due fires on the caller's
// goroutine before Advance returns. One tick of Advance moves the
// simulated wall clock by exactly host.TickDuration.
package hosttest

import "sync"

// entry is one unit of queued work in a simulated host.
type entry struct {
	due       int64 // ticks on tick queues, nanoseconds on the async queue
	seq       uint64
	period    int64 // 0 for one-shot entries
	async     bool
	fn        func()
	retired   func() // target entries only
	cancelled bool   // guarded by the owning host's mutex
}

// entryHeap is a min-heap ordered by (due, seq) so that entries due on
// the same step fire in submission order.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(*entry)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

func (h entryHeap) peek() *entry {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// simTask is the host.Task both simulated hosts hand back. It also
// implements host.TaskStatus.
type simTask struct {
	mu *sync.Mutex
	e  *entry
}

func (t *simTask) Cancel() {
	t.mu.Lock()
	t.e.cancelled = true
	t.mu.Unlock()
}

func (t *simTask) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.e.cancelled
}
