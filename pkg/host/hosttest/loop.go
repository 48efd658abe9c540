package hosttest

import (
	"container/heap"
	"sync"

	"github.com/EggFine/neosched/pkg/host"
)

const (
	modeIdle = iota
	modeLoop
	modeAsync
)

// Loop simulates a single-loop host. All work lives in one tick-ordered
// queue; Advance fires due entries in (due tick, submission) order on
// the caller's goroutine. Entries submitted through the async methods
// fire on the same goroutine but report as off-loop through OnLoop.
type Loop struct {
	mu    sync.Mutex
	now   host.Ticks
	seq   uint64
	queue entryHeap
	mode  int
}

// NewLoop returns a simulated loop at tick zero with an empty queue.
func NewLoop() *Loop { return &Loop{} }

// Run implements host.Host.
func (l *Loop) Run(fn func()) (host.Task, error) {
	return l.add(fn, 0, 0, false)
}

// RunAsync implements host.Host.
func (l *Loop) RunAsync(fn func()) (host.Task, error) {
	return l.add(fn, 0, 0, true)
}

// RunLater implements host.Host.
func (l *Loop) RunLater(fn func(), delay host.Ticks) (host.Task, error) {
	return l.add(fn, delay, 0, false)
}

// RunLaterAsync implements host.Host.
func (l *Loop) RunLaterAsync(fn func(), delay host.Ticks) (host.Task, error) {
	return l.add(fn, delay, 0, true)
}

// RunTimerAsync implements host.Host.
func (l *Loop) RunTimerAsync(fn func(), delay, period host.Ticks) (host.Task, error) {
	if period < 1 {
		period = 1
	}
	return l.add(fn, delay, period, true)
}

// add queues fn to fire after delay ticks. Work never fires on the
// tick it was submitted, so the effective delay floor is one tick.
func (l *Loop) add(fn func(), delay, period host.Ticks, async bool) (host.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if delay < 1 {
		delay = 1
	}
	e := &entry{
		due:    int64(l.now + delay),
		seq:    l.seq,
		period: int64(period),
		async:  async,
		fn:     fn,
	}
	l.seq++
	heap.Push(&l.queue, e)
	return &simTask{mu: &l.mu, e: e}, nil
}

// Advance processes the next n ticks, firing every due entry before it
// returns. Entries submitted from inside a callback fire no earlier
// than the following tick.
func (l *Loop) Advance(n host.Ticks) {
	for ; n > 0; n-- {
		l.mu.Lock()
		l.now++
		for {
			e := l.queue.peek()
			if e == nil || e.due > int64(l.now) {
				break
			}
			heap.Pop(&l.queue)
			if e.cancelled {
				continue
			}
			if e.period > 0 {
				e.due += e.period
				heap.Push(&l.queue, e)
			}
			if e.async {
				l.mode = modeAsync
			} else {
				l.mode = modeLoop
			}
			l.mu.Unlock()
			e.fn()
			l.mu.Lock()
			l.mode = modeIdle
		}
		l.mu.Unlock()
	}
}

// Now returns the last tick processed by Advance.
func (l *Loop) Now() host.Ticks {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Pending returns the number of queued entries that are not cancelled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.queue {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// OnLoop reports whether the caller is inside a loop-thread firing.
// Async entries observe false.
func (l *Loop) OnLoop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode == modeLoop
}
