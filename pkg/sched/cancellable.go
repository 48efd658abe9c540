package sched

import (
	"sync/atomic"

	"github.com/EggFine/neosched/pkg/host"
)

// Cancellable is the handle returned for repeating and cron tasks.
// Cancel stops future firings; a firing already in progress runs to
// completion.
type Cancellable interface {
	// Cancel stops the task. It is idempotent and safe to call before
	// the task has reached the host scheduler.
	Cancel()

	// IsCancelled reports whether the task was cancelled, either
	// through this handle or by the host. When the host task cannot
	// report its own state, the answer falls back to what this handle
	// recorded, so a host-side cancel may go unreported here.
	IsCancelled() bool
}

// taskBox wraps the native host task so the handle can swap between
// different concrete task types through one pointer cell.
type taskBox struct {
	t host.Task
}

// taskHandle is the live Cancellable implementation. The native task
// is attached after submission and re-attached on every cron leg, so
// cancellation must work before attach, after attach, and between
// legs.
type taskHandle struct {
	cancelled atomic.Bool
	native    atomic.Pointer[taskBox]
}

func newTaskHandle() *taskHandle {
	return &taskHandle{}
}

// attach publishes the native task backing this handle. A cancellation
// that arrived before the task reached the host is applied here.
func (h *taskHandle) attach(t host.Task) {
	if t == nil {
		return
	}
	h.native.Store(&taskBox{t: t})
	if h.cancelled.Load() {
		t.Cancel()
	}
}

func (h *taskHandle) Cancel() {
	if !h.cancelled.CompareAndSwap(false, true) {
		return
	}
	if box := h.native.Load(); box != nil {
		box.t.Cancel()
	}
}

func (h *taskHandle) IsCancelled() bool {
	if h.cancelled.Load() {
		return true
	}
	box := h.native.Load()
	if box == nil {
		return false
	}
	if st, ok := box.t.(host.TaskStatus); ok {
		return st.IsCancelled()
	}
	return false
}

// inertHandle is returned alongside submission errors so callers never
// receive a nil Cancellable. It reports itself cancelled.
type inertHandle struct{}

func (inertHandle) Cancel() {}

func (inertHandle) IsCancelled() bool { return true }
