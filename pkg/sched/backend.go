package sched

import (
	"time"

	"github.com/EggFine/neosched/pkg/host"
)

// backend is the strategy seam between the Scheduler facade and a host
// concurrency model. The facade validates arguments and wraps callbacks
// before they get here, so implementations schedule exactly what they
// are handed and every callback is non-nil.
type backend interface {
	kind() BackendKind

	// submitNow schedules fn onto the main thread as soon as possible.
	submitNow(fn func()) error

	// submitNowAsync schedules fn off the main thread as soon as
	// possible.
	submitNowAsync(fn func()) error

	// submitAfter schedules fn onto the main thread after delay ticks.
	submitAfter(fn func(), delay host.Ticks) error

	// submitAfterAsync schedules fn off the main thread after delay
	// ticks.
	submitAfterAsync(fn func(), delay host.Ticks) error

	// submitRepeatingAsync schedules fn off the main thread, first
	// after delay ticks and then every period ticks, attaching the
	// native task to h. A zero period degrades to a single delayed
	// firing.
	submitRepeatingAsync(h *taskHandle, fn func(), delay, period host.Ticks) error

	// submitForTarget schedules run to fire after delay ticks on
	// whatever thread owns t by then, or retired if t is gone.
	submitForTarget(t host.Target, run, retired func(), delay host.Ticks) error

	// submitWallClock schedules fn once after a wall-clock duration,
	// attaching the native task to h. Cron legs arm through this.
	submitWallClock(h *taskHandle, fn func(), d time.Duration) error
}
