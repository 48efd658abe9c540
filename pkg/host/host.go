// Package host defines the scheduling surface a tick-driven host
// application exposes to neosched.
//
// A host hands the library a Host value. Hosts that run everything on
// one global loop implement just Host; hosts that split their state
// into independently ticking regions additionally implement the
// Partitioned capability interface, which is how the library tells the
// two apart. Work units that are owned by a region at a time are
// represented as Targets.
//
// Deterministic in-memory implementations for tests live in the
// hosttest subpackage.
package host

// Task is work registered with a host scheduler. Cancelling a Task
// that already ran or was already cancelled has no effect.
type Task interface {
	Cancel()
}

// TaskStatus is implemented by host tasks that can report whether they
// were cancelled. Hosts are not required to provide it; callers probe
// for it with a type assertion.
type TaskStatus interface {
	IsCancelled() bool
}

// Host is the scheduling surface of a single-loop environment: one
// global loop advances all state in tick order, and async work runs on
// a host-owned worker pool. Delays count loop ticks.
//
// Implementations must be safe for concurrent use.
type Host interface {
	// Run schedules fn onto the next tick of the main loop.
	Run(fn func()) (Task, error)

	// RunAsync schedules fn off the main loop as soon as possible.
	RunAsync(fn func()) (Task, error)

	// RunLater schedules fn onto the main loop after delay ticks.
	RunLater(fn func(), delay Ticks) (Task, error)

	// RunLaterAsync schedules fn off the main loop after delay ticks.
	RunLaterAsync(fn func(), delay Ticks) (Task, error)

	// RunTimerAsync schedules fn off the main loop, first after delay
	// ticks and then every period ticks until cancelled.
	RunTimerAsync(fn func(), delay, period Ticks) (Task, error)
}
