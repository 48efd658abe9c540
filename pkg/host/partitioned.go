package host

import "time"

// Partitioned is the capability interface of hosts that split their
// state into independently ticking regions. Its presence on a Host
// value selects the partitioned scheduling path. The plain Host
// methods of such a value are typically unsupported and must return an
// error rather than silently running work on the wrong thread.
type Partitioned interface {
	Host

	// Coordinator returns the scheduler of the global region.
	Coordinator() Coordinator

	// AsyncScheduler returns the region-independent scheduler.
	AsyncScheduler() AsyncScheduler
}

// Coordinator schedules work onto the global region, aligned to that
// region's tick cadence.
type Coordinator interface {
	// Run schedules fn onto the next global-region tick.
	Run(fn func()) (Task, error)

	// RunDelayed schedules fn onto the global region after delay ticks.
	RunDelayed(fn func(), delay Ticks) (Task, error)
}

// AsyncScheduler schedules work off every region, on wall-clock time
// rather than ticks.
type AsyncScheduler interface {
	// RunNow schedules fn as soon as possible.
	RunNow(fn func()) (Task, error)

	// RunDelayed schedules fn after the given duration.
	RunDelayed(fn func(), delay time.Duration) (Task, error)

	// RunAtFixedRate schedules fn first after initial and then every
	// period until cancelled. period must be positive.
	RunAtFixedRate(fn func(), initial, period time.Duration) (Task, error)
}

// Target is a unit of host state owned by one region at a time. Its
// validity is evaluated when scheduled work fires, not when it is
// submitted.
type Target interface {
	// Valid reports whether the target still exists on the host.
	Valid() bool
}

// ScheduledTarget is a Target that carries its own region scheduler.
// Partitioned hosts require it for target-bound work; single-loop
// hosts only ever use Valid.
type ScheduledTarget interface {
	Target

	// Scheduler returns the scheduler bound to the target's owning
	// region. It must not return nil while the target is valid.
	Scheduler() TargetScheduler
}

// TargetScheduler runs work on whichever region owns its target at the
// moment the work fires.
type TargetScheduler interface {
	// Execute registers run to fire after delay ticks on the target's
	// owning region, or retired (when non-nil) if the target is gone
	// by then. It reports false when the target was already retired at
	// submission time, in which case nothing was registered.
	Execute(run, retired func(), delay Ticks) bool
}
