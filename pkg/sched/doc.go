/*
Package sched submits tasks to a tick-driven host, hiding whether the
host runs one global loop or many independently ticking regions.

A Scheduler is built once per host and selects its backend at
construction: hosts implementing host.Partitioned get the partitioned
backend, everything else the global loop. Callers write against one
surface either way.

Basic Usage:

	s, err := sched.New(myHost)
	if err != nil {
		return err
	}

	// Main-thread work, now or after a tick delay
	s.Submit(func() { world.Step() })
	s.SubmitAfter(func() { world.Save() }, 20*host.TicksPerSecond)

	// Repeating async work; the callback can cancel itself
	handle, _ := s.SubmitRepeatingAsync(func(c sched.Cancellable) {
		if done() {
			c.Cancel()
		}
	}, 0, 20)
	defer handle.Cancel()

Target Affinity:

Work bound to a unit of host state runs on whatever thread owns that
unit when the delay elapses. If the unit is gone by then, the retired
callback runs instead; exactly one of the two runs, at most once.

	s.SubmitForTarget(mob, func() { mob.Poke() }, nil, 10)

Cron Scheduling:

SubmitCron accepts six-field expressions with seconds plus descriptors
such as "@hourly". Each firing arms the next, so firings never overlap.

	handle, err := s.SubmitCron("0 0 4 * * *", func(c sched.Cancellable) {
		backup()
	})

Delays are host.Ticks; one tick is host.TickDuration (50ms) of wall
time, and conversions between the two never fire work early. Panicking
tasks are recovered, counted, and logged without unwinding into the
host loop.
*/
package sched
