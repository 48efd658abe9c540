/*
Package neosched provides runtime-adaptive task scheduling for tick-driven
hosts, with database and metrics helpers.

Scheduling (pkg/sched):
  - one Scheduler facade over two host concurrency models
  - backend picked once at construction: single global tick loop, or
    partitioned regions when the host exposes them
  - tick-delayed, repeating, cron, and target-bound submissions with a
    uniform cancellation handle

Host Contract (pkg/host):
  - small interfaces the embedding application implements
  - hosttest: deterministic simulated hosts with a stepped tick clock

Database (pkg/database):
  - database/sql pool for SQLite, MySQL, MariaDB, and PostgreSQL
  - async exec/query on a bounded worker pool, transactions, YAML config

Metrics (pkg/metrics):
  - central Prometheus registry shared by the other packages

Example usage:

	import (
		"github.com/EggFine/neosched/pkg/host"
		"github.com/EggFine/neosched/pkg/sched"
	)

	s, _ := sched.New(myHost) // backend chosen here

	s.Submit(func() { world.Step() })
	s.SubmitForTarget(mob, func() { mob.Poke() }, nil, 10)

	handle, _ := s.SubmitRepeatingAsync(func(c sched.Cancellable) {
		if done() {
			c.Cancel()
		}
	}, 0, 20*host.TicksPerSecond)
	defer handle.Cancel()
*/
package neosched
