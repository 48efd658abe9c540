package sched

import (
	"sync"

	"github.com/EggFine/neosched/pkg/host"
)

// BackendKind identifies the scheduling backend driving a Scheduler.
type BackendKind int

const (
	// GlobalLoop submits all synchronous work to the host's single
	// main loop and async work to its worker pool.
	GlobalLoop BackendKind = iota

	// Partitioned submits work to per-region schedulers, the
	// global-region coordinator, and a region-independent async
	// scheduler.
	Partitioned
)

// String returns the backend label used in logs and metrics.
func (k BackendKind) String() string {
	switch k {
	case GlobalLoop:
		return "global_loop"
	case Partitioned:
		return "partitioned"
	default:
		return "unknown"
	}
}

var (
	detectOnce sync.Once
	detected   BackendKind
)

// Detect reports which backend New selects for h. The capability probe
// runs once per process and the result is cached, so every call after
// the first returns the same answer regardless of the host passed. A
// process is expected to run against exactly one host kind.
func Detect(h host.Host) BackendKind {
	detectOnce.Do(func() {
		if _, ok := h.(host.Partitioned); ok {
			detected = Partitioned
		}
	})
	return detected
}
