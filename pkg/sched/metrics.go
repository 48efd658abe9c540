package sched

import (
	"time"

	"github.com/EggFine/neosched/pkg/host"
	"github.com/EggFine/neosched/pkg/metrics"
)

// Submission kind labels shared by the backend decorator and the
// facade's callback guard.
const (
	kindNow        = "now"
	kindNowAsync   = "now_async"
	kindAfter      = "after"
	kindAfterAsync = "after_async"
	kindRepeating  = "repeating"
	kindTarget     = "target"
	kindCron       = "cron"
)

// metricsBackend wraps a backend with submission counters. Firing-side
// metrics live in the facade guard, which is the only place that sees
// callbacks actually run.
type metricsBackend struct {
	next     backend
	registry *metrics.Registry
	name     string
	backend  string
}

func newMetricsBackend(next backend, registry *metrics.Registry, name string) *metricsBackend {
	return &metricsBackend{
		next:     next,
		registry: registry,
		name:     name,
		backend:  next.kind().String(),
	}
}

// count records one submission outcome and passes the error through.
func (mb *metricsBackend) count(kind string, err error) error {
	if err != nil {
		mb.registry.TasksRejected.WithLabelValues(mb.name, mb.backend, kind).Inc()
		return err
	}
	mb.registry.TasksSubmitted.WithLabelValues(mb.name, mb.backend, kind).Inc()
	return nil
}

func (mb *metricsBackend) kind() BackendKind { return mb.next.kind() }

func (mb *metricsBackend) submitNow(fn func()) error {
	return mb.count(kindNow, mb.next.submitNow(fn))
}

func (mb *metricsBackend) submitNowAsync(fn func()) error {
	return mb.count(kindNowAsync, mb.next.submitNowAsync(fn))
}

func (mb *metricsBackend) submitAfter(fn func(), delay host.Ticks) error {
	return mb.count(kindAfter, mb.next.submitAfter(fn, delay))
}

func (mb *metricsBackend) submitAfterAsync(fn func(), delay host.Ticks) error {
	return mb.count(kindAfterAsync, mb.next.submitAfterAsync(fn, delay))
}

func (mb *metricsBackend) submitRepeatingAsync(h *taskHandle, fn func(), delay, period host.Ticks) error {
	return mb.count(kindRepeating, mb.next.submitRepeatingAsync(h, fn, delay, period))
}

func (mb *metricsBackend) submitForTarget(t host.Target, run, retired func(), delay host.Ticks) error {
	return mb.count(kindTarget, mb.next.submitForTarget(t, run, retired, delay))
}

func (mb *metricsBackend) submitWallClock(h *taskHandle, fn func(), d time.Duration) error {
	return mb.count(kindCron, mb.next.submitWallClock(h, fn, d))
}
