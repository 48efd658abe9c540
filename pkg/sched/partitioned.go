package sched

import (
	"time"

	errs "github.com/EggFine/neosched/pkg/common/errors"
	"github.com/EggFine/neosched/pkg/host"
)

// partitionedBackend fans submissions out to the host's global-region
// coordinator, its async scheduler, and per-target region schedulers.
type partitionedBackend struct {
	coord host.Coordinator
	async host.AsyncScheduler
}

// newPartitionedBackend reports false when the host advertises the
// partitioned capability but hands back no usable schedulers.
func newPartitionedBackend(p host.Partitioned) (*partitionedBackend, bool) {
	coord := p.Coordinator()
	async := p.AsyncScheduler()
	if coord == nil || async == nil {
		return nil, false
	}
	return &partitionedBackend{coord: coord, async: async}, true
}

func (b *partitionedBackend) kind() BackendKind { return Partitioned }

func (b *partitionedBackend) submitNow(fn func()) error {
	_, err := b.coord.Run(fn)
	return err
}

func (b *partitionedBackend) submitNowAsync(fn func()) error {
	_, err := b.async.RunNow(fn)
	return err
}

func (b *partitionedBackend) submitAfter(fn func(), delay host.Ticks) error {
	_, err := b.coord.RunDelayed(fn, delay)
	return err
}

func (b *partitionedBackend) submitAfterAsync(fn func(), delay host.Ticks) error {
	_, err := b.async.RunDelayed(fn, delay.Duration())
	return err
}

func (b *partitionedBackend) submitRepeatingAsync(h *taskHandle, fn func(), delay, period host.Ticks) error {
	var t host.Task
	var err error
	if period == 0 {
		t, err = b.async.RunDelayed(fn, delay.Duration())
	} else {
		t, err = b.async.RunAtFixedRate(fn, delay.Duration(), period.Duration())
	}
	if err != nil {
		return err
	}
	h.attach(t)
	return nil
}

func (b *partitionedBackend) submitForTarget(t host.Target, run, retired func(), delay host.Ticks) error {
	st, ok := t.(host.ScheduledTarget)
	if !ok {
		return errs.ErrNoTargetScheduler
	}
	sc := st.Scheduler()
	if sc == nil {
		return errs.ErrNoTargetScheduler
	}
	if !sc.Execute(run, retired, delay) {
		// The target was gone at submission and nothing was
		// registered, so retired still owes its firing.
		_, err := b.coord.RunDelayed(retired, delay)
		return err
	}
	return nil
}

func (b *partitionedBackend) submitWallClock(h *taskHandle, fn func(), d time.Duration) error {
	t, err := b.async.RunDelayed(fn, d)
	if err != nil {
		return err
	}
	h.attach(t)
	return nil
}
