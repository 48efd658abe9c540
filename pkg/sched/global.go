package sched

import (
	"time"

	"github.com/EggFine/neosched/pkg/host"
)

// globalBackend drives every submission through the host's single main
// loop and its async worker pool.
type globalBackend struct {
	h host.Host
}

func newGlobalBackend(h host.Host) *globalBackend {
	return &globalBackend{h: h}
}

func (b *globalBackend) kind() BackendKind { return GlobalLoop }

func (b *globalBackend) submitNow(fn func()) error {
	_, err := b.h.Run(fn)
	return err
}

func (b *globalBackend) submitNowAsync(fn func()) error {
	_, err := b.h.RunAsync(fn)
	return err
}

func (b *globalBackend) submitAfter(fn func(), delay host.Ticks) error {
	_, err := b.h.RunLater(fn, delay)
	return err
}

func (b *globalBackend) submitAfterAsync(fn func(), delay host.Ticks) error {
	_, err := b.h.RunLaterAsync(fn, delay)
	return err
}

func (b *globalBackend) submitRepeatingAsync(h *taskHandle, fn func(), delay, period host.Ticks) error {
	var t host.Task
	var err error
	if period == 0 {
		t, err = b.h.RunLaterAsync(fn, delay)
	} else {
		t, err = b.h.RunTimerAsync(fn, delay, period)
	}
	if err != nil {
		return err
	}
	h.attach(t)
	return nil
}

// submitForTarget has no region to pin to on a single loop, so target
// validity is checked on the loop when the delay elapses.
func (b *globalBackend) submitForTarget(t host.Target, run, retired func(), delay host.Ticks) error {
	_, err := b.h.RunLater(func() {
		if t.Valid() {
			run()
		} else {
			retired()
		}
	}, delay)
	return err
}

// submitWallClock rides the loop's delayed async path. The duration is
// rounded up to whole ticks so a firing never lands early.
func (b *globalBackend) submitWallClock(h *taskHandle, fn func(), d time.Duration) error {
	delay := host.Ticks((d + host.TickDuration - 1) / host.TickDuration)
	if delay < 1 {
		delay = 1
	}
	t, err := b.h.RunLaterAsync(fn, delay)
	if err != nil {
		return err
	}
	h.attach(t)
	return nil
}
