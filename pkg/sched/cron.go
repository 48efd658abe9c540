package sched

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	errs "github.com/EggFine/neosched/pkg/common/errors"
)

// SubmitCron schedules fn on the cron expression expr, evaluated in the
// scheduler's configured location. Expressions use six fields with
// seconds, plus descriptors such as "@hourly" and "@every 90s". The
// callback receives the returned handle so it can cancel itself.
//
// Each firing is armed as a one-shot wall-clock task and the next one
// is armed after the callback returns, so firings never overlap. The
// returned Cancellable is never nil: on error it is an inert handle
// that reports itself cancelled.
func (s *Scheduler) SubmitCron(expr string, fn func(Cancellable)) (Cancellable, error) {
	if fn == nil {
		return inertHandle{}, s.reject(kindCron, fmt.Errorf("submit cron: %w", errs.ErrNilCallback))
	}
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return inertHandle{}, s.reject(kindCron, fmt.Errorf("submit cron: invalid expression %q: %w", expr, err))
	}

	h := newTaskHandle()
	run := s.guard(kindCron, func() { fn(h) })
	if err := s.armCron(h, schedule, run); err != nil {
		return inertHandle{}, err
	}
	return h, nil
}

// armCron schedules the next leg of a cron task. Every leg re-attaches
// the native task to h so cancellation always reaches the leg in
// flight.
func (s *Scheduler) armCron(h *taskHandle, schedule cron.Schedule, run func()) error {
	now := time.Now().In(s.loc)
	next := schedule.Next(now)
	if next.IsZero() {
		return s.reject(kindCron, fmt.Errorf("submit cron: schedule yields no future run"))
	}
	leg := func() {
		if h.cancelled.Load() {
			return
		}
		run()
		if h.cancelled.Load() {
			return
		}
		if err := s.armCron(h, schedule, run); err != nil {
			s.log.Error().Err(err).Msg("cron task lost, re-arm failed")
		}
	}
	return s.backend.submitWallClock(h, leg, next.Sub(now))
}
