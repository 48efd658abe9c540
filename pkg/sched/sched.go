package sched

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	errs "github.com/EggFine/neosched/pkg/common/errors"
	"github.com/EggFine/neosched/pkg/host"
	"github.com/EggFine/neosched/pkg/metrics"
)

// Config holds scheduler configuration.
type Config struct {
	// Name labels log lines and metrics emitted by this scheduler
	// (default: "default").
	Name string

	// Logger receives backend selection and task failure logs. Nil
	// disables logging.
	Logger *zerolog.Logger

	// Metrics controls Prometheus instrumentation.
	Metrics metrics.Config

	// Location is the timezone cron expressions are evaluated in
	// (default: time.Local).
	Location *time.Location

	// PanicLogsPerSecond caps how many panicking tasks are logged per
	// second. Panics over the cap are counted and reported with the
	// next logged one (default: 1).
	PanicLogsPerSecond int
}

// Scheduler submits work to a host. The backend matching the host's
// concurrency model is selected once, at construction, and every
// submission goes through it.
//
// A Scheduler is safe for concurrent use and has no lifecycle of its
// own: execution stops when the host stops.
type Scheduler struct {
	name    string
	log     zerolog.Logger
	backend backend
	label   string
	reg     *metrics.Registry
	loc     *time.Location
	parser  cron.Parser

	panicLimit       *rate.Limiter
	panicsSuppressed atomic.Int64
}

// New creates a Scheduler for h with default configuration.
func New(h host.Host) (*Scheduler, error) {
	return NewWithConfig(h, Config{})
}

// NewWithConfig creates a Scheduler for h.
//
// Backend selection follows Detect: a partitioned host gets the
// partitioned backend, everything else the global loop. A partitioned
// host whose Coordinator or AsyncScheduler is nil falls back to the
// global loop for this Scheduler only, logged once; the cached
// detection result is unaffected.
func NewWithConfig(h host.Host, cfg Config) (*Scheduler, error) {
	if h == nil {
		return nil, fmt.Errorf("scheduler: %w: host is nil", errs.ErrInvalidConfiguration)
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("scheduler", name).Logger()
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	panicLogs := cfg.PanicLogsPerSecond
	if panicLogs <= 0 {
		panicLogs = 1
	}

	var b backend = newGlobalBackend(h)
	if Detect(h) == Partitioned {
		if p, ok := h.(host.Partitioned); ok {
			if pb, ok := newPartitionedBackend(p); ok {
				b = pb
			} else {
				log.Error().Msg("partitioned host exposes no schedulers, falling back to the global loop")
			}
		}
	}

	reg := cfg.Metrics.Resolve()
	if reg != nil {
		b = newMetricsBackend(b, reg, name)
	}

	s := &Scheduler{
		name:       name,
		log:        log,
		backend:    b,
		label:      b.kind().String(),
		reg:        reg,
		loc:        loc,
		parser:     cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		panicLimit: rate.NewLimiter(rate.Limit(panicLogs), panicLogs),
	}
	s.log.Info().Str("backend", s.label).Msg("scheduler backend selected")
	return s, nil
}

// Backend reports the backend this Scheduler submits through. It can
// differ from Detect when construction fell back to the global loop.
func (s *Scheduler) Backend() BackendKind {
	return s.backend.kind()
}

// Submit schedules fn onto the main thread as soon as possible.
func (s *Scheduler) Submit(fn func()) error {
	if fn == nil {
		return s.reject(kindNow, fmt.Errorf("submit: %w", errs.ErrNilCallback))
	}
	return s.backend.submitNow(s.guard(kindNow, fn))
}

// SubmitAsync schedules fn off the main thread as soon as possible.
func (s *Scheduler) SubmitAsync(fn func()) error {
	if fn == nil {
		return s.reject(kindNowAsync, fmt.Errorf("submit async: %w", errs.ErrNilCallback))
	}
	return s.backend.submitNowAsync(s.guard(kindNowAsync, fn))
}

// SubmitAfter schedules fn onto the main thread after delay ticks.
func (s *Scheduler) SubmitAfter(fn func(), delay host.Ticks) error {
	if fn == nil {
		return s.reject(kindAfter, fmt.Errorf("submit after: %w", errs.ErrNilCallback))
	}
	if delay < 0 {
		return s.reject(kindAfter, fmt.Errorf("submit after: %w", errs.ErrNegativeTicks))
	}
	return s.backend.submitAfter(s.guard(kindAfter, fn), delay)
}

// SubmitAfterAsync schedules fn off the main thread after delay ticks.
func (s *Scheduler) SubmitAfterAsync(fn func(), delay host.Ticks) error {
	if fn == nil {
		return s.reject(kindAfterAsync, fmt.Errorf("submit after async: %w", errs.ErrNilCallback))
	}
	if delay < 0 {
		return s.reject(kindAfterAsync, fmt.Errorf("submit after async: %w", errs.ErrNegativeTicks))
	}
	return s.backend.submitAfterAsync(s.guard(kindAfterAsync, fn), delay)
}

// SubmitRepeatingAsync schedules fn off the main thread, first after
// delay ticks and then every period ticks until cancelled. The callback
// receives the returned handle so it can cancel itself. A zero period
// fires exactly once.
//
// The returned Cancellable is never nil: on error it is an inert handle
// that reports itself cancelled.
func (s *Scheduler) SubmitRepeatingAsync(fn func(Cancellable), delay, period host.Ticks) (Cancellable, error) {
	if fn == nil {
		return inertHandle{}, s.reject(kindRepeating, fmt.Errorf("submit repeating: %w", errs.ErrNilCallback))
	}
	if delay < 0 || period < 0 {
		return inertHandle{}, s.reject(kindRepeating, fmt.Errorf("submit repeating: %w", errs.ErrNegativeTicks))
	}

	h := newTaskHandle()
	run := s.guard(kindRepeating, func() { fn(h) })
	wrapped := func() {
		// The host keeps firing until cancellation reaches the native
		// task; the handle's own flag closes that window.
		if h.cancelled.Load() {
			return
		}
		run()
	}
	if err := s.backend.submitRepeatingAsync(h, wrapped, delay, period); err != nil {
		return inertHandle{}, err
	}
	return h, nil
}

// SubmitForTarget schedules fn to run after delay ticks on whatever
// thread owns t when the delay elapses. If t is gone by then, retired
// (when non-nil) runs instead. Exactly one of the two callbacks runs,
// at most once, regardless of how the host delivers them.
func (s *Scheduler) SubmitForTarget(t host.Target, fn, retired func(), delay host.Ticks) error {
	if t == nil {
		return s.reject(kindTarget, fmt.Errorf("submit for target: %w", errs.ErrNilTarget))
	}
	if fn == nil {
		return s.reject(kindTarget, fmt.Errorf("submit for target: %w", errs.ErrNilCallback))
	}
	if delay < 0 {
		return s.reject(kindTarget, fmt.Errorf("submit for target: %w", errs.ErrNegativeTicks))
	}

	var fired atomic.Bool
	run := s.guard(kindTarget, fn)
	var onRetired func()
	if retired != nil {
		onRetired = s.guard(kindTarget, retired)
	}
	runOnce := func() {
		if fired.CompareAndSwap(false, true) {
			run()
		}
	}
	retiredOnce := func() {
		if fired.CompareAndSwap(false, true) {
			s.countRetired()
			if onRetired != nil {
				onRetired()
			}
		}
	}
	return s.backend.submitForTarget(t, runOnce, retiredOnce, delay)
}

// reject records a submission the facade refused before it reached the
// backend.
func (s *Scheduler) reject(kind string, err error) error {
	if s.reg != nil {
		s.reg.TasksRejected.WithLabelValues(s.name, s.label, kind).Inc()
	}
	return err
}

func (s *Scheduler) countRetired() {
	if s.reg != nil {
		s.reg.TargetsRetired.WithLabelValues(s.name, s.label).Inc()
	}
}

// guard wraps a task callback with firing metrics and panic recovery.
// A panicking task is logged with its stack and never unwinds into the
// host loop.
func (s *Scheduler) guard(kind string, fn func()) func() {
	return func() {
		start := time.Now()
		defer func() {
			if s.reg != nil {
				s.reg.TaskDuration.WithLabelValues(s.name, s.label, kind).Observe(time.Since(start).Seconds())
			}
			if r := recover(); r != nil {
				s.recordPanic(kind, r)
			}
		}()
		if s.reg != nil {
			s.reg.TasksFired.WithLabelValues(s.name, s.label, kind).Inc()
		}
		fn()
	}
}

// recordPanic counts every panic but logs at a bounded rate, carrying
// the number of panics suppressed since the last logged one.
func (s *Scheduler) recordPanic(kind string, r interface{}) {
	if s.reg != nil {
		s.reg.TaskPanics.WithLabelValues(s.name, s.label, kind).Inc()
	}
	if !s.panicLimit.Allow() {
		s.panicsSuppressed.Add(1)
		return
	}
	s.log.Error().
		Str("kind", kind).
		Int64("suppressed", s.panicsSuppressed.Swap(0)).
		Interface("panic", r).
		Bytes("stack", debug.Stack()).
		Msg("task panicked")
}
