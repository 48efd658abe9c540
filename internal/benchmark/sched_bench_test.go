package benchmark

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/EggFine/neosched/pkg/host"
	"github.com/EggFine/neosched/pkg/host/hosttest"
	"github.com/EggFine/neosched/pkg/metrics"
	"github.com/EggFine/neosched/pkg/sched"
)

// drainEvery keeps the simulated queues bounded while benchmarking
// submission paths.
const drainEvery = 4096

// BenchmarkSubmit measures the submit-then-fire cycle on both backends.
func BenchmarkSubmit(b *testing.B) {
	b.Run("global_loop", func(b *testing.B) {
		loop := hosttest.NewLoop()
		s, err := sched.New(loop)
		if err != nil {
			b.Fatalf("failed to create scheduler: %v", err)
		}

		noop := func() {}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = s.Submit(noop)
			if i%drainEvery == drainEvery-1 {
				loop.Advance(1)
			}
		}
	})

	b.Run("partitioned", func(b *testing.B) {
		h := hosttest.NewPartitioned()
		s, err := sched.New(h)
		if err != nil {
			b.Fatalf("failed to create scheduler: %v", err)
		}

		noop := func() {}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = s.Submit(noop)
			if i%drainEvery == drainEvery-1 {
				h.Advance(1)
			}
		}
	})
}

// BenchmarkSubmitAfter measures delayed submission with a spread of due
// ticks, so heap ordering does real work.
func BenchmarkSubmitAfter(b *testing.B) {
	loop := hosttest.NewLoop()
	s, err := sched.New(loop)
	if err != nil {
		b.Fatalf("failed to create scheduler: %v", err)
	}

	noop := func() {}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.SubmitAfter(noop, host.Ticks(i%32))
		if i%drainEvery == drainEvery-1 {
			loop.Advance(32)
		}
	}
}

// BenchmarkTickFire measures per-tick overhead of one repeating task,
// with and without the metrics decorator in the path.
func BenchmarkTickFire(b *testing.B) {
	run := func(b *testing.B, cfg sched.Config) {
		loop := hosttest.NewLoop()
		s, err := sched.NewWithConfig(loop, cfg)
		if err != nil {
			b.Fatalf("failed to create scheduler: %v", err)
		}
		handle, err := s.SubmitRepeatingAsync(func(sched.Cancellable) {}, 1, 1)
		if err != nil {
			b.Fatalf("failed to submit: %v", err)
		}
		defer handle.Cancel()

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			loop.Advance(1)
		}
	}

	b.Run("plain", func(b *testing.B) {
		run(b, sched.Config{Name: "bench"})
	})

	b.Run("metrics", func(b *testing.B) {
		run(b, sched.Config{
			Name:    "bench",
			Metrics: metrics.Config{Enabled: true, Registry: prometheus.NewRegistry()},
		})
	})
}

// BenchmarkCancel measures the cost of a submit-cancel round trip on a
// repeating handle.
func BenchmarkCancel(b *testing.B) {
	loop := hosttest.NewLoop()
	s, err := sched.New(loop)
	if err != nil {
		b.Fatalf("failed to create scheduler: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handle, _ := s.SubmitRepeatingAsync(func(sched.Cancellable) {}, 1, 1)
		handle.Cancel()
		if i%drainEvery == drainEvery-1 {
			loop.Advance(1)
		}
	}
}

// BenchmarkDetect measures the cached capability probe.
func BenchmarkDetect(b *testing.B) {
	h := hosttest.NewPartitioned()
	sched.Detect(h)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sched.Detect(h)
	}
}
