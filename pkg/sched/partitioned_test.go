package sched

import (
	"errors"
	"testing"
	"time"

	"github.com/EggFine/neosched/internal/testutil"
	errs "github.com/EggFine/neosched/pkg/common/errors"
	"github.com/EggFine/neosched/pkg/host"
	"github.com/EggFine/neosched/pkg/host/hosttest"
)

func newPartitionedScheduler(t *testing.T) (*Scheduler, *hosttest.Partitioned) {
	t.Helper()
	resetDetection()
	h := hosttest.NewPartitioned()
	s, err := New(h)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, s.Backend(), Partitioned)
	return s, h
}

func TestPartitionedSubmitUsesCoordinator(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	var region string
	testutil.AssertNoError(t, s.Submit(func() { region = h.CurrentRegion() }))

	h.Advance(1)
	testutil.AssertEqual(t, region, hosttest.GlobalRegion)
}

func TestPartitionedOrderingWithinTick(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		testutil.AssertNoError(t, s.Submit(func() { order = append(order, i) }))
	}
	h.Advance(1)

	testutil.AssertEqual(t, len(order), 5)
	for i, got := range order {
		testutil.AssertEqual(t, got, i)
	}
}

func TestPartitionedSubmitAsyncRunsInAsync(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	var ran, inAsync bool
	testutil.AssertNoError(t, s.SubmitAsync(func() {
		ran = true
		inAsync = h.InAsync()
	}))

	h.Advance(1)
	testutil.AssertEqual(t, ran, true)
	testutil.AssertEqual(t, inAsync, true)
}

func TestPartitionedSubmitAfterDelay(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	fired := false
	testutil.AssertNoError(t, s.SubmitAfter(func() { fired = true }, 5))

	h.Advance(4)
	testutil.AssertEqual(t, fired, false)
	h.Advance(1)
	testutil.AssertEqual(t, fired, true)
}

func TestPartitionedAsyncDelayIsWallClock(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	var fired, inAsync bool
	testutil.AssertNoError(t, s.SubmitAfterAsync(func() {
		fired = true
		inAsync = h.InAsync()
	}, 10))

	h.Advance(9)
	testutil.AssertEqual(t, fired, false)
	h.Advance(1)
	testutil.AssertEqual(t, fired, true)
	testutil.AssertEqual(t, inAsync, true)
}

func TestPartitionedRepeatingOnWallClock(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	var fires int
	handle, err := s.SubmitRepeatingAsync(func(Cancellable) { fires++ }, 1, 2)
	testutil.AssertNoError(t, err)

	h.Advance(5)
	testutil.AssertEqual(t, fires, 3)

	handle.Cancel()
	h.Advance(4)
	testutil.AssertEqual(t, fires, 3)
}

// recordingAsync captures the wall-clock arguments handed to the host.
type recordingAsync struct {
	delays  []time.Duration
	initial time.Duration
	period  time.Duration
}

type recordedTask struct{}

func (recordedTask) Cancel() {}

func (r *recordingAsync) RunNow(func()) (host.Task, error) {
	return recordedTask{}, nil
}

func (r *recordingAsync) RunDelayed(_ func(), delay time.Duration) (host.Task, error) {
	r.delays = append(r.delays, delay)
	return recordedTask{}, nil
}

func (r *recordingAsync) RunAtFixedRate(_ func(), initial, period time.Duration) (host.Task, error) {
	r.initial, r.period = initial, period
	return recordedTask{}, nil
}

type recordingPartitioned struct {
	*hosttest.Partitioned
	async *recordingAsync
}

func (r recordingPartitioned) AsyncScheduler() host.AsyncScheduler { return r.async }

// Ten ticks must translate to exactly 500ms, never an approximation.
func TestTickConversionIsExact(t *testing.T) {
	resetDetection()
	rec := &recordingAsync{}
	s, err := New(recordingPartitioned{hosttest.NewPartitioned(), rec})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, s.SubmitAfterAsync(func() {}, 10))
	testutil.AssertEqual(t, rec.delays[0], 500*time.Millisecond)

	_, err = s.SubmitRepeatingAsync(func(Cancellable) {}, 3, 7)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.initial, 150*time.Millisecond)
	testutil.AssertEqual(t, rec.period, 350*time.Millisecond)
}

func TestTargetRunsOnOwningRegion(t *testing.T) {
	s, h := newPartitionedScheduler(t)
	obj := h.NewObject("overworld")

	var region string
	var retired bool
	testutil.AssertNoError(t, s.SubmitForTarget(obj,
		func() { region = h.CurrentRegion() },
		func() { retired = true }, 3))

	h.Advance(3)
	testutil.AssertEqual(t, region, "overworld")
	testutil.AssertEqual(t, retired, false)
}

func TestTargetFollowsMove(t *testing.T) {
	s, h := newPartitionedScheduler(t)
	obj := h.NewObject("overworld")

	var region string
	testutil.AssertNoError(t, s.SubmitForTarget(obj,
		func() { region = h.CurrentRegion() }, nil, 2))

	obj.MoveTo("nether")
	h.Advance(2)
	testutil.AssertEqual(t, region, "nether")
}

func TestTargetRetiredExactlyOnce(t *testing.T) {
	s, h := newPartitionedScheduler(t)
	obj := h.NewObject("overworld")

	var ran bool
	var retired int
	testutil.AssertNoError(t, s.SubmitForTarget(obj,
		func() { ran = true },
		func() { retired++ }, 2))

	obj.Invalidate()
	h.Advance(5)
	testutil.AssertEqual(t, ran, false)
	testutil.AssertEqual(t, retired, 1)
}

// A target gone before submission registers nothing with its region;
// the retired callback is still delivered, on the global region.
func TestTargetGoneAtSubmissionStillRetires(t *testing.T) {
	s, h := newPartitionedScheduler(t)
	obj := h.NewObject("overworld")
	obj.Invalidate()

	var ran bool
	var retired int
	var region string
	testutil.AssertNoError(t, s.SubmitForTarget(obj,
		func() { ran = true },
		func() {
			retired++
			region = h.CurrentRegion()
		}, 2))

	testutil.AssertEqual(t, retired, 0)
	h.Advance(2)
	testutil.AssertEqual(t, ran, false)
	testutil.AssertEqual(t, retired, 1)
	testutil.AssertEqual(t, region, hosttest.GlobalRegion)
}

func TestTargetWithoutSchedulerIsRejected(t *testing.T) {
	s, _ := newPartitionedScheduler(t)

	err := s.SubmitForTarget(&loopTarget{valid: true}, func() {}, nil, 0)
	if !errors.Is(err, errs.ErrNoTargetScheduler) {
		t.Fatalf("err = %v, want ErrNoTargetScheduler", err)
	}
}
