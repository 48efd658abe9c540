package sched

import (
	"errors"
	"testing"

	"github.com/EggFine/neosched/internal/testutil"
	errs "github.com/EggFine/neosched/pkg/common/errors"
)

func TestCronInvalidExpression(t *testing.T) {
	s, _ := newLoopScheduler(t)

	handle, err := s.SubmitCron("not a cron line", func(Cancellable) {})
	testutil.AssertError(t, err)
	if handle == nil {
		t.Fatal("handle is nil")
	}
	testutil.AssertEqual(t, handle.IsCancelled(), true)
}

func TestCronNilCallback(t *testing.T) {
	s, _ := newLoopScheduler(t)

	handle, err := s.SubmitCron("* * * * * *", nil)
	if !errors.Is(err, errs.ErrNilCallback) {
		t.Fatalf("err = %v, want ErrNilCallback", err)
	}
	testutil.AssertEqual(t, handle.IsCancelled(), true)
}

// An every-second expression always comes due within the next 20
// ticks, so advancing a full second covers at least one firing, and
// each firing arms the next leg.
func TestCronFiresAndRearms(t *testing.T) {
	s, loop := newLoopScheduler(t)

	var fires int
	handle, err := s.SubmitCron("* * * * * *", func(Cancellable) { fires++ })
	testutil.AssertNoError(t, err)

	loop.Advance(20)
	if fires < 1 {
		t.Fatalf("fires = %d, want at least 1", fires)
	}
	first := fires

	loop.Advance(20)
	if fires <= first {
		t.Fatalf("fires = %d, not re-armed after %d", fires, first)
	}

	handle.Cancel()
	frozen := fires
	loop.Advance(40)
	testutil.AssertEqual(t, fires, frozen)
}

func TestCronSelfCancelStopsRearm(t *testing.T) {
	s, loop := newLoopScheduler(t)

	var fires int
	_, err := s.SubmitCron("@every 1s", func(c Cancellable) {
		fires++
		c.Cancel()
	})
	testutil.AssertNoError(t, err)

	loop.Advance(60)
	testutil.AssertEqual(t, fires, 1)
}

func TestCronOnPartitionedUsesAsyncScheduler(t *testing.T) {
	s, h := newPartitionedScheduler(t)

	var fires int
	var inAsync bool
	handle, err := s.SubmitCron("* * * * * *", func(Cancellable) {
		fires++
		inAsync = h.InAsync()
	})
	testutil.AssertNoError(t, err)

	h.Advance(20)
	if fires < 1 {
		t.Fatalf("fires = %d, want at least 1", fires)
	}
	testutil.AssertEqual(t, inAsync, true)
	handle.Cancel()
}
