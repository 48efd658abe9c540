package sched

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/EggFine/neosched/internal/testutil"
	"github.com/EggFine/neosched/pkg/host"
	"github.com/EggFine/neosched/pkg/host/hosttest"
)

func TestBackendKindString(t *testing.T) {
	tests := []struct {
		kind BackendKind
		want string
	}{
		{GlobalLoop, "global_loop"},
		{Partitioned, "partitioned"},
		{BackendKind(42), "unknown"},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, tt.kind.String(), tt.want)
	}
}

func TestDetectGlobalLoop(t *testing.T) {
	resetDetection()
	testutil.AssertEqual(t, Detect(hosttest.NewLoop()), GlobalLoop)
}

func TestDetectPartitioned(t *testing.T) {
	resetDetection()
	testutil.AssertEqual(t, Detect(hosttest.NewPartitioned()), Partitioned)
}

// The probe runs once per process, so later calls return the cached
// result even when handed a different host kind.
func TestDetectCachesFirstResult(t *testing.T) {
	resetDetection()
	testutil.AssertEqual(t, Detect(hosttest.NewLoop()), GlobalLoop)
	testutil.AssertEqual(t, Detect(hosttest.NewPartitioned()), GlobalLoop)

	resetDetection()
	testutil.AssertEqual(t, Detect(hosttest.NewPartitioned()), Partitioned)
	testutil.AssertEqual(t, Detect(hosttest.NewLoop()), Partitioned)
}

// brokenPartitioned advertises the partitioned capability but hands
// back no coordinator.
type brokenPartitioned struct {
	*hosttest.Partitioned
}

func (brokenPartitioned) Coordinator() host.Coordinator { return nil }

func TestNewFallsBackWhenPartitionedLacksSchedulers(t *testing.T) {
	resetDetection()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := brokenPartitioned{hosttest.NewPartitioned()}

	s, err := NewWithConfig(h, Config{Logger: &logger})
	testutil.AssertNoError(t, err)

	// Detection still reports partitioned; only this scheduler fell
	// back.
	testutil.AssertEqual(t, Detect(h), Partitioned)
	testutil.AssertEqual(t, s.Backend(), GlobalLoop)

	var errorLines int
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `"level":"error"`) {
			errorLines++
		}
	}
	testutil.AssertEqual(t, errorLines, 1)
}
