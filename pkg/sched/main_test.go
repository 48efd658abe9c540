package sched

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// resetDetection clears the process-wide probe cache so each test can
// exercise its own host kind.
func resetDetection() {
	detectOnce = sync.Once{}
	detected = GlobalLoop
}
