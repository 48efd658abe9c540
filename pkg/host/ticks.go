package host

import "time"

// Tick cadence shared by supported hosts. Conversions use the exact
// ratio; a host that ticks slower under load still counts ticks the
// same way.
const (
	TickDuration   = 50 * time.Millisecond
	TicksPerSecond = 20
)

// Ticks counts scheduler ticks, the time unit of tick-driven hosts.
type Ticks int64

// Duration converts t to its nominal wall-clock duration.
func (t Ticks) Duration() time.Duration {
	return time.Duration(t) * TickDuration
}
