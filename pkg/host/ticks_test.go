package host

import (
	"testing"
	"time"
)

func TestTicksDuration(t *testing.T) {
	tests := []struct {
		name  string
		ticks Ticks
		want  time.Duration
	}{
		{"zero", 0, 0},
		{"one tick", 1, 50 * time.Millisecond},
		{"ten ticks", 10, 500 * time.Millisecond},
		{"one second", TicksPerSecond, time.Second},
		{"one minute", 60 * TicksPerSecond, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticks.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}
