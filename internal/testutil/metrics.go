package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// CounterSum gathers g and sums every series of the named counter whose
// labels include all of the given pairs. A metric that was never
// incremented sums to zero.
func CounterSum(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	var sum float64
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	series:
		for _, m := range fam.GetMetric() {
			have := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				have[l.GetName()] = l.GetValue()
			}
			for k, v := range labels {
				if have[k] != v {
					continue series
				}
			}
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
