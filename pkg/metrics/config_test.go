package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestResolveDisabled(t *testing.T) {
	if got := (Config{}).Resolve(); got != nil {
		t.Fatalf("disabled config resolved to %v, want nil", got)
	}
}

func TestResolveDefaults(t *testing.T) {
	if got := (Config{Enabled: true}).Resolve(); got != DefaultRegistry {
		t.Fatal("nil registerer should resolve to DefaultRegistry")
	}
	if got := DefaultConfig().Resolve(); got != DefaultRegistry {
		t.Fatal("default registerer should resolve to DefaultRegistry")
	}
}

func TestResolveSharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := Config{Enabled: true, Registry: reg}.Resolve()
	second := Config{Enabled: true, Registry: reg}.Resolve()
	if first != second {
		t.Fatal("same registerer should resolve to the same Registry")
	}

	other := Config{Enabled: true, Registry: prometheus.NewRegistry()}.Resolve()
	if other == first {
		t.Fatal("distinct registerers should get distinct Registries")
	}
}
