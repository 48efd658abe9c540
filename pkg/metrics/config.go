package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registerer to attach metrics to.
	// Nil or prometheus.DefaultRegisterer resolves to the shared
	// DefaultRegistry.
	Registry prometheus.Registerer
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Registry: prometheus.DefaultRegisterer,
	}
}

var (
	resolveMu sync.Mutex
	resolved  = map[prometheus.Registerer]*Registry{}
)

// Resolve returns the Registry a component should record to under this
// configuration, or nil when metrics are disabled. Resolving the same
// Registerer twice yields the same Registry, so components can share
// one registerer without double-registering collectors.
func (c Config) Resolve() *Registry {
	if !c.Enabled {
		return nil
	}
	if c.Registry == nil || c.Registry == prometheus.DefaultRegisterer {
		return DefaultRegistry
	}

	resolveMu.Lock()
	defer resolveMu.Unlock()
	if r, ok := resolved[c.Registry]; ok {
		return r
	}
	r := NewRegistry(c.Registry)
	resolved[c.Registry] = r
	return r
}
