// Package metrics provides Prometheus instrumentation for neosched components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for neosched components.
type Registry struct {
	// Scheduling metrics
	TasksSubmitted *prometheus.CounterVec
	TasksRejected  *prometheus.CounterVec
	TasksFired     *prometheus.CounterVec
	TaskPanics     *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	TargetsRetired *prometheus.CounterVec

	// Database metrics
	DBOperations *prometheus.CounterVec
	DBErrors     *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
	DBQueueDepth *prometheus.GaugeVec
	DBPoolOpen   *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by neosched components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "sched",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks accepted for scheduling",
			},
			[]string{"scheduler", "backend", "kind"},
		),

		TasksRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "sched",
				Name:      "tasks_rejected_total",
				Help:      "Total number of submissions rejected before queueing",
			},
			[]string{"scheduler", "backend", "kind"},
		),

		TasksFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "sched",
				Name:      "tasks_fired_total",
				Help:      "Total number of task callback firings",
			},
			[]string{"scheduler", "backend", "kind"},
		),

		TaskPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "sched",
				Name:      "task_panics_total",
				Help:      "Total number of panics recovered from task callbacks",
			},
			[]string{"scheduler", "backend", "kind"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "neosched",
				Subsystem: "sched",
				Name:      "task_duration_seconds",
				Help:      "Time spent inside task callbacks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler", "backend", "kind"},
		),

		TargetsRetired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "sched",
				Name:      "targets_retired_total",
				Help:      "Total number of target-bound tasks resolved as retired",
			},
			[]string{"scheduler", "backend"},
		),

		DBOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "database",
				Name:      "operations_total",
				Help:      "Total number of database operations",
			},
			[]string{"db", "operation"},
		),

		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "neosched",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of failed database operations",
			},
			[]string{"db", "operation"},
		),

		DBDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "neosched",
				Subsystem: "database",
				Name:      "operation_duration_seconds",
				Help:      "Time spent executing database operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"db", "operation"},
		),

		DBQueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "neosched",
				Subsystem: "database",
				Name:      "queue_depth",
				Help:      "Number of async database operations waiting for a worker",
			},
			[]string{"db"},
		),

		DBPoolOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "neosched",
				Subsystem: "database",
				Name:      "pool_open_connections",
				Help:      "Open connections in the database pool",
			},
			[]string{"db"},
		),
	}
}
