// Package metrics provides Prometheus instrumentation for neosched components.
//
// Components accept a metrics.Config and record into a shared Registry of
// pre-declared metric vectors. With Config.Enabled false, components skip
// instrumentation entirely; with a nil Config.Registry they record into
// DefaultRegistry, which is registered on prometheus.DefaultRegisterer at
// init.
//
// # Quick Start
//
// Enable metrics when constructing a component:
//
//	s, err := sched.NewWithConfig(h, sched.Config{
//		Name:    "plugin",
//		Metrics: metrics.Config{Enabled: true},
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	cfg := metrics.Config{Enabled: true, Registry: registry}
//
// # Available Metrics
//
// Scheduling:
//
//   - neosched_sched_tasks_submitted_total{scheduler, backend, kind}
//   - neosched_sched_tasks_rejected_total{scheduler, backend, kind}
//   - neosched_sched_tasks_fired_total{scheduler, backend, kind}
//   - neosched_sched_task_panics_total{scheduler, backend, kind}
//   - neosched_sched_task_duration_seconds{scheduler, backend, kind}
//   - neosched_sched_targets_retired_total{scheduler, backend}
//
// Database:
//
//   - neosched_database_operations_total{db, operation}
//   - neosched_database_errors_total{db, operation}
//   - neosched_database_operation_duration_seconds{db, operation}
//   - neosched_database_queue_depth{db}
//   - neosched_database_pool_open_connections{db}
//
// The backend label is "global_loop" or "partitioned"; kind is the
// submission kind ("now", "now_async", "after", "after_async",
// "repeating", "target", "cron").
package metrics
