// Package vm provides a VictoriaMetrics-based implementation of the
// MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with the default prefix "conduit":
//
//	collector := vm.New()
//	factory := conduit.NewFactory(conduit.WithMetrics(collector))
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_write_total{node="10.0.0.1:9042"}
//   - myapp_connect_duration_seconds{node="10.0.0.1:9042"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer.
//
// # Metrics Provided
//
// Connection lifecycle:
//   - {prefix}_connection_opens_total{node} - Counter of open attempts
//   - {prefix}_connection_open_errors_total{node} - Counter of failed opens
//   - {prefix}_connect_duration_seconds{node} - Histogram of connect+handshake latency
//   - {prefix}_connection_defunct_total{node} - Counter of defunct transitions
//   - {prefix}_close_drain_duration_seconds{node} - Histogram of close drain waits
//
// Request/response:
//   - {prefix}_write_total{node} - Counter of requests written
//   - {prefix}_write_errors_total{node} - Counter of transport write failures
//   - {prefix}_write_duration_seconds{node} - Histogram of send-phase latency
//   - {prefix}_responses_total{node} - Counter of responses delivered
//   - {prefix}_protocol_errors_total{node} - Counter of protocol violations
//
// Keyspace:
//   - {prefix}_keyspace_switches_total{node} - Counter of confirmed switches
//
// Node addresses are only known once connections open, so metrics are
// created lazily per node with the GetOrCreate pattern.
package vm
