// Package prom provides a Prometheus-based implementation of the
// MetricsCollector interface using github.com/prometheus/client_golang.
//
// # Basic Usage
//
//	collector, err := prom.New(prometheus.DefaultRegisterer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	factory := conduit.NewFactory(conduit.WithMetrics(collector))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// All metrics carry a "node" label with the connection's target address.
// Registration is idempotent: metrics already registered with the same
// registerer are reused, so several factories can share one collector per
// process.
package prom
