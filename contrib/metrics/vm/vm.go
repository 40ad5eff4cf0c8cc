package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/conduit/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "conduit"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector registers metrics with this set instead of
// creating a new one. The caller is responsible for exposing the set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Node addresses are not known until connections are opened, so metrics
// are created lazily per address with the GetOrCreate pattern. Thread-safe
// for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally
// unless WithMetricsSet provides one.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	factory := conduit.NewFactory(conduit.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "conduit",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	return c
}

// Handler is an http.HandlerFunc that writes the collector's metrics in
// Prometheus text format.
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes the collector's metrics in Prometheus text format
// to w.
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

func (c *Collector) counter(name, addr string) *metrics.Counter {
	return c.set.GetOrCreateCounter(fmt.Sprintf(`%s_%s{node=%q}`, c.prefix, name, addr))
}

func (c *Collector) histogram(name, addr string) *metrics.Histogram {
	return c.set.GetOrCreateHistogram(fmt.Sprintf(`%s_%s{node=%q}`, c.prefix, name, addr))
}

// IncOpenTotal implements types.MetricsCollector.
func (c *Collector) IncOpenTotal(addr string) {
	c.counter("connection_opens_total", addr).Inc()
}

// IncOpenError implements types.MetricsCollector.
func (c *Collector) IncOpenError(addr string) {
	c.counter("connection_open_errors_total", addr).Inc()
}

// ObserveConnectDuration implements types.MetricsCollector.
func (c *Collector) ObserveConnectDuration(addr string, seconds float64) {
	c.histogram("connect_duration_seconds", addr).Update(seconds)
}

// IncDefunct implements types.MetricsCollector.
func (c *Collector) IncDefunct(addr string) {
	c.counter("connection_defunct_total", addr).Inc()
}

// ObserveDrainDuration implements types.MetricsCollector.
func (c *Collector) ObserveDrainDuration(addr string, seconds float64) {
	c.histogram("close_drain_duration_seconds", addr).Update(seconds)
}

// IncWriteTotal implements types.MetricsCollector.
func (c *Collector) IncWriteTotal(addr string) {
	c.counter("write_total", addr).Inc()
}

// IncWriteError implements types.MetricsCollector.
func (c *Collector) IncWriteError(addr string) {
	c.counter("write_errors_total", addr).Inc()
}

// ObserveWriteDuration implements types.MetricsCollector.
func (c *Collector) ObserveWriteDuration(addr string, seconds float64) {
	c.histogram("write_duration_seconds", addr).Update(seconds)
}

// IncResponseTotal implements types.MetricsCollector.
func (c *Collector) IncResponseTotal(addr string) {
	c.counter("responses_total", addr).Inc()
}

// IncProtocolError implements types.MetricsCollector.
func (c *Collector) IncProtocolError(addr string) {
	c.counter("protocol_errors_total", addr).Inc()
}

// IncKeyspaceSwitch implements types.MetricsCollector.
func (c *Collector) IncKeyspaceSwitch(addr string) {
	c.counter("keyspace_switches_total", addr).Inc()
}
