package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/conduit/types"
)

// Collector implements types.MetricsCollector on top of Prometheus
// collectors registered with a caller-supplied registerer.
//
// All metrics carry a "node" label with the connection's target address.
type Collector struct {
	opensTotal      *prometheus.CounterVec
	openErrors      *prometheus.CounterVec
	connectDuration *prometheus.HistogramVec
	defunctTotal    *prometheus.CounterVec
	drainDuration   *prometheus.HistogramVec
	writeTotal      *prometheus.CounterVec
	writeErrors     *prometheus.CounterVec
	writeDuration   *prometheus.HistogramVec
	responsesTotal  *prometheus.CounterVec
	protocolErrors  *prometheus.CounterVec
	keyspaceTotal   *prometheus.CounterVec
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New registers the Conduit connection metrics with reg and returns the
// collector.
//
// Parameters:
//   - reg: Target registerer; nil falls back to the default registerer
//
// Returns:
//   - *Collector: The collector
//   - error: A registration failure other than AlreadyRegistered
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{}
	var err error

	if c.opensTotal, err = registerCounter(reg, "conduit_connection_opens_total",
		"Number of connection open attempts per node."); err != nil {
		return nil, err
	}
	if c.openErrors, err = registerCounter(reg, "conduit_connection_open_errors_total",
		"Number of failed connection opens per node."); err != nil {
		return nil, err
	}
	if c.connectDuration, err = registerHistogram(reg, "conduit_connect_duration_seconds",
		"Duration of successful connect plus handshake per node."); err != nil {
		return nil, err
	}
	if c.defunctTotal, err = registerCounter(reg, "conduit_connection_defunct_total",
		"Number of connections transitioning to the defunct state per node."); err != nil {
		return nil, err
	}
	if c.drainDuration, err = registerHistogram(reg, "conduit_close_drain_duration_seconds",
		"How long Close waited for an in-flight send per node."); err != nil {
		return nil, err
	}
	if c.writeTotal, err = registerCounter(reg, "conduit_write_total",
		"Number of requests written per node."); err != nil {
		return nil, err
	}
	if c.writeErrors, err = registerCounter(reg, "conduit_write_errors_total",
		"Number of request writes failing at the transport level per node."); err != nil {
		return nil, err
	}
	if c.writeDuration, err = registerHistogram(reg, "conduit_write_duration_seconds",
		"Duration of the synchronous send phase of a write per node."); err != nil {
		return nil, err
	}
	if c.responsesTotal, err = registerCounter(reg, "conduit_responses_total",
		"Number of responses delivered to a pending request per node."); err != nil {
		return nil, err
	}
	if c.protocolErrors, err = registerCounter(reg, "conduit_protocol_errors_total",
		"Number of protocol violations observed per node."); err != nil {
		return nil, err
	}
	if c.keyspaceTotal, err = registerCounter(reg, "conduit_keyspace_switches_total",
		"Number of successful keyspace switches per node."); err != nil {
		return nil, err
	}

	return c, nil
}

func registerCounter(reg prometheus.Registerer, name, help string) (*prometheus.CounterVec, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, []string{"node"})
	if err := reg.Register(counter); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		counter = existing
	}

	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, name, help string) (*prometheus.HistogramVec, error) {
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: prometheus.DefBuckets,
	}, []string{"node"})
	if err := reg.Register(histogram); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		histogram = existing
	}

	return histogram, nil
}

// IncOpenTotal implements types.MetricsCollector.
func (c *Collector) IncOpenTotal(addr string) {
	c.opensTotal.WithLabelValues(addr).Inc()
}

// IncOpenError implements types.MetricsCollector.
func (c *Collector) IncOpenError(addr string) {
	c.openErrors.WithLabelValues(addr).Inc()
}

// ObserveConnectDuration implements types.MetricsCollector.
func (c *Collector) ObserveConnectDuration(addr string, seconds float64) {
	c.connectDuration.WithLabelValues(addr).Observe(seconds)
}

// IncDefunct implements types.MetricsCollector.
func (c *Collector) IncDefunct(addr string) {
	c.defunctTotal.WithLabelValues(addr).Inc()
}

// ObserveDrainDuration implements types.MetricsCollector.
func (c *Collector) ObserveDrainDuration(addr string, seconds float64) {
	c.drainDuration.WithLabelValues(addr).Observe(seconds)
}

// IncWriteTotal implements types.MetricsCollector.
func (c *Collector) IncWriteTotal(addr string) {
	c.writeTotal.WithLabelValues(addr).Inc()
}

// IncWriteError implements types.MetricsCollector.
func (c *Collector) IncWriteError(addr string) {
	c.writeErrors.WithLabelValues(addr).Inc()
}

// ObserveWriteDuration implements types.MetricsCollector.
func (c *Collector) ObserveWriteDuration(addr string, seconds float64) {
	c.writeDuration.WithLabelValues(addr).Observe(seconds)
}

// IncResponseTotal implements types.MetricsCollector.
func (c *Collector) IncResponseTotal(addr string) {
	c.responsesTotal.WithLabelValues(addr).Inc()
}

// IncProtocolError implements types.MetricsCollector.
func (c *Collector) IncProtocolError(addr string) {
	c.protocolErrors.WithLabelValues(addr).Inc()
}

// IncKeyspaceSwitch implements types.MetricsCollector.
func (c *Collector) IncKeyspaceSwitch(addr string) {
	c.keyspaceTotal.WithLabelValues(addr).Inc()
}
