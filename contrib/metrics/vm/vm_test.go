package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"
)

func newTestCollector(opts ...Option) *Collector {
	opts = append(opts, WithMetricsSet(metrics.NewSet()))

	return New(opts...)
}

func TestCountersArePerNode(t *testing.T) {
	c := newTestCollector()

	c.IncOpenTotal("10.0.0.1:9042")
	c.IncOpenTotal("10.0.0.1:9042")
	c.IncOpenTotal("10.0.0.2:9042")

	var buf bytes.Buffer
	c.WritePrometheus(&buf)
	out := buf.String()

	require.Contains(t, out, `conduit_connection_opens_total{node="10.0.0.1:9042"} 2`)
	require.Contains(t, out, `conduit_connection_opens_total{node="10.0.0.2:9042"} 1`)
}

func TestAllCollectorMethods(t *testing.T) {
	c := newTestCollector()
	addr := "node:9042"

	c.IncOpenTotal(addr)
	c.IncOpenError(addr)
	c.ObserveConnectDuration(addr, 0.02)
	c.IncDefunct(addr)
	c.ObserveDrainDuration(addr, 0.001)
	c.IncWriteTotal(addr)
	c.IncWriteError(addr)
	c.ObserveWriteDuration(addr, 0.005)
	c.IncResponseTotal(addr)
	c.IncProtocolError(addr)
	c.IncKeyspaceSwitch(addr)

	var buf bytes.Buffer
	c.WritePrometheus(&buf)
	out := buf.String()

	for _, name := range []string{
		"conduit_connection_opens_total",
		"conduit_connection_open_errors_total",
		"conduit_connect_duration_seconds",
		"conduit_connection_defunct_total",
		"conduit_close_drain_duration_seconds",
		"conduit_write_total",
		"conduit_write_errors_total",
		"conduit_write_duration_seconds",
		"conduit_responses_total",
		"conduit_protocol_errors_total",
		"conduit_keyspace_switches_total",
	} {
		require.Contains(t, out, name, "missing metric %s", name)
	}
}

func TestWithPrefix(t *testing.T) {
	c := newTestCollector(WithPrefix("myapp"))
	c.IncWriteTotal("node:9042")

	var buf bytes.Buffer
	c.WritePrometheus(&buf)

	require.Contains(t, buf.String(), `myapp_write_total{node="node:9042"} 1`)
	require.False(t, strings.Contains(buf.String(), "conduit_"))
}
