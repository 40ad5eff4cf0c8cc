// Package metrics provides internal metrics utilities for Conduit.
package metrics

import "github.com/arloliu/conduit/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is
// configured, avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Connection Lifecycle
// ----------------------

// IncOpenTotal discards the metric.
func (m *NopMetrics) IncOpenTotal(_ string) {}

// IncOpenError discards the metric.
func (m *NopMetrics) IncOpenError(_ string) {}

// ObserveConnectDuration discards the metric.
func (m *NopMetrics) ObserveConnectDuration(_ string, _ float64) {}

// IncDefunct discards the metric.
func (m *NopMetrics) IncDefunct(_ string) {}

// ObserveDrainDuration discards the metric.
func (m *NopMetrics) ObserveDrainDuration(_ string, _ float64) {}

// ----------------------
// Request/Response
// ----------------------

// IncWriteTotal discards the metric.
func (m *NopMetrics) IncWriteTotal(_ string) {}

// IncWriteError discards the metric.
func (m *NopMetrics) IncWriteError(_ string) {}

// ObserveWriteDuration discards the metric.
func (m *NopMetrics) ObserveWriteDuration(_ string, _ float64) {}

// IncResponseTotal discards the metric.
func (m *NopMetrics) IncResponseTotal(_ string) {}

// IncProtocolError discards the metric.
func (m *NopMetrics) IncProtocolError(_ string) {}

// ----------------------
// Keyspace
// ----------------------

// IncKeyspaceSwitch discards the metric.
func (m *NopMetrics) IncKeyspaceSwitch(_ string) {}
