package types

// MetricsCollector defines methods for collecting connection-level
// operational metrics.
//
// All methods accept the node address as a label value. Implementations
// must be thread-safe as methods may be called concurrently from caller
// goroutines and the transport read loop.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	factory := conduit.NewFactory(conduit.WithMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Connection Lifecycle
	// ----------------------

	// IncOpenTotal increments the counter of connection open attempts.
	IncOpenTotal(addr string)

	// IncOpenError increments the counter of failed connection opens,
	// covering both dial failures and rejected handshakes.
	IncOpenError(addr string)

	// ObserveConnectDuration records the duration of a successful
	// connect-plus-handshake in seconds.
	ObserveConnectDuration(addr string, seconds float64)

	// IncDefunct increments the counter of connections transitioning to
	// the defunct state.
	IncDefunct(addr string)

	// ObserveDrainDuration records how long Close waited for an in-flight
	// send to complete, in seconds.
	ObserveDrainDuration(addr string, seconds float64)

	// ----------------------
	// Request/Response
	// ----------------------

	// IncWriteTotal increments the counter of requests written.
	IncWriteTotal(addr string)

	// IncWriteError increments the counter of request writes that failed
	// at the transport level.
	IncWriteError(addr string)

	// ObserveWriteDuration records the duration of the synchronous send
	// phase of a write in seconds.
	ObserveWriteDuration(addr string, seconds float64)

	// IncResponseTotal increments the counter of responses delivered to a
	// pending request.
	IncResponseTotal(addr string)

	// IncProtocolError increments the counter of protocol violations
	// observed on the connection.
	IncProtocolError(addr string)

	// ----------------------
	// Keyspace
	// ----------------------

	// IncKeyspaceSwitch increments the counter of successful keyspace
	// switches. Redundant SetKeyspace calls that skip the round trip are
	// not counted.
	IncKeyspaceSwitch(addr string)
}
