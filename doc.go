// Package conduit provides a single persistent connection to one node of
// a Cassandra-compatible cluster, speaking the framed CQL native binary
// protocol over a long-lived socket.
//
// Conduit owns the connection lifecycle (connect, startup handshake,
// ready, optional keyspace switch, closed or defunct), enforces a strict
// one-request-at-a-time discipline, and bridges the asynchronous
// event-driven transport underneath to a synchronous-looking future-based
// API. Pooling, load balancing, retry policies, topology discovery, and
// authentication are deliberately out of scope; Conduit is the building
// block those layers compose.
//
// # Basic Usage
//
//	factory := conduit.NewFactory(
//	    conduit.WithConnectTimeout(5*time.Second),
//	    conduit.WithCompressor(wire.SnappyCompressor{}),
//	)
//
//	conn, err := factory.Open("10.0.0.1:9042")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	if err := conn.SetKeyspace("app"); err != nil {
//	    log.Fatal(err)
//	}
//
//	future, err := conn.Write(&wire.Query{
//	    Statement:   "SELECT release_version FROM system.local",
//	    Consistency: wire.One,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := future.Get()
//
// # Failure Model
//
// Every request reaches exactly one terminal outcome: the returned Future
// resolves with the server's response or with a typed failure. Any
// unrecoverable transport or protocol error permanently marks the
// connection defunct; subsequent writes fail fast with
// types.ErrConnectionDefunct and the caller is expected to open a fresh
// connection. Conduit never retries or reconnects on its own.
//
// # Observability
//
// Structured logging and metrics are pluggable through types.Logger and
// types.MetricsCollector; defaults are no-ops. Backends for zerolog,
// VictoriaMetrics, and Prometheus live under contrib/.
package conduit
