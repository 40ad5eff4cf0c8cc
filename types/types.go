// Package types provides shared types and errors for the Conduit library.
//
// This is a "leaf" package with no imports from other conduit packages,
// allowing it to be imported by any package without causing import cycles.
package types

import "errors"

// Logger defines the minimal structured logging interface consumed by
// Conduit components.
//
// Methods accept a message followed by alternating key-value pairs:
//
//	logger.Warn("write failed", "conn", name, "error", err.Error())
//
// Implementations must be safe for concurrent use. A zerolog-backed
// implementation is available in contrib/logging/zerolog; the default is a
// no-op logger, so Conduit never requires a logging backend.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at info level.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at warning level.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at error level.
	Error(msg string, keysAndValues ...any)
}

// Sentinel errors for fast-fail preconditions and contract violations.
var (
	// ErrConnectionClosed indicates a write was attempted on a connection
	// after Close was called.
	ErrConnectionClosed = errors.New("conduit: connection has been closed")

	// ErrConnectionDefunct indicates a write was attempted on a connection
	// that previously hit an unrecoverable transport or protocol error.
	// Inspect Connection.LastError for the error that defuncted it.
	ErrConnectionDefunct = errors.New("conduit: write attempt on defunct connection")

	// ErrConnectionBusy indicates a second write was attempted while a
	// previous write's send phase was still in flight. Connections are
	// strictly one-request-at-a-time; this error always indicates a caller
	// bug, not a transient condition, and is never returned under correct
	// sequential use.
	ErrConnectionBusy = errors.New("conduit: busy connection, concurrent use of a single-request connection")

	// ErrAuthNotSupported indicates the server requested authentication
	// during startup. Conduit does not implement the authentication
	// exchange.
	ErrAuthNotSupported = errors.New("conduit: authentication required by server but not supported")
)

// ConnectError indicates the transport connection to a node could not be
// established.
type ConnectError struct {
	// Addr is the node endpoint the dial targeted.
	Addr string

	// Cause is the underlying dial error.
	Cause error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return "conduit: cannot connect to " + e.Addr + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// TransportError indicates an I/O failure on an established connection,
// including writes against an already-closed channel.
type TransportError struct {
	// Addr is the node endpoint of the connection.
	Addr string

	// Message describes where the failure surfaced.
	Message string

	// Cause is the underlying I/O error, or nil when the transport layer
	// reported only a condition (e.g. closed channel) without a cause.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	s := "conduit: " + e.Message + " (" + e.Addr + ")"
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}

	return s
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ProtocolError indicates the transport delivered well-formed bytes that
// were semantically unexpected: a malformed or unknown response, or a
// response arriving with no request outstanding.
type ProtocolError struct {
	// Addr is the node endpoint of the connection.
	Addr string

	// Message describes the violation.
	Message string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return "conduit: protocol error (" + e.Addr + "): " + e.Message
}

// ServerError indicates the server answered a request with an ERROR
// response after the connection was established.
type ServerError struct {
	// Addr is the node endpoint of the connection.
	Addr string

	// Code is the protocol error code reported by the server.
	Code int32

	// Message is the server's error text.
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return "conduit: server error (" + e.Addr + "): " + e.Message
}

// StartupError indicates the server rejected the startup handshake with an
// ERROR response.
type StartupError struct {
	// Addr is the node endpoint of the connection.
	Addr string

	// ServerMessage is the error text from the server's ERROR response.
	ServerMessage string
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	return "conduit: error initializing connection (" + e.Addr + "): " + e.ServerMessage
}
