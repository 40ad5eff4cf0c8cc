// Package wire implements the framed CQL native binary protocol spoken by
// Conduit connections: the 8-byte frame header, request and response
// message bodies, protocol primitives, and optional frame-body
// compression.
//
// The package is consumed through the Codec interface, which turns typed
// requests into outgoing frames and inbound frames into typed responses.
// Connections never interpret frame bytes themselves; a custom Codec can
// replace the default one wholesale.
package wire
