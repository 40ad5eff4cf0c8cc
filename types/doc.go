// Package types contains the shared leaf types of the Conduit library:
// the error taxonomy returned by connections, and the Logger and
// MetricsCollector interfaces that pluggable backends implement.
//
// It deliberately imports nothing from the rest of the module so that
// adapter and contrib packages can depend on it without cycles.
package types
