// Package zerologadapter adapts a zerolog.Logger to the types.Logger
// interface consumed by Conduit.
//
//	logger := zerologadapter.New(zerolog.New(os.Stderr).With().Timestamp().Logger())
//	factory := conduit.NewFactory(conduit.WithLogger(logger))
package zerologadapter

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/conduit/types"
)

// Logger wraps a zerolog.Logger as a types.Logger.
type Logger struct {
	log zerolog.Logger
}

// Compile-time assertion that Logger implements types.Logger.
var _ types.Logger = (*Logger)(nil)

// New creates a types.Logger backed by the given zerolog.Logger.
//
// Parameters:
//   - log: The zerolog logger events are emitted through
//
// Returns:
//   - *Logger: The adapter
func New(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

// Debug implements types.Logger.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	emit(l.log.Debug(), msg, keysAndValues)
}

// Info implements types.Logger.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	emit(l.log.Info(), msg, keysAndValues)
}

// Warn implements types.Logger.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	emit(l.log.Warn(), msg, keysAndValues)
}

// Error implements types.Logger.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	emit(l.log.Error(), msg, keysAndValues)
}

// emit attaches alternating key-value pairs as event fields. A trailing
// key without a value is logged under the "EXTRA_VALUE" field rather than
// dropped.
func emit(ev *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	if len(keysAndValues)%2 != 0 {
		ev = ev.Interface("EXTRA_VALUE", keysAndValues[len(keysAndValues)-1])
	}
	ev.Msg(msg)
}
