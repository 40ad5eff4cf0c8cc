package conduit

import (
	"time"

	"github.com/arloliu/conduit/internal/logging"
	"github.com/arloliu/conduit/internal/metrics"
	"github.com/arloliu/conduit/types"
	"github.com/arloliu/conduit/wire"
)

// Default tunables applied by DefaultConfig.
const (
	// DefaultConnectTimeout bounds the blocking connect of a new
	// connection.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultKeepAlivePeriod is the TCP keep-alive probe interval.
	DefaultKeepAlivePeriod = 15 * time.Second

	// DefaultDrainPollInterval is how often Close re-checks the in-flight
	// counter while waiting for a pending send to finish.
	DefaultDrainPollInterval = 10 * time.Millisecond

	// DefaultCQLVersion is the CQL version announced in the startup
	// handshake.
	DefaultCQLVersion = "3.0.0"
)

// Config holds configuration shared by every connection a Factory opens.
type Config struct {
	// ConnectTimeout bounds the blocking connect.
	ConnectTimeout time.Duration

	// NoDelay disables Nagle's algorithm on new connections.
	NoDelay bool

	// KeepAlive enables TCP keep-alive on new connections.
	KeepAlive bool

	// KeepAlivePeriod is the keep-alive probe interval.
	KeepAlivePeriod time.Duration

	// DrainPollInterval is the poll granularity of the close-time drain
	// loop.
	DrainPollInterval time.Duration

	// CQLVersion is announced in the startup handshake.
	CQLVersion string

	// Compressor enables frame-body compression when non-nil. Its name is
	// negotiated in the startup handshake.
	Compressor wire.Compressor

	// Codec overrides the default protocol codec. When nil the default
	// codec is built from Compressor.
	Codec wire.Codec

	// Logger receives structured diagnostics. Never nil after
	// DefaultConfig.
	Logger types.Logger

	// Metrics receives connection metrics. Never nil after DefaultConfig.
	Metrics types.MetricsCollector
}

// DefaultConfig returns a Config with sensible defaults: 10s connect
// timeout, no-delay and keep-alive enabled, no compression, nop logger and
// metrics.
//
// Returns:
//   - *Config: Configuration with default settings
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout:    DefaultConnectTimeout,
		NoDelay:           true,
		KeepAlive:         true,
		KeepAlivePeriod:   DefaultKeepAlivePeriod,
		DrainPollInterval: DefaultDrainPollInterval,
		CQLVersion:        DefaultCQLVersion,
		Logger:            logging.NewNopLogger(),
		Metrics:           metrics.NewNopMetrics(),
	}
}

// Option configures a Config.
type Option func(*Config)

// WithConnectTimeout sets the connect timeout for new connections.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = d
	}
}

// WithNoDelay controls Nagle's algorithm on new connections.
func WithNoDelay(enabled bool) Option {
	return func(c *Config) {
		c.NoDelay = enabled
	}
}

// WithKeepAlive controls TCP keep-alive on new connections.
func WithKeepAlive(enabled bool) Option {
	return func(c *Config) {
		c.KeepAlive = enabled
	}
}

// WithKeepAlivePeriod sets the TCP keep-alive probe interval.
func WithKeepAlivePeriod(d time.Duration) Option {
	return func(c *Config) {
		c.KeepAlivePeriod = d
	}
}

// WithDrainPollInterval sets the poll granularity used by Close while
// waiting for an in-flight send to complete.
func WithDrainPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.DrainPollInterval = d
	}
}

// WithCQLVersion sets the CQL version announced during startup.
func WithCQLVersion(version string) Option {
	return func(c *Config) {
		c.CQLVersion = version
	}
}

// WithCompressor enables frame-body compression.
//
// Parameters:
//   - compressor: The compressor, e.g. wire.SnappyCompressor{}
//
// Returns:
//   - Option: Configuration option
func WithCompressor(compressor wire.Compressor) Option {
	return func(c *Config) {
		c.Compressor = compressor
	}
}

// WithCodec replaces the default protocol codec. When set, WithCompressor
// has no effect; compression becomes the codec's concern.
func WithCodec(codec wire.Codec) Option {
	return func(c *Config) {
		c.Codec = codec
	}
}

// WithLogger sets the structured logger for connection diagnostics.
func WithLogger(logger types.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector for connection metrics.
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}
