package conduit

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/arloliu/conduit/transport"
	"github.com/arloliu/conduit/types"
	"github.com/arloliu/conduit/wire"
)

// Connection is one live, fully handshaked socket to a database node.
//
// A Connection is created ready: NewFactory().Open either returns a
// connection that has completed the startup handshake or an error, never a
// partially initialized object.
//
// # Usage Discipline
//
// Connections are strictly one-request-at-a-time. Write admits a single
// request, sends it, and returns a Future the caller resolves later; a
// second Write is only legal once the first returned. Concurrent Write
// calls from multiple goroutines are a caller bug and fail with
// types.ErrConnectionBusy. Callers that need concurrency should hold
// multiple connections.
//
// # Failure Model
//
// Any unrecoverable transport or protocol error permanently marks the
// connection defunct. A defunct connection fails every subsequent Write
// and SetKeyspace fast with types.ErrConnectionDefunct; the error that
// defuncted it stays available through LastError. Conduit never
// reconnects; callers detect the defunct state and open a new connection.
type Connection struct {
	addr string
	name string

	channel    transport.Channel
	codec      wire.Codec
	dispatcher *dispatcher
	config     *Config

	// inFlight gates write admission to {0,1}. It is non-zero only for
	// the synchronous admission+send sequence; the dispatcher's pending
	// slot is what marks "a response is awaited".
	inFlight atomic.Int32

	closed  atomic.Bool
	defunct atomic.Bool
	lastErr atomic.Pointer[error]

	// keyspace holds the last server-confirmed keyspace.
	keyspace atomic.Pointer[string]
}

// newConnection dials addr and performs the startup handshake. On any
// failure no Connection escapes and the channel, if it was opened, is
// closed.
func newConnection(name, addr string, f *Factory) (*Connection, error) {
	cfg := f.config

	codec := cfg.Codec
	if codec == nil {
		codec = wire.NewCodec(cfg.Compressor)
	}

	c := &Connection{
		addr:   addr,
		name:   name,
		codec:  codec,
		config: cfg,
	}
	c.dispatcher = &dispatcher{conn: c}

	opts := transport.Options{
		ConnectTimeout:  cfg.ConnectTimeout,
		NoDelay:         cfg.NoDelay,
		KeepAlive:       cfg.KeepAlive,
		KeepAlivePeriod: cfg.KeepAlivePeriod,
	}

	// Hold the in-flight gate across the dial so a racing transport error
	// event cannot double-report a connect failure.
	c.inFlight.Add(1)
	ch, err := transport.Dial(addr, opts, c.dispatcher, f.buffers)
	c.inFlight.Add(-1)
	if err != nil {
		cfg.Logger.Debug("error connecting", "conn", name, "addr", addr, "error", err.Error())

		return nil, &types.ConnectError{Addr: addr, Cause: err}
	}
	c.channel = ch

	cfg.Logger.Debug("connection opened successfully", "conn", name)

	if err := c.initializeTransport(); err != nil {
		_ = c.channel.Close()

		return nil, err
	}

	cfg.Logger.Debug("transport initialized and ready", "conn", name)

	return c, nil
}

// initializeTransport performs the startup handshake through the ordinary
// write path.
func (c *Connection) initializeTransport() error {
	startup := &wire.Startup{CQLVersion: c.config.CQLVersion}
	if c.config.Compressor != nil {
		startup.Compression = c.config.Compressor.Name()
	}

	future, err := c.Write(startup)
	if err != nil {
		return err
	}

	resp, err := future.Get()
	if err != nil {
		return err
	}

	switch r := resp.(type) {
	case *wire.Ready:
		return nil
	case *wire.Error:
		return c.defunctify(&types.StartupError{Addr: c.addr, ServerMessage: r.Message})
	case *wire.Authenticate:
		return types.ErrAuthNotSupported
	default:
		return c.defunctify(&types.ProtocolError{
			Addr:    c.addr,
			Message: "unexpected " + resp.Opcode().String() + " response to a STARTUP message",
		})
	}
}

// Name returns the diagnostic identifier of the connection (endpoint plus
// per-node sequence number).
func (c *Connection) Name() string {
	return c.name
}

// Address returns the node endpoint the connection targets.
func (c *Connection) Address() string {
	return c.addr
}

// IsDefunct reports whether the connection is permanently unusable.
func (c *Connection) IsDefunct() bool {
	return c.defunct.Load()
}

// IsClosed reports whether Close has been called.
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// LastError returns the error that defuncted the connection, or nil.
// The value is advisory: under racing failures any one of them may win.
func (c *Connection) LastError() error {
	p := c.lastErr.Load()
	if p == nil {
		return nil
	}

	return *p
}

// Keyspace returns the last server-confirmed keyspace, or "" when no
// keyspace switch has been applied.
func (c *Connection) Keyspace() string {
	p := c.keyspace.Load()
	if p == nil {
		return ""
	}

	return *p
}

// defunctify marks the connection permanently unusable and records err as
// the last error. It returns err for call sites that propagate it.
func (c *Connection) defunctify(err error) error {
	e := err
	c.lastErr.Store(&e)
	if !c.defunct.Swap(true) {
		c.config.Metrics.IncDefunct(c.addr)
	}

	return err
}

// SetKeyspace switches the connection to the given keyspace and waits for
// the server's confirmation.
//
// An empty name or the already-applied keyspace is a no-op without a round
// trip. Any failure permanently defuncts the connection: after a failed
// switch the keyspace subsequent requests would run against is unknowable,
// so the connection cannot be safely reused.
//
// Parameters:
//   - keyspace: Target keyspace name
//
// Returns:
//   - error: nil on success, the defuncting error otherwise
func (c *Connection) SetKeyspace(keyspace string) error {
	if keyspace == "" || c.Keyspace() == keyspace {
		return nil
	}

	c.config.Logger.Debug("setting keyspace", "conn", c.name, "keyspace", keyspace)

	future, err := c.Write(&wire.Query{Statement: "USE " + keyspace, Consistency: wire.One})
	if err != nil {
		return c.defunctify(err)
	}

	resp, err := future.Get()
	if err != nil {
		return c.defunctify(err)
	}

	switch r := resp.(type) {
	case *wire.Result:
		c.keyspace.Store(&keyspace)
		c.config.Metrics.IncKeyspaceSwitch(c.addr)

		return nil
	case *wire.Error:
		return c.defunctify(&types.ServerError{Addr: c.addr, Code: r.Code, Message: r.Message})
	default:
		return c.defunctify(&types.ProtocolError{
			Addr:    c.addr,
			Message: "unexpected " + resp.Opcode().String() + " response while setting keyspace",
		})
	}
}

// Options asks the server which protocol options it supports via an
// OPTIONS round trip on the ordinary write path.
//
// Returns:
//   - map[string][]string: Supported option values by option name
//   - error: A connection or server failure
func (c *Connection) Options() (map[string][]string, error) {
	future, err := c.Write(&wire.Options{})
	if err != nil {
		return nil, err
	}

	resp, err := future.Get()
	if err != nil {
		return nil, err
	}

	switch r := resp.(type) {
	case *wire.Supported:
		return r.Options, nil
	case *wire.Error:
		return nil, &types.ServerError{Addr: c.addr, Code: r.Code, Message: r.Message}
	default:
		return nil, c.defunctify(&types.ProtocolError{
			Addr:    c.addr,
			Message: "unexpected " + resp.Opcode().String() + " response to an OPTIONS message",
		})
	}
}

// Write sends one request on the connection and returns a Future that
// resolves with the server's response or a failure.
//
// The call blocks only for the synchronous admission and send; response
// arrival is asynchronous. Preconditions fail fast with
// types.ErrConnectionDefunct or types.ErrConnectionClosed. A Write while a
// previous Write's send phase is still in flight fails with
// types.ErrConnectionBusy, which indicates caller misuse of a
// single-request connection.
//
// Parameters:
//   - req: The request to send
//
// Returns:
//   - *Future: Resolves with the response once the server answers
//   - error: An admission or send failure; the Future is nil
func (c *Connection) Write(req wire.Request) (*Future, error) {
	if c.defunct.Load() {
		return nil, types.ErrConnectionDefunct
	}
	if c.closed.Load() {
		return nil, types.ErrConnectionClosed
	}

	req.Attach(c.name)

	if !c.inFlight.CompareAndSwap(0, 1) {
		c.config.Logger.Error("concurrent write on single-request connection", "conn", c.name)

		return nil, types.ErrConnectionBusy
	}
	defer c.inFlight.Add(-1)

	future := newFuture()
	c.dispatcher.register(future)

	c.config.Logger.Debug("writing request", "conn", c.name, "opcode", req.Opcode().String())
	start := time.Now()

	frame, err := c.codec.EncodeRequest(req, 0)
	if err != nil {
		c.dispatcher.clear()

		return nil, err
	}

	if err := c.channel.Write(frame); err != nil {
		c.dispatcher.clear()
		c.config.Metrics.IncWriteError(c.addr)
		c.config.Logger.Debug("error writing request", "conn", c.name, "error", err.Error())

		var te *types.TransportError
		if errors.Is(err, net.ErrClosed) {
			te = &types.TransportError{Addr: c.addr, Message: "error writing: closed channel"}
		} else {
			te = &types.TransportError{Addr: c.addr, Message: "error writing", Cause: err}
		}

		return nil, c.defunctify(te)
	}

	c.config.Metrics.IncWriteTotal(c.addr)
	c.config.Metrics.ObserveWriteDuration(c.addr, time.Since(start).Seconds())
	c.config.Logger.Debug("request sent successfully", "conn", c.name)

	return future, nil
}

// Close shuts the connection down. It is idempotent; calls after the
// first return immediately.
//
// New writes are rejected first. Unless the connection is already defunct,
// Close then drains: it polls at the configured interval until the
// in-flight send, if any, completes. Finally the channel is closed,
// blocking until the read loop exits, and any still-pending future is
// resolved with types.ErrConnectionClosed. Factory-shared resources are
// untouched.
func (c *Connection) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	c.config.Logger.Debug("closing connection", "conn", c.name)

	if !c.defunct.Load() {
		// An admitted write finishes its send promptly; waiting for it
		// keeps the close from racing a half-written frame.
		start := time.Now()
		for c.inFlight.Load() > 0 {
			time.Sleep(c.config.DrainPollInterval)
		}
		c.config.Metrics.ObserveDrainDuration(c.addr, time.Since(start).Seconds())
	}

	_ = c.channel.Close()

	if future := c.dispatcher.take(); future != nil {
		future.complete(nil, types.ErrConnectionClosed)
	}
}
