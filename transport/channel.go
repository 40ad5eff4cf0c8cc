// Package transport provides the event-driven socket channel beneath a
// Conduit connection: a blocking dial honoring the configured socket
// options, a background read loop delivering inbound frames and errors to
// a Handler, and an idempotent blocking close.
package transport

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/conduit/wire"
)

// Handler receives inbound events from a channel's read loop.
//
// Exactly one goroutine (the channel's read loop) invokes the handler, so
// implementations never see concurrent calls from the same channel.
type Handler interface {
	// HandleFrame delivers one inbound frame.
	HandleFrame(f *wire.Frame)

	// HandleError delivers a read-loop failure. It is called at most once
	// per channel and never after a locally initiated Close.
	HandleError(err error)
}

// Options holds the socket options applied when dialing a channel.
type Options struct {
	// ConnectTimeout bounds the blocking dial.
	ConnectTimeout time.Duration

	// NoDelay disables Nagle's algorithm when true.
	NoDelay bool

	// KeepAlive enables TCP keep-alive probes when true.
	KeepAlive bool

	// KeepAlivePeriod sets the keep-alive probe interval when KeepAlive
	// is true. Zero keeps the OS default.
	KeepAlivePeriod time.Duration
}

// Channel is an exclusively owned transport handle to one node.
//
// Write and Close may be called from any goroutine; inbound traffic is
// delivered asynchronously to the Handler passed at dial time.
type Channel interface {
	// Write serializes one frame to the socket. It returns net.ErrClosed
	// (possibly wrapped) when the channel has been closed.
	Write(f *wire.Frame) error

	// Close shuts the channel down and blocks until the read loop has
	// exited. It is idempotent.
	Close() error

	// LocalAddr returns the local socket address.
	LocalAddr() net.Addr

	// RemoteAddr returns the remote socket address.
	RemoteAddr() net.Addr
}

// BufferPool is a pool of frame-serialization buffers shared by every
// channel a factory opens. It is owned by the factory and survives
// individual channel closes.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates an empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

func (p *BufferPool) get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset()

	return buf
}

func (p *BufferPool) put(buf *bytes.Buffer) {
	p.pool.Put(buf)
}

// Dial opens a channel to addr, applying the socket options, and starts
// its read loop. The dial blocks until the connection attempt settles.
//
// Parameters:
//   - addr: Node endpoint in "host:port" form
//   - opts: Socket options
//   - handler: Receiver for inbound frames and read failures
//   - bufs: Shared serialization buffer pool, or nil for an unshared one
//
// Returns:
//   - Channel: The connected channel
//   - error: The dial error, unwrapped and unclassified
func Dial(addr string, opts Options, handler Handler, bufs *BufferPool) (Channel, error) {
	dialer := net.Dialer{Timeout: opts.ConnectTimeout}
	if opts.KeepAlive {
		dialer.KeepAlive = opts.KeepAlivePeriod
	} else {
		dialer.KeepAlive = -1
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		// Best effort; some platforms reject the option.
		_ = tcp.SetNoDelay(opts.NoDelay)
	}

	if bufs == nil {
		bufs = NewBufferPool()
	}

	ch := &tcpChannel{
		conn:     conn,
		handler:  handler,
		bufs:     bufs,
		readDone: make(chan struct{}),
	}
	go ch.readLoop()

	return ch, nil
}

type tcpChannel struct {
	conn     net.Conn
	handler  Handler
	bufs     *BufferPool
	writeMu  sync.Mutex
	closed   atomic.Bool
	readDone chan struct{}
}

func (c *tcpChannel) Write(f *wire.Frame) error {
	if c.closed.Load() {
		return net.ErrClosed
	}

	buf := c.bufs.get()
	defer c.bufs.put(buf)
	if _, err := f.WriteTo(buf); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(buf.Bytes())

	return err
}

func (c *tcpChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		<-c.readDone
		return nil
	}

	err := c.conn.Close()
	<-c.readDone

	return err
}

func (c *tcpChannel) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *tcpChannel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// readLoop decodes inbound frames until the socket fails or is closed.
// A failure is reported through the handler only when the close was not
// locally initiated.
func (c *tcpChannel) readLoop() {
	defer close(c.readDone)

	r := bufio.NewReader(c.conn)
	for {
		f, err := wire.ReadFrame(r)
		if err != nil {
			if c.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			c.handler.HandleError(err)

			return
		}
		c.handler.HandleFrame(f)
	}
}
