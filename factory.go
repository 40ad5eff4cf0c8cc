package conduit

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/conduit/transport"
)

// Factory creates connections to database nodes.
//
// One factory is created by the application and shared; it owns the
// transport resources common to every connection it opens (dial
// configuration and the frame-serialization buffer pool) and the per-node
// counters used for diagnostic connection naming. Closing an individual
// connection never releases factory-owned resources.
type Factory struct {
	config  *Config
	buffers *transport.BufferPool

	// idGenerators maps node address to its naming counter. First
	// successful insert wins under concurrent opens to the same node.
	idGenerators sync.Map
}

// NewFactory creates a connection factory.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Factory: A factory applying the configuration to every connection
//     it opens
func NewFactory(opts ...Option) *Factory {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Factory{
		config:  config,
		buffers: transport.NewBufferPool(),
	}
}

// Open opens a new connection to the node at addr and performs the
// startup handshake.
//
// Parameters:
//   - addr: Node endpoint in "host:port" form
//
// Returns:
//   - *Connection: A ready, fully handshaked connection
//   - error: types.ConnectError when the transport connect fails,
//     types.StartupError when the server rejects startup,
//     types.ErrAuthNotSupported when the server requires authentication
func (f *Factory) Open(addr string) (*Connection, error) {
	name := addr + "-" + strconv.FormatInt(f.idGenerator(addr).Add(1)-1, 10)

	f.config.Metrics.IncOpenTotal(addr)
	start := time.Now()

	conn, err := newConnection(name, addr, f)
	if err != nil {
		f.config.Metrics.IncOpenError(addr)

		return nil, err
	}

	f.config.Metrics.ObserveConnectDuration(addr, time.Since(start).Seconds())

	return conn, nil
}

// Config returns the factory's configuration.
func (f *Factory) Config() *Config {
	return f.config
}

func (f *Factory) idGenerator(addr string) *atomic.Int64 {
	if g, ok := f.idGenerators.Load(addr); ok {
		return g.(*atomic.Int64)
	}

	g, _ := f.idGenerators.LoadOrStore(addr, new(atomic.Int64))

	return g.(*atomic.Int64)
}
