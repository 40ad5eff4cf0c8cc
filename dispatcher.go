package conduit

import (
	"sync/atomic"

	"github.com/arloliu/conduit/types"
	"github.com/arloliu/conduit/wire"
)

// dispatcher is the inbound-event handler of one connection. It holds the
// single pending-response slot and routes frames and transport errors from
// the channel's read loop to it.
//
// At most one future is pending at any instant; the slot is taken with an
// atomic swap before the future resolves, so a caller reacting to the
// resolution can immediately register the next write without racing the
// read loop.
type dispatcher struct {
	conn    *Connection
	pending atomic.Pointer[Future]
}

// register installs the future for the write currently being admitted.
func (d *dispatcher) register(f *Future) {
	d.pending.Store(f)
}

// clear removes the pending slot after a failed send.
func (d *dispatcher) clear() {
	d.pending.Store(nil)
}

// take atomically takes and clears the pending slot.
func (d *dispatcher) take() *Future {
	return d.pending.Swap(nil)
}

// HandleFrame implements transport.Handler.
func (d *dispatcher) HandleFrame(f *wire.Frame) {
	c := d.conn
	c.config.Logger.Debug("received frame", "conn", c.name, "opcode", f.Opcode.String())

	// Take the slot before resolving: a fast caller may start a new write
	// the moment the future resolves, and its registration must not be
	// overwritten.
	future := d.take()
	if future == nil {
		// Every inbound message must correspond to exactly one outstanding
		// request; without one the connection's bookkeeping is broken
		// beyond recovery.
		err := &types.ProtocolError{
			Addr:    c.addr,
			Message: "received " + f.Opcode.String() + " response but no request is pending",
		}
		c.defunctify(err)
		c.config.Logger.Error("response without pending request", "conn", c.name, "opcode", f.Opcode.String())

		return
	}

	resp, err := c.codec.DecodeResponse(f)
	if err != nil {
		pe := &types.ProtocolError{Addr: c.addr, Message: err.Error()}
		c.defunctify(pe)
		c.config.Metrics.IncProtocolError(c.addr)
		c.config.Logger.Warn("received malformed response", "conn", c.name, "error", err.Error())
		future.complete(nil, pe)

		return
	}

	c.config.Metrics.IncResponseTotal(c.addr)
	future.complete(resp, nil)
}

// HandleError implements transport.Handler.
func (d *dispatcher) HandleError(err error) {
	c := d.conn
	c.config.Logger.Debug("connection error", "conn", c.name, "error", err.Error())

	// A non-zero in-flight counter means a write admission is underway and
	// will observe the failure itself; reporting it here as well would
	// surface the same failure twice.
	if c.inFlight.Load() > 0 {
		return
	}

	te := &types.TransportError{Addr: c.addr, Message: "unexpected exception triggered", Cause: err}
	c.defunctify(te)

	if future := d.take(); future != nil {
		future.complete(nil, te)
	}
}
