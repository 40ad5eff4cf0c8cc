package conduit

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/conduit/types"
	"github.com/arloliu/conduit/wire"
)

// fakeNode is an in-process server speaking just enough of the protocol
// for connection-level tests.
type fakeNode struct {
	t  *testing.T
	ln net.Listener

	// handle maps an inbound frame to a response frame; returning nil
	// closes the connection without answering.
	handle func(f *wire.Frame) *wire.Frame
}

func startFakeNode(t *testing.T, handle func(f *wire.Frame) *wire.Frame) *fakeNode {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	n := &fakeNode{t: t, ln: ln, handle: handle}
	t.Cleanup(func() { _ = ln.Close() })
	go n.serve()

	return n
}

func (n *fakeNode) addr() string {
	return n.ln.Addr().String()
}

func (n *fakeNode) serve() {
	for {
		conn, err := n.ln.Accept()
		if err != nil {
			return
		}
		go n.serveConn(conn)
	}
}

func (n *fakeNode) serveConn(conn net.Conn) {
	defer conn.Close()
	for {
		f, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}
		resp := n.handle(f)
		if resp == nil {
			return
		}
		resp.Stream = f.Stream
		if _, err := resp.WriteTo(conn); err != nil {
			return
		}
	}
}

func readyFrame() *wire.Frame {
	return &wire.Frame{Version: 0x80 | wire.ProtocolVersion, Opcode: wire.OpReady}
}

// readyThen answers STARTUP with READY and everything else via next.
func readyThen(next func(f *wire.Frame) *wire.Frame) func(f *wire.Frame) *wire.Frame {
	return func(f *wire.Frame) *wire.Frame {
		if f.Opcode == wire.OpStartup {
			return readyFrame()
		}

		return next(f)
	}
}

func TestFactoryOpenReady(t *testing.T) {
	node := startFakeNode(t, func(f *wire.Frame) *wire.Frame {
		require.Equal(t, wire.OpStartup, f.Opcode)

		return readyFrame()
	})

	factory := NewFactory(WithConnectTimeout(2 * time.Second))
	conn, err := factory.Open(node.addr())
	require.NoError(t, err)
	defer conn.Close()

	require.False(t, conn.IsDefunct())
	require.False(t, conn.IsClosed())
	require.Empty(t, conn.Keyspace())
	require.NoError(t, conn.LastError())
	require.Equal(t, node.addr(), conn.Address())
	require.Equal(t, node.addr()+"-0", conn.Name())
}

func TestFactoryNamesIncrementPerNode(t *testing.T) {
	node := startFakeNode(t, readyThen(func(*wire.Frame) *wire.Frame { return nil }))

	factory := NewFactory(WithConnectTimeout(2 * time.Second))

	c0, err := factory.Open(node.addr())
	require.NoError(t, err)
	defer c0.Close()

	c1, err := factory.Open(node.addr())
	require.NoError(t, err)
	defer c1.Close()

	require.True(t, strings.HasSuffix(c0.Name(), "-0"))
	require.True(t, strings.HasSuffix(c1.Name(), "-1"))
}

func TestFactoryOpenConnectFailure(t *testing.T) {
	// Grab an address and close the listener so nothing accepts there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	factory := NewFactory(WithConnectTimeout(500 * time.Millisecond))
	_, err = factory.Open(addr)

	var ce *types.ConnectError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, addr, ce.Addr)
}

func TestFactoryOpenStartupRejected(t *testing.T) {
	node := startFakeNode(t, func(*wire.Frame) *wire.Frame {
		return serverError("bad startup")
	})

	factory := NewFactory(WithConnectTimeout(2 * time.Second))
	_, err := factory.Open(node.addr())

	var se *types.StartupError
	require.ErrorAs(t, err, &se)
	require.Contains(t, se.ServerMessage, "bad startup")
}

func TestFactoryOpenAuthenticationRequired(t *testing.T) {
	node := startFakeNode(t, func(*wire.Frame) *wire.Frame {
		body := []byte{0x00, 0x04, 'a', 'u', 't', 'h'}

		return &wire.Frame{Version: 0x80 | wire.ProtocolVersion, Opcode: wire.OpAuthenticate, Body: body}
	})

	factory := NewFactory(WithConnectTimeout(2 * time.Second))
	_, err := factory.Open(node.addr())
	require.ErrorIs(t, err, types.ErrAuthNotSupported)
}

func TestSetKeyspaceOverTCP(t *testing.T) {
	node := startFakeNode(t, readyThen(func(f *wire.Frame) *wire.Frame {
		require.Equal(t, wire.OpQuery, f.Opcode)

		resp := setKeyspaceResult("app")

		return resp
	}))

	factory := NewFactory(WithConnectTimeout(2 * time.Second))
	conn, err := factory.Open(node.addr())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetKeyspace("app"))
	require.Equal(t, "app", conn.Keyspace())
}

func TestQueryOverTCPWithCompression(t *testing.T) {
	snappy := wire.SnappyCompressor{}

	node := startFakeNode(t, readyThen(func(f *wire.Frame) *wire.Frame {
		// The query body must arrive compressed and decompress cleanly.
		if f.Flags&wire.FlagCompressed == 0 {
			return serverError("expected compressed body")
		}
		if _, err := snappy.Decode(f.Body); err != nil {
			return serverError(err.Error())
		}

		body := []byte{0x00, 0x00, 0x00, 0x01} // void result
		compressed, _ := snappy.Encode(body)

		return &wire.Frame{
			Version: 0x80 | wire.ProtocolVersion,
			Flags:   wire.FlagCompressed,
			Opcode:  wire.OpResult,
			Body:    compressed,
		}
	}))

	factory := NewFactory(
		WithConnectTimeout(2*time.Second),
		WithCompressor(snappy),
	)
	conn, err := factory.Open(node.addr())
	require.NoError(t, err)
	defer conn.Close()

	future, err := conn.Write(&wire.Query{Statement: "SELECT 1", Consistency: wire.One})
	require.NoError(t, err)

	resp, err := future.Get()
	require.NoError(t, err)
	result, ok := resp.(*wire.Result)
	require.True(t, ok)
	require.Equal(t, wire.ResultVoid, result.Kind)
}

func TestInboundFailureAfterWriteDefuncts(t *testing.T) {
	querySeen := make(chan struct{})
	node := startFakeNode(t, readyThen(func(f *wire.Frame) *wire.Frame {
		close(querySeen)

		// Drop the connection without answering the query.
		return nil
	}))

	factory := NewFactory(WithConnectTimeout(2 * time.Second))
	conn, err := factory.Open(node.addr())
	require.NoError(t, err)
	defer conn.Close()

	future, err := conn.Write(&wire.Query{Statement: "SELECT 1", Consistency: wire.One})
	require.NoError(t, err)

	select {
	case <-querySeen:
	case <-time.After(2 * time.Second):
		t.Fatal("fake node never saw the query")
	}

	_, err = future.Get()
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
	require.True(t, conn.IsDefunct())

	_, err = conn.Write(&wire.Query{Statement: "SELECT 2"})
	require.ErrorIs(t, err, types.ErrConnectionDefunct)
}

func TestFactoryConfigDefaults(t *testing.T) {
	factory := NewFactory()
	cfg := factory.Config()

	require.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
	require.Equal(t, DefaultDrainPollInterval, cfg.DrainPollInterval)
	require.Equal(t, DefaultCQLVersion, cfg.CQLVersion)
	require.True(t, cfg.NoDelay)
	require.True(t, cfg.KeepAlive)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
}
