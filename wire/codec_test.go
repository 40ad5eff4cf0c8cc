package wire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// responseFrame builds a server-direction frame for decode tests.
func responseFrame(op Opcode, body []byte) *Frame {
	return &Frame{
		Version: directionResponse | ProtocolVersion,
		Opcode:  op,
		Body:    body,
	}
}

func TestEncodeStartup(t *testing.T) {
	c := NewCodec(nil)

	f, err := c.EncodeRequest(&Startup{CQLVersion: "3.0.0"}, 0)
	require.NoError(t, err)
	require.Equal(t, OpStartup, f.Opcode)
	require.False(t, f.IsResponse())
	require.Zero(t, f.Flags)

	r := bodyReader{buf: f.Body}
	n, err := r.readShort()
	require.NoError(t, err)
	require.Equal(t, uint16(1), n)
	k, err := r.readString()
	require.NoError(t, err)
	require.Equal(t, "CQL_VERSION", k)
	v, err := r.readString()
	require.NoError(t, err)
	require.Equal(t, "3.0.0", v)
}

func TestEncodeStartupAdvertisesCompression(t *testing.T) {
	c := NewCodec(SnappyCompressor{})

	f, err := c.EncodeRequest(&Startup{CQLVersion: "3.0.0", Compression: "snappy"}, 0)
	require.NoError(t, err)
	// The STARTUP frame itself must never be compressed.
	require.Zero(t, f.Flags&FlagCompressed)

	r := bodyReader{buf: f.Body}
	n, err := r.readShort()
	require.NoError(t, err)
	require.Equal(t, uint16(2), n)
}

func TestEncodeQuery(t *testing.T) {
	c := NewCodec(nil)

	f, err := c.EncodeRequest(&Query{Statement: "USE app", Consistency: Quorum}, 0)
	require.NoError(t, err)
	require.Equal(t, OpQuery, f.Opcode)

	r := bodyReader{buf: f.Body}
	length, err := r.readInt()
	require.NoError(t, err)
	require.Equal(t, int32(len("USE app")), length)
	require.Equal(t, "USE app", string(r.buf[:length]))
	r.buf = r.buf[length:]
	cons, err := r.readShort()
	require.NoError(t, err)
	require.Equal(t, uint16(Quorum), cons)
}

func TestQueryCompressionRoundTrip(t *testing.T) {
	c := NewCodec(SnappyCompressor{})

	f, err := c.EncodeRequest(&Query{Statement: "SELECT * FROM t", Consistency: One}, 0)
	require.NoError(t, err)
	require.NotZero(t, f.Flags&FlagCompressed)

	body, err := SnappyCompressor{}.Decode(f.Body)
	require.NoError(t, err)

	r := bodyReader{buf: body}
	length, err := r.readInt()
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM t", string(r.buf[:length]))
}

func TestRequestAttach(t *testing.T) {
	q := &Query{Statement: "SELECT 1"}
	require.Empty(t, q.Source())
	q.Attach("10.0.0.1:9042-0")
	require.Equal(t, "10.0.0.1:9042-0", q.Source())
}

func TestDecodeReady(t *testing.T) {
	c := NewCodec(nil)

	resp, err := c.DecodeResponse(responseFrame(OpReady, nil))
	require.NoError(t, err)
	require.IsType(t, &Ready{}, resp)
	_, traced := resp.Tracing()
	require.False(t, traced)
}

func TestDecodeError(t *testing.T) {
	c := NewCodec(nil)

	body := appendInt(nil, 0x2200)
	body, err := appendString(body, "unconfigured table")
	require.NoError(t, err)

	resp, err := c.DecodeResponse(responseFrame(OpError, body))
	require.NoError(t, err)
	e, ok := resp.(*Error)
	require.True(t, ok)
	require.Equal(t, int32(0x2200), e.Code)
	require.Equal(t, "unconfigured table", e.Message)
}

func TestDecodeAuthenticate(t *testing.T) {
	c := NewCodec(nil)

	body, err := appendString(nil, "org.apache.cassandra.auth.PasswordAuthenticator")
	require.NoError(t, err)

	resp, err := c.DecodeResponse(responseFrame(OpAuthenticate, body))
	require.NoError(t, err)
	a, ok := resp.(*Authenticate)
	require.True(t, ok)
	require.Contains(t, a.Class, "PasswordAuthenticator")
}

func TestDecodeSupported(t *testing.T) {
	c := NewCodec(nil)

	body := appendShort(nil, 1)
	body, err := appendString(body, "COMPRESSION")
	require.NoError(t, err)
	body = appendShort(body, 2)
	body, err = appendString(body, "snappy")
	require.NoError(t, err)
	body, err = appendString(body, "lz4")
	require.NoError(t, err)

	resp, err := c.DecodeResponse(responseFrame(OpSupported, body))
	require.NoError(t, err)
	s, ok := resp.(*Supported)
	require.True(t, ok)
	require.Equal(t, []string{"snappy", "lz4"}, s.Options["COMPRESSION"])
}

func TestDecodeResultSetKeyspace(t *testing.T) {
	c := NewCodec(nil)

	body := appendInt(nil, ResultSetKeyspace)
	body, err := appendString(body, "app")
	require.NoError(t, err)

	resp, err := c.DecodeResponse(responseFrame(OpResult, body))
	require.NoError(t, err)
	r, ok := resp.(*Result)
	require.True(t, ok)
	require.Equal(t, ResultSetKeyspace, r.Kind)
	require.Equal(t, "app", r.Keyspace)
}

func TestDecodeResultVoid(t *testing.T) {
	c := NewCodec(nil)

	resp, err := c.DecodeResponse(responseFrame(OpResult, appendInt(nil, ResultVoid)))
	require.NoError(t, err)
	r, ok := resp.(*Result)
	require.True(t, ok)
	require.Equal(t, ResultVoid, r.Kind)
	require.Empty(t, r.Keyspace)
}

func TestDecodeTracingID(t *testing.T) {
	c := NewCodec(nil)

	id := uuid.New()
	body := append(append([]byte(nil), id[:]...), appendInt(nil, ResultVoid)...)

	f := responseFrame(OpResult, body)
	f.Flags = FlagTracing

	resp, err := c.DecodeResponse(f)
	require.NoError(t, err)
	got, traced := resp.Tracing()
	require.True(t, traced)
	require.Equal(t, id, got)
}

func TestDecodeRejectsRequestDirection(t *testing.T) {
	c := NewCodec(nil)

	_, err := c.DecodeResponse(NewRequestFrame(OpReady, 0, nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a response")
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	c := NewCodec(nil)

	f := responseFrame(OpReady, nil)
	f.Version = directionResponse | 0x05

	_, err := c.DecodeResponse(f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported protocol version")
}

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	c := NewCodec(nil)

	_, err := c.DecodeResponse(responseFrame(Opcode(0x42), nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected response opcode")
}

func TestDecodeCompressedWithoutCompressor(t *testing.T) {
	c := NewCodec(nil)

	f := responseFrame(OpResult, []byte{0x01})
	f.Flags = FlagCompressed

	_, err := c.DecodeResponse(f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no compressor configured")
}

func TestDecodeCompressedResponse(t *testing.T) {
	c := NewCodec(SnappyCompressor{})

	plain := appendInt(nil, ResultSetKeyspace)
	plain, err := appendString(plain, "metrics")
	require.NoError(t, err)

	compressed, err := SnappyCompressor{}.Encode(plain)
	require.NoError(t, err)

	f := responseFrame(OpResult, compressed)
	f.Flags = FlagCompressed

	resp, err := c.DecodeResponse(f)
	require.NoError(t, err)
	r, ok := resp.(*Result)
	require.True(t, ok)
	require.Equal(t, "metrics", r.Keyspace)
}

func TestDecodeTruncatedError(t *testing.T) {
	c := NewCodec(nil)

	_, err := c.DecodeResponse(responseFrame(OpError, []byte{0x00, 0x00}))
	require.ErrorIs(t, err, errShortBody)
}
