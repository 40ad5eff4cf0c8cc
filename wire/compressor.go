package wire

import "github.com/golang/snappy"

// Compressor compresses and decompresses frame bodies.
//
// Name is advertised to the server in the STARTUP request; the server must
// support the algorithm for the connection to come up.
type Compressor interface {
	// Name returns the protocol name of the algorithm (e.g. "snappy").
	Name() string

	// Encode compresses src into a new buffer.
	Encode(src []byte) ([]byte, error)

	// Decode decompresses src into a new buffer.
	Decode(src []byte) ([]byte, error)
}

// SnappyCompressor implements Compressor using Google's snappy block
// format, the compression Cassandra-compatible servers accept under the
// "snappy" option.
type SnappyCompressor struct{}

// Compile-time assertion that SnappyCompressor implements Compressor.
var _ Compressor = SnappyCompressor{}

// Name implements Compressor.
func (SnappyCompressor) Name() string { return "snappy" }

// Encode implements Compressor.
func (SnappyCompressor) Encode(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

// Decode implements Compressor.
func (SnappyCompressor) Decode(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}
