package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Protocol version and direction bits of the frame header version byte.
const (
	ProtocolVersion   byte = 0x02
	directionRequest  byte = 0x00
	directionResponse byte = 0x80
	versionMask       byte = 0x7f
)

// Frame header flag bits.
const (
	// FlagCompressed marks a frame whose body is compressed with the
	// negotiated compressor.
	FlagCompressed byte = 0x01

	// FlagTracing marks a response frame whose body is prefixed with a
	// 16-byte tracing id.
	FlagTracing byte = 0x02
)

// MaxFrameBodyLength bounds the declared body length of an inbound frame.
// Frames above it are rejected before any allocation happens.
const MaxFrameBodyLength = 256 * 1024 * 1024

const headerLength = 8

// Opcode identifies the message kind carried by a frame.
type Opcode byte

// Protocol opcodes.
const (
	OpError        Opcode = 0x00
	OpStartup      Opcode = 0x01
	OpReady        Opcode = 0x02
	OpAuthenticate Opcode = 0x03
	OpOptions      Opcode = 0x05
	OpSupported    Opcode = 0x06
	OpQuery        Opcode = 0x07
	OpResult       Opcode = 0x08
)

// String returns the protocol name of the opcode.
func (o Opcode) String() string {
	switch o {
	case OpError:
		return "ERROR"
	case OpStartup:
		return "STARTUP"
	case OpReady:
		return "READY"
	case OpAuthenticate:
		return "AUTHENTICATE"
	case OpOptions:
		return "OPTIONS"
	case OpSupported:
		return "SUPPORTED"
	case OpQuery:
		return "QUERY"
	case OpResult:
		return "RESULT"
	}

	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(o))
}

// Frame is the length-delimited envelope carrying one protocol message.
type Frame struct {
	// Version is the raw version byte: direction bit plus protocol version.
	Version byte

	// Flags carries the frame-level flag bits (compression, tracing).
	Flags byte

	// Stream correlates a response frame to the request frame that caused
	// it. Conduit connections are single-in-flight and always use 0.
	Stream int8

	// Opcode identifies the message kind of the body.
	Opcode Opcode

	// Body is the message payload, possibly compressed per Flags.
	Body []byte
}

// NewRequestFrame builds an outgoing request frame for the given opcode.
func NewRequestFrame(op Opcode, stream int8, body []byte) *Frame {
	return &Frame{
		Version: directionRequest | ProtocolVersion,
		Stream:  stream,
		Opcode:  op,
		Body:    body,
	}
}

// IsResponse reports whether the frame's direction bit marks it as a
// server-to-client frame.
func (f *Frame) IsResponse() bool {
	return f.Version&directionResponse != 0
}

// WriteTo serializes the frame header and body to w.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	var hdr [headerLength]byte
	hdr[0] = f.Version
	hdr[1] = f.Flags
	hdr[2] = byte(f.Stream)
	hdr[3] = byte(f.Opcode)
	binary.BigEndian.PutUint32(hdr[4:], uint32(len(f.Body)))

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}

	m, err := w.Write(f.Body)

	return int64(n + m), err
}

// ReadFrame reads one complete frame from r.
//
// It returns an error if the header declares a body larger than
// MaxFrameBodyLength or if the stream ends mid-frame.
func ReadFrame(r io.Reader) (*Frame, error) {
	var hdr [headerLength]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(hdr[4:])
	if length > MaxFrameBodyLength {
		return nil, fmt.Errorf("wire: frame body length %d exceeds maximum %d", length, MaxFrameBodyLength)
	}

	f := &Frame{
		Version: hdr[0],
		Flags:   hdr[1],
		Stream:  int8(hdr[2]),
		Opcode:  Opcode(hdr[3]),
	}

	if length > 0 {
		f.Body = make([]byte, length)
		if _, err := io.ReadFull(r, f.Body); err != nil {
			return nil, err
		}
	}

	return f, nil
}
