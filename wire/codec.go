package wire

import (
	"fmt"

	"github.com/google/uuid"
)

// Codec converts typed requests into outgoing frames and inbound frames
// into typed responses. Connections treat it as a black box; replacing it
// swaps the entire message layer.
type Codec interface {
	// EncodeRequest serializes a request into a frame on the given stream.
	EncodeRequest(req Request, stream int8) (*Frame, error)

	// DecodeResponse deserializes an inbound frame into a typed response.
	// A non-nil error means the frame was not a well-formed response.
	DecodeResponse(f *Frame) (Response, error)
}

// codec is the default Codec implementation with optional frame-body
// compression.
type codec struct {
	compressor Compressor
}

// NewCodec creates the default codec.
//
// Parameters:
//   - compressor: Frame-body compressor, or nil for uncompressed frames
//
// Returns:
//   - Codec: The default protocol codec
func NewCodec(compressor Compressor) Codec {
	return &codec{compressor: compressor}
}

// EncodeRequest implements Codec.
//
// The STARTUP body is never compressed; compression only applies once the
// server has acknowledged the algorithm the STARTUP negotiated.
func (c *codec) EncodeRequest(req Request, stream int8) (*Frame, error) {
	body, err := req.EncodeBody()
	if err != nil {
		return nil, fmt.Errorf("wire: encoding %s request: %w", req.Opcode(), err)
	}

	f := NewRequestFrame(req.Opcode(), stream, body)
	if c.compressor != nil && req.Opcode() != OpStartup && len(body) > 0 {
		compressed, err := c.compressor.Encode(body)
		if err != nil {
			return nil, fmt.Errorf("wire: compressing %s request: %w", req.Opcode(), err)
		}
		f.Body = compressed
		f.Flags |= FlagCompressed
	}

	return f, nil
}

// DecodeResponse implements Codec.
func (c *codec) DecodeResponse(f *Frame) (Response, error) {
	if !f.IsResponse() {
		return nil, fmt.Errorf("wire: frame version 0x%02x is not a response", f.Version)
	}
	if v := f.Version & versionMask; v != ProtocolVersion {
		return nil, fmt.Errorf("wire: unsupported protocol version 0x%02x", v)
	}

	body := f.Body
	if f.Flags&FlagCompressed != 0 {
		if c.compressor == nil {
			return nil, fmt.Errorf("wire: compressed %s frame received but no compressor configured", f.Opcode)
		}
		decompressed, err := c.compressor.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("wire: decompressing %s frame: %w", f.Opcode, err)
		}
		body = decompressed
	}

	tracingID, hasTracing, err := parseTracing(f, &body)
	if err != nil {
		return nil, err
	}

	resp, err := decodeBody(f.Opcode, body)
	if err != nil {
		return nil, fmt.Errorf("wire: decoding %s response: %w", f.Opcode, err)
	}
	if hasTracing {
		resp.(tracedResponse).setTracing(tracingID)
	}

	return resp, nil
}

func parseTracing(f *Frame, body *[]byte) (uuid.UUID, bool, error) {
	if f.Flags&FlagTracing == 0 {
		return uuid.UUID{}, false, nil
	}
	r := bodyReader{buf: *body}
	id, err := r.readUUID()
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("wire: reading tracing id of %s frame: %w", f.Opcode, err)
	}
	*body = r.buf

	return id, true, nil
}

func decodeBody(op Opcode, body []byte) (Response, error) {
	switch op {
	case OpReady:
		return &Ready{}, nil
	case OpError:
		return decodeError(body)
	case OpAuthenticate:
		return decodeAuthenticate(body)
	case OpSupported:
		return decodeSupported(body)
	case OpResult:
		return decodeResult(body)
	default:
		return nil, fmt.Errorf("unexpected response opcode %s", op)
	}
}
