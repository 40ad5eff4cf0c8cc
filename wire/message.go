package wire

import (
	"github.com/google/uuid"
)

// Consistency is the consistency level attached to a QUERY request.
type Consistency uint16

// Consistency levels.
const (
	Any         Consistency = 0x00
	One         Consistency = 0x01
	Two         Consistency = 0x02
	Three       Consistency = 0x03
	Quorum      Consistency = 0x04
	All         Consistency = 0x05
	LocalQuorum Consistency = 0x06
	EachQuorum  Consistency = 0x07
)

// Result response kinds.
const (
	ResultVoid         int32 = 0x01
	ResultRows         int32 = 0x02
	ResultSetKeyspace  int32 = 0x03
	ResultPrepared     int32 = 0x04
	ResultSchemaChange int32 = 0x05
)

// Request is a client-to-server protocol message.
//
// Requests carry the identity of the connection that issued them so the
// codec and diagnostics can correlate protocol-level context.
type Request interface {
	// Opcode returns the frame opcode for this request.
	Opcode() Opcode

	// EncodeBody serializes the message body.
	EncodeBody() ([]byte, error)

	// Attach records the name of the connection sending the request.
	Attach(conn string)

	// Source returns the name recorded by Attach, or "" before a
	// connection picked the request up.
	Source() string
}

// attachment implements the Attach/Source half of Request and is embedded
// by every concrete request type.
type attachment struct {
	conn string
}

func (a *attachment) Attach(conn string) { a.conn = conn }
func (a *attachment) Source() string     { return a.conn }

// Startup is the first request on a new connection, negotiating protocol
// readiness.
type Startup struct {
	attachment

	// CQLVersion is the CQL version the client expects to speak.
	CQLVersion string

	// Compression names the frame compression algorithm to enable for the
	// rest of the connection, or "" for none.
	Compression string
}

// Opcode implements Request.
func (s *Startup) Opcode() Opcode { return OpStartup }

// EncodeBody implements Request.
func (s *Startup) EncodeBody() ([]byte, error) {
	opts := map[string]string{"CQL_VERSION": s.CQLVersion}
	if s.Compression != "" {
		opts["COMPRESSION"] = s.Compression
	}

	return appendStringMap(nil, opts)
}

// Query carries a CQL statement for execution.
type Query struct {
	attachment

	// Statement is the CQL text.
	Statement string

	// Consistency is the requested consistency level.
	Consistency Consistency
}

// Opcode implements Request.
func (q *Query) Opcode() Opcode { return OpQuery }

// EncodeBody implements Request.
func (q *Query) EncodeBody() ([]byte, error) {
	b, err := appendLongString(nil, q.Statement)
	if err != nil {
		return nil, err
	}

	return appendShort(b, uint16(q.Consistency)), nil
}

// Options asks the server which protocol options it supports.
type Options struct {
	attachment
}

// Opcode implements Request.
func (o *Options) Opcode() Opcode { return OpOptions }

// EncodeBody implements Request.
func (o *Options) EncodeBody() ([]byte, error) { return nil, nil }

// Response is a server-to-client protocol message.
type Response interface {
	// Opcode returns the frame opcode this response was decoded from.
	Opcode() Opcode

	// Tracing returns the tracing id attached to the response frame, if
	// the server traced the request.
	Tracing() (uuid.UUID, bool)
}

// traceInfo implements the Tracing half of Response and is embedded by
// every concrete response type.
type traceInfo struct {
	id     uuid.UUID
	traced bool
}

func (t *traceInfo) Tracing() (uuid.UUID, bool) { return t.id, t.traced }

func (t *traceInfo) setTracing(id uuid.UUID) {
	t.id = id
	t.traced = true
}

// tracedResponse is satisfied by all concrete responses via traceInfo.
type tracedResponse interface {
	setTracing(id uuid.UUID)
}

// Ready signals a successful startup handshake.
type Ready struct {
	traceInfo
}

// Opcode implements Response.
func (r *Ready) Opcode() Opcode { return OpReady }

// Error is a server-reported error for the outstanding request.
type Error struct {
	traceInfo

	// Code is the protocol error code.
	Code int32

	// Message is the server's error text.
	Message string
}

// Opcode implements Response.
func (e *Error) Opcode() Opcode { return OpError }

// Authenticate indicates the server requires authentication before the
// connection becomes usable.
type Authenticate struct {
	traceInfo

	// Class names the server-side authenticator implementation.
	Class string
}

// Opcode implements Response.
func (a *Authenticate) Opcode() Opcode { return OpAuthenticate }

// Supported lists the protocol options the server accepts in a STARTUP
// request.
type Supported struct {
	traceInfo

	// Options maps option names to their supported values.
	Options map[string][]string
}

// Opcode implements Response.
func (s *Supported) Opcode() Opcode { return OpSupported }

// Result carries the outcome of a QUERY request.
type Result struct {
	traceInfo

	// Kind is one of the Result* kind constants.
	Kind int32

	// Keyspace holds the keyspace name for ResultSetKeyspace results.
	Keyspace string

	// Body is the raw remainder of the result body for kinds Conduit does
	// not interpret (rows, prepared, schema change).
	Body []byte
}

// Opcode implements Response.
func (r *Result) Opcode() Opcode { return OpResult }

func decodeError(body []byte) (*Error, error) {
	r := bodyReader{buf: body}
	code, err := r.readInt()
	if err != nil {
		return nil, err
	}
	msg, err := r.readString()
	if err != nil {
		return nil, err
	}

	return &Error{Code: code, Message: msg}, nil
}

func decodeAuthenticate(body []byte) (*Authenticate, error) {
	r := bodyReader{buf: body}
	class, err := r.readString()
	if err != nil {
		return nil, err
	}

	return &Authenticate{Class: class}, nil
}

func decodeSupported(body []byte) (*Supported, error) {
	r := bodyReader{buf: body}
	opts, err := r.readStringMultimap()
	if err != nil {
		return nil, err
	}

	return &Supported{Options: opts}, nil
}

func decodeResult(body []byte) (*Result, error) {
	r := bodyReader{buf: body}
	kind, err := r.readInt()
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: kind}
	if kind == ResultSetKeyspace {
		if res.Keyspace, err = r.readString(); err != nil {
			return nil, err
		}
	} else if r.remaining() > 0 {
		res.Body = append([]byte(nil), r.buf...)
	}

	return res, nil
}
