package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// errShortBody is returned when a message body ends before a declared
// element is complete.
var errShortBody = errors.New("wire: message body truncated")

func appendShort(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func appendInt(b []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

func appendString(b []byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return nil, fmt.Errorf("wire: string length %d exceeds [string] maximum", len(s))
	}
	b = appendShort(b, uint16(len(s)))

	return append(b, s...), nil
}

func appendLongString(b []byte, s string) ([]byte, error) {
	if len(s) > math.MaxInt32 {
		return nil, fmt.Errorf("wire: string length %d exceeds [long string] maximum", len(s))
	}
	b = appendInt(b, int32(len(s)))

	return append(b, s...), nil
}

func appendStringMap(b []byte, m map[string]string) ([]byte, error) {
	if len(m) > math.MaxUint16 {
		return nil, fmt.Errorf("wire: map size %d exceeds [string map] maximum", len(m))
	}
	b = appendShort(b, uint16(len(m)))

	var err error
	for k, v := range m {
		if b, err = appendString(b, k); err != nil {
			return nil, err
		}
		if b, err = appendString(b, v); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// bodyReader consumes protocol primitives from a message body.
type bodyReader struct {
	buf []byte
}

func (r *bodyReader) remaining() int {
	return len(r.buf)
}

func (r *bodyReader) readShort() (uint16, error) {
	if len(r.buf) < 2 {
		return 0, errShortBody
	}
	v := binary.BigEndian.Uint16(r.buf)
	r.buf = r.buf[2:]

	return v, nil
}

func (r *bodyReader) readInt() (int32, error) {
	if len(r.buf) < 4 {
		return 0, errShortBody
	}
	v := int32(binary.BigEndian.Uint32(r.buf))
	r.buf = r.buf[4:]

	return v, nil
}

func (r *bodyReader) readString() (string, error) {
	n, err := r.readShort()
	if err != nil {
		return "", err
	}
	if len(r.buf) < int(n) {
		return "", errShortBody
	}
	s := string(r.buf[:n])
	r.buf = r.buf[n:]

	return s, nil
}

func (r *bodyReader) readStringList() ([]string, error) {
	n, err := r.readShort()
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, n)
	for i := uint16(0); i < n; i++ {
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}

	return list, nil
}

func (r *bodyReader) readStringMultimap() (map[string][]string, error) {
	n, err := r.readShort()
	if err != nil {
		return nil, err
	}

	m := make(map[string][]string, n)
	for i := uint16(0); i < n; i++ {
		k, err := r.readString()
		if err != nil {
			return nil, err
		}
		v, err := r.readStringList()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}

	return m, nil
}

func (r *bodyReader) readUUID() (uuid.UUID, error) {
	if len(r.buf) < 16 {
		return uuid.UUID{}, errShortBody
	}
	id, err := uuid.FromBytes(r.buf[:16])
	if err != nil {
		return uuid.UUID{}, err
	}
	r.buf = r.buf[16:]

	return id, nil
}
