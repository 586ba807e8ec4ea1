package msgpack

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/valuekit/value-go"
)

type container struct {
	isMap bool
	want  int
	got   int
}

// Serializer implements marshaling of values to MessagePack.
type Serializer struct {
	buf  bytes.Buffer
	enc  *msgpack.Encoder
	head []container
	err  error
}

var _ value.Serializer = (*Serializer)(nil)

// NewSerializer returns an empty MessagePack serializer.
func NewSerializer() *Serializer {
	s := &Serializer{}
	s.enc = msgpack.NewEncoder(&s.buf)
	return s
}

// Bytes returns the encoded object, or the first error.
func (s *Serializer) Bytes() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.head) != 0 {
		return nil, fmt.Errorf("msgpack: %d unclosed containers", len(s.head))
	}
	return s.buf.Bytes(), nil
}

// write counts one item against the enclosing container and records the
// first encoder error.
func (s *Serializer) write(err error) {
	if n := len(s.head); n > 0 {
		s.head[n-1].got++
	}
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *Serializer) WriteNil() {
	s.write(s.enc.EncodeNil())
}

func (s *Serializer) WriteBool(v bool) {
	s.write(s.enc.EncodeBool(v))
}

// WriteInt64 uses the compact encoding unless it would pick the uint64 code,
// which is reserved for Uint.
func (s *Serializer) WriteInt64(v int64) {
	if v > math.MaxUint32 {
		s.write(s.enc.EncodeInt64(v))
		return
	}
	s.write(s.enc.EncodeInt(v))
}

func (s *Serializer) WriteUint64(v uint64) {
	s.write(s.enc.EncodeUint64(v))
}

func (s *Serializer) WriteFloat64(v float64) {
	s.write(s.enc.EncodeFloat64(v))
}

func (s *Serializer) WriteString(v string) {
	s.write(s.enc.EncodeString(v))
}

func (s *Serializer) WriteBinary(v []byte) {
	if v == nil {
		// a nil slice would be encoded as nil
		v = []byte{}
	}
	s.write(s.enc.EncodeBytes(v))
}

func (s *Serializer) WriteArray(n int) {
	s.write(s.enc.EncodeArrayLen(n))
	s.head = append(s.head, container{want: n})
}

func (s *Serializer) CloseArray() {
	s.close(false)
}

func (s *Serializer) WriteMap(n int) {
	s.write(s.enc.EncodeMapLen(n))
	s.head = append(s.head, container{isMap: true, want: 2 * n})
}

func (s *Serializer) CloseMap() {
	s.close(true)
}

func (s *Serializer) close(isMap bool) {
	n := len(s.head)
	if n == 0 || s.head[n-1].isMap != isMap {
		s.write(fmt.Errorf("msgpack: close without matching open container"))
		return
	}

	c := s.head[n-1]
	s.head = s.head[:n-1]
	if c.got != c.want && s.err == nil {
		s.err = fmt.Errorf("msgpack: container declared %d items, wrote %d", c.want, c.got)
	}
}
