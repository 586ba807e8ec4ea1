package cbor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/valuekit/value-go"
)

type container struct {
	isMap bool
	want  int
	got   int
}

// Serializer implements marshaling of values to CBOR.
type Serializer struct {
	p    []byte
	head []container
	err  error
}

var _ value.Serializer = (*Serializer)(nil)

// NewSerializer returns an empty CBOR serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Bytes returns the encoded data item, or the first error.
func (s *Serializer) Bytes() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.head) != 0 {
		return nil, fmt.Errorf("cbor: %d unclosed containers", len(s.head))
	}
	return s.p, nil
}

func (s *Serializer) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// item counts one data item against the enclosing container.
func (s *Serializer) item() {
	if n := len(s.head); n > 0 {
		s.head[n-1].got++
	}
}

func (s *Serializer) writeArg(t majorType, arg uint64) {
	var scratch [9]byte
	n := encodeArg(t, arg, scratch[:])
	s.p = append(s.p, scratch[:n]...)
}

func (s *Serializer) WriteNil() {
	s.item()
	s.p = append(s.p, compose(majorType7, major7Nil))
}

func (s *Serializer) WriteBool(v bool) {
	s.item()
	if v {
		s.p = append(s.p, compose(majorType7, major7True))
	} else {
		s.p = append(s.p, compose(majorType7, major7False))
	}
}

func (s *Serializer) WriteInt64(v int64) {
	s.item()
	if v < 0 {
		// -1-v, without overflow at MinInt64
		s.writeArg(majorTypeNegInt, uint64(^v))
		return
	}
	s.writeArg(majorTypeUint, uint64(v))
}

func (s *Serializer) WriteUint64(v uint64) {
	s.item()
	s.writeArg(majorTypeUint, v)
}

func (s *Serializer) WriteFloat64(v float64) {
	s.item()
	s.p = append(s.p, compose(majorType7, major7Float64))
	s.p = binary.BigEndian.AppendUint64(s.p, math.Float64bits(v))
}

func (s *Serializer) WriteString(v string) {
	s.item()
	s.writeArg(majorTypeString, uint64(len(v)))
	s.p = append(s.p, v...)
}

func (s *Serializer) WriteBinary(v []byte) {
	s.item()
	s.writeArg(majorTypeSlice, uint64(len(v)))
	s.p = append(s.p, v...)
}

func (s *Serializer) WriteArray(n int) {
	s.item()
	s.writeArg(majorTypeList, uint64(n))
	s.head = append(s.head, container{want: n})
}

func (s *Serializer) CloseArray() {
	s.close(false)
}

func (s *Serializer) WriteMap(n int) {
	s.item()
	s.writeArg(majorTypeMap, uint64(n))
	s.head = append(s.head, container{isMap: true, want: 2 * n})
}

func (s *Serializer) CloseMap() {
	s.close(true)
}

func (s *Serializer) close(isMap bool) {
	n := len(s.head)
	if n == 0 || s.head[n-1].isMap != isMap {
		s.fail(fmt.Errorf("cbor: close without matching open container"))
		return
	}

	c := s.head[n-1]
	if c.got != c.want {
		s.fail(fmt.Errorf("cbor: container declared %d items, wrote %d", c.want, c.got))
	}
	s.head = s.head[:n-1]
}

func compose(major majorType, minor byte) byte {
	return byte(major)<<5 | minor
}

func encodeArg[I int | uint64](t majorType, arg I, p []byte) int {
	if arg < 24 {
		p[0] = byte(t)<<5 | byte(arg)
		return 1
	} else if arg < 0x100 {
		p[0] = compose(t, minorArg1)
		p[1] = byte(arg)
		return 2
	} else if arg < 0x10000 {
		p[0] = compose(t, minorArg2)
		binary.BigEndian.PutUint16(p[1:], uint16(arg))
		return 3
	} else if arg < 0x100000000 {
		p[0] = compose(t, minorArg4)
		binary.BigEndian.PutUint32(p[1:], uint32(arg))
		return 5
	}

	p[0] = compose(t, minorArg8)
	binary.BigEndian.PutUint64(p[1:], uint64(arg))
	return 9
}
