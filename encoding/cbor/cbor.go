// Package cbor implements the value serializer and deserializer for concise
// binary object representation (CBOR) described in RFC 8949.
//
// The serializer always writes definite-length containers since every Value
// knows its size up front. Integers are written with major types 0 and 1 and
// floats always as float64.
//
// The deserializer handles both definite and indefinite encodings of strings,
// byte strings, arrays and maps, half, single and double precision floats,
// and skips over semantic tags. The undefined literal reads as Null.
//
// CBOR does not record whether an integer was signed. Non-negative integers
// that fit int64 read back as value.Int, larger ones as value.Uint.
package cbor

import (
	"github.com/valuekit/value-go"
)

type majorType byte

const (
	majorTypeUint majorType = iota
	majorTypeNegInt
	majorTypeSlice
	majorTypeString
	majorTypeList
	majorTypeMap
	majorTypeTag
	majorType7
)

// argument sizes (minor 24-27)
const (
	minorArg1 = 24 + iota
	minorArg2
	minorArg4
	minorArg8
)

const minorIndefinite = 31

const breakMarker = 0xff

const (
	major7False = iota + 0b_10100
	major7True
	major7Nil
	major7Undefined
)

const (
	major7Float16 = iota + 0b_11001
	major7Float32
	major7Float64
)

// Codec is the value.Codec for CBOR.
type Codec struct{}

var _ value.Codec = (*Codec)(nil)

// Name returns "cbor".
func (*Codec) Name() string { return "cbor" }

// Serializer returns a new CBOR serializer.
func (*Codec) Serializer() value.Serializer { return NewSerializer() }

// Deserializer returns a deserializer reading the CBOR data item in p.
func (*Codec) Deserializer(p []byte) value.Deserializer { return NewDeserializer(p) }
