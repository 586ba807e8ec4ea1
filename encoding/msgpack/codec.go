// Package msgpack implements the value serializer and deserializer for
// MessagePack.
//
// Integer signedness survives a round trip: Uint is always written with the
// uint64 code and read back as value.Uint, every other integer code reads as
// value.Int. Timestamps (extension -1) read as RFC 3339 strings, other
// extensions are rejected.
package msgpack

import (
	"github.com/valuekit/value-go"
)

// Codec is the value.Codec for MessagePack.
type Codec struct{}

var _ value.Codec = (*Codec)(nil)

// Name returns "msgpack".
func (*Codec) Name() string { return "msgpack" }

// Serializer returns a new MessagePack serializer.
func (*Codec) Serializer() value.Serializer { return NewSerializer() }

// Deserializer returns a deserializer reading the MessagePack object in p.
func (*Codec) Deserializer(p []byte) value.Deserializer { return NewDeserializer(p) }
