// Package json implements a value.Codec for JSON.
//
// JSON object keys are always strings. Scalar map keys are written in their
// text form (1 becomes "1") and array or map keys fail the encode with an
// *UnsupportedKeyError. Decoded keys are always value.String.
//
// Binary values are written as base64 strings and non-finite floats as the
// strings "NaN", "Infinity" and "-Infinity". Both read back through
// value.Deserialize as value.String, since the text alone does not say which
// kind was written. A caller that knows a float is expected can use
// Deserializer.ReadFloat64, which accepts those strings.
package json

import (
	"github.com/valuekit/value-go"
	"github.com/valuekit/value-go/logging"
)

// Codec is a JSON codec.
type Codec struct {
	// Logger receives a DEBUG entry whenever a non-string map key is
	// rendered as a string.
	Logger logging.Logger
}

var _ value.Codec = (*Codec)(nil)

// Name returns "json".
func (c *Codec) Name() string {
	return "json"
}

// Serializer returns a JSON serializer.
func (c *Codec) Serializer() value.Serializer {
	return NewSerializer(func(o *Options) {
		o.Logger = c.Logger
	})
}

// Deserializer returns a JSON deserializer over p.
func (c *Codec) Deserializer(p []byte) value.Deserializer {
	return NewDeserializer(p)
}

type stack[T any] struct {
	values []T
}

func (s *stack[T]) Top() (T, bool) {
	if len(s.values) == 0 {
		var zero T
		return zero, false
	}
	return s.values[len(s.values)-1], true
}

func (s *stack[T]) TopPtr() *T {
	if len(s.values) == 0 {
		return nil
	}
	return &s.values[len(s.values)-1]
}

func (s *stack[T]) Push(v T) {
	s.values = append(s.values, v)
}

func (s *stack[T]) Pop() {
	s.values = s.values[:len(s.values)-1]
}

func (s *stack[T]) Len() int {
	return len(s.values)
}
