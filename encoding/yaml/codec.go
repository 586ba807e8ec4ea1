// Package yaml implements the value serializer and deserializer for YAML 1.2
// documents.
//
// Values are built as yaml.v3 node trees, so mappings keep their order and
// keys may be sequences or mappings themselves. Binary values use the
// !!binary tag. When reading, aliases are expanded and only the first
// document is used.
package yaml

import (
	"github.com/valuekit/value-go"
)

// Codec is the value.Codec for YAML.
type Codec struct {
	// Indent is the number of spaces per nesting level. Defaults to 2.
	Indent int
}

var _ value.Codec = (*Codec)(nil)

// Name returns "yaml".
func (*Codec) Name() string { return "yaml" }

// Serializer returns a new YAML serializer.
func (c *Codec) Serializer() value.Serializer {
	return NewSerializer(func(o *Options) {
		o.Indent = c.Indent
	})
}

// Deserializer returns a deserializer reading the first YAML document in p.
func (*Codec) Deserializer(p []byte) value.Deserializer { return NewDeserializer(p) }
