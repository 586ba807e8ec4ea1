package value

import (
	"github.com/valuekit/value-go/logging"
)

// defaultBuilderCapacity is used when NewMapBuilder is given no size.
const defaultBuilderCapacity = 8

// BuilderOptions configures a MapBuilder.
type BuilderOptions struct {
	// Logger receives a WARN entry for every key or value that could not be
	// converted and was replaced by Null.
	Logger logging.Logger
}

// MapBuilder assembles a Map from Go values with chained Set calls:
//
//	m := value.NewMapBuilder(2).
//		Set("id", 1).
//		Set("user", value.NewMapBuilder(1).Set("name", "Alice")).
//		Build()
//
// Keys and values are converted with From. A conversion failure never stops
// the chain, the offending key or value becomes Null instead.
type MapBuilder struct {
	m      *Map
	logger logging.Logger
}

// NewMapBuilder returns a builder for a map expected to hold capacity
// entries.
func NewMapBuilder(capacity int, optFns ...func(*BuilderOptions)) *MapBuilder {
	var o BuilderOptions
	for _, fn := range optFns {
		fn(&o)
	}
	if capacity <= 0 {
		capacity = defaultBuilderCapacity
	}

	return &MapBuilder{
		m:      NewMapWithCapacity(capacity),
		logger: logging.OrNoop(o.Logger),
	}
}

// Set inserts k and v. A nested *MapBuilder argument is built in place.
func (b *MapBuilder) Set(k, v any) *MapBuilder {
	b.m.Insert(b.convert("key", k), b.convert("value", v))
	return b
}

func (b *MapBuilder) convert(what string, x any) Value {
	if nested, ok := x.(*MapBuilder); ok {
		return nested.Build()
	}

	v, err := From(x)
	if err != nil {
		b.logger.Logf(logging.Warn, "map builder: %s %T replaced by null: %v", what, x, err)
		return Null{}
	}
	return v
}

// Build returns the assembled map. The builder must not be used afterwards.
func (b *MapBuilder) Build() *Map {
	return b.m
}

// Value returns the assembled map as a Value.
func (b *MapBuilder) Value() Value {
	return b.m
}

// MapOf builds a map from alternating keys and values. A trailing key without
// a value maps to Null.
func MapOf(kv ...any) *Map {
	b := NewMapBuilder((len(kv) + 1) / 2)
	for i := 0; i < len(kv); i += 2 {
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		b.Set(kv[i], v)
	}
	return b.Build()
}

// ArrayOf converts each element with Of.
func ArrayOf(xs ...any) Array {
	out := make(Array, len(xs))
	for i, x := range xs {
		if nested, ok := x.(*MapBuilder); ok {
			out[i] = nested.Build()
			continue
		}
		out[i] = Of(x)
	}
	return out
}
