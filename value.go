package value

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Enumerates the Value variants. The declaration order is the rank used by
// Compare.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBinary
	KindArray
	KindMap
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindString: "string",
	KindBinary: "binary",
	KindArray:  "array",
	KindMap:    "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a dynamically typed datum. The following types implement Value:
//
//   - Null
//   - Bool
//   - Int
//   - Uint
//   - Float
//   - String
//   - Binary
//   - Array
//   - *Map
//
// A nil Value is treated as Null by every function in this package.
type Value interface {
	Kind() Kind
	String() string

	// sealed, only types in this package implement Value
	isValue()
}

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = Int(0)
	_ Value = Uint(0)
	_ Value = Float(0)
	_ Value = String("")
	_ Value = Binary(nil)
	_ Value = Array(nil)
	_ Value = (*Map)(nil)
)

// Null is the empty value. It is what lookups return on a miss.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Int is a signed 64-bit integer value.
type Int int64

// Uint is an unsigned 64-bit integer value.
type Uint uint64

// Float is a 64-bit floating point value.
type Float float64

// String is a UTF-8 text value.
type String string

// Binary is an opaque byte string.
type Binary []byte

// Array is an ordered sequence of values.
type Array []Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Uint) isValue()   {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Binary) isValue() {}
func (Array) isValue()  {}
func (*Map) isValue()   {}

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Uint) Kind() Kind   { return KindUint }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (Binary) Kind() Kind { return KindBinary }
func (Array) Kind() Kind  { return KindArray }
func (*Map) Kind() Kind   { return KindMap }

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (u Uint) String() string { return strconv.FormatUint(uint64(u), 10) }

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// String returns the value double quoted. Use string(s) for the raw text.
func (s String) String() string { return strconv.Quote(string(s)) }

func (b Binary) String() string { return "0x" + hex.EncodeToString(b) }

func (a Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(orNull(v).String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// KindOf returns the variant of v, KindNull for a nil Value.
func KindOf(v Value) Kind {
	return orNull(v).Kind()
}

// IsNull reports whether v is Null or nil.
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	if m, ok := v.(*Map); ok && m == nil {
		return NewMap()
	}
	return v
}

// AsBool returns the payload of a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// AsInt returns the payload of an Int.
func AsInt(v Value) (int64, bool) {
	i, ok := v.(Int)
	return int64(i), ok
}

// AsUint returns the payload of a Uint.
func AsUint(v Value) (uint64, bool) {
	u, ok := v.(Uint)
	return uint64(u), ok
}

// AsFloat returns the payload of a Float.
func AsFloat(v Value) (float64, bool) {
	f, ok := v.(Float)
	return float64(f), ok
}

// AsString returns the raw text of a String.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

// AsBinary returns the payload of a Binary.
func AsBinary(v Value) ([]byte, bool) {
	b, ok := v.(Binary)
	return []byte(b), ok
}

// AsArray returns v as an Array.
func AsArray(v Value) (Array, bool) {
	a, ok := v.(Array)
	return a, ok
}

// AsMap returns v as a *Map. A nil *Map is reported as not ok.
func AsMap(v Value) (*Map, bool) {
	m, ok := v.(*Map)
	return m, ok && m != nil
}

// Clone returns a deep copy of v. Scalars are returned as is.
func Clone(v Value) Value {
	switch vv := orNull(v).(type) {
	case Binary:
		if vv == nil {
			return vv
		}
		return append(Binary(make([]byte, 0, len(vv))), vv...)
	case Array:
		if vv == nil {
			return vv
		}
		out := make(Array, len(vv))
		for i, e := range vv {
			out[i] = Clone(e)
		}
		return out
	case *Map:
		return vv.Clone()
	default:
		return vv
	}
}

// RenderedKey is the map[any]any key Interface uses for a Binary, Array or
// *Map key.
type RenderedKey string

// Interface lowers v to plain Go values: nil, bool, int64, uint64, float64,
// string, []byte, []any, and map[string]any when every key is a String,
// map[any]any otherwise. Keys that are not comparable in Go (binary, array,
// map) are rendered with their display form as a RenderedKey, so they never
// collide with a String key of the same text.
func Interface(v Value) any {
	switch vv := orNull(v).(type) {
	case Null:
		return nil
	case Bool:
		return bool(vv)
	case Int:
		return int64(vv)
	case Uint:
		return uint64(vv)
	case Float:
		return float64(vv)
	case String:
		return string(vv)
	case Binary:
		return []byte(vv)
	case Array:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = Interface(e)
		}
		return out
	case *Map:
		return mapInterface(vv)
	}
	return nil
}

func mapInterface(m *Map) any {
	entries := m.stored()
	stringKeys := true
	for _, e := range entries {
		if e.Key.Kind() != KindString {
			stringKeys = false
			break
		}
	}

	if stringKeys {
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[string(e.Key.(String))] = Interface(e.Value)
		}
		return out
	}

	out := make(map[any]any, len(entries))
	for _, e := range entries {
		switch e.Key.Kind() {
		case KindBinary, KindArray, KindMap:
			out[RenderedKey(e.Key.String())] = Interface(e.Value)
		default:
			out[Interface(e.Key)] = Interface(e.Value)
		}
	}
	return out
}
