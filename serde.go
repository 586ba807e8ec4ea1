package value

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valuekit/value-go/logging"
)

// maxPrealloc caps the capacity taken from a wire size hint.
const maxPrealloc = 1024

// DefaultMaxDepth is the container nesting limit used when
// DecodeOptions.MaxDepth is not set.
const DefaultMaxDepth = 10000

var (
	// ErrMaxDepth is returned when decoded containers nest deeper than
	// DecodeOptions.MaxDepth.
	ErrMaxDepth = errors.New("value: maximum nesting depth exceeded")

	// ErrTrailingData is returned by Unmarshal when input remains after the
	// top-level value.
	ErrTrailingData = errors.New("value: trailing data after top-level value")
)

var (
	_ Serializable   = (*Map)(nil)
	_ Deserializable = (*Map)(nil)
)

// DecodeOptions configures Deserialize.
type DecodeOptions struct {
	// Logger receives a DEBUG entry whenever a duplicate map key overwrites
	// an earlier entry. Defaults to logging.Noop.
	Logger logging.Logger

	// MaxDepth limits how deeply arrays and maps may nest. Defaults to
	// DefaultMaxDepth.
	MaxDepth int
}

func resolveDecodeOptions(optFns []func(*DecodeOptions)) *DecodeOptions {
	var o DecodeOptions
	for _, fn := range optFns {
		fn(&o)
	}
	o.Logger = logging.OrNoop(o.Logger)
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return &o
}

// DecodeError is returned by Deserialize when reading a nested value fails.
// It records where the failure happened.
type DecodeError struct {
	// innermost segment first
	path []string
	Err  error
}

// Path renders the location of the failing value, e.g. `[2]["name"]`.
func (e *DecodeError) Path() string {
	var sb strings.Builder
	for i := len(e.path) - 1; i >= 0; i-- {
		sb.WriteString(e.path[i])
	}
	return sb.String()
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path(), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// at adds a path segment to err, reusing an existing DecodeError so deep
// failures are not rewrapped at every level.
func at(err error, segment string) error {
	if de, ok := err.(*DecodeError); ok {
		de.path = append(de.path, segment)
		return de
	}
	return &DecodeError{path: []string{segment}, Err: err}
}

// Serialize writes v to s.
func Serialize(s Serializer, v Value) {
	switch vv := orNull(v).(type) {
	case Null:
		s.WriteNil()
	case Bool:
		s.WriteBool(bool(vv))
	case Int:
		s.WriteInt64(int64(vv))
	case Uint:
		s.WriteUint64(uint64(vv))
	case Float:
		s.WriteFloat64(float64(vv))
	case String:
		s.WriteString(string(vv))
	case Binary:
		s.WriteBinary(vv)
	case Array:
		s.WriteArray(len(vv))
		for _, e := range vv {
			Serialize(s, e)
		}
		s.CloseArray()
	case *Map:
		vv.Serialize(s)
	}
}

// Serialize writes the map to s in iteration order.
func (m *Map) Serialize(s Serializer) {
	s.WriteMap(m.Len())
	for _, e := range m.entryList() {
		Serialize(s, e.key)
		Serialize(s, e.value)
	}
	s.CloseMap()
}

// Deserialize reads one value from d.
func Deserialize(d Deserializer) (Value, error) {
	return DeserializeWith(d)
}

// DeserializeWith reads one value from d with the given options.
func DeserializeWith(d Deserializer, optFns ...func(*DecodeOptions)) (Value, error) {
	return deserialize(d, resolveDecodeOptions(optFns), 0)
}

// Deserialize replaces the contents of m with the map read from d. The wire
// order becomes the iteration order and a repeated key keeps its first
// position with the last value.
func (m *Map) Deserialize(d Deserializer) error {
	decoded, err := deserializeMap(d, resolveDecodeOptions(nil), 1)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// deserialize reads one value. depth is the number of enclosing containers.
func deserialize(d Deserializer, o *DecodeOptions, depth int) (Value, error) {
	kind, err := d.PeekKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindNull:
		if err := d.ReadNil(); err != nil {
			return nil, err
		}
		return Null{}, nil
	case KindBool:
		b, err := d.ReadBool()
		return Bool(b), err
	case KindInt:
		i, err := d.ReadInt64()
		return Int(i), err
	case KindUint:
		u, err := d.ReadUint64()
		return Uint(u), err
	case KindFloat:
		f, err := d.ReadFloat64()
		return Float(f), err
	case KindString:
		s, err := d.ReadString()
		return String(s), err
	case KindBinary:
		b, err := d.ReadBinary()
		return Binary(b), err
	case KindArray, KindMap:
		if depth >= o.MaxDepth {
			return nil, fmt.Errorf("%w: limit %d", ErrMaxDepth, o.MaxDepth)
		}
		if kind == KindArray {
			return deserializeArray(d, o, depth+1)
		}
		return deserializeMap(d, o, depth+1)
	default:
		return nil, &KindError{Expected: "known kind", Actual: kind}
	}
}

func deserializeArray(d Deserializer, o *DecodeOptions, depth int) (Array, error) {
	hint, err := d.ReadArray()
	if err != nil {
		return nil, err
	}

	arr := make(Array, 0, capFromHint(hint))
	for {
		ok, err := d.ReadArrayItem()
		if err != nil {
			return nil, err
		}
		if !ok {
			return arr, nil
		}

		item, err := deserialize(d, o, depth)
		if err != nil {
			return nil, at(err, fmt.Sprintf("[%d]", len(arr)))
		}
		arr = append(arr, item)
	}
}

func deserializeMap(d Deserializer, o *DecodeOptions, depth int) (*Map, error) {
	hint, err := d.ReadMap()
	if err != nil {
		return nil, err
	}

	m := NewMapWithCapacity(capFromHint(hint))
	for {
		ok, err := d.ReadMapEntry()
		if err != nil {
			return nil, err
		}
		if !ok {
			return m, nil
		}

		k, err := deserialize(d, o, depth)
		if err != nil {
			return nil, at(err, fmt.Sprintf("{key %d}", m.Len()))
		}
		v, err := deserialize(d, o, depth)
		if err != nil {
			return nil, at(err, "["+k.String()+"]")
		}

		if _, dup := m.Insert(k, v); dup {
			o.Logger.Logf(logging.Debug, "duplicate map key %v, keeping last value", k)
		}
	}
}

func capFromHint(hint int) int {
	if hint < 0 {
		return 0
	}
	return min(hint, maxPrealloc)
}

// Marshal encodes v with the codec.
func Marshal(c Codec, v Value) ([]byte, error) {
	s := c.Serializer()
	Serialize(s, v)
	p, err := s.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", c.Name(), err)
	}
	return p, nil
}

// Unmarshal decodes a single value from p with the codec. When the codec's
// Deserializer implements Finisher, input left after the value is an error.
func Unmarshal(c Codec, p []byte, optFns ...func(*DecodeOptions)) (Value, error) {
	d := c.Deserializer(p)
	v, err := DeserializeWith(d, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%s decode: %w", c.Name(), err)
	}
	if f, ok := d.(Finisher); ok {
		if err := f.Finish(); err != nil {
			return nil, fmt.Errorf("%s decode: %w", c.Name(), err)
		}
	}
	return v, nil
}
