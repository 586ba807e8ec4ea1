package value

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/constraints"
)

// Valuer is implemented by types that convert themselves to a Value.
type Valuer interface {
	ToValue() (Value, error)
}

var (
	valueType     = reflect.TypeOf((*Value)(nil)).Elem()
	valuerType    = reflect.TypeOf((*Valuer)(nil)).Elem()
	textMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	timeType      = reflect.TypeOf(time.Time{})
)

// From converts a Go value to a Value.
//
// Structs become maps of their exported fields in declaration order, named by
// their json tag when present. Go maps become maps with keys sorted by
// Compare, since Go map iteration has no order of its own.
func From(x any) (Value, error) {
	if x == nil {
		return Null{}, nil
	}
	if v, ok := x.(Value); ok {
		return orNull(v), nil
	}
	return fromReflect(reflect.ValueOf(x))
}

// Of converts x like From, returning Null when x cannot be converted.
func Of(x any) Value {
	v, err := From(x)
	if err != nil {
		return Null{}
	}
	return v
}

// FromSigned returns the Int for any signed integer type.
func FromSigned[T constraints.Signed](n T) Int {
	return Int(int64(n))
}

// FromUnsigned returns the Uint for any unsigned integer type.
func FromUnsigned[T constraints.Unsigned](n T) Uint {
	return Uint(uint64(n))
}

// FromFloat returns the Float for any float type.
func FromFloat[T constraints.Float](f T) Float {
	return Float(float64(f))
}

func fromReflect(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null{}, nil
	}

	t := rv.Type()
	switch {
	case !rv.CanInterface():
		// promoted through an unexported embedded field
	case t.Implements(valueType):
		if rv.Kind() == reflect.Interface && rv.IsNil() {
			return Null{}, nil
		}
		return orNull(rv.Interface().(Value)), nil
	case t.Implements(valuerType):
		if isNilable(rv) && rv.IsNil() {
			return Null{}, nil
		}
		return rv.Interface().(Valuer).ToValue()
	case t == timeType:
		return String(rv.Interface().(time.Time).Format(time.RFC3339Nano)), nil
	case t.Implements(textMarshaler):
		if isNilable(rv) && rv.IsNil() {
			return Null{}, nil
		}
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, fmt.Errorf("marshal %v as text: %w", t, err)
		}
		return String(text), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return fromReflect(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return Binary(slices.Clone(rv.Bytes())), nil
		}
		return fromSequence(rv)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Binary(b), nil
		}
		return fromSequence(rv)
	case reflect.Map:
		if rv.IsNil() {
			return Null{}, nil
		}
		return fromMap(rv)
	case reflect.Struct:
		m := NewMapWithCapacity(t.NumField())
		if err := fromStruct(m, rv); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, &UnsupportedTypeError{Type: t}
	}
}

func isNilable(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func fromSequence(rv reflect.Value) (Array, error) {
	out := make(Array, rv.Len())
	for i := range out {
		v, err := fromReflect(rv.Index(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func fromMap(rv reflect.Value) (*Map, error) {
	entries := make([]Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := fromReflect(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		v, err := fromReflect(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("map value for key %v: %w", k, err)
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return Compare(a.Key, b.Key)
	})

	m := NewMapWithCapacity(len(entries))
	for _, e := range entries {
		m.Insert(e.Key, e.Value)
	}
	return m, nil
}

func fromStruct(m *Map, rv reflect.Value) error {
	for _, f := range structFields(rv.Type()) {
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			// behind a nil embedded pointer
			continue
		}
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}

		v, err := fromReflect(fv)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.goName, err)
		}
		m.Insert(String(f.name), v)
	}
	return nil
}

// fieldCache maps a struct type to its []structField.
var fieldCache sync.Map

type structField struct {
	name      string
	goName    string
	index     []int
	depth     int
	tagged    bool
	omitEmpty bool
}

// structFields lists the fields of t in declaration order with the fields of
// embedded structs promoted. When several fields share a name the shallowest
// wins, a tagged field beats untagged ones at the same depth, and any other
// tie drops the name, matching encoding/json.
func structFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}

	var all []structField
	collectFields(t, nil, map[reflect.Type]bool{t: true}, &all)

	byName := make(map[string][]int)
	for i, f := range all {
		byName[f.name] = append(byName[f.name], i)
	}

	out := make([]structField, 0, len(all))
	for i, f := range all {
		if w, ok := dominant(all, byName[f.name]); ok && w == i {
			out = append(out, f)
		}
	}

	cached, _ := fieldCache.LoadOrStore(t, out)
	return cached.([]structField)
}

func collectFields(t reflect.Type, index []int, onPath map[reflect.Type]bool, out *[]structField) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, omitEmpty, skip := jsonField(f)
		if skip {
			continue
		}
		idx := append(slices.Clone(index), i)

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if onPath[ft] {
					continue
				}
				onPath[ft] = true
				collectFields(ft, idx, onPath, out)
				delete(onPath, ft)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		tagged := name != ""
		if !tagged {
			name = f.Name
		}
		*out = append(*out, structField{
			name:      name,
			goName:    f.Name,
			index:     idx,
			depth:     len(idx),
			tagged:    tagged,
			omitEmpty: omitEmpty,
		})
	}
}

// dominant picks the field that owns a name among the candidates, or
// reports false when the name is ambiguous.
func dominant(all []structField, candidates []int) (int, bool) {
	minDepth := all[candidates[0]].depth
	for _, c := range candidates {
		minDepth = min(minDepth, all[c].depth)
	}

	var shallow, tagged []int
	for _, c := range candidates {
		if all[c].depth != minDepth {
			continue
		}
		shallow = append(shallow, c)
		if all[c].tagged {
			tagged = append(tagged, c)
		}
	}

	switch {
	case len(tagged) == 1:
		return tagged[0], true
	case len(tagged) == 0 && len(shallow) == 1:
		return shallow[0], true
	default:
		return 0, false
	}
}

// isEmptyValue is the omitempty rule of encoding/json.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// jsonField parses the json struct tag of f.
func jsonField(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// To converts v into the Go value pointed to by out, honoring json tags on
// struct fields.
func To(v Value, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: false,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("value: configure decoder: %w", err)
	}

	if err := dec.Decode(Interface(v)); err != nil {
		return fmt.Errorf("value: decode %v into %T: %w", KindOf(v), out, err)
	}
	return nil
}
