package value

import (
	"bytes"
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/fxamacker/circlehash"
)

const hashSeed uint64 = 0x9e3779b97f4a7c15

// Equal reports whether a and b hold the same variant with recursively equal
// payloads. Arrays compare element-wise in order. Maps compare by key set and
// values regardless of iteration order. Floats compare by bit pattern.
func Equal(a, b Value) bool {
	a, b = orNull(a), orNull(b)
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Uint:
		return av == b.(Uint)
	case Float:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Float)))
	case String:
		return av == b.(String)
	case Binary:
		return bytes.Equal(av, b.(Binary))
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Map:
		return av.Equal(b.(*Map))
	}
	return false
}

// Hash returns a hash of v consistent with Equal.
func Hash(v Value) uint64 {
	v = orNull(v)
	kind := uint64(v.Kind())

	switch vv := v.(type) {
	case Null:
		return circlehash.Hash64Uint64x2(kind, 0, hashSeed)
	case Bool:
		var b uint64
		if vv {
			b = 1
		}
		return circlehash.Hash64Uint64x2(kind, b, hashSeed)
	case Int:
		return circlehash.Hash64Uint64x2(kind, uint64(vv), hashSeed)
	case Uint:
		return circlehash.Hash64Uint64x2(kind, uint64(vv), hashSeed)
	case Float:
		return circlehash.Hash64Uint64x2(kind, math.Float64bits(float64(vv)), hashSeed)
	case String:
		return circlehash.Hash64Uint64x2(kind, circlehash.Hash64([]byte(vv), hashSeed), hashSeed)
	case Binary:
		return circlehash.Hash64Uint64x2(kind, circlehash.Hash64(vv, hashSeed), hashSeed)
	case Array:
		h := circlehash.Hash64Uint64x2(kind, uint64(len(vv)), hashSeed)
		for _, e := range vv {
			h = circlehash.Hash64Uint64x2(h, Hash(e), hashSeed)
		}
		return h
	case *Map:
		return vv.Hash()
	}
	return 0
}

// Compare returns -1, 0 or +1 according to a total order over values that is
// consistent with Equal. Values of different variants order by Kind.
func Compare(a, b Value) int {
	a, b = orNull(a), orNull(b)
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}

	switch av := a.(type) {
	case Null:
		return 0
	case Bool:
		bv := b.(Bool)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case Int:
		return cmp.Compare(av, b.(Int))
	case Uint:
		return cmp.Compare(av, b.(Uint))
	case Float:
		return cmp.Compare(floatOrder(float64(av)), floatOrder(float64(b.(Float))))
	case String:
		return strings.Compare(string(av), string(b.(String)))
	case Binary:
		return bytes.Compare(av, b.(Binary))
	case Array:
		return slices.CompareFunc(av, b.(Array), Compare)
	case *Map:
		return compareMaps(av, b.(*Map))
	}
	return 0
}

// floatOrder maps the bits of f onto an unsigned key following the IEEE-754
// totalOrder predicate.
func floatOrder(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits>>63 == 1 {
		return ^bits
	}
	return bits | 1<<63
}

func compareMaps(a, b *Map) int {
	ae, be := a.sortedEntries(), b.sortedEntries()
	return slices.CompareFunc(ae, be, func(x, y Entry) int {
		if c := Compare(x.Key, y.Key); c != 0 {
			return c
		}
		return Compare(x.Value, y.Value)
	})
}
