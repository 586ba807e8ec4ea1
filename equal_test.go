package value_test

import (
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/valuekit/value-go"
)

func TestEqual(t *testing.T) {
	cases := map[string]struct {
		A, B   value.Value
		Expect bool
	}{
		"nil is null":           {A: nil, B: value.Null{}, Expect: true},
		"int vs uint":           {A: value.Int(1), B: value.Uint(1), Expect: false},
		"int vs float":          {A: value.Int(1), B: value.Float(1), Expect: false},
		"nan equals itself":     {A: value.Float(math.NaN()), B: value.Float(math.NaN()), Expect: true},
		"signed zeros differ":   {A: value.Float(0), B: value.Float(math.Copysign(0, -1)), Expect: false},
		"string vs binary":      {A: value.String("a"), B: value.Binary("a"), Expect: false},
		"array order matters":   {A: value.ArrayOf(1, 2), B: value.ArrayOf(2, 1), Expect: false},
		"array equal":           {A: value.ArrayOf(1, "x"), B: value.ArrayOf(1, "x"), Expect: true},
		"map order ignored":     {A: value.MapOf("a", 1, "b", 2), B: value.MapOf("b", 2, "a", 1), Expect: true},
		"nil map is empty map":  {A: (*value.Map)(nil), B: value.NewMap(), Expect: true},
		"nested map difference": {A: value.MapOf("a", value.MapOf("x", 1)), B: value.MapOf("a", value.MapOf("x", 2)), Expect: false},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if e, a := c.Expect, value.Equal(c.A, c.B); e != a {
				t.Errorf("expect Equal(%v, %v) %v, got %v", c.A, c.B, e, a)
			}
			if e, a := c.Expect, value.Equal(c.B, c.A); e != a {
				t.Errorf("expect symmetric result %v, got %v", e, a)
			}
			if c.Expect {
				if value.Hash(c.A) != value.Hash(c.B) {
					t.Errorf("expect equal values to hash equal")
				}
				if e, a := 0, value.Compare(c.A, c.B); e != a {
					t.Errorf("expect Compare %d, got %d", e, a)
				}
			} else if value.Compare(c.A, c.B) == 0 {
				t.Errorf("expect Compare to separate unequal values")
			}
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	sorted := []value.Value{
		value.Null{},
		value.Bool(false),
		value.Bool(true),
		value.Int(math.MinInt64),
		value.Int(-1),
		value.Int(5),
		value.Uint(0),
		value.Uint(math.MaxUint64),
		value.Float(math.Inf(-1)),
		value.Float(-1.5),
		value.Float(math.Copysign(0, -1)),
		value.Float(0),
		value.Float(2),
		value.Float(math.Inf(1)),
		value.Float(math.NaN()),
		value.String(""),
		value.String("a"),
		value.String("b"),
		value.Binary{0x00},
		value.Binary{0x01, 0x00},
		value.Array{},
		value.ArrayOf(1),
		value.ArrayOf(1, 1),
		value.ArrayOf(2),
		value.NewMap(),
		value.MapOf("a", 1),
		value.MapOf("a", 1, "b", 0),
		value.MapOf("a", 2),
	}

	shuffled := slices.Clone(sorted)
	slices.Reverse(shuffled)
	shuffled[3], shuffled[17] = shuffled[17], shuffled[3]
	slices.SortFunc(shuffled, value.Compare)

	for i := range sorted {
		if !value.Equal(sorted[i], shuffled[i]) {
			t.Errorf("position %d: expect %v, got %v", i, sorted[i], shuffled[i])
		}
	}

	for i := 1; i < len(sorted); i++ {
		if c := value.Compare(sorted[i-1], sorted[i]); c != -1 {
			t.Errorf("expect %v < %v, got %d", sorted[i-1], sorted[i], c)
		}
		if c := value.Compare(sorted[i], sorted[i-1]); c != 1 {
			t.Errorf("expect %v > %v, got %d", sorted[i], sorted[i-1], c)
		}
	}
}

func TestHash_MapOrderIndependent(t *testing.T) {
	a := value.NewMap()
	b := value.NewMap()
	for i := range 20 {
		a.Insert(value.Int(int64(i)), value.String("v"))
		b.Insert(value.Int(int64(19-i)), value.String("v"))
	}

	if value.Hash(a) != value.Hash(b) {
		t.Errorf("expect equal hashes for permuted maps")
	}

	b.Insert(value.Int(0), value.String("w"))
	if value.Hash(a) == value.Hash(b) {
		t.Errorf("expect differing value to change the hash")
	}
}

func TestClone(t *testing.T) {
	orig := value.Array{value.Binary{1, 2}, value.MapOf("k", value.ArrayOf(1))}
	cp := value.Clone(orig).(value.Array)

	cp[0].(value.Binary)[0] = 9
	inner, _ := value.AsMap(cp[1])
	*inner.IndexMut("k") = value.Null{}

	if !value.Equal(orig, value.Array{value.Binary{1, 2}, value.MapOf("k", value.ArrayOf(1))}) {
		t.Errorf("expect original untouched, got %v", orig)
	}
}

func TestInterface(t *testing.T) {
	cases := map[string]struct {
		In     value.Value
		Expect any
	}{
		"null":   {In: value.Null{}, Expect: nil},
		"int":    {In: value.Int(-2), Expect: int64(-2)},
		"uint":   {In: value.Uint(2), Expect: uint64(2)},
		"string": {In: value.String("s"), Expect: "s"},
		"array":  {In: value.ArrayOf(true, 1.5), Expect: []any{true, 1.5}},
		"string keys": {
			In:     value.MapOf("a", 1),
			Expect: map[string]any{"a": int64(1)},
		},
		"mixed keys": {
			In:     value.MapOf("a", 1, 2, "b", value.ArrayOf(1), nil),
			Expect: map[any]any{"a": int64(1), int64(2): "b", value.RenderedKey("[1]"): nil},
		},
		"rendered key beside same text": {
			In: value.MapOf(value.Binary{0x01}, 1, "0x01", 2),
			Expect: map[any]any{
				value.RenderedKey("0x01"): int64(1),
				"0x01":                    int64(2),
			},
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(c.Expect, value.Interface(c.In)); diff != "" {
				t.Errorf("interface mismatch (-expect +actual):\n%s", diff)
			}
		})
	}
}
