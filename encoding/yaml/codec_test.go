package yaml

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/valuekit/value-go"
	valuetesting "github.com/valuekit/value-go/testing"
)

func TestSerialize(t *testing.T) {
	cases := map[string]struct {
		In     value.Value
		Expect string
	}{
		"scalars keep order": {
			In: value.MapOf(
				"z", true,
				"a", -3,
				"m", uint64(math.MaxUint64),
				"f", 1.0,
				"s", "true",
				"n", nil,
			),
			Expect: `
z: true
a: -3
m: 18446744073709551615
f: 1.0
s: "true"
n: null
`,
		},
		"nested": {
			In: value.MapOf(
				"list", value.ArrayOf(1, "x"),
				"inner", value.MapOf("k", 0.5),
				"empty", value.Array{},
			),
			Expect: `
list:
  - 1
  - x
inner:
  k: 0.5
empty: []
`,
		},
		"binary": {
			In:     value.Binary("hi"),
			Expect: "!!binary aGk=\n",
		},
		"non-finite floats": {
			In:     value.ArrayOf(math.Inf(1), math.Inf(-1)),
			Expect: "- .inf\n- -.inf\n",
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			actual, err := value.Marshal(&Codec{}, c.In)
			if err != nil {
				t.Fatalf("expect no error, got %v", err)
			}
			valuetesting.AssertYAMLEqual(t, []byte(strings.TrimPrefix(c.Expect, "\n")), actual)
		})
	}
}

func TestSerialize_BlockOrder(t *testing.T) {
	actual, err := value.Marshal(&Codec{}, value.MapOf("b", 1, "a", 2))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if e, a := "b: 1\na: 2\n", string(actual); e != a {
		t.Errorf("expect %q, got %q", e, a)
	}
}

func TestDeserialize(t *testing.T) {
	cases := map[string]struct {
		In     string
		Expect value.Value
		Order  []string
	}{
		"scalars": {
			In: `
i: -1
u: 18446744073709551615
hex: 0x1f
f: 1.5
inf: .inf
b: yes
t: true
n: ~
s: "42"
ts: 2001-12-14
`,
			Expect: value.MapOf(
				"i", -1,
				"u", uint64(math.MaxUint64),
				"hex", 31,
				"f", 1.5,
				"inf", math.Inf(1),
				"b", "yes",
				"t", true,
				"n", nil,
				"s", "42",
				"ts", "2001-12-14",
			),
			Order: []string{`"i"`, `"u"`, `"hex"`, `"f"`, `"inf"`, `"b"`, `"t"`, `"n"`, `"s"`, `"ts"`},
		},
		"aliases": {
			In: `
base: &b
  x: 1
copy: *b
list: [*b, *b]
`,
			Expect: value.MapOf(
				"base", value.MapOf("x", 1),
				"copy", value.MapOf("x", 1),
				"list", value.ArrayOf(value.MapOf("x", 1), value.MapOf("x", 1)),
			),
			Order: []string{`"base"`, `"copy"`, `"list"`},
		},
		"complex keys": {
			In: `
? [1, 2]
: pair
1: one
null: none
`,
			Expect: func() value.Value {
				m := value.NewMap()
				m.Insert(value.ArrayOf(1, 2), value.String("pair"))
				m.Insert(value.Int(1), value.String("one"))
				m.Insert(value.Null{}, value.String("none"))
				return m
			}(),
			Order: []string{"[1,2]", "1", "null"},
		},
		"binary": {
			In:     "data: !!binary |\n  aGVs\n  bG8=\n",
			Expect: value.MapOf("data", []byte("hello")),
			Order:  []string{`"data"`},
		},
		"duplicate key keeps last value": {
			In:     "{x: 1, y: 0, x: 2}",
			Expect: value.MapOf("x", 2, "y", 0),
			Order:  []string{`"x"`, `"y"`},
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			actual, err := value.Unmarshal(&Codec{}, []byte(c.In))
			if err != nil {
				t.Fatalf("expect no error, got %v", err)
			}

			valuetesting.AssertValueEqual(t, c.Expect, actual)
			valuetesting.AssertKeyOrder(t, c.Order, actual.(*value.Map))
		})
	}
}

func TestDeserialize_Empty(t *testing.T) {
	actual, err := value.Unmarshal(&Codec{}, nil)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	valuetesting.AssertValueEqual(t, value.Null{}, actual)
}

func TestDeserialize_Errors(t *testing.T) {
	cases := map[string]string{
		"syntax":     "a: [1, 2",
		"bad binary": "!!binary '***'",
		"laughs": `
a: &a [x, x, x, x, x, x, x, x, x, x]
b: &b [*a, *a, *a, *a, *a, *a, *a, *a, *a, *a]
c: &c [*b, *b, *b, *b, *b, *b, *b, *b, *b, *b]
d: &d [*c, *c, *c, *c, *c, *c, *c, *c, *c, *c]
e: &e [*d, *d, *d, *d, *d, *d, *d, *d, *d, *d]
`,
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := value.Unmarshal(&Codec{}, []byte(in)); err == nil {
				t.Fatalf("expect error")
			}
		})
	}
}

func TestDeserialize_Limits(t *testing.T) {
	shallow := func(o *value.DecodeOptions) { o.MaxDepth = 50 }

	cases := map[string]struct {
		In     string
		Opts   []func(*value.DecodeOptions)
		Expect error
	}{
		"self reference": {
			In:     "a: &a [*a]\n",
			Opts:   []func(*value.DecodeOptions){shallow},
			Expect: value.ErrMaxDepth,
		},
		"nested past limit": {
			In:     strings.Repeat("[", 60) + strings.Repeat("]", 60),
			Opts:   []func(*value.DecodeOptions){shallow},
			Expect: value.ErrMaxDepth,
		},
		"second document": {
			In:     "a: 1\n---\nb: 2\n",
			Expect: value.ErrTrailingData,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := value.Unmarshal(&Codec{}, []byte(c.In), c.Opts...)
			if !errors.Is(err, c.Expect) {
				t.Fatalf("expect %v, got %v", c.Expect, err)
			}
		})
	}
}

func TestDeserialize_DocumentEnd(t *testing.T) {
	actual, err := value.Unmarshal(&Codec{}, []byte("---\na: 1\n...\n"))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	valuetesting.AssertValueEqual(t, value.MapOf("a", 1), actual)
}

func TestRoundTrip(t *testing.T) {
	in := value.MapOf(
		"name", "doc",
		"count", uint64(3),
		"ratio", 0.25,
		"whole", 2.0,
		"tags", value.ArrayOf("x", "y", nil),
		"blob", []byte{0, 1, 2},
		value.ArrayOf(1), "seq key",
		2, value.MapOf("deep", value.NewMap()),
	)
	in.Remove(value.String("name"))

	p, err := value.Marshal(&Codec{Indent: 4}, in)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	out, err := value.Unmarshal(&Codec{}, p)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	// yaml integers carry no signedness
	expect := in.Clone()
	*expect.IndexMut("count") = value.Int(3)

	valuetesting.AssertValueEqual(t, expect, out)
	valuetesting.AssertKeyOrder(t, valuetesting.KeyOrder(in), out.(*value.Map))
}
