package json

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/valuekit/value-go"
	valuetesting "github.com/valuekit/value-go/testing"
)

func TestEscapeStringBytes(t *testing.T) {
	m := value.NewMap()
	m.Insert(value.String("foo\""), value.String("bar"))
	m.Insert(value.String("faz"), value.String("baz"))

	actual, err := value.Marshal(&Codec{}, m)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	expected := []byte(`{"foo\"":"bar","faz":"baz"}`)
	if !bytes.Equal(expected, actual) {
		t.Errorf("expected %+q, but got %+q", expected, actual)
	}
}

func TestSerialize(t *testing.T) {
	cases := map[string]struct {
		In     value.Value
		Expect string
	}{
		"null": {
			In:     value.Null{},
			Expect: `null`,
		},
		"scalars in order": {
			In: value.MapOf(
				"z", true,
				"a", -3,
				"m", uint64(math.MaxUint64),
				"f", 1.0,
				"s", "text",
			),
			Expect: `{"z":true,"a":-3,"m":18446744073709551615,"f":1.0,"s":"text"}`,
		},
		"binary as base64": {
			In:     value.Binary{0xde, 0xad, 0xbe, 0xef},
			Expect: `"3q2+7w=="`,
		},
		"non-finite float": {
			In:     value.Array{value.Float(math.Inf(1)), value.Float(math.NaN())},
			Expect: `["Infinity","NaN"]`,
		},
		"scalar keys as strings": {
			In:     value.MapOf(1, "a", true, "b", nil, "c", 2.5, "d"),
			Expect: `{"1":"a","true":"b","null":"c","2.5":"d"}`,
		},
		"nested containers": {
			In: value.MapOf(
				"list", value.ArrayOf(1, value.NewMapBuilder(1).Set("k", "v"), value.Array{}),
				"empty", value.NewMap(),
			),
			Expect: `{"list":[1,{"k":"v"},[]],"empty":{}}`,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			actual, err := value.Marshal(&Codec{}, c.In)
			if err != nil {
				t.Fatalf("expect no error, got %v", err)
			}
			if e, a := c.Expect, string(actual); e != a {
				t.Errorf("expect %s, got %s", e, a)
			}
		})
	}
}

func TestSerialize_UnsupportedKey(t *testing.T) {
	cases := map[string]struct {
		Key  value.Value
		Kind value.Kind
	}{
		"array key": {
			Key:  value.Array{value.Int(1)},
			Kind: value.KindArray,
		},
		"map key": {
			Key:  value.MapOf("a", 1),
			Kind: value.KindMap,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			m := value.NewMap()
			m.Insert(c.Key, value.Int(1))

			_, err := value.Marshal(&Codec{}, m)

			var keyErr *UnsupportedKeyError
			if !errors.As(err, &keyErr) {
				t.Fatalf("expect UnsupportedKeyError, got %v", err)
			}
			if e, a := c.Kind, keyErr.Kind; e != a {
				t.Errorf("expect kind %v, got %v", e, a)
			}
		})
	}
}

func TestDeserialize(t *testing.T) {
	cases := map[string]struct {
		In     string
		Expect value.Value
		Order  []string
	}{
		"number kinds": {
			In: `{"i":-1,"u":18446744073709551615,"f":1.5,"e":1e3,"big":18446744073709551616}`,
			Expect: value.MapOf(
				"i", -1,
				"u", uint64(math.MaxUint64),
				"f", 1.5,
				"e", 1000.0,
				"big", 18446744073709551616.0,
			),
			Order: []string{`"i"`, `"u"`, `"f"`, `"e"`, `"big"`},
		},
		"wire order kept": {
			In:     `{"c":null,"a":[true,false],"b":{"y":"1","x":"2"}}`,
			Expect: value.MapOf("a", value.Array{value.Bool(true), value.Bool(false)}, "b", value.MapOf("x", "2", "y", "1"), "c", nil),
			Order:  []string{`"c"`, `"a"`, `"b"`},
		},
		"duplicate key keeps last value": {
			In:     `{"x":1,"y":0,"x":2}`,
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
			m, ok := value.AsMap(actual)
			if !ok {
				t.Fatalf("expect map, got %v", value.KindOf(actual))
			}
			valuetesting.AssertKeyOrder(t, c.Order, m)
		})
	}
}

func TestDeserialize_Errors(t *testing.T) {
	cases := map[string]string{
		"truncated":       `{"a":`,
		"bad delimiter":   `]`,
		"trailing comma":  `[1,]`,
		"unterminated":    `[1, 2`,
		"bad map literal": `{1:2}`,
		"second value":    `{"a":1} {"b":2}`,
		"trailing text":   `{"a":1} garbage`,
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := value.Unmarshal(&Codec{}, []byte(in)); err == nil {
				t.Fatalf("expect error for %s", in)
			}
		})
	}
}

func TestDeserialize_Limits(t *testing.T) {
	cases := map[string]struct {
		In     string
		Expect error
	}{
		"deep arrays":   {In: strings.Repeat("[", 1<<20), Expect: value.ErrMaxDepth},
		"deep maps":     {In: strings.Repeat(`{"a":`, 1<<18), Expect: value.ErrMaxDepth},
		"second value":  {In: `{"a":1} {"b":2}`, Expect: value.ErrTrailingData},
		"trailing text": {In: `[1] garbage`, Expect: value.ErrTrailingData},
		"whitespace":    {In: "{\"a\":[1]} \n\t"},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := value.Unmarshal(&Codec{}, []byte(c.In))
			if c.Expect == nil {
				if err != nil {
					t.Fatalf("expect no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, c.Expect) {
				t.Fatalf("expect %v, got %v", c.Expect, err)
			}
		})
	}
}

func TestDeserialize_ErrorPath(t *testing.T) {
	_, err := value.Unmarshal(&Codec{}, []byte(`{"a":[1,{"b":tru}]}`))

	var decodeErr *value.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expect DecodeError, got %v", err)
	}
	if expect, actual := `["a"][1]["b"]`, decodeErr.Path(); expect != actual {
		t.Errorf("expect path %s, got %s", expect, actual)
	}
}

func TestRoundTrip(t *testing.T) {
	in := value.NewMapBuilder(4).
		Set("name", "doc").
		Set("count", 3).
		Set("ratio", 0.25).
		Set("tags", value.ArrayOf("x", "y")).
		Set("blob", []byte("hi")).
		Build()
	in.Remove(value.String("count"))

	p, err := value.Marshal(&Codec{}, in)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	out, err := value.Unmarshal(&Codec{}, p)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	// binary comes back as its base64 string
	expect := in.Clone()
	*expect.IndexMut("blob") = value.String("aGk=")

	valuetesting.AssertValueEqual(t, expect, out)
	valuetesting.AssertKeyOrder(t, valuetesting.KeyOrder(in), out.(*value.Map))
	valuetesting.AssertJSONEqual(t, []byte(`{"name":"doc","blob":"aGk=","ratio":0.25,"tags":["x","y"]}`), p)
}

func TestDeserializer_ReadBinary(t *testing.T) {
	d := NewDeserializer([]byte(`"aGk="`))

	b, err := d.ReadBinary()
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if e, a := "hi", string(b); e != a {
		t.Errorf("expect %q, got %q", e, a)
	}
}

func TestDeserializer_NonFiniteFloat(t *testing.T) {
	p, err := value.Marshal(&Codec{}, value.Float(math.Inf(-1)))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}

	generic, err := value.Unmarshal(&Codec{}, p)
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	valuetesting.AssertValueEqual(t, value.String("-Infinity"), generic)

	f, err := NewDeserializer(p).ReadFloat64()
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if !math.IsInf(f, -1) {
		t.Errorf("expect -Inf, got %v", f)
	}
}
