package testing

import (
	"testing"

	"github.com/valuekit/value-go"
)

func TestAssertJSON(t *testing.T) {
	cases := map[string]struct {
		X, Y  []byte
		Equal bool
	}{
		"equal": {
			X:     []byte(`{"RecursiveStruct":{"RecursiveMap":{"foo":{"NoRecurse":"foo"},"bar":{"NoRecurse":"bar"}}}}`),
			Y:     []byte(`{"RecursiveStruct":{"RecursiveMap":{"bar":{"NoRecurse":"bar"},"foo":{"NoRecurse":"foo"}}}}`),
			Equal: true,
		},
		"not equal": {
			X:     []byte(`{"RecursiveStruct":{"RecursiveMap":{"foo":{"NoRecurse":"foo"},"bar":{"NoRecurse":"bar"}}}}`),
			Y:     []byte(`{"RecursiveStruct":{"RecursiveMap":{"foo":{"NoRecurse":"foo"}}}}`),
			Equal: false,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := JSONEqual(c.X, c.Y)
			if c.Equal {
				if err != nil {
					t.Fatalf("expect JSON to be equal, %v", err)
				}
			} else if err == nil {
				t.Fatalf("expect JSON to not be equal")
			}
		})
	}
}

func TestAssertYAML(t *testing.T) {
	if err := YAMLEqual([]byte("a: 1\nb: [x, y]\n"), []byte("b:\n  - x\n  - y\na: 1\n")); err != nil {
		t.Fatalf("expect YAML to be equal, %v", err)
	}
	if err := YAMLEqual([]byte("a: 1\n"), []byte("a: 2\n")); err == nil {
		t.Fatalf("expect YAML to not be equal")
	}
}

func TestValueEqual(t *testing.T) {
	cases := map[string]struct {
		X, Y  value.Value
		Equal bool
	}{
		"maps in different order": {
			X:     value.MapOf("a", 1, "b", 2),
			Y:     value.MapOf("b", 2, "a", 1),
			Equal: true,
		},
		"different values": {
			X:     value.MapOf("a", 1),
			Y:     value.MapOf("a", 2),
			Equal: false,
		},
		"int vs uint": {
			X:     value.Int(1),
			Y:     value.Uint(1),
			Equal: false,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValueEqual(c.X, c.Y)
			if c.Equal {
				if err != nil {
					t.Fatalf("expect values to be equal, %v", err)
				}
			} else if err == nil {
				t.Fatalf("expect values to not be equal")
			}
		})
	}
}

func TestKeyOrder(t *testing.T) {
	m := value.MapOf("b", 1, 2, 2, true, 3)

	AssertKeyOrder(t, []string{`"b"`, "2", "true"}, m)
}
