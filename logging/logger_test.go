package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	l := StandardLogger{Logger: log.New(&buf, "", 0)}

	l.Logf(Warn, "key %q dropped", "a")

	if e, a := "WARN key \"a\" dropped\n", buf.String(); e != a {
		t.Errorf("expect %q, got %q", e, a)
	}
}

func TestFilter(t *testing.T) {
	cases := map[string]struct {
		Allow  []Classification
		Level  Classification
		Expect bool
	}{
		"allowed": {
			Allow:  []Classification{Warn, Debug},
			Level:  Debug,
			Expect: true,
		},
		"dropped": {
			Allow:  []Classification{Warn},
			Level:  Debug,
			Expect: false,
		},
		"nothing allowed": {
			Level:  Warn,
			Expect: false,
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			f := Filter{
				Logger: StandardLogger{Logger: log.New(&buf, "", 0)},
				Allow:  c.Allow,
			}

			f.Logf(c.Level, "message")

			if e, a := c.Expect, strings.Contains(buf.String(), "message"); e != a {
				t.Errorf("expect logged %v, got %v", e, a)
			}
		})
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(Noop); !ok {
		t.Errorf("expect Noop for nil logger")
	}

	l := NewStandardLogger(&bytes.Buffer{})
	if OrNoop(l) != Logger(l) {
		t.Errorf("expect logger returned as is")
	}
}
