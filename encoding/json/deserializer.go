package json

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/valuekit/value-go"
)

// Deserializer implements unmarshaling of JSON into values.
type Deserializer struct {
	dec *json.Decoder

	// one token of lookahead for PeekKind
	peeked  json.Token
	hasPeek bool
}

var (
	_ value.Deserializer = (*Deserializer)(nil)
	_ value.Finisher     = (*Deserializer)(nil)
)

// NewDeserializer returns a deserializer reading the JSON document in p.
func NewDeserializer(p []byte) *Deserializer {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	return &Deserializer{dec: dec}
}

func (d *Deserializer) token() (json.Token, error) {
	if d.hasPeek {
		tok := d.peeked
		d.peeked, d.hasPeek = nil, false
		return tok, nil
	}
	return d.dec.Token()
}

func (d *Deserializer) peek() (json.Token, error) {
	if !d.hasPeek {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		d.peeked, d.hasPeek = tok, true
	}
	return d.peeked, nil
}

func (d *Deserializer) expectDelim(e json.Delim) error {
	tok, err := d.token()
	if err != nil {
		return err
	}

	if a, ok := tok.(json.Delim); ok {
		if e != a {
			return fmt.Errorf("expect %s, got %s", e, a)
		}
		return nil
	}

	return fmt.Errorf("expect delim, got %T", tok)
}

// PeekKind classifies the next token. Integers that fit int64 are
// value.KindInt, larger ones value.KindUint; any fraction or exponent makes
// value.KindFloat.
func (d *Deserializer) PeekKind() (value.Kind, error) {
	tok, err := d.peek()
	if err != nil {
		return 0, err
	}

	switch v := tok.(type) {
	case nil:
		return value.KindNull, nil
	case bool:
		return value.KindBool, nil
	case string:
		return value.KindString, nil
	case json.Number:
		return numberKind(v), nil
	case json.Delim:
		switch v {
		case '{':
			return value.KindMap, nil
		case '[':
			return value.KindArray, nil
		}
		return 0, fmt.Errorf("unexpected delimiter: %v", v)
	default:
		return 0, fmt.Errorf("unexpected token %T", tok)
	}
}

func numberKind(n json.Number) value.Kind {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		return value.KindFloat
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.KindInt
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return value.KindUint
	}
	return value.KindFloat
}

func (d *Deserializer) ReadNil() error {
	tok, err := d.token()
	if err != nil {
		return err
	}
	if tok != nil {
		return fmt.Errorf("expected null, got %T", tok)
	}
	return nil
}

func (d *Deserializer) ReadBool() (bool, error) {
	tok, err := d.token()
	if err != nil {
		return false, err
	}

	b, ok := tok.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", tok)
	}
	return b, nil
}

func (d *Deserializer) number() (json.Number, error) {
	tok, err := d.token()
	if err != nil {
		return "", err
	}

	num, ok := tok.(json.Number)
	if !ok {
		return "", fmt.Errorf("expected number, got %T", tok)
	}
	return num, nil
}

func (d *Deserializer) ReadInt64() (int64, error) {
	num, err := d.number()
	if err != nil {
		return 0, err
	}
	return num.Int64()
}

func (d *Deserializer) ReadUint64() (uint64, error) {
	num, err := d.number()
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(num.String(), 10, 64)
}

func (d *Deserializer) ReadFloat64() (float64, error) {
	tok, err := d.token()
	if err != nil {
		return 0, err
	}

	switch v := tok.(type) {
	case json.Number:
		return v.Float64()
	case string:
		switch {
		case strings.EqualFold(v, "NaN"):
			return math.NaN(), nil
		case strings.EqualFold(v, "Infinity"):
			return math.Inf(1), nil
		case strings.EqualFold(v, "-Infinity"):
			return math.Inf(-1), nil
		default:
			return 0, fmt.Errorf("unexpected string value for float: %s", v)
		}
	default:
		return 0, fmt.Errorf("expected number, got %T", tok)
	}
}

func (d *Deserializer) ReadString() (string, error) {
	tok, err := d.token()
	if err != nil {
		return "", err
	}

	str, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", tok)
	}
	return str, nil
}

// ReadBinary reads a standard base64 string.
func (d *Deserializer) ReadBinary() ([]byte, error) {
	str, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(str)
}

// ReadArray consumes '['. JSON carries no length, the hint is always -1.
func (d *Deserializer) ReadArray() (int, error) {
	if err := d.expectDelim('['); err != nil {
		return 0, err
	}
	return -1, nil
}

func (d *Deserializer) ReadArrayItem() (bool, error) {
	return d.more(']')
}

// ReadMap consumes '{'. JSON carries no length, the hint is always -1.
func (d *Deserializer) ReadMap() (int, error) {
	if err := d.expectDelim('{'); err != nil {
		return 0, err
	}
	return -1, nil
}

func (d *Deserializer) ReadMapEntry() (bool, error) {
	return d.more('}')
}

// Finish reports an error unless only whitespace follows the value read.
func (d *Deserializer) Finish() error {
	if d.hasPeek {
		return fmt.Errorf("%w: unexpected %v", value.ErrTrailingData, d.peeked)
	}

	tok, err := d.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", value.ErrTrailingData, err)
	}
	return fmt.Errorf("%w: unexpected %v", value.ErrTrailingData, tok)
}

func (d *Deserializer) more(end json.Delim) (bool, error) {
	if d.hasPeek {
		if delim, ok := d.peeked.(json.Delim); ok && delim == end {
			d.peeked, d.hasPeek = nil, false
			return false, nil
		}
		return true, nil
	}

	if !d.dec.More() {
		return false, d.expectDelim(end)
	}
	return true, nil
}
