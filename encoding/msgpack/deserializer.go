package msgpack

import (
	"bytes"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/valuekit/value-go"
)

type frame struct {
	isMap     bool
	remaining int
}

// Deserializer implements unmarshaling of a MessagePack object into values.
type Deserializer struct {
	r    *bytes.Reader
	dec  *msgpack.Decoder
	head []frame
}

var (
	_ value.Deserializer = (*Deserializer)(nil)
	_ value.Finisher     = (*Deserializer)(nil)
)

// NewDeserializer returns a deserializer reading the object in p.
func NewDeserializer(p []byte) *Deserializer {
	r := bytes.NewReader(p)
	return &Deserializer{r: r, dec: msgpack.NewDecoder(r)}
}

func (d *Deserializer) PeekKind() (value.Kind, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return 0, err
	}

	switch {
	case c == msgpcode.Nil:
		return value.KindNull, nil
	case c == msgpcode.False || c == msgpcode.True:
		return value.KindBool, nil
	case c == msgpcode.Uint64:
		return value.KindUint, nil
	case msgpcode.IsFixedNum(c),
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32,
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		return value.KindInt, nil
	case c == msgpcode.Float || c == msgpcode.Double:
		return value.KindFloat, nil
	case msgpcode.IsString(c):
		return value.KindString, nil
	case msgpcode.IsBin(c):
		return value.KindBinary, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		return value.KindArray, nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		return value.KindMap, nil
	case msgpcode.IsExt(c):
		return value.KindString, nil
	default:
		return 0, fmt.Errorf("msgpack: unexpected code %x", c)
	}
}

func (d *Deserializer) ReadNil() error {
	return d.dec.DecodeNil()
}

func (d *Deserializer) ReadBool() (bool, error) {
	return d.dec.DecodeBool()
}

func (d *Deserializer) ReadInt64() (int64, error) {
	return d.dec.DecodeInt64()
}

func (d *Deserializer) ReadUint64() (uint64, error) {
	return d.dec.DecodeUint64()
}

func (d *Deserializer) ReadFloat64() (float64, error) {
	return d.dec.DecodeFloat64()
}

// ReadString also accepts a timestamp extension, formatted as RFC 3339.
func (d *Deserializer) ReadString() (string, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return "", err
	}
	if !msgpcode.IsExt(c) {
		return d.dec.DecodeString()
	}

	t, err := d.dec.DecodeTime()
	if err != nil {
		return "", fmt.Errorf("msgpack: unsupported extension: %w", err)
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}

func (d *Deserializer) ReadBinary() ([]byte, error) {
	b, err := d.dec.DecodeBytes()
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

func (d *Deserializer) ReadArray() (int, error) {
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		return 0, err
	}
	return d.open(n, n, false)
}

func (d *Deserializer) ReadArrayItem() (bool, error) {
	return d.more(false)
}

func (d *Deserializer) ReadMap() (int, error) {
	n, err := d.dec.DecodeMapLen()
	if err != nil {
		return 0, err
	}
	return d.open(n, 2*n, true)
}

func (d *Deserializer) ReadMapEntry() (bool, error) {
	return d.more(true)
}

func (d *Deserializer) open(n, items int, isMap bool) (int, error) {
	if n < 0 {
		// nil container
		n, items = 0, 0
	}
	// every item takes at least one byte
	if items > d.r.Len() {
		return 0, fmt.Errorf("msgpack: container len %d greater than remaining buf len", n)
	}

	d.head = append(d.head, frame{isMap: isMap, remaining: n})
	return n, nil
}

// Finish reports an error if a container is still open or bytes remain
// after the object.
func (d *Deserializer) Finish() error {
	if len(d.head) != 0 {
		return fmt.Errorf("msgpack: %d unclosed containers", len(d.head))
	}
	if n := d.r.Len(); n > 0 {
		return fmt.Errorf("msgpack: %w: %d bytes", value.ErrTrailingData, n)
	}
	return nil
}

func (d *Deserializer) more(isMap bool) (bool, error) {
	n := len(d.head)
	if n == 0 || d.head[n-1].isMap != isMap {
		return false, fmt.Errorf("msgpack: no open container")
	}

	top := &d.head[n-1]
	if top.remaining == 0 {
		d.head = d.head[:n-1]
		return false, nil
	}
	top.remaining--
	return true, nil
}
