package cbor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/valuekit/value-go"
)

type frame struct {
	isMap bool
	// entries left in a definite container, -1 when indefinite
	remaining int
}

// Deserializer implements unmarshaling of a CBOR data item into values.
type Deserializer struct {
	p    []byte
	off  int
	head []frame
}

var (
	_ value.Deserializer = (*Deserializer)(nil)
	_ value.Finisher     = (*Deserializer)(nil)
)

// NewDeserializer returns a deserializer reading the data item in p.
func NewDeserializer(p []byte) *Deserializer {
	return &Deserializer{p: p}
}

func (d *Deserializer) rest() []byte {
	return d.p[d.off:]
}

// skipTags advances past any tag heads before the next data item.
func (d *Deserializer) skipTags() error {
	for {
		p := d.rest()
		if len(p) == 0 {
			return fmt.Errorf("unexpected end of payload")
		}
		if peekMajor(p) != majorTypeTag {
			return nil
		}

		_, n, err := decodeArgument(p)
		if err != nil {
			return fmt.Errorf("decode tag: %w", err)
		}
		d.off += n
	}
}

// next returns the head of the next non-tag data item without consuming it.
func (d *Deserializer) next() (majorType, byte, error) {
	if err := d.skipTags(); err != nil {
		return 0, 0, err
	}
	p := d.rest()
	return peekMajor(p), peekMinor(p), nil
}

func (d *Deserializer) PeekKind() (value.Kind, error) {
	major, minor, err := d.next()
	if err != nil {
		return 0, err
	}

	switch major {
	case majorTypeUint:
		arg, _, err := decodeArgument(d.rest())
		if err != nil {
			return 0, fmt.Errorf("decode argument: %w", err)
		}
		if arg > math.MaxInt64 {
			return value.KindUint, nil
		}
		return value.KindInt, nil
	case majorTypeNegInt:
		arg, _, err := decodeArgument(d.rest())
		if err != nil {
			return 0, fmt.Errorf("decode argument: %w", err)
		}
		if arg > math.MaxInt64 {
			// below MinInt64, only representable as a float
			return value.KindFloat, nil
		}
		return value.KindInt, nil
	case majorTypeSlice:
		return value.KindBinary, nil
	case majorTypeString:
		return value.KindString, nil
	case majorTypeList:
		return value.KindArray, nil
	case majorTypeMap:
		return value.KindMap, nil
	}

	switch minor {
	case major7True, major7False:
		return value.KindBool, nil
	case major7Nil, major7Undefined:
		return value.KindNull, nil
	case major7Float16, major7Float32, major7Float64:
		return value.KindFloat, nil
	default:
		return 0, fmt.Errorf("unexpected minor value %d", minor)
	}
}

func (d *Deserializer) ReadNil() error {
	major, minor, err := d.next()
	if err != nil {
		return err
	}
	if major != majorType7 || (minor != major7Nil && minor != major7Undefined) {
		return fmt.Errorf("expected null, got major type %d minor %d", major, minor)
	}
	d.off++
	return nil
}

func (d *Deserializer) ReadBool() (bool, error) {
	major, minor, err := d.next()
	if err != nil {
		return false, err
	}
	if major != majorType7 || (minor != major7True && minor != major7False) {
		return false, fmt.Errorf("expected bool, got major type %d minor %d", major, minor)
	}
	d.off++
	return minor == major7True, nil
}

func (d *Deserializer) argument(want majorType) (uint64, error) {
	major, _, err := d.next()
	if err != nil {
		return 0, err
	}
	if major != want {
		return 0, fmt.Errorf("expected major type %d, got %d", want, major)
	}

	arg, n, err := decodeArgument(d.rest())
	if err != nil {
		return 0, fmt.Errorf("decode argument: %w", err)
	}
	d.off += n
	return arg, nil
}

func (d *Deserializer) ReadInt64() (int64, error) {
	major, _, err := d.next()
	if err != nil {
		return 0, err
	}

	switch major {
	case majorTypeUint:
		arg, err := d.argument(majorTypeUint)
		if err != nil {
			return 0, err
		}
		if arg > math.MaxInt64 {
			return 0, fmt.Errorf("uint %d overflows int64", arg)
		}
		return int64(arg), nil
	case majorTypeNegInt:
		arg, err := d.argument(majorTypeNegInt)
		if err != nil {
			return 0, err
		}
		if arg > math.MaxInt64 {
			return 0, fmt.Errorf("negint -1-%d overflows int64", arg)
		}
		return -1 - int64(arg), nil
	default:
		return 0, fmt.Errorf("expected integer, got major type %d", major)
	}
}

func (d *Deserializer) ReadUint64() (uint64, error) {
	return d.argument(majorTypeUint)
}

// ReadFloat64 reads any float width. Integers are converted, which covers
// negative integers below math.MinInt64.
func (d *Deserializer) ReadFloat64() (float64, error) {
	major, minor, err := d.next()
	if err != nil {
		return 0, err
	}

	switch major {
	case majorTypeUint:
		arg, err := d.argument(majorTypeUint)
		return float64(arg), err
	case majorTypeNegInt:
		arg, err := d.argument(majorTypeNegInt)
		return -1 - float64(arg), err
	case majorType7:
	default:
		return 0, fmt.Errorf("expected float, got major type %d", major)
	}

	p := d.rest()
	switch minor {
	case major7Float16:
		if len(p) < 3 {
			return 0, fmt.Errorf("incomplete float16 at end of buf")
		}
		d.off += 3
		b := binary.BigEndian.Uint16(p[1:])
		return float64(math.Float32frombits(float16to32(b))), nil
	case major7Float32:
		if len(p) < 5 {
			return 0, fmt.Errorf("incomplete float32 at end of buf")
		}
		d.off += 5
		return float64(math.Float32frombits(binary.BigEndian.Uint32(p[1:]))), nil
	case major7Float64:
		if len(p) < 9 {
			return 0, fmt.Errorf("incomplete float64 at end of buf")
		}
		d.off += 9
		return math.Float64frombits(binary.BigEndian.Uint64(p[1:])), nil
	default:
		return 0, fmt.Errorf("expected float, got minor value %d", minor)
	}
}

func (d *Deserializer) ReadString() (string, error) {
	s, err := d.readSlice(majorTypeString)
	return string(s), err
}

// ReadBinary returns a copy of the byte string.
func (d *Deserializer) ReadBinary() ([]byte, error) {
	s, err := d.readSlice(majorTypeSlice)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, s...), nil
}

func (d *Deserializer) readSlice(major majorType) ([]byte, error) {
	actual, _, err := d.next()
	if err != nil {
		return nil, err
	}
	if actual != major {
		return nil, fmt.Errorf("expected major type %d, got %d", major, actual)
	}

	s, n, err := decodeSlice(d.rest(), major)
	if err != nil {
		return nil, err
	}
	d.off += n
	return s, nil
}

func (d *Deserializer) ReadArray() (int, error) {
	return d.open(majorTypeList, false)
}

func (d *Deserializer) ReadArrayItem() (bool, error) {
	return d.more(false)
}

func (d *Deserializer) ReadMap() (int, error) {
	return d.open(majorTypeMap, true)
}

func (d *Deserializer) ReadMapEntry() (bool, error) {
	return d.more(true)
}

func (d *Deserializer) open(major majorType, isMap bool) (int, error) {
	actual, minor, err := d.next()
	if err != nil {
		return 0, err
	}
	if actual != major {
		return 0, fmt.Errorf("expected major type %d, got %d", major, actual)
	}

	if minor == minorIndefinite {
		d.off++
		d.head = append(d.head, frame{isMap: isMap, remaining: -1})
		return -1, nil
	}

	n, off, err := decodeArgument(d.rest())
	if err != nil {
		return 0, fmt.Errorf("decode argument: %w", err)
	}
	d.off += off

	// every item takes at least one byte
	items := n
	if isMap {
		items = 2 * n
	}
	if n > math.MaxInt32 || items > uint64(len(d.rest())) {
		return 0, fmt.Errorf("container len %d greater than remaining buf len", n)
	}

	d.head = append(d.head, frame{isMap: isMap, remaining: int(n)})
	return int(n), nil
}

// Finish reports an error if a container is still open or bytes remain
// after the data item.
func (d *Deserializer) Finish() error {
	if len(d.head) != 0 {
		return fmt.Errorf("%d unclosed containers", len(d.head))
	}
	if n := len(d.p) - d.off; n > 0 {
		return fmt.Errorf("%w: %d bytes", value.ErrTrailingData, n)
	}
	return nil
}

func (d *Deserializer) more(isMap bool) (bool, error) {
	n := len(d.head)
	if n == 0 || d.head[n-1].isMap != isMap {
		return false, fmt.Errorf("no open container")
	}
	top := &d.head[n-1]

	if top.remaining < 0 {
		p := d.rest()
		if len(p) == 0 {
			return false, fmt.Errorf("expected break marker")
		}
		if p[0] == breakMarker {
			d.off++
			d.head = d.head[:n-1]
			return false, nil
		}
		return true, nil
	}

	if top.remaining == 0 {
		d.head = d.head[:n-1]
		return false, nil
	}
	top.remaining--
	return true, nil
}

// this routine is used for both string and slice major types, the value of
// inner specifies which context we're in (needed for validating subsegments
// inside indefinite encodings)
func decodeSlice(p []byte, inner majorType) ([]byte, int, error) {
	minor := peekMinor(p)
	if minor == minorIndefinite {
		return decodeSliceIndefinite(p, inner)
	}

	slen, off, err := decodeArgument(p)
	if err != nil {
		return nil, 0, fmt.Errorf("decode argument: %w", err)
	}

	p = p[off:]
	if uint64(len(p)) < slen {
		return nil, 0, fmt.Errorf("slice len %d greater than remaining buf len", slen)
	}

	return p[:slen], off + int(slen), nil
}

func decodeSliceIndefinite(p []byte, inner majorType) ([]byte, int, error) {
	p = p[1:]

	s := []byte{}
	for off := 1; len(p) > 0; {
		if p[0] == breakMarker {
			return s, off + 1, nil
		}

		if major := peekMajor(p); major != inner {
			return nil, 0, fmt.Errorf("unexpected major type %d in indefinite slice", major)
		}
		if peekMinor(p) == minorIndefinite {
			return nil, 0, fmt.Errorf("nested indefinite slice")
		}

		ss, n, err := decodeSlice(p, inner)
		if err != nil {
			return nil, 0, fmt.Errorf("decode subslice: %w", err)
		}
		p = p[n:]

		s = append(s, ss...)
		off += n
	}
	return nil, 0, fmt.Errorf("expected break marker")
}

func peekMajor(p []byte) majorType {
	return majorType(p[0] & 0b_111_00000 >> 5)
}

func peekMinor(p []byte) byte {
	return p[0] & 0b_11111
}

// pulls the next argument out of the buffer
//
// expects one of the sized arguments and will error otherwise - callers that
// need to check for the indefinite flag must do so externally
func decodeArgument(p []byte) (uint64, int, error) {
	minor := peekMinor(p)
	if minor < minorArg1 {
		return uint64(minor), 1, nil
	}

	switch minor {
	case minorArg1, minorArg2, minorArg4, minorArg8:
		argLen := mtol(minor)
		if len(p) < argLen+1 {
			return 0, 0, fmt.Errorf("arg len %d greater than remaining buf len", argLen)
		}
		return readArgument(p[1:], argLen), argLen + 1, nil
	default:
		return 0, 0, fmt.Errorf("unexpected minor value %d", minor)
	}
}

// minor value to arg len in bytes
func mtol(minor byte) int {
	if minor == minorArg1 {
		return 1
	} else if minor == minorArg2 {
		return 2
	} else if minor == minorArg4 {
		return 4
	}
	return 8
}

func readArgument(p []byte, len int) uint64 {
	if len == 1 {
		return uint64(p[0])
	} else if len == 2 {
		return uint64(binary.BigEndian.Uint16(p))
	} else if len == 4 {
		return uint64(binary.BigEndian.Uint32(p))
	}
	return binary.BigEndian.Uint64(p)
}

// float16to32 widens an IEEE 754 half-precision value.
func float16to32(f uint16) uint32 {
	sign := uint32(f>>15) << 31
	exp := uint32(f>>10) & 0x1f
	frac := uint32(f) & 0x3ff

	switch {
	case exp == 0x1f:
		// infinity or NaN
		return sign | 0xff<<23 | frac<<13
	case exp == 0 && frac == 0:
		return sign
	case exp == 0:
		// subnormal, renormalize
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		return sign | e<<23 | (frac&0x3ff)<<13
	default:
		return sign | (exp+127-15)<<23 | frac<<13
	}
}
