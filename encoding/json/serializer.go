package json

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/valuekit/value-go"
	"github.com/valuekit/value-go/logging"
)

// UnsupportedKeyError is returned when a map key cannot be expressed as a
// JSON object member name.
type UnsupportedKeyError struct {
	Kind value.Kind
}

func (e *UnsupportedKeyError) Error() string {
	return fmt.Sprintf("json: unsupported map key of kind %v", e.Kind)
}

// Options configures a Serializer.
type Options struct {
	Logger logging.Logger
}

type frame struct {
	object bool
	// the next write inside an object is a member name
	key bool
}

// Serializer implements marshaling of values to JSON.
type Serializer struct {
	enc    jx.Encoder
	head   stack[frame]
	err    error
	logger logging.Logger
}

var _ value.Serializer = (*Serializer)(nil)

// NewSerializer returns an empty JSON serializer.
func NewSerializer(optFns ...func(*Options)) *Serializer {
	var o Options
	for _, fn := range optFns {
		fn(&o)
	}
	return &Serializer{logger: logging.OrNoop(o.Logger)}
}

// Bytes returns the JSON written so far, or the first error.
func (ss *Serializer) Bytes() ([]byte, error) {
	if ss.err != nil {
		return nil, ss.err
	}
	if ss.head.Len() != 0 {
		return nil, fmt.Errorf("json: %d unclosed containers", ss.head.Len())
	}
	return append([]byte(nil), ss.enc.Bytes()...), nil
}

func (ss *Serializer) fail(err error) {
	if ss.err == nil {
		ss.err = err
	}
}

// inKey reports whether the next write is an object member name.
func (ss *Serializer) inKey() bool {
	top := ss.head.TopPtr()
	return top != nil && top.object && top.key
}

// writeKey emits a member name for a key of the given kind.
func (ss *Serializer) writeKey(name string, kind value.Kind) {
	if kind != value.KindString {
		ss.logger.Logf(logging.Debug, "json: %v map key written as string %q", kind, name)
	}
	ss.enc.FieldStart(name)
	ss.head.TopPtr().key = false
}

// valueDone flips the enclosing object back to expecting a member name.
func (ss *Serializer) valueDone() {
	if top := ss.head.TopPtr(); top != nil && top.object {
		top.key = true
	}
}

func (ss *Serializer) WriteNil() {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey("null", value.KindNull)
		return
	}
	ss.enc.Null()
	ss.valueDone()
}

func (ss *Serializer) WriteBool(v bool) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey(strconv.FormatBool(v), value.KindBool)
		return
	}
	ss.enc.Bool(v)
	ss.valueDone()
}

func (ss *Serializer) WriteInt64(v int64) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey(strconv.FormatInt(v, 10), value.KindInt)
		return
	}
	ss.enc.Int64(v)
	ss.valueDone()
}

func (ss *Serializer) WriteUint64(v uint64) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey(strconv.FormatUint(v, 10), value.KindUint)
		return
	}
	ss.enc.UInt64(v)
	ss.valueDone()
}

// WriteFloat64 always writes a fraction or exponent so the number reads back
// as a float. NaN and infinities are written as strings.
func (ss *Serializer) WriteFloat64(v float64) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey(formatFloat(v), value.KindFloat)
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		ss.enc.Str(formatFloat(v))
	} else {
		ss.enc.Num(jx.Num(formatFloat(v)))
	}
	ss.valueDone()
}

func (ss *Serializer) WriteString(v string) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey(v, value.KindString)
		return
	}
	ss.enc.Str(v)
	ss.valueDone()
}

// WriteBinary writes v as a standard base64 string.
func (ss *Serializer) WriteBinary(v []byte) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.writeKey(base64.StdEncoding.EncodeToString(v), value.KindBinary)
		return
	}
	ss.enc.Base64(v)
	ss.valueDone()
}

func (ss *Serializer) WriteArray(n int) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.fail(&UnsupportedKeyError{Kind: value.KindArray})
		return
	}
	ss.enc.ArrStart()
	ss.head.Push(frame{})
}

func (ss *Serializer) CloseArray() {
	if ss.err != nil {
		return
	}
	if top, ok := ss.head.Top(); !ok || top.object {
		ss.fail(fmt.Errorf("json: CloseArray without open array"))
		return
	}
	ss.enc.ArrEnd()
	ss.head.Pop()
	ss.valueDone()
}

func (ss *Serializer) WriteMap(n int) {
	if ss.err != nil {
		return
	}
	if ss.inKey() {
		ss.fail(&UnsupportedKeyError{Kind: value.KindMap})
		return
	}
	ss.enc.ObjStart()
	ss.head.Push(frame{object: true, key: true})
}

func (ss *Serializer) CloseMap() {
	if ss.err != nil {
		return
	}
	top, ok := ss.head.Top()
	if !ok || !top.object {
		ss.fail(fmt.Errorf("json: CloseMap without open map"))
		return
	}
	if !top.key {
		ss.fail(fmt.Errorf("json: CloseMap after key without value"))
		return
	}
	ss.enc.ObjEnd()
	ss.head.Pop()
	ss.valueDone()
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' {
			return s
		}
	}
	return s + ".0"
}
