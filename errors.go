package value

import (
	"fmt"
	"reflect"
)

// UnsupportedTypeError is returned by From when a Go value has no Value
// representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("value: unsupported type %v", e.Type)
}

// KindError is returned when a Deserializer reports a kind the caller cannot
// read, or a value does not have the kind an operation requires.
type KindError struct {
	Expected string
	Actual   Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("value: expected %s, got %v", e.Expected, e.Actual)
}
