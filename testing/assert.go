// Package testing provides assertion helpers for tests that compare values
// and encoded documents.
package testing

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/valuekit/value-go"
)

// T provides the testing interface for capturing failures with testing assert
// utilities.
type T interface {
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Helper()
}

// ValueEqual compares two values with value.Equal. Returns an error carrying
// a diff of their plain Go forms when they differ.
func ValueEqual(expect, actual value.Value) error {
	if value.Equal(expect, actual) {
		return nil
	}

	diff := cmp.Diff(value.Interface(expect), value.Interface(actual))
	if len(diff) == 0 {
		// same plain form, the variants differ (e.g. Int vs Uint)
		diff = fmt.Sprintf("-%v (%v)\n+%v (%v)", expect, value.KindOf(expect), actual, value.KindOf(actual))
	}
	return fmt.Errorf("value mismatch (-expect +actual):\n%s", diff)
}

// AssertValueEqual compares two values. Emits a testing error, and returns
// false if the values are not equal.
func AssertValueEqual(t T, expect, actual value.Value) bool {
	t.Helper()

	if err := ValueEqual(expect, actual); err != nil {
		t.Errorf("expect values to be equal, %v", err)
		return false
	}

	return true
}

// KeyOrder returns the display form of the keys of m in iteration order.
func KeyOrder(m *value.Map) []string {
	keys := make([]string, 0, m.Len())
	for k := range m.Keys() {
		keys = append(keys, k.String())
	}
	return keys
}

// AssertKeyOrder compares the iteration order of m's keys against expect,
// given in display form (strings quoted). Emits a testing error, and returns
// false on mismatch.
func AssertKeyOrder(t T, expect []string, m *value.Map) bool {
	t.Helper()

	if diff := cmp.Diff(expect, KeyOrder(m)); len(diff) != 0 {
		t.Errorf("key order mismatch (-expect +actual):\n%s", diff)
		return false
	}

	return true
}
