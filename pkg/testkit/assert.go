package testkit

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON documents ignoring key order and
// whitespace.
func AssertJSONEqual(t *testing.T, expected, actual []byte, msgAndArgs ...interface{}) bool {
	t.Helper()
	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal), "expected document is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual body is not valid JSON: %s", actual) {
		return false
	}
	return assert.Equal(t, expVal, actVal, msgAndArgs...)
}

// AssertJSONSubset checks that every key of expected is present in actual
// with the same value. Arrays must match in length and element-wise.
func AssertJSONSubset(t *testing.T, expected, actual []byte, msgAndArgs ...interface{}) bool {
	t.Helper()
	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal), "expected document is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual body is not valid JSON: %s", actual) {
		return false
	}
	diffs := DiffJSON("", expVal, actVal)
	if len(diffs) == 0 {
		return true
	}
	return assert.Fail(t, "JSON mismatch:\n"+strings.Join(diffs, "\n")+"\nbody: "+string(actual), msgAndArgs...)
}

// DiffJSON lists the places where actual lacks or differs from expected.
// Keys present only in actual are ignored.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
