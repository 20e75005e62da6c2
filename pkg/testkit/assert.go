package testkit

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, s Scenario, got int, body []byte) {
	t.Helper()
	if s.ExpectedStatus == 0 {
		return
	}
	assert.Equal(t, s.ExpectedStatus, got, "[%s] HTTP status code mismatch\nbody: %s", s.Name, body)
}

// AssertJSONSubset checks that every value in s.Expect appears in actual.
func AssertJSONSubset(t *testing.T, s Scenario, actual []byte) {
	t.Helper()
	if len(s.Expect) == 0 {
		return
	}

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(s.Expect, &expVal), "[%s] expect is not valid JSON", s.Name)
	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] response is not valid JSON\nbody: %s", s.Name, actual) {
		return
	}

	if diffs := DiffJSON("", expVal, actVal); len(diffs) > 0 {
		t.Errorf("[%s] response does not match:\n%s\nbody: %s", s.Name, strings.Join(diffs, "\n"), actual)
	}
}

// ─── JSON subset diff ─────────────────────────────────────────────────────────

// DiffJSON lists where actual falls short of expected. Objects are compared
// as subsets; arrays must have the same length.
func DiffJSON(path string, expected, actual any) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
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
	case []any:
		act, ok := actual.([]any)
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
