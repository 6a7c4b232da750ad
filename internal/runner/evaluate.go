package runner

import "strings"

// Evaluate decides pass/fail for one test case.
//
// An absent or empty hint means "just confirm the endpoint responds without
// erroring", so the case passes. An empty reply against a non-empty hint
// fails. Otherwise both strings are lower-cased and the case passes when
// either contains the other. The bidirectional check is deliberately loose —
// conversational replies vary in phrasing — and is kept exactly as shipped
// for behavioral compatibility.
func Evaluate(expectedHint, actual string) bool {
	if expectedHint == "" {
		return true
	}
	if actual == "" {
		return false
	}
	expected := strings.ToLower(expectedHint)
	got := strings.ToLower(actual)
	return strings.Contains(got, expected) || strings.Contains(expected, got)
}
