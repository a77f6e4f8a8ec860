// Package testutil provides helpers for deterministic test output.
//
// Rendered mismatch reports embed source locations and goroutine ids, which
// vary between machines and runs. These helpers rewrite those parts to fixed
// placeholders so reports can be compared against literal strings or golden
// files.
package testutil

import "regexp"

var (
	locationPattern  = regexp.MustCompile(`(?m)^\S*\.go:\d+$`)
	goroutinePattern = regexp.MustCompile(`(?m)^goroutine: \d+$`)
)

// StableLocation is what source-location lines are rewritten to.
const StableLocation = "calltrace_test.go:10"

// StableReport rewrites the nondeterministic parts of a rendered mismatch
// report: every source-location line becomes StableLocation and every
// goroutine line becomes "goroutine: 1".
func StableReport(s string) string {
	s = locationPattern.ReplaceAllString(s, StableLocation)
	return goroutinePattern.ReplaceAllString(s, "goroutine: 1")
}
