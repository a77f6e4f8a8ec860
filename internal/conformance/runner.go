package conformance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/calltrace"
)

// Run replays the scenario's trace through a real goroutine-scoped Recorder
// and probes it against the scenario's pattern, so the whole stack — storage
// cell, drain, automaton, report — is exercised, not just the matcher.
//
// The returned slice lists the ways the implementation diverged from the
// scenario; empty means conformant. Run must not be called concurrently
// from the same goroutine.
func Run(s *Scenario) []string {
	rec := calltrace.NewLocal()
	defer rec.Close()

	for _, id := range s.Trace {
		calltrace.Record(id)
	}

	err := rec.Check(s.Pattern.Build())

	var problems []string
	if s.Expect.OK {
		if err != nil {
			problems = append(problems, fmt.Sprintf("expected success, got mismatch:\n%v", err))
		}
		return problems
	}

	if err == nil {
		return append(problems, "expected a mismatch, verification succeeded")
	}
	var merr *calltrace.MismatchError
	if !errors.As(err, &merr) {
		return append(problems, fmt.Sprintf("expected *calltrace.MismatchError, got %T", err))
	}

	if merr.Index != s.Expect.MismatchIndex {
		problems = append(problems, fmt.Sprintf("mismatch index: got %d, want %d", merr.Index, s.Expect.MismatchIndex))
	}
	if s.Expect.Expected != nil && !slices.Equal(merr.Expected, normalize(s.Expect.Expected)) {
		problems = append(problems, fmt.Sprintf("expected set: got %v, want %v", merr.Expected, s.Expect.Expected))
	}
	if s.Expect.Actual != "" && merr.Actual() != s.Expect.Actual {
		problems = append(problems, fmt.Sprintf("actual id: got %q, want %q", merr.Actual(), s.Expect.Actual))
	}
	return problems
}

// normalize sorts a scenario's expected-id list so fixture authors need not
// know the report's ordering rule.
func normalize(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
