// Package calltrace verifies that instrumented call sites fire in an
// expected temporal pattern.
//
// Test code sprinkles calltrace.Record calls at the points whose ordering it
// cares about, creates a Recorder to claim a capture scope, and then asserts
// the recorded trace against a declarative pattern:
//
//	rec := calltrace.NewLocal()
//	defer rec.Close()
//
//	calltrace.Record("open")
//	calltrace.Record("read")
//	calltrace.Record("close")
//
//	rec.Verify(calltrace.Seq("open", "read", "close"))
//
// Patterns compose from four node kinds: ID matches a single call, Seq
// matches its children in order, Par matches its children in any
// interleaving, and Any requires exactly one child to match. Plain strings
// and slices convert implicitly (a string is an ID, a slice is a Seq), so
// most assertions read as rec.Verify([]string{"open", "read", "close"}).
//
// ARCHITECTURE:
//
// Single-Token Matching Automaton:
// Verification feeds the trace one event at a time into the pattern tree,
// which destructively advances an owned clone of the pattern. The automaton
// commits greedily: once a node consumes an event the choice is never
// revisited. This keeps matching linear in trace length and makes the first
// mismatch position exact, at the cost of rejecting some ambiguous patterns
// a backtracking matcher would accept. That trade-off is deliberate.
//
// Capture Scopes:
// A Recorder claims storage at construction. NewLocal claims a
// goroutine-scoped buffer (cheap, no cross-goroutine visibility, creating
// two in one goroutine panics). New claims the single process-wide buffer,
// blocking until any previous holder releases it, so concurrently running
// tests that each want whole-process capture serialize instead of corrupting
// each other's trace. Close releases the scope; guarantee it on every exit
// path with defer or t.Cleanup.
//
// Ordering:
// Within one goroutine, events appear in call order. Across goroutines
// sharing the process scope, the relative order is the order pushes acquired
// the shared lock. Only each goroutine's own subsequence is deterministic.
package calltrace
