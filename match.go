package calltrace

import "slices"

// step advances the pattern tree by one incoming event. A nil event is the
// end-of-trace sentinel. The tree mutates in place to reflect the remaining
// expectation; a consumed step is never undone.
//
// The outcome is either consumed (ok true) or rejected with the set of ids
// the node could have accepted instead. A rejection with an empty set is the
// distinguished completion signal: the node has nothing left to expect.
func (c *Call) step(ev *Event) (ok bool, expected []string) {
	switch c.kind {
	case kindID:
		if ev != nil && ev.ID == c.id {
			// Decay into the nothing-more-expected node.
			c.kind = kindSeq
			c.id = ""
			c.children = nil
			return true, nil
		}
		return false, []string{c.id}

	case kindSeq:
		for len(c.children) > 0 {
			ok, expected = c.children[0].step(ev)
			if !ok && len(expected) == 0 {
				// Front was already fully matched; retry the same event
				// against the next child.
				c.children = c.children[1:]
				continue
			}
			return ok, expected
		}
		return false, nil

	case kindPar:
		for _, child := range c.children {
			childOK, childExpected := child.step(ev)
			if childOK {
				// First accepting child commits; siblings untouched.
				return true, nil
			}
			// Finished children contribute nothing to the expectation.
			expected = append(expected, childExpected...)
		}
		return false, expected

	case kindAny:
		var consumed, satisfied bool
		kept := c.children[:0]
		for _, child := range c.children {
			childOK, childExpected := child.step(ev)
			if childOK {
				consumed = true
				kept = append(kept, child)
				continue
			}
			// Non-matching alternatives are pruned for good.
			if len(childExpected) == 0 {
				satisfied = true
			} else {
				expected = append(expected, childExpected...)
			}
		}
		c.children = kept
		switch {
		case consumed:
			return true, nil
		case satisfied:
			// At least one alternative was already complete, so the whole
			// Any is allowed to be done.
			return false, nil
		default:
			return false, expected
		}
	}
	panic("calltrace: invalid pattern node")
}

// match runs the automaton over the whole trace: every real event must be
// consumed, and the final end-sentinel step must either be consumed or
// reject with nothing outstanding. Returns nil on success, otherwise the
// report for the first divergence. The receiver is consumed either way.
func (c *Call) match(trace []Event, session uint64, msg string) *MismatchError {
	for i := 0; i <= len(trace); i++ {
		var ev *Event
		if i < len(trace) {
			ev = &trace[i]
		}
		ok, expected := c.step(ev)
		if ok {
			continue
		}
		if ev == nil && len(expected) == 0 {
			return nil
		}
		slices.Sort(expected)
		return &MismatchError{
			Message:  msg,
			Expected: slices.Compact(expected),
			Index:    i,
			Trace:    trace,
			Session:  session,
		}
	}
	return nil
}
