package calltrace

import (
	"fmt"
	"strconv"
)

// Call is one node of an expectation pattern over recorded call ids.
//
// A Call is immutable once built; verification works on an internal clone,
// so the same pattern value can be passed to any number of Verify calls.
type Call struct {
	kind     callKind
	id       string
	children []*Call
}

type callKind uint8

const (
	kindID callKind = iota
	kindSeq
	kindPar
	kindAny
)

// ID matches exactly one recorded call with the given id.
func ID(id string) *Call {
	return &Call{kind: kindID, id: id}
}

// Seq matches its children one after another, left to right.
func Seq(calls ...any) *Call {
	return &Call{kind: kindSeq, children: convert(calls)}
}

// Par matches its children in any interleaving. Each recorded call is routed
// to the first still-pending child that accepts it.
func Par(calls ...any) *Call {
	return &Call{kind: kindPar, children: convert(calls)}
}

// Any matches if exactly one of its children matches the trace from this
// point on. Children that fall behind the observed trace are discarded and
// never reconsidered.
func Any(calls ...any) *Call {
	return &Call{kind: kindAny, children: convert(calls)}
}

// None matches the empty trace: nothing is expected.
func None() *Call {
	return &Call{kind: kindSeq}
}

// toCall converts the values Verify and the composite constructors accept
// into pattern nodes:
//
//	*Call      used as-is (cloned)
//	string     ID
//	int        ID of the decimal representation
//	nil        None
//	[]string   Seq of IDs
//	[]*Call    Seq
//	[]any      Seq, elements converted recursively
//
// Anything else is a programmer error and panics.
func toCall(v any) *Call {
	switch x := v.(type) {
	case nil:
		return None()
	case *Call:
		return x.clone()
	case string:
		return ID(x)
	case int:
		return ID(strconv.Itoa(x))
	case []string:
		children := make([]*Call, len(x))
		for i, id := range x {
			children[i] = ID(id)
		}
		return &Call{kind: kindSeq, children: children}
	case []*Call:
		children := make([]*Call, len(x))
		for i, c := range x {
			children[i] = c.clone()
		}
		return &Call{kind: kindSeq, children: children}
	case []any:
		return Seq(x...)
	default:
		panic(fmt.Sprintf("calltrace: cannot use %T as a call pattern", v))
	}
}

func convert(vs []any) []*Call {
	children := make([]*Call, len(vs))
	for i, v := range vs {
		children[i] = toCall(v)
	}
	return children
}

// clone deep-copies the node so verification can advance it destructively
// without touching the caller's tree.
func (c *Call) clone() *Call {
	out := &Call{kind: c.kind, id: c.id}
	if c.children != nil {
		out.children = make([]*Call, len(c.children))
		for i, child := range c.children {
			out.children[i] = child.clone()
		}
	}
	return out
}
