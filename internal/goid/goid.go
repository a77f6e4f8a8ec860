// Package goid resolves the identity of the calling goroutine.
//
// The Go runtime deliberately hides goroutine ids, but the recording substrate
// needs a stable key for goroutine-scoped trace storage. The id is parsed from
// the first line of the runtime.Stack header ("goroutine N [running]:"), which
// is stable across every released Go version.
//
// Cost is one small stack dump per call (~1-2µs). That is acceptable for a
// test-only instrumentation path; do not use this package on hot production
// paths.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// ID returns the id of the calling goroutine.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := buf[:n]
	header = bytes.TrimPrefix(header, prefix)
	end := bytes.IndexByte(header, ' ')
	if end < 0 {
		// The header format is fixed; reaching this means the runtime changed
		// in a way this package must be updated for.
		panic("goid: malformed runtime.Stack header")
	}
	id, err := strconv.ParseUint(string(header[:end]), 10, 64)
	if err != nil {
		panic("goid: malformed goroutine id: " + err.Error())
	}
	return id
}
