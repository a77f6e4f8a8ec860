package calltrace

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/roach88/calltrace/internal/goid"
	"github.com/roach88/calltrace/internal/scope"
)

// Event is one observed instrumented call.
type Event struct {
	// ID is the call identifier passed to Record.
	ID string

	// File and Line locate the Record call site.
	File string
	Line int

	// Goroutine is the id of the goroutine that recorded the call.
	Goroutine uint64

	// Backtrace is the optional stack snapshot taken at the call site.
	// It is only captured when CALLTRACE_BACKTRACE is set; consumers must
	// handle the unavailable state.
	Backtrace Backtrace
}

// Backtrace is an opaque stack snapshot attached to an Event. The zero value
// is the "unavailable" state.
type Backtrace struct {
	pcs []uintptr
}

// Captured reports whether a stack was actually captured.
func (b Backtrace) Captured() bool {
	return len(b.pcs) > 0
}

// String resolves the captured frames lazily, one "function\n\tfile:line"
// pair per frame. For an unavailable backtrace it returns a hint instead.
func (b Backtrace) String() string {
	if !b.Captured() {
		return "(backtrace unavailable; set CALLTRACE_BACKTRACE=1)"
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(b.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// maxBacktraceFrames bounds the per-event capture cost. Ordering bugs are
// almost always visible well within this depth.
const maxBacktraceFrames = 32

func backtraceEnabled() bool {
	switch os.Getenv("CALLTRACE_BACKTRACE") {
	case "", "0", "off", "false":
		return false
	}
	return true
}

// The storage cells shared by every Recorder in the process: one buffer per
// goroutine-scoped session, plus the single process-wide slot.
var (
	local  = scope.NewRegistry[Event]()
	global = &scope.Slot[Event]{}
)

// Record stores one call event in the active capture scope. With arguments
// the id is fmt.Sprintf(format, args...); without, format is used verbatim
// (no % reinterpretation).
//
// Record is safe to call from any goroutine while a process-scoped Recorder
// is active. It panics if no Recorder is active anywhere: a program that
// records calls nobody is collecting has a missing or misplaced session,
// and that must not pass silently.
func Record(format string, args ...any) {
	id := format
	if len(args) > 0 {
		id = fmt.Sprintf(format, args...)
	}
	_, file, line, _ := runtime.Caller(1)
	ev := Event{
		ID:        id,
		File:      file,
		Line:      line,
		Goroutine: goid.ID(),
	}
	if backtraceEnabled() {
		pcs := make([]uintptr, maxBacktraceFrames)
		// Skip runtime.Callers and Record itself.
		n := runtime.Callers(2, pcs)
		ev.Backtrace = Backtrace{pcs: pcs[:n]}
	}
	push(ev)
}

// push routes an event to the recording goroutine's own buffer if one is
// active, otherwise to the process-wide slot.
func push(ev Event) {
	if local.Push(ev.Goroutine, ev) {
		return
	}
	if global.Push(ev) {
		return
	}
	panic("calltrace: Record called with no active Recorder (create one with New or NewLocal first)")
}
