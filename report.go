package calltrace

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// MismatchError reports the first position at which the recorded trace
// diverged from the expected pattern. It is immutable after creation.
type MismatchError struct {
	// Message is the free-text headline supplied to VerifyMsg/CheckMsg.
	Message string

	// Expected lists the ids the pattern could have accepted at the
	// mismatch position, sorted and deduplicated. Empty means the pattern
	// had nothing left to expect.
	Expected []string

	// Index is the trace position of the divergence; len(Trace) means the
	// pattern expected more calls than were recorded.
	Index int

	// Trace is the full drained trace the verification ran over.
	Trace []Event

	// Session is the id of the goroutine that owns the verifying session.
	Session uint64
}

// defaultWindow is how many trace entries are shown on each side of the
// mismatch position.
const defaultWindow = 5

type renderConfig struct {
	window     int
	color      bool
	backtraces bool
}

// RenderOption adjusts how a MismatchError is formatted.
type RenderOption func(*renderConfig)

// WithWindow sets the number of trace entries shown before and after the
// mismatch position (default 5).
func WithWindow(n int) RenderOption {
	return func(cfg *renderConfig) {
		cfg.window = n
	}
}

// WithColor toggles ANSI highlighting of the mismatched line.
func WithColor(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.color = enabled
	}
}

// WithBacktraces toggles the per-event backtrace section. It only appears
// when at least one event in the trace actually captured a backtrace.
func WithBacktraces(enabled bool) RenderOption {
	return func(cfg *renderConfig) {
		cfg.backtraces = enabled
	}
}

// colorDefault decides whether Verify's panic output is colored: only when
// the terminal advertises color support and NO_COLOR is unset.
func colorDefault() bool {
	return termenv.ColorProfile() != termenv.Ascii && !termenv.EnvNoColor()
}

// Actual returns the id recorded at the mismatch position, or "(end)" when
// the trace ran out before the pattern did.
func (e *MismatchError) Actual() string {
	return e.actualID(e.Index)
}

func (e *MismatchError) actualID(index int) string {
	if index < len(e.Trace) {
		return e.Trace[index].ID
	}
	return "(end)"
}

// Error renders the report with default options: window of 5, no color, no
// backtraces.
func (e *MismatchError) Error() string {
	return e.render(renderConfig{window: defaultWindow})
}

// Render formats the report for display.
func (e *MismatchError) Render(opts ...RenderOption) string {
	cfg := renderConfig{window: defaultWindow}
	for _, opt := range opts {
		opt(&cfg)
	}
	return e.render(cfg)
}

func (e *MismatchError) render(cfg renderConfig) string {
	var sb strings.Builder
	sb.WriteString("actual calls :\n")

	start := 0
	if e.Index > cfg.window {
		start = e.Index - cfg.window
	}
	end := min(e.Index+cfg.window+1, len(e.Trace))

	if start > 0 {
		fmt.Fprintf(&sb, "  ...(previous %d calls omitted)\n", start)
	}
	for i := start; i < end; i++ {
		writeEntry(&sb, cfg, i == e.Index, e.Trace[i].ID)
	}
	if end == len(e.Trace) {
		writeEntry(&sb, cfg, e.Index == len(e.Trace), "(end)")
	} else {
		fmt.Fprintf(&sb, "  ...(following %d calls omitted)\n", len(e.Trace)-end)
	}

	sb.WriteByte('\n')
	sb.WriteString(e.Message)
	sb.WriteByte('\n')
	if e.Index < len(e.Trace) {
		ev := e.Trace[e.Index]
		fmt.Fprintf(&sb, "%s:%d\n", ev.File, ev.Line)
	}
	fmt.Fprintf(&sb, "actual : %s\n", e.Actual())
	fmt.Fprintf(&sb, "expect : %s\n", strings.Join(e.Expected, ", "))

	if cfg.backtraces && e.hasBacktrace() {
		e.writeBacktraces(&sb, cfg)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, cfg renderConfig, marked bool, id string) {
	head := " "
	if marked {
		head = "*"
	}
	line := head + " " + id
	if marked && cfg.color {
		line = termenv.ANSI.String(line).Foreground(termenv.ANSI.Color("1")).String()
	}
	sb.WriteString(line)
	sb.WriteByte('\n')
}

func (e *MismatchError) hasBacktrace() bool {
	for i := range e.Trace {
		if e.Trace[i].Backtrace.Captured() {
			return true
		}
	}
	return false
}

// writeBacktraces prints the events leading up to and including the
// mismatch, each with its source location, goroutine, and captured frames.
func (e *MismatchError) writeBacktraces(sb *strings.Builder, cfg renderConfig) {
	sb.WriteString("\ncall backtraces :\n")

	start := 0
	if e.Index > cfg.window {
		start = e.Index - cfg.window
	}
	end := min(e.Index+1, len(e.Trace))

	if start > 0 {
		fmt.Fprintf(sb, "# ...(previous %d calls omitted)\n", start)
	}
	for i := start; i < end; i++ {
		ev := e.Trace[i]
		fmt.Fprintf(sb, "# %s\n", ev.ID)
		fmt.Fprintf(sb, "%s:%d\n", ev.File, ev.Line)
		fmt.Fprintf(sb, "goroutine: %d\n", ev.Goroutine)
		sb.WriteString(ev.Backtrace.String())
		sb.WriteByte('\n')
	}
	if end == len(e.Trace) {
		sb.WriteString("# (end)\n")
	} else {
		fmt.Fprintf(sb, "  ...(following %d calls omitted)\n", len(e.Trace)-end)
	}
}
