package calltrace

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/calltrace/internal/goid"
)

type captureScope uint8

const (
	scopeProcess captureScope = iota
	scopeGoroutine
)

// Recorder owns a capture scope and verifies the calls recorded into it.
//
// A Recorder is bound to the goroutine that created it; Verify and Check
// must run there. Close releases the scope and must be guaranteed on every
// exit path (defer rec.Close() or t.Cleanup(rec.Close)): a leaked
// process-scoped session blocks every future New call forever.
type Recorder struct {
	scope   captureScope
	owner   uint64
	session uuid.UUID
	logger  *slog.Logger
	closed  bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger directs the Recorder's structured log output to the given
// logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func newRecorder(s captureScope, opts ...Option) *Recorder {
	r := &Recorder{
		scope:   s,
		owner:   goid.ID(),
		session: uuid.New(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// New starts recording Record calls from every goroutine in the process.
//
// Only one process-scoped Recorder can be active at a time, system-wide.
// If another one exists, New blocks until it is closed; there is no timeout
// and no cancellation.
func New(opts ...Option) *Recorder {
	r := newRecorder(scopeProcess, opts...)
	global.Acquire()
	r.logger.Info("capture scope acquired",
		"scope", "process",
		"session", r.session,
		"goroutine", r.owner,
	)
	return r
}

// NewLocal starts recording Record calls made by the current goroutine only.
//
// Panics if this goroutine already has an active goroutine-scoped Recorder:
// double-acquisition in one goroutine is always a bug, never a race, so it
// is reported synchronously.
func NewLocal(opts ...Option) *Recorder {
	r := newRecorder(scopeGoroutine, opts...)
	if !local.Acquire(r.owner) {
		panic("calltrace: NewLocal called twice in the same goroutine")
	}
	r.logger.Info("capture scope acquired",
		"scope", "goroutine",
		"session", r.session,
		"goroutine", r.owner,
	)
	return r
}

// Close releases the capture scope, discarding any unverified events.
// Closing an already closed Recorder is a no-op.
func (r *Recorder) Close() {
	if r.closed {
		return
	}
	r.closed = true
	switch r.scope {
	case scopeProcess:
		global.Release()
	case scopeGoroutine:
		local.Release(r.owner)
	}
	r.logger.Info("capture scope released", "session", r.session)
}

// Verify drains the trace recorded since the previous drain and checks it
// against the expected pattern (see toCall for the accepted forms). On
// mismatch it panics with the rendered diagnostic, colored when the
// terminal supports it.
func (r *Recorder) Verify(expect any) {
	r.VerifyMsg(expect, "mismatch call")
}

// VerifyMsg is Verify with a custom headline message in the diagnostic.
func (r *Recorder) VerifyMsg(expect any, msg string) {
	merr := r.check(expect, msg)
	if merr == nil {
		return
	}
	panic(merr.Render(WithColor(colorDefault())))
}

// Check is the non-panicking probe: it drains and verifies like Verify but
// returns the *MismatchError instead of failing, so callers can assert on
// the report's shape. Returns nil on success.
func (r *Recorder) Check(expect any) error {
	return r.CheckMsg(expect, "mismatch call")
}

// CheckMsg is Check with a custom headline message.
func (r *Recorder) CheckMsg(expect any, msg string) error {
	if merr := r.check(expect, msg); merr != nil {
		return merr
	}
	return nil
}

func (r *Recorder) check(expect any, msg string) *MismatchError {
	pattern := toCall(expect)
	trace := r.take()
	merr := pattern.match(trace, r.owner, msg)
	if merr != nil {
		r.logger.Debug("verification failed",
			"session", r.session,
			"events", len(trace),
			"mismatch_index", merr.Index,
		)
		return merr
	}
	r.logger.Debug("verification passed",
		"session", r.session,
		"events", len(trace),
	)
	return nil
}

// take atomically swaps the active storage for an empty buffer, so each
// verification sees only events recorded since the prior one.
func (r *Recorder) take() []Event {
	var trace []Event
	ok := false
	if !r.closed {
		switch r.scope {
		case scopeProcess:
			trace, ok = global.Take()
		case scopeGoroutine:
			trace, ok = local.Take(r.owner)
		}
	}
	if !ok {
		panic("calltrace: Recorder used after Close")
	}
	return trace
}
