// Package scope implements the storage cells behind call recording.
//
// Two cell shapes exist, matching the two capture scopes:
//
//   - Registry: one buffer per goroutine, keyed by goroutine id. Acquiring a
//     key that is already active is a programmer error and fails fast —
//     double-acquisition in one goroutine is always a bug, never a race.
//   - Slot: a single process-wide buffer behind a mutex and a condition
//     variable. Acquire blocks until the previous holder releases, so at most
//     one process-scoped session is ever active.
//
// Both cells expose Push (append one value to the active buffer) and Take
// (swap the active buffer for an empty one and return the old contents).
// The cells know nothing about events or patterns; routing between them is
// the caller's concern. This keeps the capture-routing decision explicit and
// each cell testable in isolation.
package scope

import "sync"

// Registry is a set of independently owned buffers keyed by goroutine id.
//
// The map itself is guarded by a mutex because acquire/release/push may run
// on different goroutines, but each buffer is only ever touched through its
// owning key, so pushes never contend on buffer contents.
type Registry[T any] struct {
	mu      sync.Mutex
	buffers map[uint64][]T
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{buffers: make(map[uint64][]T)}
}

// Acquire activates the buffer for key. Returns false if the key is already
// active; the caller is expected to treat that as a fatal misuse.
func (r *Registry[T]) Acquire(key uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, active := r.buffers[key]; active {
		return false
	}
	r.buffers[key] = []T{}
	return true
}

// Release deactivates the buffer for key, discarding any remaining contents.
// Releasing an inactive key is a no-op so that cleanup paths stay idempotent.
func (r *Registry[T]) Release(key uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, key)
}

// Push appends v to the buffer for key. Returns false if the key is not
// active, leaving the value unrecorded.
func (r *Registry[T]) Push(key uint64, v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, active := r.buffers[key]
	if !active {
		return false
	}
	r.buffers[key] = append(buf, v)
	return true
}

// Take swaps the buffer for key with an empty one and returns the previous
// contents. The second result reports whether the key was active.
func (r *Registry[T]) Take(key uint64) ([]T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, active := r.buffers[key]
	if !active {
		return nil, false
	}
	r.buffers[key] = []T{}
	return buf, true
}

// Active reports whether key currently owns a buffer.
func (r *Registry[T]) Active(key uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, active := r.buffers[key]
	return active
}

// Slot is the process-wide storage cell. The zero value is ready to use.
type Slot[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	active bool
	buf    []T
}

// condLocked lazily binds the condition variable to the mutex. Must be called
// with mu held.
func (s *Slot[T]) condLocked() *sync.Cond {
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	return s.cond
}

// Acquire claims the slot, blocking until any previous holder has released.
// There is no timeout and no cancellation: a holder that never releases
// deadlocks all future acquirers, so callers must guarantee Release on every
// exit path.
func (s *Slot[T]) Acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cond := s.condLocked()
	for s.active {
		cond.Wait()
	}
	s.active = true
	s.buf = []T{}
}

// Release clears the slot and wakes every waiter. Which waiter claims the
// slot next is unspecified. Releasing an inactive slot is a no-op.
func (s *Slot[T]) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.buf = nil
	s.condLocked().Broadcast()
}

// Push appends v to the slot's buffer. Returns false if no session holds the
// slot. Safe to call concurrently from any number of goroutines; the append
// order under contention is the lock acquisition order.
func (s *Slot[T]) Push(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.buf = append(s.buf, v)
	return true
}

// Take swaps the slot's buffer for an empty one and returns the previous
// contents. The second result reports whether the slot was held.
func (s *Slot[T]) Take() ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, false
	}
	buf := s.buf
	s.buf = []T{}
	return buf, true
}

// Active reports whether the slot is currently held.
func (s *Slot[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
