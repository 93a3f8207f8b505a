package core

import "sync/atomic"

// Mailbox is a single-slot, latest-value channel between one control
// goroutine and one audio goroutine.
//
// Send never blocks and replaces any value that has not been received yet.
// TryReceive never blocks and takes the pending value, if any. Intermediate
// values may be skipped; only the most recent one is guaranteed to be
// observed. The receive side does not allocate or lock.
//
// A nil *Mailbox is valid and never delivers anything.
type Mailbox[T any] struct {
	slot atomic.Pointer[T]
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Send publishes v, overwriting a value that was not received yet.
func (m *Mailbox[T]) Send(v T) {
	if m == nil {
		return
	}

	m.slot.Store(&v)
}

// TryReceive takes the pending value. ok is false when nothing was sent
// since the previous receive.
func (m *Mailbox[T]) TryReceive() (v T, ok bool) {
	if m == nil {
		return v, false
	}

	p := m.slot.Swap(nil)
	if p == nil {
		return v, false
	}

	return *p, true
}

// Pending reports whether a value is waiting to be received.
func (m *Mailbox[T]) Pending() bool {
	return m != nil && m.slot.Load() != nil
}
