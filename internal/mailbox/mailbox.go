// Package mailbox provides a single-slot buffer where the latest value
// always wins. It is NOT a queue: Put overwrites any pending value,
// which is exactly the semantics a config reload wants — a stale
// pending config is superseded by a newer one.
package mailbox

import "sync"

type Mailbox[T any] struct {
	mu     sync.Mutex
	val    *T
	notify chan struct{}
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Put stores a value, replacing any pending one. It never blocks.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.val = &v
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Ready signals when a value is waiting. Receive from it in a select,
// then call TryTake.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.notify
}

// TryTake returns the pending value if present and clears the slot.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.val == nil {
		var zero T
		return zero, false
	}
	v := *m.val
	m.val = nil
	return v, true
}
