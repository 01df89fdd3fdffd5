package keylog

// Source is the read-only view of a publisher handed to subscribers.
type Source interface {
	Current() Event
}

// Subscriber receives every state change of the publisher it is attached to.
// Update runs synchronously on the goroutine delivering the key callback, so it
// must not block for long. Detach finds a subscriber with ==, so a value whose
// type cannot be compared can be attached but never detached.
type Subscriber interface {
	Update(src Source) error
}
