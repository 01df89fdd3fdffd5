package keylog

import "errors"

var (
	ErrNotAttached     = errors.New("subscriber is not attached")
	ErrNotIdle         = errors.New("publisher has already been started")
	ErrSubscriberPanic = errors.New("subscriber panicked")
)
