package key_event

import (
	"errors"
	"unicode"
)

// ErrListenerClosed is returned by Listener.Wait when the event source went away
// before the listener was asked to stop.
var ErrListenerClosed = errors.New("key event source closed")

// Backend starts the two independently scheduled listening units.
type Backend interface {
	Name() string
	ListenKeys(onPress, onRelease func(Key)) (Listener, error)
	ListenHotkey(combo Combo, onHotkey func()) (Listener, error)
}

// Listener is a running listening unit. Stop is safe to call more than once
// and from any goroutine; Wait blocks until the unit has fully halted.
type Listener interface {
	Name() string
	Stop()
	Wait() error
}

// Key is one physical key as reported by a backend. Char is zero when the key
// has no character representation.
type Key struct {
	Char rune
	Name string
}

func CharKey(c rune) Key {
	return Key{Char: c, Name: string(c)}
}

func SpecialKey(name string) Key {
	return Key{Name: NormalizeKeyName(name)}
}

func (k Key) HasChar() bool {
	return k.Char != 0
}

// Label is the character when there is one, otherwise the symbolic name.
func (k Key) Label() string {
	if k.HasChar() {
		return string(k.Char)
	}
	return k.Name
}

// Is reports whether k is the key named name, honoring modifier aliases.
func (k Key) Is(name string) bool {
	return NormalizeKeyName(k.Name) == NormalizeKeyName(name)
}

func printable(r rune) bool {
	return r != 0 && unicode.IsPrint(r) && !unicode.IsSpace(r)
}
