package key_event

import (
	"fmt"
	"unicode/utf8"

	"github.com/vcaesar/keycode"
)

// CharUndefined is the keychar hook backends report for events that carry no
// character, such as press and release.
const CharUndefined rune = 0xFFFF

var keycodeNames = reverseKeycodes(keycode.Keycode)

// reverseKeycodes indexes names by code. Several names can share a code; the
// shortest, then alphabetically first, wins so the lookup is deterministic.
func reverseKeycodes(m map[string]uint16) map[uint16]string {
	names := make(map[uint16]string, len(m))
	for name, code := range m {
		cur, ok := names[code]
		if !ok || len(name) < len(cur) || (len(name) == len(cur) && name < cur) {
			names[code] = name
		}
	}
	return names
}

// KeyFromCodes builds a Key from a platform independent keycode and the
// character typed with it, if any. The keycode decides identity; keychar only
// refines the character, e.g. 'A' instead of 'a' while shift is held.
func KeyFromCodes(code uint16, keychar rune) Key {
	name, ok := keycodeNames[code]
	if !ok {
		return Key{Name: fmt.Sprintf("keycode_%d", code)}
	}
	name = NormalizeKeyName(name)

	if utf8.RuneCountInString(name) != 1 {
		return Key{Name: name}
	}
	r, _ := utf8.DecodeRuneInString(name)
	if !printable(r) {
		return Key{Name: name}
	}
	if keychar != CharUndefined && printable(keychar) {
		r = keychar
	}
	return Key{Char: r, Name: name}
}

type RawKind int

const (
	RawPressed RawKind = iota
	RawTyped
	RawReleased
)

// RawEvent is a keyboard event as an OS hook reports it. A character key
// produces pressed, typed and released; only typed carries the character.
type RawEvent struct {
	Kind    RawKind
	Keycode uint16
	Keychar rune
}

// KeyDecoder turns raw events into press and release transitions. A character
// key press is held back until its typed event supplies the character, and the
// release reuses that character. It is not safe for concurrent use.
type KeyDecoder struct {
	pending     *Key
	pendingCode uint16
	pressed     map[uint16]Key
}

func NewKeyDecoder() *KeyDecoder {
	return &KeyDecoder{pressed: make(map[uint16]Key)}
}

func (d *KeyDecoder) Feed(e RawEvent, onPress, onRelease func(Key)) {
	switch e.Kind {
	case RawPressed:
		d.Flush(onPress)
		k := KeyFromCodes(e.Keycode, CharUndefined)
		d.pressed[e.Keycode] = k
		if k.HasChar() {
			d.pending, d.pendingCode = &k, e.Keycode
			return
		}
		onPress(k)
	case RawTyped:
		if d.pending == nil {
			return
		}
		k := *d.pending
		if e.Keychar != CharUndefined && printable(e.Keychar) {
			k.Char = e.Keychar
		}
		d.pending = nil
		d.pressed[d.pendingCode] = k
		onPress(k)
	case RawReleased:
		d.Flush(onPress)
		k, ok := d.pressed[e.Keycode]
		if !ok {
			k = KeyFromCodes(e.Keycode, CharUndefined)
		}
		delete(d.pressed, e.Keycode)
		onRelease(k)
	}
}

// Flush delivers a press still waiting for its typed event.
func (d *KeyDecoder) Flush(onPress func(Key)) {
	if d.pending == nil {
		return
	}
	k := *d.pending
	d.pending = nil
	onPress(k)
}
