package keylog

import (
	"fmt"

	"keyinvader/key_event"
)

type Kind string

const (
	KindKeyDown           = Kind("key_down")
	KindKeyDownSpecial    = Kind("key_down_special")
	KindKeyUp             = Kind("key_up")
	KindKeyUpSpecial      = Kind("key_up_special")
	KindHotkeyShutdown    = Kind("hotkey_shutdown")
	KindEmergencyShutdown = Kind("emergency_shutdown")
	KindInterrupted       = Kind("interrupted")
	KindBackendFailure    = Kind("backend_failure")
)

// Terminal reports whether the kind ends a tracking run.
func (k Kind) Terminal() bool {
	switch k {
	case KindHotkeyShutdown, KindEmergencyShutdown, KindInterrupted, KindBackendFailure:
		return true
	}
	return false
}

// Event describes one captured transition. It deliberately has no timestamp.
type Event struct {
	Kind  Kind
	Label string
}

func PressEvent(k key_event.Key) Event {
	if k.HasChar() {
		return Event{Kind: KindKeyDown, Label: k.Label()}
	}
	return Event{Kind: KindKeyDownSpecial, Label: k.Label()}
}

func ReleaseEvent(k key_event.Key) Event {
	if k.HasChar() {
		return Event{Kind: KindKeyUp, Label: k.Label()}
	}
	return Event{Kind: KindKeyUpSpecial, Label: k.Label()}
}

func shutdownEvent(kind Kind) Event {
	return Event{Kind: kind}
}

// Text is the human-readable description without the trailing newline.
func (e Event) Text() string {
	switch e.Kind {
	case KindKeyDown:
		return fmt.Sprintf("[+] Alphanumeric key pressed: %s", e.Label)
	case KindKeyDownSpecial:
		return fmt.Sprintf("[+] Special key pressed: %s", e.Label)
	case KindKeyUp:
		return fmt.Sprintf("[-] Alphanumeric key released: %s", e.Label)
	case KindKeyUpSpecial:
		return fmt.Sprintf("[-] Special key released: %s", e.Label)
	case KindEmergencyShutdown:
		return "Emergency shutdown"
	case KindHotkeyShutdown:
		return "Hotkey combination pressed, shutting down..."
	case KindInterrupted:
		return "Tracking interrupted, shutting down..."
	case KindBackendFailure:
		return "Capture backend failed, shutting down..."
	}
	return ""
}

// Line is Text terminated by a newline, ready to be appended to a log.
func (e Event) Line() string {
	return e.Text() + "\n"
}
