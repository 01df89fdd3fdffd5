package key_event

import (
	"fmt"
	"strings"
)

var keyAliases = map[string]string{
	"control": "ctrl",
	"lctrl":   "ctrl",
	"rctrl":   "ctrl",
	"ctrl_l":  "ctrl",
	"ctrl_r":  "ctrl",
	"lalt":    "alt",
	"ralt":    "alt",
	"option":  "alt",
	"alt_l":   "alt",
	"alt_r":   "alt",
	"lshift":  "shift",
	"rshift":  "shift",
	"shift_l": "shift",
	"shift_r": "shift",
	"command": "cmd",
	"lcmd":    "cmd",
	"rcmd":    "cmd",
	"super":   "cmd",
	"escape":  "esc",
	"return":  "enter",
}

// NormalizeKeyName lower-cases a key name, strips pynput-style angle brackets
// and folds left/right modifier variants into one name.
func NormalizeKeyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(strings.TrimPrefix(n, "<"), ">")
	if alias, ok := keyAliases[n]; ok {
		return alias
	}
	return n
}

// Combo is a set of keys that must be held down together.
type Combo []string

// ParseCombo parses "<ctrl>+q" or "ctrl+q".
func ParseCombo(s string) (Combo, error) {
	var c Combo
	for _, part := range strings.Split(s, "+") {
		name := NormalizeKeyName(part)
		if name == "" {
			return nil, fmt.Errorf("invalid hotkey %q", s)
		}
		if c.contains(name) {
			continue
		}
		c = append(c, name)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("invalid hotkey %q", s)
	}
	return c, nil
}

func (c Combo) String() string {
	parts := make([]string, len(c))
	for i, name := range c {
		if len(name) > 1 {
			name = "<" + name + ">"
		}
		parts[i] = name
	}
	return strings.Join(parts, "+")
}

func (c Combo) contains(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

// ComboTracker follows key transitions and fires once each time every key of
// the combo becomes held. It is not safe for concurrent use.
type ComboTracker struct {
	combo   Combo
	pressed map[string]bool
	active  bool
}

func NewComboTracker(combo Combo) *ComboTracker {
	return &ComboTracker{combo: combo, pressed: make(map[string]bool)}
}

// Press records a key down and reports whether the combo just completed.
func (t *ComboTracker) Press(k Key) bool {
	t.pressed[comboName(k)] = true
	if t.active {
		return false
	}
	for _, name := range t.combo {
		if !t.pressed[name] {
			return false
		}
	}
	t.active = true
	return true
}

func (t *ComboTracker) Release(k Key) {
	name := comboName(k)
	delete(t.pressed, name)
	if t.combo.contains(name) {
		t.active = false
	}
}

func comboName(k Key) string {
	if k.HasChar() {
		return strings.ToLower(string(k.Char))
	}
	return NormalizeKeyName(k.Name)
}
