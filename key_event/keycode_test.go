package key_event

import (
	"testing"

	"github.com/vcaesar/keycode"
)

func TestKeyFromCodes(t *testing.T) {
	tests := []struct {
		name    string
		code    uint16
		keychar rune
		want    Key
	}{
		{name: "esc", code: keycode.Keycode["esc"], keychar: CharUndefined, want: Key{Name: "esc"}},
		{name: "ctrl", code: keycode.Keycode["ctrl"], keychar: CharUndefined, want: Key{Name: "ctrl"}},
		{name: "q", code: keycode.Keycode["q"], keychar: CharUndefined, want: Key{Char: 'q', Name: "q"}},
		{name: "shifted letter", code: keycode.Keycode["a"], keychar: 'A', want: Key{Char: 'A', Name: "a"}},
		{name: "control character", code: keycode.Keycode["q"], keychar: 0x11, want: Key{Char: 'q', Name: "q"}},
		{name: "unknown", code: 0xFFF0, keychar: CharUndefined, want: Key{Name: "keycode_65520"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromCodes(tt.code, tt.keychar); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestKeyFromCodesMatchesEmergencyAndHotkey(t *testing.T) {
	if !KeyFromCodes(keycode.Keycode["esc"], CharUndefined).Is("esc") {
		t.Fatal("esc keycode must match the esc emergency key")
	}

	combo, err := ParseCombo("<ctrl>+q")
	if err != nil {
		t.Fatal(err)
	}
	tr := NewComboTracker(combo)
	tr.Press(KeyFromCodes(keycode.Keycode["ctrl"], CharUndefined))
	if !tr.Press(KeyFromCodes(keycode.Keycode["q"], CharUndefined)) {
		t.Fatal("ctrl and q keycodes must complete <ctrl>+q")
	}
}

func TestReverseKeycodesIsDeterministic(t *testing.T) {
	names := reverseKeycodes(map[string]uint16{"return": 28, "enter": 28, "ent": 28, "abc": 28, "x": 45})
	if names[28] != "abc" {
		t.Fatalf("expected shortest then alphabetical name, got %q", names[28])
	}
	if names[45] != "x" {
		t.Fatalf("unexpected name %q", names[45])
	}
}

type transitions struct {
	lines []string
}

func (tr *transitions) press(k Key)   { tr.lines = append(tr.lines, "+"+k.Label()) }
func (tr *transitions) release(k Key) { tr.lines = append(tr.lines, "-"+k.Label()) }

func TestKeyDecoder(t *testing.T) {
	a := keycode.Keycode["a"]
	shift := keycode.Keycode["shift"]
	esc := keycode.Keycode["esc"]

	var tr transitions
	d := NewKeyDecoder()
	for _, e := range []RawEvent{
		{Kind: RawPressed, Keycode: a, Keychar: CharUndefined},
		{Kind: RawTyped, Keychar: 'a'},
		{Kind: RawReleased, Keycode: a, Keychar: CharUndefined},
		{Kind: RawPressed, Keycode: shift, Keychar: CharUndefined},
		{Kind: RawPressed, Keycode: a, Keychar: CharUndefined},
		{Kind: RawTyped, Keychar: 'A'},
		{Kind: RawReleased, Keycode: shift, Keychar: CharUndefined},
		{Kind: RawReleased, Keycode: a, Keychar: CharUndefined},
		{Kind: RawPressed, Keycode: esc, Keychar: CharUndefined},
	} {
		d.Feed(e, tr.press, tr.release)
	}

	want := []string{"+a", "-a", "+shift", "+A", "-shift", "-A", "+esc"}
	if len(tr.lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, tr.lines)
	}
	for i := range want {
		if tr.lines[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tr.lines)
		}
	}
}

func TestKeyDecoderFlushesPressWithoutTypedEvent(t *testing.T) {
	q := keycode.Keycode["q"]
	var tr transitions
	d := NewKeyDecoder()
	d.Feed(RawEvent{Kind: RawPressed, Keycode: q, Keychar: CharUndefined}, tr.press, tr.release)
	d.Feed(RawEvent{Kind: RawReleased, Keycode: q, Keychar: CharUndefined}, tr.press, tr.release)

	if len(tr.lines) != 2 || tr.lines[0] != "+q" || tr.lines[1] != "-q" {
		t.Fatalf("unexpected transitions %v", tr.lines)
	}
}
