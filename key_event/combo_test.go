package key_event

import "testing"

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "<ctrl>+q", want: "<ctrl>+q"},
		{in: "Ctrl+Q", want: "<ctrl>+q"},
		{in: "rctrl+lshift+x", want: "<ctrl>+<shift>+x"},
		{in: "ctrl+ctrl+q", want: "<ctrl>+q"},
		{in: "ctrl+", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCombo(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", c)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, c.String())
			}
		})
	}
}

func TestComboTrackerFiresOnceWhileHeld(t *testing.T) {
	combo, err := ParseCombo("<ctrl>+q")
	if err != nil {
		t.Fatal(err)
	}
	tr := NewComboTracker(combo)

	if tr.Press(CharKey('q')) {
		t.Fatal("q alone must not fire")
	}
	tr.Release(CharKey('q'))

	if tr.Press(SpecialKey("rctrl")) {
		t.Fatal("ctrl alone must not fire")
	}
	if !tr.Press(CharKey('Q')) {
		t.Fatal("ctrl+q must fire")
	}
	if tr.Press(CharKey('q')) {
		t.Fatal("auto-repeat must not fire again")
	}
	tr.Release(CharKey('q'))
	if !tr.Press(CharKey('q')) {
		t.Fatal("releasing and pressing q again must fire")
	}
}

func TestKeyLabel(t *testing.T) {
	if got := CharKey('a').Label(); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	k := SpecialKey("Escape")
	if k.HasChar() || k.Label() != "esc" {
		t.Fatalf("unexpected special key %+v", k)
	}
	if !k.Is("<esc>") {
		t.Fatal("expected esc to match <esc>")
	}
}

func TestParseScript(t *testing.T) {
	steps, err := ParseScript("a +ctrl q -ctrl esc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []ScriptStep{
		{Action: StepType, Key: CharKey('a')},
		{Action: StepPress, Key: SpecialKey("ctrl")},
		{Action: StepType, Key: CharKey('q')},
		{Action: StepRelease, Key: SpecialKey("ctrl")},
		{Action: StepType, Key: SpecialKey("esc")},
	}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d: expected %+v, got %+v", i, want[i], steps[i])
		}
	}
}

func TestScriptedBackendHotkeyFromCombo(t *testing.T) {
	b := NewScriptedBackend()
	var pressed []Key
	fired := 0
	keys, err := b.ListenKeys(func(k Key) { pressed = append(pressed, k) }, func(Key) {})
	if err != nil {
		t.Fatal(err)
	}
	combo, _ := ParseCombo("ctrl+q")
	hot, err := b.ListenHotkey(combo, func() { fired++ })
	if err != nil {
		t.Fatal(err)
	}
	<-b.Ready()

	steps, _ := ParseScript("+ctrl q -ctrl q")
	b.Play(steps)
	if fired != 1 {
		t.Fatalf("expected hotkey once, got %d", fired)
	}
	if len(pressed) != 3 {
		t.Fatalf("expected 3 presses, got %d", len(pressed))
	}

	keys.Stop()
	hot.Stop()
	if err := keys.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	b.Press(CharKey('x'))
	if len(pressed) != 3 {
		t.Fatal("stopped listener must not deliver")
	}
}
