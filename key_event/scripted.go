package key_event

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ScriptedBackend is an in-process backend driven by explicit calls instead of
// the OS hook. Callbacks run on the goroutine that calls Press/Release/Hotkey.
type ScriptedBackend struct {
	mu      sync.Mutex
	keys    *scriptedListener
	hotkey  *scriptedListener
	tracker *ComboTracker
	ready   chan struct{}
}

func NewScriptedBackend() *ScriptedBackend {
	return &ScriptedBackend{ready: make(chan struct{})}
}

func (b *ScriptedBackend) Name() string {
	return "ScriptedBackend"
}

func (b *ScriptedBackend) ListenKeys(onPress, onRelease func(Key)) (Listener, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.keys != nil {
		return nil, errors.New("key listener already started")
	}
	b.keys = newScriptedListener("KeyListener")
	b.keys.onPress = onPress
	b.keys.onRelease = onRelease
	b.markReady()
	return b.keys, nil
}

func (b *ScriptedBackend) ListenHotkey(combo Combo, onHotkey func()) (Listener, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hotkey != nil {
		return nil, errors.New("hotkey listener already started")
	}
	b.hotkey = newScriptedListener("HotkeyListener")
	b.hotkey.onHotkey = onHotkey
	b.tracker = NewComboTracker(combo)
	b.markReady()
	return b.hotkey, nil
}

// Ready is closed once both listeners are running.
func (b *ScriptedBackend) Ready() <-chan struct{} {
	return b.ready
}

func (b *ScriptedBackend) markReady() {
	if b.keys != nil && b.hotkey != nil {
		close(b.ready)
	}
}

// Press delivers a key down to the key listener and feeds the hotkey combo.
func (b *ScriptedBackend) Press(k Key) {
	keys, hotkey, fired := b.route(k, true)
	if keys != nil && keys.running() {
		keys.onPress(k)
	}
	if fired && hotkey != nil && hotkey.running() {
		hotkey.onHotkey()
	}
}

func (b *ScriptedBackend) Release(k Key) {
	keys, _, _ := b.route(k, false)
	if keys != nil && keys.running() {
		keys.onRelease(k)
	}
}

// Type presses and releases k.
func (b *ScriptedBackend) Type(k Key) {
	b.Press(k)
	b.Release(k)
}

// Hotkey fires the hotkey callback regardless of which keys are held.
func (b *ScriptedBackend) Hotkey() {
	b.mu.Lock()
	hotkey := b.hotkey
	b.mu.Unlock()
	if hotkey != nil && hotkey.running() {
		hotkey.onHotkey()
	}
}

// Fail terminates the key listener as if the OS hook had died.
func (b *ScriptedBackend) Fail(err error) {
	b.mu.Lock()
	keys := b.keys
	b.mu.Unlock()
	if keys != nil {
		keys.halt(err)
	}
}

func (b *ScriptedBackend) route(k Key, down bool) (*scriptedListener, *scriptedListener, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fired := false
	if b.tracker != nil {
		if down {
			fired = b.tracker.Press(k)
		} else {
			b.tracker.Release(k)
		}
	}
	return b.keys, b.hotkey, fired
}

type scriptedListener struct {
	name      string
	onPress   func(Key)
	onRelease func(Key)
	onHotkey  func()

	once sync.Once
	done chan struct{}
	err  error
}

func newScriptedListener(name string) *scriptedListener {
	return &scriptedListener{name: name, done: make(chan struct{})}
}

func (l *scriptedListener) Name() string {
	return l.name
}

func (l *scriptedListener) Stop() {
	l.halt(nil)
}

func (l *scriptedListener) Wait() error {
	<-l.done
	return l.err
}

func (l *scriptedListener) halt(err error) {
	l.once.Do(func() {
		l.err = err
		close(l.done)
	})
}

func (l *scriptedListener) running() bool {
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// ParseScript turns a whitespace separated script into key steps. A plain
// token types the key; "+x" presses and "-x" releases it. Multi-letter tokens
// are special keys, e.g. "+ctrl q -ctrl esc".
func ParseScript(script string) ([]ScriptStep, error) {
	var steps []ScriptStep
	for _, tok := range strings.Fields(script) {
		step := ScriptStep{Action: StepType}
		switch {
		case len(tok) > 1 && tok[0] == '+':
			step.Action, tok = StepPress, tok[1:]
		case len(tok) > 1 && tok[0] == '-':
			step.Action, tok = StepRelease, tok[1:]
		}
		r := []rune(tok)
		if len(r) == 1 {
			step.Key = CharKey(r[0])
		} else if NormalizeKeyName(tok) != "" {
			step.Key = SpecialKey(tok)
		} else {
			return nil, fmt.Errorf("invalid script token %q", tok)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

type StepAction int

const (
	StepType StepAction = iota
	StepPress
	StepRelease
)

type ScriptStep struct {
	Action StepAction
	Key    Key
}

// Play runs steps against the backend in order.
func (b *ScriptedBackend) Play(steps []ScriptStep) {
	for _, s := range steps {
		switch s.Action {
		case StepPress:
			b.Press(s.Key)
		case StepRelease:
			b.Release(s.Key)
		default:
			b.Type(s.Key)
		}
	}
}
