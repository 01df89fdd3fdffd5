// Package os_hook captures the real keyboard through gohook's global hook.
package os_hook

import (
	"log/slog"
	"sync"

	"keyinvader/key_event"

	hook "github.com/robotn/gohook"
)

// Backend delivers OS keyboard events through gohook. gohook exposes one
// process-wide hook, so both listeners share it through a fan-out pump and the
// hook is ended when the last listener stops.
type Backend struct {
	logger *slog.Logger

	mu      sync.Mutex
	subs    map[int]chan hook.Event
	nextID  int
	running bool
}

func NewBackend(logger *slog.Logger) *Backend {
	return &Backend{
		logger: logger,
		subs:   make(map[int]chan hook.Event),
	}
}

func (b *Backend) Name() string {
	return "OSHookBackend"
}

func (b *Backend) ListenKeys(onPress, onRelease func(key_event.Key)) (key_event.Listener, error) {
	id, ch := b.subscribe()
	decoder := key_event.NewKeyDecoder()
	l := newListener("KeyListener")
	go l.run(b, id, ch, func(e key_event.RawEvent) {
		decoder.Feed(e, onPress, onRelease)
	})
	return l, nil
}

func (b *Backend) ListenHotkey(combo key_event.Combo, onHotkey func()) (key_event.Listener, error) {
	id, ch := b.subscribe()
	tracker := key_event.NewComboTracker(combo)
	l := newListener("HotkeyListener")
	go l.run(b, id, ch, func(e key_event.RawEvent) {
		switch e.Kind {
		case key_event.RawPressed:
			if tracker.Press(key_event.KeyFromCodes(e.Keycode, key_event.CharUndefined)) {
				onHotkey()
			}
		case key_event.RawReleased:
			tracker.Release(key_event.KeyFromCodes(e.Keycode, key_event.CharUndefined))
		}
	})
	return l, nil
}

// rawEvent maps gohook kinds onto key_event's. Keycode is the libuiohook
// virtual code, which is the same on every platform, unlike Rawcode.
func rawEvent(e hook.Event) (key_event.RawEvent, bool) {
	raw := key_event.RawEvent{Keycode: e.Keycode, Keychar: e.Keychar}
	switch e.Kind {
	case hook.KeyHold:
		raw.Kind = key_event.RawPressed
	case hook.KeyDown:
		raw.Kind = key_event.RawTyped
	case hook.KeyUp:
		raw.Kind = key_event.RawReleased
	default:
		return raw, false
	}
	return raw, true
}

func (b *Backend) subscribe() (int, <-chan hook.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		b.logger.Debug("start os keyboard hook")
		b.running = true
		go b.pump(hook.Start())
	}
	id := b.nextID
	b.nextID++
	ch := make(chan hook.Event, 1024)
	b.subs[id] = ch
	return id, ch
}

func (b *Backend) unsubscribe(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	last := len(b.subs) == 0 && b.running
	if last {
		b.running = false
	}
	b.mu.Unlock()

	if last {
		b.logger.Debug("end os keyboard hook")
		hook.End()
	}
}

func (b *Backend) pump(events chan hook.Event) {
	for e := range events {
		if _, ok := rawEvent(e); !ok {
			continue
		}
		b.mu.Lock()
		for id, ch := range b.subs {
			select {
			case ch <- e:
			default:
				b.logger.Warn("listener is behind, dropping key event", slog.Int("listener", id))
			}
		}
		b.mu.Unlock()
	}

	// The hook went away; whoever is still subscribed was not the one ending it.
	b.mu.Lock()
	b.running = false
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.mu.Unlock()
}

type listener struct {
	name     string
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error
}

func newListener(name string) *listener {
	return &listener{
		name: name,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (l *listener) Name() string {
	return l.name
}

func (l *listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *listener) Wait() error {
	<-l.done
	return l.err
}

func (l *listener) run(b *Backend, id int, events <-chan hook.Event, handle func(key_event.RawEvent)) {
	defer close(l.done)
	defer b.unsubscribe(id)
	for {
		select {
		case <-l.stop:
			return
		case e, ok := <-events:
			if !ok {
				l.err = key_event.ErrListenerClosed
				return
			}
			if raw, ok := rawEvent(e); ok {
				handle(raw)
			}
		}
	}
}
