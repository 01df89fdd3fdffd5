package keylog

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"keyinvader/key_event"

	"golang.org/x/sync/errgroup"
)

// Publisher owns the current event and the subscribers notified on each change,
// and drives one capture run of a key_event.Backend. A Publisher tracks once;
// construct a new one to track again.
type Publisher struct {
	backend      key_event.Backend
	hotkey       key_event.Combo
	emergencyKey string
	logger       *slog.Logger

	// emitMu serialises set-and-notify passes coming from different listeners,
	// so every pass delivers the event that triggered it.
	emitMu sync.Mutex

	mu          sync.Mutex
	current     Event
	subscribers []Subscriber
	state       State
	reason      StopReason
	halt        chan struct{}
}

func NewPublisher(backend key_event.Backend, hotkey key_event.Combo, emergencyKey string, logger *slog.Logger) *Publisher {
	return &Publisher{
		backend:      backend,
		hotkey:       hotkey,
		emergencyKey: emergencyKey,
		logger:       logger,
		state:        StateIdle,
		halt:         make(chan struct{}),
	}
}

func (p *Publisher) Attach(s Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, s)
	p.logger.Debug("attached subscriber", slog.Int("subscribers", len(p.subscribers)))
}

// Detach removes the first registration of s.
func (p *Publisher) Detach(s Subscriber) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := slices.IndexFunc(p.subscribers, func(sub Subscriber) bool {
		return sameSubscriber(sub, s)
	})
	if i < 0 {
		p.logger.Warn("detach unknown subscriber", slog.String("type", fmt.Sprintf("%T", s)))
		return ErrNotAttached
	}
	p.subscribers = slices.Delete(p.subscribers, i, i+1)
	p.logger.Debug("detached subscriber", slog.Int("subscribers", len(p.subscribers)))
	return nil
}

// sameSubscriber is == that reports false instead of panicking when the
// dynamic type cannot be compared.
func sameSubscriber(a, b Subscriber) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || tb == nil {
		return ta == tb
	}
	if ta != tb || !ta.Comparable() {
		return false
	}
	// Structs holding interfaces pass Comparable and still panic on ==.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

func (p *Publisher) Current() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Publisher) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Notify calls Update on a snapshot of the subscribers, in attach order. A
// failing subscriber does not stop the pass: its error is logged, the rest are
// still notified, and all errors are returned joined.
func (p *Publisher) Notify() error {
	p.mu.Lock()
	subs := slices.Clone(p.subscribers)
	p.mu.Unlock()

	var errs []error
	for i, s := range subs {
		if err := p.update(s); err != nil {
			p.logger.Error("notify subscriber", slog.Int("index", i), slog.String("err", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) update(s Subscriber) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSubscriberPanic, r)
		}
	}()
	return s.Update(p)
}

// StartTracking runs the key and hotkey listeners and blocks until both have
// halted. Emergency key, hotkey, Interrupt and listener failure all end the run
// after a final notification; the returned reason tells which one did.
func (p *Publisher) StartTracking() (StopReason, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return ReasonNone, ErrNotIdle
	}
	p.state = StateTracking
	p.mu.Unlock()

	keys, err := p.backend.ListenKeys(p.onPress, p.onRelease)
	if err != nil {
		err = fmt.Errorf("start key listener: %w", err)
		p.fail("KeyListener", err)
		p.setState(StateStopped)
		return p.Reason(), err
	}
	hotkey, err := p.backend.ListenHotkey(p.hotkey, p.onHotkey)
	if err != nil {
		err = fmt.Errorf("start hotkey listener: %w", err)
		p.fail("HotkeyListener", err)
		keys.Stop()
		_ = keys.Wait()
		p.setState(StateStopped)
		return p.Reason(), err
	}
	p.logger.Info("tracking started",
		slog.String("backend", p.backend.Name()),
		slog.String("hotkey", p.hotkey.String()),
		slog.String("emergency", p.emergencyKey))

	go func() {
		<-p.halt
		keys.Stop()
		hotkey.Stop()
	}()

	var g errgroup.Group
	for _, l := range []key_event.Listener{keys, hotkey} {
		l := l
		g.Go(func() error {
			err := l.Wait()
			if err != nil {
				err = fmt.Errorf("%s: %w", l.Name(), err)
			}
			p.fail(l.Name(), err)
			return err
		})
	}
	err = g.Wait()

	// Wait out a final notification still running on a listener goroutine.
	p.emitMu.Lock()
	p.setState(StateStopped)
	p.emitMu.Unlock()

	reason := p.Reason()
	p.logger.Info("tracking stopped", slog.String("reason", string(reason)))
	return reason, err
}

// Interrupt ends a running capture from outside the backend, e.g. on SIGINT.
func (p *Publisher) Interrupt() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	if !p.beginStop(ReasonInterrupted, shutdownEvent(KindInterrupted)) {
		return
	}
	p.Notify()
	close(p.halt)
}

func (p *Publisher) Reason() StopReason {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

func (p *Publisher) onPress(k key_event.Key) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	if k.Is(p.emergencyKey) {
		if !p.beginStop(ReasonEmergency, shutdownEvent(KindEmergencyShutdown)) {
			return
		}
		p.Notify()
		close(p.halt)
		return
	}
	p.publish(PressEvent(k))
}

func (p *Publisher) onRelease(k key_event.Key) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.publish(ReleaseEvent(k))
}

func (p *Publisher) onHotkey() {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	if !p.beginStop(ReasonHotkey, shutdownEvent(KindHotkeyShutdown)) {
		return
	}
	close(p.halt)
	p.Notify()
}

// fail turns a listener that could not start, or ended on its own, into a
// backend failure. It is a no-op once the run is already stopping.
func (p *Publisher) fail(listener string, err error) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	if !p.beginStop(ReasonBackendFailure, shutdownEvent(KindBackendFailure)) {
		return
	}
	attrs := []any{slog.String("listener", listener)}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	p.logger.Error("listener ended unexpectedly", attrs...)
	p.Notify()
	close(p.halt)
}

// publish must be called with emitMu held.
func (p *Publisher) publish(e Event) {
	p.mu.Lock()
	if p.state != StateTracking {
		p.mu.Unlock()
		return
	}
	p.current = e
	p.mu.Unlock()

	p.Notify()
}

// beginStop moves Tracking to Stopping with the final event in place. Only the
// first caller wins.
func (p *Publisher) beginStop(reason StopReason, final Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateTracking {
		return false
	}
	p.state = StateStopping
	p.reason = reason
	p.current = final
	p.logger.Info("stopping tracking", slog.String("reason", string(reason)))
	return true
}

func (p *Publisher) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}
