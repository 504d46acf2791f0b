package trash

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"

	idbus "github.com/expidus/lunar-remote/backend/internal/dbus"
	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

// SignalSource is the part of *dbus.Conn the listener needs.
type SignalSource interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Listener turns TrashChanged signals into events.TypeTrashChanged events.
// Consecutive signals carrying the same state are reported once.
type Listener struct {
	src    SignalSource
	ctx    context.Context
	cancel context.CancelFunc

	sigC    chan *dbus.Signal
	eventsC chan events.Event

	mu   sync.Mutex
	last *bool
}

func NewListener(ctx context.Context, src SignalSource) *Listener {
	ctx, cancel := context.WithCancel(ctx)
	return &Listener{
		src:     src,
		ctx:     ctx,
		cancel:  cancel,
		sigC:    make(chan *dbus.Signal, 10),
		eventsC: make(chan events.Event, 8),
	}
}

func matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(dbus.ObjectPath(TRASH_PATH)),
		dbus.WithMatchInterface(TRASH_INTERFACE),
		dbus.WithMatchMember(SIGNAL_TRASH_CHANGED),
	}
}

// Start subscribes to the signal and begins dispatching in the background.
func (l *Listener) Start() error {
	if err := l.src.AddMatchSignal(matchOptions()...); err != nil {
		return err
	}
	l.src.Signal(l.sigC)

	go l.listen()

	logger.Info("[trash] listener started (D-Bus signal-based)")
	return nil
}

// Events returns the channel events are delivered on. It is closed once
// the listener stops.
func (l *Listener) Events() <-chan events.Event {
	return l.eventsC
}

// Prime records a known state so that a first signal repeating it is not
// reported.
func (l *Listener) Prime(full bool) {
	l.mu.Lock()
	l.last = &full
	l.mu.Unlock()
}

// Close stops the listener and unsubscribes from the bus.
func (l *Listener) Close() {
	l.cancel()
	l.src.RemoveSignal(l.sigC)
	if err := l.src.RemoveMatchSignal(matchOptions()...); err != nil {
		logger.Debug("[trash] failed to remove match rule: %v", err)
	}
}

func (l *Listener) listen() {
	defer close(l.eventsC)
	for {
		select {
		case <-l.ctx.Done():
			return
		case sig, ok := <-l.sigC:
			if !ok {
				return
			}
			l.handleSignal(sig)
		}
	}
}

func (l *Listener) handleSignal(sig *dbus.Signal) {
	if sig != nil && sig.Path != dbus.ObjectPath(TRASH_PATH) {
		return
	}
	body, err := idbus.FilterSignal(sig, TRASH_INTERFACE+"."+SIGNAL_TRASH_CHANGED, 1)
	if err != nil {
		logger.Debug("[trash] ignoring signal: %v", err)
		return
	}
	full, ok := idbus.ExtractBool(body[0])
	if !ok {
		logger.Warn("[trash] TrashChanged carries %T, expected bool", body[0])
		return
	}

	l.mu.Lock()
	if l.last != nil && *l.last == full {
		l.mu.Unlock()
		return
	}
	l.last = &full
	l.mu.Unlock()

	logger.Debug("[trash] trash is now full=%v (sender %s)", full, sig.Sender)
	l.notify(events.Event{Type: events.TypeTrashChanged, Data: events.TrashState{Full: full}})
}

func (l *Listener) notify(e events.Event) {
	select {
	case l.eventsC <- e:
	default:
		logger.Warn("[trash] event channel full, dropping %s event", e.Type)
	}
}
