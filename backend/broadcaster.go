package backend

import (
	"context"
	"sync"

	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

type subscriber struct {
	filter func(events.Event) bool
}

// Broadcaster fans out events from a single upstream channel to all subscribers.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan events.Event]subscriber
}

// NewBroadcaster starts a broadcaster that reads from upstream and fans out to
// all subscribers. It stops when ctx is cancelled or upstream is closed, and
// closes every remaining subscriber channel.
func NewBroadcaster(ctx context.Context, upstream <-chan events.Event) *Broadcaster {
	b := &Broadcaster{
		clients: make(map[chan events.Event]subscriber),
	}
	go b.run(ctx, upstream)
	return b
}

// Subscribe registers a subscriber receiving every event.
func (b *Broadcaster) Subscribe() chan events.Event {
	return b.SubscribeFunc(nil)
}

// SubscribeFunc registers a subscriber receiving the events filter accepts
// (all of them when filter is nil). The channel is buffered (32).
func (b *Broadcaster) SubscribeFunc(filter func(events.Event) bool) chan events.Event {
	ch := make(chan events.Event, 32)
	b.mu.Lock()
	if b.clients == nil {
		close(ch)
	} else {
		b.clients[ch] = subscriber{filter: filter}
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; !ok {
		return
	}
	delete(b.clients, ch)
	close(ch)
}

func (b *Broadcaster) broadcast(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, sub := range b.clients {
		if sub.filter != nil && !sub.filter(e) {
			continue
		}
		select {
		case ch <- e:
		default:
			logger.Warn("[events] subscriber channel full, dropping %s event", e.Type)
		}
	}
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		close(ch)
	}
	b.clients = nil
}

func (b *Broadcaster) run(ctx context.Context, upstream <-chan events.Event) {
	defer b.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-upstream:
			if !ok {
				return
			}
			b.broadcast(e)
		}
	}
}
