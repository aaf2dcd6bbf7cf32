package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher. Delivery is asynchronous: Publish
// returns before subscribers run.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish sends ev to every subscriber of its concrete type. A nil Bus drops it.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	switch e := ev.(type) {
	case BackendStartedEvent:
		event.Publish(b.dispatcher, e)
	case BackendSpawnFailedEvent:
		event.Publish(b.dispatcher, e)
	case BackendSkippedEvent:
		event.Publish(b.dispatcher, e)
	case BackendStoppedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type named by its parameter, e.g.
// bus.Subscribe(func(e BackendStartedEvent) { ... }). It returns the
// unsubscribe function; unknown handler types get a no-op.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(BackendStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BackendSpawnFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BackendSkippedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BackendStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

// SubscribeToChannel forwards events of type T to ch, dropping them when ch is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
