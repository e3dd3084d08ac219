package domain

import (
	"context"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	// Transcript events carry the snapshot taken right after the change.
	EventMessageAppended EventType = "transcript.appended"
	EventMessageResolved EventType = "transcript.resolved"
	EventBusyChanged     EventType = "transcript.busy"

	// Exchange lifecycle events.
	EventExchangeStarted   EventType = "exchange.started"
	EventExchangeCompleted EventType = "exchange.completed"
	EventExchangeFailed    EventType = "exchange.failed"
	EventExchangeRejected  EventType = "exchange.rejected"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type       EventType
	Timestamp  time.Time
	ExchangeID string   // empty for events outside an exchange
	Snapshot   Snapshot // transcript state after the change
	Err        error    // set on EventExchangeFailed
}

// EventHandler processes an event.
type EventHandler func(ctx context.Context, event Event)

// EventBus is the publish/subscribe surface used by the store and its observers.
type EventBus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler EventHandler) func()
	SubscribeAll(handler EventHandler) func()
	Close()
}
