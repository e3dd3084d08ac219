// Package eventbus delivers transcript and exchange events to in-process
// observers such as the terminal UI, the CLI printer and tests.
package eventbus

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"hibot/internal/domain"
)

// anyEvent keys the wildcard subscriptions. It is not a valid event type.
const anyEvent domain.EventType = "*"

type subscription struct {
	id      uint64
	handler domain.EventHandler
}

// Bus is a synchronous, goroutine-safe event bus.
//
// Publish runs handlers on the caller's goroutine: typed subscribers first,
// then wildcard subscribers, each in registration order. Events published
// from one goroutine are observed in publish order, so a renderer never sees
// a stale transcript after a newer one.
type Bus struct {
	mu       sync.RWMutex
	subs     map[domain.EventType][]subscription
	lastID   atomic.Uint64
	inflight sync.WaitGroup
	closed   bool // guarded by mu so no Publish can Add after Close starts waiting
	logger   *slog.Logger
}

// New creates an event bus. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[domain.EventType][]subscription),
		logger: logger,
	}
}

// Publish delivers event and returns once every handler has run. A
// panicking handler is logged and does not stop the others. Publishing on
// a closed bus is a no-op.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	b.inflight.Add(1)
	b.mu.RUnlock()
	defer b.inflight.Done()

	for _, sub := range b.receivers(event.Type) {
		b.call(ctx, event, sub)
	}
}

// receivers snapshots the handlers for t so they run without the lock held.
func (b *Bus) receivers(t domain.EventType) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Concat(b.subs[t], b.subs[anyEvent])
}

func (b *Bus) call(ctx context.Context, event domain.Event, sub subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", string(event.Type),
				"exchange_id", event.ExchangeID,
				"subscription", sub.id,
				"panic", r,
			)
		}
	}()
	sub.handler(ctx, event)
}

// Subscribe registers handler for one event type and returns its
// unsubscribe func.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	return b.add(eventType, handler)
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	return b.add(anyEvent, handler)
}

func (b *Bus) add(key domain.EventType, handler domain.EventHandler) func() {
	id := b.lastID.Add(1)

	b.mu.Lock()
	b.subs[key] = append(b.subs[key], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(key, id) })
	}
}

func (b *Bus) remove(key domain.EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[key] = slices.DeleteFunc(b.subs[key], func(s subscription) bool { return s.id == id })
	if len(b.subs[key]) == 0 {
		delete(b.subs, key)
	}
}

// Close stops further publishing and waits for publishes already running on
// other goroutines. It is idempotent. Calling Close from inside a handler
// deadlocks.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	b.inflight.Wait()
}

var _ domain.EventBus = (*Bus)(nil)
