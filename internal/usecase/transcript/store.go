// Package transcript holds the single conversation transcript and the
// interaction lock that serialises exchanges against it.
package transcript

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hibot/internal/domain"
)

// Store is the authoritative transcript plus the busy flag.
//
// Mutations are serialised by a mutex and each one publishes the resulting
// snapshot while still holding it, so subscribers observe changes in the
// order they were made. Subscribers must not call mutating methods.
// Snapshot never blocks.
type Store struct {
	mu       sync.Mutex
	messages []domain.Message
	busy     bool

	current atomic.Pointer[domain.Snapshot]
	bus     domain.EventBus
}

// New creates an empty, idle store. bus may be nil.
func New(bus domain.EventBus) *Store {
	s := &Store{bus: bus}
	s.current.Store(&domain.Snapshot{Messages: []domain.Message{}})
	return s
}

// Snapshot returns the latest published view. The returned Messages slice is
// shared and must be treated as read-only.
func (s *Store) Snapshot() domain.Snapshot {
	return *s.current.Load()
}

// Busy reports whether an exchange is in flight.
func (s *Store) Busy() bool {
	return s.current.Load().Busy
}

// TryBegin sets busy if it is clear and reports whether it did.
// When already busy nothing changes and no event is published.
func (s *Store) TryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	s.commit(domain.EventBusyChanged)
	return true
}

// End clears busy. Calling End while idle is a no-op.
func (s *Store) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return
	}
	s.busy = false
	s.commit(domain.EventBusyChanged)
}

// Append adds msg to the end of the transcript.
func (s *Store) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.commit(domain.EventMessageAppended)
}

// ResolveLast rewrites the trailing pending message with final. The stored
// message is always settled. If the transcript is empty or its tail is not
// pending, nothing changes and ErrInvariantViolation is returned.
func (s *Store) ResolveLast(final domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.messages)
	if n == 0 {
		return domain.NewDomainError("Store.ResolveLast", domain.ErrInvariantViolation, "transcript is empty")
	}
	if !s.messages[n-1].Pending {
		return domain.NewDomainError("Store.ResolveLast", domain.ErrInvariantViolation,
			fmt.Sprintf("tail message %d from %s is not pending", n-1, s.messages[n-1].Sender))
	}

	final.Pending = false
	s.messages[n-1] = final
	s.commit(domain.EventMessageResolved)
	return nil
}

// commit publishes a fresh immutable snapshot. Caller must hold s.mu.
func (s *Store) commit(eventType domain.EventType) {
	msgs := make([]domain.Message, len(s.messages))
	copy(msgs, s.messages)
	snap := domain.Snapshot{Messages: msgs, Busy: s.busy}
	s.current.Store(&snap)

	if s.bus != nil {
		s.bus.Publish(context.Background(), domain.Event{
			Type:      eventType,
			Timestamp: time.Now(),
			Snapshot:  snap,
		})
	}
}
