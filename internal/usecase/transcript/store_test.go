package transcript

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hibot/internal/domain"
	"hibot/internal/usecase/eventbus"
)

func TestNewStoreIsEmptyAndIdle(t *testing.T) {
	s := New(nil)
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Len())
	assert.False(t, snap.Busy)
	assert.False(t, s.Busy())
	assert.True(t, snap.Consistent())
}

func TestTryBeginEnd(t *testing.T) {
	s := New(nil)

	require.True(t, s.TryBegin())
	assert.True(t, s.Busy())
	assert.False(t, s.TryBegin(), "second begin must be refused")

	s.End()
	assert.False(t, s.Busy())
	assert.True(t, s.TryBegin())
}

func TestAppendAndResolveLast(t *testing.T) {
	s := New(nil)
	s.Append(domain.UserMessage("안녕"))
	s.Append(domain.PendingBotMessage())

	require.NoError(t, s.ResolveLast(domain.Message{Sender: domain.RoleBot, Text: "반갑습니다", Pending: true}))

	want := []domain.Message{
		{Sender: domain.RoleUser, Text: "안녕"},
		{Sender: domain.RoleBot, Text: "반갑습니다"},
	}
	if diff := cmp.Diff(want, s.Snapshot().Messages); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveLastRequiresPendingTail(t *testing.T) {
	s := New(nil)

	err := s.ResolveLast(domain.BotMessage("x"))
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	s.Append(domain.UserMessage("q"))
	before := s.Snapshot()

	err = s.ResolveLast(domain.BotMessage("x"))
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Store.ResolveLast", de.Op)

	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("failed resolve changed the transcript (-before +after):\n%s", diff)
	}
}

func TestResolveLastOnlyOnce(t *testing.T) {
	s := New(nil)
	s.Append(domain.PendingBotMessage())
	require.NoError(t, s.ResolveLast(domain.BotMessage("a")))
	assert.ErrorIs(t, s.ResolveLast(domain.BotMessage("b")), domain.ErrInvariantViolation)
	last, _ := s.Snapshot().Last()
	assert.Equal(t, "a", last.Text)
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := New(nil)
	s.Append(domain.UserMessage("one"))
	snap := s.Snapshot()

	s.Append(domain.UserMessage("two"))
	assert.Equal(t, 1, snap.Len(), "earlier snapshot must not grow")
	assert.Equal(t, 2, s.Snapshot().Len())
}

func TestStorePublishesInOrder(t *testing.T) {
	bus := eventbus.New(slog.Default())
	defer bus.Close()

	var types []domain.EventType
	var snaps []domain.Snapshot
	bus.SubscribeAll(func(_ context.Context, e domain.Event) {
		types = append(types, e.Type)
		snaps = append(snaps, e.Snapshot)
	})

	s := New(bus)
	require.True(t, s.TryBegin())
	require.False(t, s.TryBegin())
	s.Append(domain.UserMessage("q"))
	s.Append(domain.PendingBotMessage())
	require.NoError(t, s.ResolveLast(domain.BotMessage("a")))
	s.End()

	// refused begin and idle End publish nothing
	s.End()

	assert.Equal(t, []domain.EventType{
		domain.EventBusyChanged,
		domain.EventMessageAppended,
		domain.EventMessageAppended,
		domain.EventMessageResolved,
		domain.EventBusyChanged,
	}, types)

	require.Len(t, snaps, 5)
	assert.True(t, snaps[2].Busy)
	assert.True(t, snaps[2].Consistent(), "placeholder snapshot must be consistent")
	assert.False(t, snaps[4].Busy)
	assert.True(t, snaps[4].Consistent())
}

func TestTranscriptNeverShrinks(t *testing.T) {
	bus := eventbus.New(slog.Default())
	defer bus.Close()

	var prev domain.Snapshot
	violations := 0
	bus.SubscribeAll(func(_ context.Context, e domain.Event) {
		cur := e.Snapshot
		if cur.Len() < prev.Len() {
			violations++
		}
		// every element but the tail of the previous snapshot is unchanged
		for i := 0; i < prev.Len()-1; i++ {
			if cur.Messages[i] != prev.Messages[i] {
				violations++
			}
		}
		prev = cur
	})

	s := New(bus)
	for i := 0; i < 5; i++ {
		require.True(t, s.TryBegin())
		s.Append(domain.UserMessage("q"))
		s.Append(domain.PendingBotMessage())
		require.NoError(t, s.ResolveLast(domain.BotMessage("a")))
		s.End()
	}
	assert.Zero(t, violations)
	assert.Equal(t, 10, s.Snapshot().Len())
}

func TestConcurrentTryBeginGrantsOne(t *testing.T) {
	s := New(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBegin() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, granted)
}
