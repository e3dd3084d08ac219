package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, Message{Sender: RoleUser, Text: "안녕"}, UserMessage("안녕"))
	assert.Equal(t, Message{Sender: RoleBot, Text: "반갑습니다"}, BotMessage("반갑습니다"))

	p := PendingBotMessage()
	assert.True(t, p.IsPendingBot())
	assert.Empty(t, p.Text)
	assert.False(t, UserMessage("x").IsPendingBot())
}

func TestSnapshotConsistent(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"empty idle", Snapshot{}, true},
		{"empty busy", Snapshot{Busy: true}, false},
		{"pending tail busy", Snapshot{Messages: []Message{UserMessage("q"), PendingBotMessage()}, Busy: true}, true},
		{"pending tail idle", Snapshot{Messages: []Message{UserMessage("q"), PendingBotMessage()}}, false},
		{"settled tail idle", Snapshot{Messages: []Message{UserMessage("q"), BotMessage("a")}}, true},
		{"user tail busy", Snapshot{Messages: []Message{UserMessage("q")}, Busy: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.Consistent())
		})
	}
}

func TestSnapshotLast(t *testing.T) {
	_, ok := Snapshot{}.Last()
	assert.False(t, ok)

	s := Snapshot{Messages: []Message{UserMessage("a"), BotMessage("b")}}
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.Text)
	assert.Equal(t, 2, s.Len())
}

func TestCatalogAt(t *testing.T) {
	c := NewCatalog(DefaultQuickReplies)
	require.Equal(t, 4, c.Len())

	q, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, "회원가입은 어떻게 하나요?", q)

	for _, idx := range []int{-1, 4, 100} {
		_, err := c.At(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}
}

func TestCatalogIsolatedFromSource(t *testing.T) {
	src := []string{"a", "b"}
	c := NewCatalog(src)
	src[0] = "changed"

	q, _ := c.At(0)
	assert.Equal(t, "a", q)

	entries := c.Entries()
	entries[1] = "mutated"
	q, _ = c.At(1)
	assert.Equal(t, "b", q)
}

func TestGatewayFunc(t *testing.T) {
	var got Payload
	gw := GatewayFunc(func(_ context.Context, p Payload) (string, error) {
		got = p
		return "", errors.New("boom")
	})
	_, err := gw.Exchange(context.Background(), FAQPayload{Number: 2})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, FAQPayload{Number: 2}, got)
}
