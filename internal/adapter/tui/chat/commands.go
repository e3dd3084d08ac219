package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"hibot/internal/domain"
	"hibot/internal/usecase/conversation"
)

// Conversation is the controller surface the chat model drives.
type Conversation interface {
	Submit(ctx context.Context, raw string) (conversation.Result, error)
	Select(ctx context.Context, index int) (conversation.Result, error)
	Catalog() domain.Catalog
	Snapshot() domain.Snapshot
}

// submitCmd runs a free-text exchange off the update loop.
// Exchanges are not cancellable; the controller bounds each one with the
// backend timeout.
func submitCmd(conv Conversation, raw string) tea.Cmd {
	return func() tea.Msg {
		res, err := conv.Submit(context.Background(), raw)
		return ExchangeDoneMsg{Result: res, Err: err}
	}
}

// selectCmd runs a quick-reply exchange off the update loop.
func selectCmd(conv Conversation, index int) tea.Cmd {
	return func() tea.Msg {
		res, err := conv.Select(context.Background(), index)
		return ExchangeDoneMsg{Result: res, Err: err}
	}
}
