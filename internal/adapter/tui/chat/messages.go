// Package chat implements the Bubble Tea chat widget for hibot.
package chat

import (
	"hibot/internal/domain"
	"hibot/internal/usecase/conversation"
)

// TranscriptMsg carries a transcript snapshot pushed from the event bus.
type TranscriptMsg struct {
	Snapshot domain.Snapshot
}

// ExchangeDoneMsg signals that a Submit or Select call returned.
// Err is set only for programming errors; gateway failures arrive in Result.
type ExchangeDoneMsg struct {
	Result conversation.Result
	Err    error
}

// ClearInputMsg asks the model to empty the input field. The controller
// sends it once a free-text submission has been accepted.
type ClearInputMsg struct{}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
