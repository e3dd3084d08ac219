package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"hibot/internal/domain"
)

// TUIChannel hosts the chat model in a Bubble Tea program and bridges the
// event bus into its update loop.
type TUIChannel struct {
	logger   *slog.Logger
	bus      domain.EventBus
	title    string
	place    string
	pending  string
	endpoint string

	mu      sync.Mutex
	program *tea.Program
}

// ChannelOptions configures the presentation of the chat widget.
type ChannelOptions struct {
	Title        string
	Placeholder  string
	PendingLabel string
	Endpoint     string
}

// NewTUIChannel creates a TUI channel. Transcript changes published on bus
// are forwarded to the program as TranscriptMsg.
func NewTUIChannel(logger *slog.Logger, bus domain.EventBus, opts ChannelOptions) *TUIChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &TUIChannel{
		logger:   logger,
		bus:      bus,
		title:    opts.Title,
		place:    opts.Placeholder,
		pending:  opts.PendingLabel,
		endpoint: opts.Endpoint,
	}
}

// Start creates the Bubble Tea program and blocks until it exits or ctx is done.
func (c *TUIChannel) Start(ctx context.Context, conv Conversation, programOpts ...tea.ProgramOption) error {
	model := NewChatModel(ChatModelDeps{
		Conversation: conv,
		Logger:       c.logger,
		Title:        c.title,
		Placeholder:  c.place,
		PendingLabel: c.pending,
		Endpoint:     c.endpoint,
	})

	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, programOpts...)
	program := tea.NewProgram(model, opts...)

	c.mu.Lock()
	c.program = program
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.program = nil
		c.mu.Unlock()
	}()

	// Transcript events run while the store holds its lock, so the forwarder
	// only hands the snapshot over and never calls back into the controller.
	if c.bus != nil {
		forward := func(_ context.Context, event domain.Event) {
			c.send(TranscriptMsg{Snapshot: event.Snapshot})
		}
		for _, t := range []domain.EventType{
			domain.EventMessageAppended,
			domain.EventMessageResolved,
			domain.EventBusyChanged,
		} {
			unsub := c.bus.Subscribe(t, forward)
			defer unsub()
		}
	}

	c.logger.Debug("tui started")
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Stop signals the program to quit.
func (c *TUIChannel) Stop(_ context.Context) error {
	c.send(QuitMsg{})
	return nil
}

// Clear implements conversation.InputBuffer by asking the model to empty
// its input field.
func (c *TUIChannel) Clear() {
	c.send(ClearInputMsg{})
}

func (c *TUIChannel) send(msg tea.Msg) {
	c.mu.Lock()
	p := c.program
	c.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
