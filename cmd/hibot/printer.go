package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"hibot/internal/adapter/tui/theme"
	"hibot/internal/domain"
)

// printer writes one line per transcript change: each appended message and
// each resolved placeholder.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	pending string
}

func newPrinter(w io.Writer, pendingLabel string) *printer {
	return &printer{w: w, pending: pendingLabel}
}

// attach subscribes to transcript events and returns the unsubscribe func.
func (p *printer) attach(bus domain.EventBus) func() {
	unsubAppend := bus.Subscribe(domain.EventMessageAppended, p.handle)
	unsubResolve := bus.Subscribe(domain.EventMessageResolved, p.handle)
	return func() {
		unsubAppend()
		unsubResolve()
	}
}

func (p *printer) handle(_ context.Context, event domain.Event) {
	last, ok := event.Snapshot.Last()
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.format(last))
}

func (p *printer) format(m domain.Message) string {
	switch {
	case m.Sender == domain.RoleUser:
		return theme.SymbolUser + ": " + m.Text
	case m.IsPendingBot():
		return theme.SymbolBot + ": " + p.pending
	default:
		return theme.SymbolBot + ": " + m.Text
	}
}
