package main

import (
	"context"
	"log/slog"

	"hibot/internal/domain"
)

// logEvents traces every bus event at debug level. It does nothing unless
// the logger has debug enabled.
func logEvents(ctx context.Context, bus domain.EventBus, log *slog.Logger) func() {
	if !log.Enabled(ctx, slog.LevelDebug) {
		return func() {}
	}
	return bus.SubscribeAll(func(ctx context.Context, e domain.Event) {
		attrs := []any{
			"event", string(e.Type),
			"messages", e.Snapshot.Len(),
			"busy", e.Snapshot.Busy,
		}
		if e.ExchangeID != "" {
			attrs = append(attrs, "exchange_id", e.ExchangeID)
		}
		if e.Err != nil {
			attrs = append(attrs, "error", e.Err)
		}
		log.DebugContext(ctx, "bus event", attrs...)
	})
}
