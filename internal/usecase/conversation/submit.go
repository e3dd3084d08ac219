package conversation

import (
	"context"
	"strings"

	"hibot/internal/domain"
)

// Submit sends free text to the backend. The untrimmed text is recorded in
// the transcript and the trimmed text is sent. Blank text or a call made
// while another exchange is in flight is rejected without touching the
// transcript. Gateway failures are reported through Result, never as error.
func (c *Controller) Submit(ctx context.Context, raw string) (Result, error) {
	if c.deps.Transcript.Busy() {
		return c.reject(ctx, SourceText, ReasonBusy), nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return c.reject(ctx, SourceText, ReasonEmpty), nil
	}
	return c.exchange(ctx, SourceText, raw, domain.ChatPayload{Message: trimmed})
}
