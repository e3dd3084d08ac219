package conversation

import (
	"context"

	"hibot/internal/domain"
)

// Select asks the catalog question at index. The question text is shown as
// the user message and only the index is sent to the backend.
// An index outside the catalog returns ErrIndexOutOfRange.
func (c *Controller) Select(ctx context.Context, index int) (Result, error) {
	question, err := c.deps.Catalog.At(index)
	if err != nil {
		return Result{}, domain.WrapOp("Controller.Select", err)
	}
	if c.deps.Transcript.Busy() {
		return c.reject(ctx, SourceFAQ, ReasonBusy), nil
	}
	return c.exchange(ctx, SourceFAQ, question, domain.FAQPayload{Number: index})
}
