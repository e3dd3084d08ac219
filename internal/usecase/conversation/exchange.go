package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"hibot/internal/domain"
	"hibot/internal/infra/tracer"
)

// exchange runs one accepted exchange: claim the lock, show the user message
// and a pending placeholder, call the gateway, then settle the placeholder
// and release the lock. Gateway failures are absorbed into the transcript.
// The only error returned is a violated transcript invariant.
func (c *Controller) exchange(ctx context.Context, source Source, display string, payload domain.Payload) (Result, error) {
	store := c.deps.Transcript
	if !store.TryBegin() {
		return c.reject(ctx, source, ReasonBusy), nil
	}

	start := c.now()
	id := newExchangeID(start)
	logger := c.deps.Logger.With("exchange_id", id, "source", string(source))

	ctx, span := tracer.StartSpan(ctx, "conversation.exchange",
		tracer.ExchangeID(id),
		tracer.ExchangeSource(string(source)),
	)
	defer span.End()

	store.Append(domain.UserMessage(display))
	if source == SourceText && c.deps.Input != nil {
		c.deps.Input.Clear()
	}
	store.Append(domain.PendingBotMessage())
	c.publish(ctx, domain.EventExchangeStarted, id, nil)
	logger.Debug("exchange started")

	reply, gwErr := c.call(ctx, payload)

	res := Result{ExchangeID: id, Outcome: OutcomeAnswered, Reply: reply}
	if gwErr != nil {
		res.Outcome = OutcomeFailed
		res.Reply = c.deps.ErrorMessage
		res.Failure = gwErr
	}

	resolveErr := store.ResolveLast(domain.BotMessage(res.Reply))
	store.End()

	span.SetAttributes(tracer.ExchangeOutcome(string(res.Outcome)))
	elapsed := c.now().Sub(start)
	code := ""
	if gwErr != nil {
		code = string(domain.ErrorCodeOf(gwErr))
	}
	if c.deps.Recorder != nil {
		c.deps.Recorder.ObserveExchange(string(source), string(res.Outcome), code, elapsed)
	}

	if resolveErr != nil {
		logger.Error("transcript invariant violated",
			"error", resolveErr,
			"code", string(domain.CodeInvariantViolation),
		)
		tracer.Finish(span, resolveErr)
		c.publish(ctx, domain.EventExchangeFailed, id, resolveErr)
		return res, domain.WrapOp("Controller.exchange", resolveErr)
	}

	if gwErr != nil {
		level := slog.LevelWarn
		if !domain.IsGatewayFailure(gwErr) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "exchange failed",
			"error", gwErr,
			"code", code,
			"duration", elapsed,
		)
		tracer.Finish(span, gwErr)
		c.publish(ctx, domain.EventExchangeFailed, id, gwErr)
		return res, nil
	}

	logger.Info("exchange completed", "duration", elapsed)
	tracer.Finish(span, nil)
	c.publish(ctx, domain.EventExchangeCompleted, id, nil)
	return res, nil
}

// call invokes the gateway under the configured per-exchange deadline. A
// gateway panic is returned as ErrGatewayPanic so the exchange still settles.
func (c *Controller) call(ctx context.Context, payload domain.Payload) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = domain.NewDomainError("Gateway.Exchange", domain.ErrGatewayPanic, fmt.Sprint(r))
		}
	}()
	if c.deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deps.Timeout)
		defer cancel()
	}
	return c.deps.Gateway.Exchange(ctx, payload)
}
