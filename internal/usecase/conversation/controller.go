// Package conversation drives exchanges between the user and the backend
// against the shared transcript.
package conversation

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"hibot/internal/domain"
)

// DefaultErrorMessage is shown in place of the reply when an exchange fails.
const DefaultErrorMessage = "오류가 발생했습니다. 서버를 확인해주세요."

// Source identifies which input started an exchange.
type Source string

const (
	SourceText Source = "text"
	SourceFAQ  Source = "faq"
)

// Outcome is how a Submit or Select call ended.
type Outcome string

const (
	OutcomeRejected Outcome = "rejected"
	OutcomeAnswered Outcome = "answered"
	OutcomeFailed   Outcome = "failed"
)

// RejectReason explains an OutcomeRejected.
type RejectReason string

const (
	ReasonBusy  RejectReason = "busy"
	ReasonEmpty RejectReason = "empty"
)

// Result describes a finished Submit or Select call.
type Result struct {
	Outcome    Outcome
	Reason     RejectReason // set when Outcome is OutcomeRejected
	ExchangeID string       // empty when rejected
	Reply      string       // text the placeholder was resolved with
	Failure    error        // gateway error when Outcome is OutcomeFailed
}

// Transcript is the store surface the controller mutates.
type Transcript interface {
	TryBegin() bool
	End()
	Busy() bool
	Append(msg domain.Message)
	ResolveLast(final domain.Message) error
	Snapshot() domain.Snapshot
}

// InputBuffer is the presentation-side text field cleared once a free-text
// submission is accepted.
type InputBuffer interface {
	Clear()
}

// Recorder receives exchange measurements.
type Recorder interface {
	ObserveExchange(source, outcome, code string, elapsed time.Duration)
	ObserveRejection(source, reason string)
}

// Deps holds injected dependencies for the controller.
type Deps struct {
	Transcript   Transcript
	Gateway      domain.Gateway
	Catalog      domain.Catalog
	Logger       *slog.Logger
	ErrorMessage string          // defaults to DefaultErrorMessage
	Timeout      time.Duration   // per-exchange gateway deadline, 0 = none
	Input        InputBuffer     // optional, nil = nothing to clear
	Recorder     Recorder        // optional, nil = no metrics
	Bus          domain.EventBus // optional, nil = no exchange events
}

// Controller runs the submission and quick-reply protocols. At most one
// exchange is in flight at a time across both entry points.
type Controller struct {
	deps Deps
	now  func() time.Time
}

// New creates a controller with the given dependencies.
func New(deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.ErrorMessage == "" {
		deps.ErrorMessage = DefaultErrorMessage
	}
	return &Controller{deps: deps, now: time.Now}
}

// Catalog returns the quick-reply catalog Select indexes into.
func (c *Controller) Catalog() domain.Catalog {
	return c.deps.Catalog
}

// Snapshot returns the current transcript view.
func (c *Controller) Snapshot() domain.Snapshot {
	return c.deps.Transcript.Snapshot()
}

func newExchangeID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func (c *Controller) publish(ctx context.Context, eventType domain.EventType, exchangeID string, err error) {
	if c.deps.Bus == nil {
		return
	}
	c.deps.Bus.Publish(ctx, domain.Event{
		Type:       eventType,
		Timestamp:  c.now(),
		ExchangeID: exchangeID,
		Snapshot:   c.deps.Transcript.Snapshot(),
		Err:        err,
	})
}

func (c *Controller) reject(ctx context.Context, source Source, reason RejectReason) Result {
	c.deps.Logger.Debug("exchange rejected", "source", string(source), "reason", string(reason))
	if c.deps.Recorder != nil {
		c.deps.Recorder.ObserveRejection(string(source), string(reason))
	}
	c.publish(ctx, domain.EventExchangeRejected, "", nil)
	return Result{Outcome: OutcomeRejected, Reason: reason}
}
