package conversation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hibot/internal/domain"
	"hibot/internal/usecase/eventbus"
	"hibot/internal/usecase/transcript"
)

// fakeGateway records payloads and answers from a scripted function.
type fakeGateway struct {
	mu       sync.Mutex
	payloads []domain.Payload
	reply    func(ctx context.Context, p domain.Payload) (string, error)
}

func (g *fakeGateway) Exchange(ctx context.Context, p domain.Payload) (string, error) {
	g.mu.Lock()
	g.payloads = append(g.payloads, p)
	g.mu.Unlock()
	return g.reply(ctx, p)
}

func (g *fakeGateway) calls() []domain.Payload {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.Payload, len(g.payloads))
	copy(out, g.payloads)
	return out
}

func replyWith(text string) *fakeGateway {
	return &fakeGateway{reply: func(context.Context, domain.Payload) (string, error) { return text, nil }}
}

func failWith(err error) *fakeGateway {
	return &fakeGateway{reply: func(context.Context, domain.Payload) (string, error) { return "", err }}
}

type fakeInput struct{ cleared int }

func (f *fakeInput) Clear() { f.cleared++ }

type fakeRecorder struct {
	mu         sync.Mutex
	exchanges  []string
	rejections []string
}

func (r *fakeRecorder) ObserveExchange(source, outcome, code string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, fmt.Sprintf("%s/%s/%s", source, outcome, code))
}

func (r *fakeRecorder) ObserveRejection(source, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections = append(r.rejections, source+"/"+reason)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(gw domain.Gateway, mutate ...func(*Deps)) (*Controller, *transcript.Store) {
	store := transcript.New(nil)
	deps := Deps{
		Transcript: store,
		Gateway:    gw,
		Catalog:    domain.NewCatalog(domain.DefaultQuickReplies),
		Logger:     discardLogger(),
	}
	for _, m := range mutate {
		m(&deps)
	}
	return New(deps), store
}

func TestSubmitRoundTrip(t *testing.T) {
	gw := replyWith("반갑습니다")
	input := &fakeInput{}
	c, store := newController(gw, func(d *Deps) { d.Input = input })

	res, err := c.Submit(context.Background(), "안녕")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, res.Outcome)
	assert.Equal(t, "반갑습니다", res.Reply)
	assert.Len(t, res.ExchangeID, 26)

	want := domain.Snapshot{
		Messages: []domain.Message{
			{Sender: domain.RoleUser, Text: "안녕"},
			{Sender: domain.RoleBot, Text: "반갑습니다"},
		},
	}
	if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []domain.Payload{domain.ChatPayload{Message: "안녕"}}, gw.calls())
	assert.Equal(t, 1, input.cleared)
}

func TestSubmitTrimsPayloadButKeepsDisplayText(t *testing.T) {
	gw := replyWith("ok")
	c, store := newController(gw)

	_, err := c.Submit(context.Background(), "  hello \n")
	require.NoError(t, err)

	assert.Equal(t, []domain.Payload{domain.ChatPayload{Message: "hello"}}, gw.calls())
	assert.Equal(t, "  hello \n", store.Snapshot().Messages[0].Text)
}

func TestSubmitEmptyIsIgnored(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			gw := replyWith("unused")
			rec := &fakeRecorder{}
			input := &fakeInput{}
			c, store := newController(gw, func(d *Deps) {
				d.Recorder = rec
				d.Input = input
			})
			before := store.Snapshot()

			res, err := c.Submit(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, OutcomeRejected, res.Outcome)
			assert.Equal(t, ReasonEmpty, res.Reason)
			assert.Empty(t, gw.calls())
			assert.Zero(t, input.cleared)
			assert.Equal(t, []string{"text/empty"}, rec.rejections)
			if diff := cmp.Diff(before, store.Snapshot()); diff != "" {
				t.Errorf("rejected submit changed the snapshot (-before +after):\n%s", diff)
			}
		})
	}
}

func TestSelectSendsIndexAndShowsQuestion(t *testing.T) {
	gw := replyWith("가입 페이지에서 가능합니다.")
	input := &fakeInput{}
	c, store := newController(gw, func(d *Deps) { d.Input = input })

	res, err := c.Select(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, res.Outcome)

	assert.Equal(t, []domain.Payload{domain.FAQPayload{Number: 0}}, gw.calls())
	snap := store.Snapshot()
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, domain.UserMessage("회원가입은 어떻게 하나요?"), snap.Messages[0])
	assert.Equal(t, domain.BotMessage("가입 페이지에서 가능합니다."), snap.Messages[1])
	assert.Zero(t, input.cleared, "quick replies leave the input buffer alone")
}

func TestSelectOutOfRange(t *testing.T) {
	gw := replyWith("unused")
	c, store := newController(gw)

	for _, idx := range []int{-1, 4} {
		_, err := c.Select(context.Background(), idx)
		require.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	}
	assert.Empty(t, gw.calls())
	assert.Equal(t, 0, store.Snapshot().Len())
	assert.False(t, store.Busy())
}

func TestGatewayFailureShowsFixedMessage(t *testing.T) {
	failures := []error{
		domain.NewDomainError("Backend.Exchange", domain.ErrNetwork, "connection refused"),
		domain.NewDomainError("Backend.Exchange", fmt.Errorf("%w: %w", domain.ErrNetwork, domain.ErrTimeout), "deadline"),
		domain.NewDomainError("Backend.Exchange", domain.ErrMalformedResponse, "missing response"),
	}
	for _, gwErr := range failures {
		t.Run(string(domain.ErrorCodeOf(gwErr)), func(t *testing.T) {
			rec := &fakeRecorder{}
			c, store := newController(failWith(gwErr), func(d *Deps) { d.Recorder = rec })

			res, err := c.Submit(context.Background(), "안녕")
			require.NoError(t, err)
			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.ErrorIs(t, res.Failure, gwErr)
			assert.Equal(t, DefaultErrorMessage, res.Reply)

			snap := store.Snapshot()
			assert.False(t, snap.Busy)
			last, _ := snap.Last()
			assert.Equal(t, domain.BotMessage(DefaultErrorMessage), last)
			assert.Equal(t, []string{"text/failed/" + string(domain.ErrorCodeOf(gwErr))}, rec.exchanges)
		})
	}
}

func TestCustomErrorMessage(t *testing.T) {
	c, store := newController(failWith(domain.ErrNetwork), func(d *Deps) { d.ErrorMessage = "server down" })

	_, err := c.Select(context.Background(), 1)
	require.NoError(t, err)
	last, _ := store.Snapshot().Last()
	assert.Equal(t, "server down", last.Text)
}

func TestEmptyReplyIsAnswer(t *testing.T) {
	c, store := newController(replyWith(""))

	res, err := c.Submit(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, res.Outcome)
	last, _ := store.Snapshot().Last()
	assert.Equal(t, domain.BotMessage(""), last)
}

func TestTimeoutAppliesToGateway(t *testing.T) {
	gw := &fakeGateway{reply: func(ctx context.Context, _ domain.Payload) (string, error) {
		<-ctx.Done()
		return "", domain.NewDomainError("Backend.Exchange",
			fmt.Errorf("%w: %w", domain.ErrNetwork, domain.ErrTimeout), ctx.Err().Error())
	}}
	c, store := newController(gw, func(d *Deps) { d.Timeout = 20 * time.Millisecond })

	res, err := c.Submit(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Failure, domain.ErrTimeout)
	assert.False(t, store.Busy())
}

// blockingGateway parks every call until release is closed and reports the
// transcript state it saw while suspended.
type blockingGateway struct {
	entered chan struct{}
	release chan struct{}
	store   *transcript.Store
	seen    chan domain.Snapshot
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
		seen:    make(chan domain.Snapshot, 8),
	}
}

func (g *blockingGateway) Exchange(ctx context.Context, _ domain.Payload) (string, error) {
	g.seen <- g.store.Snapshot()
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestBusyRejectsSecondSubmission(t *testing.T) {
	gw := newBlockingGateway()
	rec := &fakeRecorder{}
	c, store := newController(gw, func(d *Deps) { d.Recorder = rec })
	gw.store = store

	done := make(chan Result, 1)
	go func() {
		res, _ := c.Submit(context.Background(), "first")
		done <- res
	}()
	<-gw.entered

	during := store.Snapshot()
	assert.True(t, during.Busy)
	assert.True(t, during.Consistent(), "busy must agree with a pending tail while suspended")

	res, err := c.Submit(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, ReasonBusy, res.Reason)

	res, err = c.Select(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)

	if diff := cmp.Diff(during, store.Snapshot()); diff != "" {
		t.Errorf("rejected calls changed the snapshot (-before +after):\n%s", diff)
	}

	close(gw.release)
	first := <-done
	assert.Equal(t, OutcomeAnswered, first.Outcome)

	after := store.Snapshot()
	assert.False(t, after.Busy)
	assert.True(t, after.Consistent())
	assert.Equal(t, 2, after.Len())
	assert.ElementsMatch(t, []string{"text/busy", "faq/busy"}, rec.rejections)
}

func TestConcurrentSelectProducesOnePair(t *testing.T) {
	gw := newBlockingGateway()
	c, store := newController(gw)
	gw.store = store

	const callers = 10
	results := make(chan Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Select(context.Background(), i%4)
			assert.NoError(t, err)
			results <- res
		}(i)
	}

	<-gw.entered
	// Every caller but the one parked in the gateway is rejected.
	for i := 0; i < callers-1; i++ {
		res := <-results
		assert.Equal(t, OutcomeRejected, res.Outcome)
	}
	close(gw.release)
	wg.Wait()
	close(results)

	res := <-results
	assert.Equal(t, OutcomeAnswered, res.Outcome)

	snap := store.Snapshot()
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, domain.RoleUser, snap.Messages[0].Sender)
	assert.Equal(t, domain.BotMessage("done"), snap.Messages[1])
	assert.False(t, snap.Busy)
}

func TestSequentialExchangesGrowTranscript(t *testing.T) {
	c, store := newController(replyWith("a"))

	for i := 0; i < 3; i++ {
		_, err := c.Submit(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
		_, err = c.Select(context.Background(), i)
		require.NoError(t, err)
	}
	snap := store.Snapshot()
	assert.Equal(t, 12, snap.Len())
	assert.True(t, snap.Consistent())
}

func TestObserversSeeConsistentQuiescentStates(t *testing.T) {
	bus := eventbus.New(discardLogger())
	defer bus.Close()

	store := transcript.New(bus)
	var mu sync.Mutex
	var events []domain.Event
	bus.SubscribeAll(func(_ context.Context, e domain.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	c := New(Deps{
		Transcript: store,
		Gateway:    replyWith("반갑습니다"),
		Catalog:    domain.NewCatalog(domain.DefaultQuickReplies),
		Logger:     discardLogger(),
		Bus:        bus,
	})

	res, err := c.Submit(context.Background(), "안녕")
	require.NoError(t, err)

	var types []domain.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []domain.EventType{
		domain.EventBusyChanged,
		domain.EventMessageAppended,
		domain.EventMessageAppended,
		domain.EventExchangeStarted,
		domain.EventMessageResolved,
		domain.EventBusyChanged,
		domain.EventExchangeCompleted,
	}, types)

	started := events[3]
	assert.Equal(t, res.ExchangeID, started.ExchangeID)
	assert.True(t, started.Snapshot.Busy)
	assert.True(t, started.Snapshot.Consistent())
	assert.True(t, events[len(events)-1].Snapshot.Consistent())
}

// brokenTranscript refuses every resolve to exercise the invariant path.
type brokenTranscript struct {
	*transcript.Store
}

func (brokenTranscript) ResolveLast(domain.Message) error {
	return domain.NewDomainError("Store.ResolveLast", domain.ErrInvariantViolation, "forced")
}

func TestInvariantViolationReleasesLock(t *testing.T) {
	store := brokenTranscript{transcript.New(nil)}
	c := New(Deps{
		Transcript: store,
		Gateway:    replyWith("x"),
		Catalog:    domain.NewCatalog(domain.DefaultQuickReplies),
		Logger:     discardLogger(),
	})

	_, err := c.Submit(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
	assert.False(t, store.Busy(), "lock must be released after a violation")
}

func TestGatewayPanicSettlesAsFailure(t *testing.T) {
	gw := &fakeGateway{reply: func(context.Context, domain.Payload) (string, error) {
		panic("boom")
	}}
	var logs bytes.Buffer
	rec := &fakeRecorder{}
	c, store := newController(gw, func(d *Deps) {
		d.Logger = slog.New(slog.NewTextHandler(&logs, nil))
		d.Recorder = rec
	})

	var (
		res Result
		err error
	)
	require.NotPanics(t, func() { res, err = c.Submit(context.Background(), "q") })
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, DefaultErrorMessage, res.Reply)
	assert.ErrorIs(t, res.Failure, domain.ErrGatewayPanic)
	assert.Contains(t, res.Failure.Error(), "boom")

	snap := store.Snapshot()
	assert.False(t, snap.Busy)
	last, _ := snap.Last()
	assert.Equal(t, domain.BotMessage(DefaultErrorMessage), last)
	assert.Equal(t, []string{"text/failed/GATEWAY_PANIC"}, rec.exchanges)
	assert.Contains(t, logs.String(), "level=ERROR")

	res, err = c.Submit(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome, "the lock was released")
}

func TestBackendFailureLogsWarn(t *testing.T) {
	var logs bytes.Buffer
	c, _ := newController(failWith(domain.NewDomainError("Backend.Exchange", domain.ErrNetwork, "refused")), func(d *Deps) {
		d.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	})

	_, err := c.Submit(context.Background(), "q")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.NotContains(t, logs.String(), "level=ERROR")
}
