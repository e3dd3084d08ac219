package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"hibot/internal/domain"
	"hibot/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreaker wraps a Gateway so that repeated backend failures open the
// circuit and later exchanges fail fast with ErrNetwork+ErrCircuitOpen
// instead of waiting out a timeout each time.
type CircuitBreaker struct {
	inner   domain.Gateway
	breaker *gobreaker.CircuitBreaker[string]
}

// NewCircuitBreaker wraps inner. Zero fields in cfg select the defaults.
func NewCircuitBreaker(inner domain.Gateway, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// A well-formed error reply still proves the backend is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || (!errors.Is(err, domain.ErrNetwork) && !errors.Is(err, domain.ErrHTTPStatus))
		},
	})

	return &CircuitBreaker{inner: inner, breaker: cb}
}

// Exchange implements domain.Gateway.
func (c *CircuitBreaker) Exchange(ctx context.Context, p domain.Payload) (string, error) {
	reply, err := c.breaker.Execute(func() (string, error) {
		return c.inner.Exchange(ctx, p)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", domain.NewDomainError(opExchange,
			fmt.Errorf("%w: %w", domain.ErrNetwork, domain.ErrCircuitOpen), err.Error())
	}
	return reply, err
}

var _ domain.Gateway = (*CircuitBreaker)(nil)
