// Package backend implements the FAQ bot HTTP gateway.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hibot/internal/domain"
	"hibot/internal/infra/config"
	"hibot/internal/infra/tracer"
)

// Client posts exchanges to the backend. It sends exactly one request per
// call and never retries.
type Client struct {
	http     *http.Client
	baseURL  string
	chatPath string
	faqPath  string
	limiter  *rate.Limiter // nil = unlimited
	logger   *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a backend client from cfg.
func NewClient(cfg config.BackendConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		http:     NewHTTPClient(cfg.ConnTimeout, cfg.Timeout),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		chatPath: cfg.ChatPath,
		faqPath:  cfg.FAQPath,
		logger:   logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGateway builds the gateway described by cfg: the HTTP client, wrapped in
// a circuit breaker when enabled. The returned func releases idle connections.
func NewGateway(cfg config.BackendConfig, logger *slog.Logger, opts ...Option) (domain.Gateway, func()) {
	client := NewClient(cfg, logger, opts...)
	var gw domain.Gateway = client
	if cfg.CircuitBreaker.Enabled {
		gw = NewCircuitBreaker(client, cfg.CircuitBreaker, client.logger)
	}
	return gw, client.Close
}

// Exchange implements domain.Gateway.
func (c *Client) Exchange(ctx context.Context, p domain.Payload) (string, error) {
	path, body, err := c.encode(p)
	if err != nil {
		return "", err
	}

	ctx, span := tracer.StartSpan(ctx, "backend.exchange", tracer.HTTPPath(path))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			werr := mapTransportError(ctx, fmt.Errorf("rate limit wait: %w", err))
			tracer.Finish(span, werr)
			return "", werr
		}
	}

	start := time.Now()
	status, respBody, err := doJSONRequest(ctx, c.http, c.baseURL+path, body)
	if err != nil {
		tracer.Finish(span, err)
		return "", err
	}
	span.SetAttributes(tracer.HTTPStatus(status))

	if status != http.StatusOK {
		herr := mapHTTPError(status, respBody)
		tracer.Finish(span, herr)
		return "", herr
	}

	reply, err := decodeReply(respBody)
	if err != nil {
		tracer.Finish(span, err)
		return "", err
	}

	c.logger.Debug("backend exchange completed",
		"path", path,
		"status", status,
		"duration", time.Since(start),
	)
	tracer.Finish(span, nil)
	return reply, nil
}

// encode selects the endpoint and JSON body for p.
func (c *Client) encode(p domain.Payload) (string, []byte, error) {
	var path string
	switch p.(type) {
	case domain.ChatPayload:
		path = c.chatPath
	case domain.FAQPayload:
		path = c.faqPath
	default:
		return "", nil, domain.NewDomainError(opExchange, domain.ErrNetwork, fmt.Sprintf("unsupported payload %T", p))
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", nil, domain.NewDomainError(opExchange, domain.ErrNetwork, "encode payload: "+err.Error())
	}
	return path, body, nil
}

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

var _ domain.Gateway = (*Client)(nil)
