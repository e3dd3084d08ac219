package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"hibot/internal/domain"
)

// maxResponseBody is the maximum response body size read from the backend.
const maxResponseBody = 1 << 20 // 1 MB

const opExchange = "Backend.Exchange"

// doJSONRequest performs a JSON POST request and returns the status code and
// response body. Transport failures are mapped to ErrNetwork.
func doJSONRequest(ctx context.Context, client *http.Client, url string, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, domain.NewDomainError(opExchange, domain.ErrNetwork, "create request: "+err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return 0, nil, mapTransportError(ctx, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return httpResp.StatusCode, nil, mapTransportError(ctx, fmt.Errorf("read response: %w", err))
	}
	return httpResp.StatusCode, respBody, nil
}

// mapTransportError classifies a send/receive failure. Deadlines become
// ErrNetwork+ErrTimeout so logs can tell a slow backend from a dead one.
func mapTransportError(ctx context.Context, err error) error {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	if timedOut {
		return domain.NewDomainError(opExchange, fmt.Errorf("%w: %w", domain.ErrNetwork, domain.ErrTimeout), err.Error())
	}
	return domain.NewDomainError(opExchange, domain.ErrNetwork, err.Error())
}

// mapHTTPError maps a non-200 status to ErrMalformedResponse+ErrHTTPStatus.
// A short prefix of the body is kept in the detail for diagnosis.
func mapHTTPError(statusCode int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256] + "..."
	}
	return domain.NewDomainError(opExchange,
		fmt.Errorf("%w: %w", domain.ErrMalformedResponse, domain.ErrHTTPStatus),
		fmt.Sprintf("status %d: %s", statusCode, snippet))
}

// decodeReply extracts the string "response" field from a reply body.
func decodeReply(body []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", domain.NewDomainError(opExchange, domain.ErrMalformedResponse, "body is not a JSON object: "+err.Error())
	}
	raw, ok := envelope["response"]
	if !ok {
		return "", domain.NewDomainError(opExchange, domain.ErrMalformedResponse, `missing "response" field`)
	}
	var reply string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", domain.NewDomainError(opExchange, domain.ErrMalformedResponse, `"response" is null`)
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", domain.NewDomainError(opExchange, domain.ErrMalformedResponse, `"response" is not a string`)
	}
	return reply, nil
}
