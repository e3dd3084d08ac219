package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	// Gateway failures. None of these are shown to the user verbatim.
	ErrNetwork           = fmt.Errorf("network error")
	ErrTimeout           = fmt.Errorf("operation timed out")
	ErrCircuitOpen       = fmt.Errorf("backend circuit open")
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrHTTPStatus        = fmt.Errorf("unexpected http status")
	ErrGatewayPanic      = fmt.Errorf("gateway panicked")

	// Programming errors.
	ErrInvariantViolation = fmt.Errorf("transcript invariant violated")
	ErrIndexOutOfRange    = fmt.Errorf("quick reply index out of range")

	ErrConfigLoad = fmt.Errorf("failed to load configuration")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Backend.Exchange")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsGatewayFailure reports whether err is one of the failures a backend
// exchange is expected to end with. Anything else, a panic included, points
// at a broken gateway rather than a broken backend.
func IsGatewayFailure(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrMalformedResponse)
}

// ErrorCode is a machine-parseable error category for logs and metrics.
type ErrorCode string

const (
	CodeUnknown            ErrorCode = "UNKNOWN"
	CodeNetwork            ErrorCode = "NETWORK"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeCircuitOpen        ErrorCode = "CIRCUIT_OPEN"
	CodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"
	CodeHTTPStatus         ErrorCode = "HTTP_STATUS"
	CodeGatewayPanic       ErrorCode = "GATEWAY_PANIC"
	CodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	CodeIndexOutOfRange    ErrorCode = "INDEX_OUT_OF_RANGE"
	CodeConfigLoad         ErrorCode = "CONFIG_LOAD"
)

// codePrecedence lists sentinels from most to least specific. A timeout is
// wrapped as a network error, so ErrTimeout must be checked before ErrNetwork.
var codePrecedence = []struct {
	err  error
	code ErrorCode
}{
	{ErrTimeout, CodeTimeout},
	{ErrCircuitOpen, CodeCircuitOpen},
	{ErrHTTPStatus, CodeHTTPStatus},
	{ErrMalformedResponse, CodeMalformedResponse},
	{ErrNetwork, CodeNetwork},
	{ErrGatewayPanic, CodeGatewayPanic},
	{ErrInvariantViolation, CodeInvariantViolation},
	{ErrIndexOutOfRange, CodeIndexOutOfRange},
	{ErrConfigLoad, CodeConfigLoad},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It walks the error chain with errors.Is, so wrapped and joined errors resolve
// to their most specific sentinel. Returns CodeUnknown if nothing matches.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, p := range codePrecedence {
		if errors.Is(err, p.err) {
			return p.code
		}
	}
	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
