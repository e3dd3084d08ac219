package domain

import "context"

// Payload is the body of one backend exchange. The concrete type selects the
// endpoint: ChatPayload for free text, FAQPayload for a quick reply.
type Payload interface {
	payload()
}

// ChatPayload carries trimmed free text.
type ChatPayload struct {
	Message string `json:"message"`
}

// FAQPayload carries a catalog index instead of the question text.
type FAQPayload struct {
	Number int `json:"faq_number"`
}

func (ChatPayload) payload() {}
func (FAQPayload) payload()  {}

// Gateway performs a single request/response exchange with the backend.
// It returns the reply text verbatim, or an error wrapping ErrNetwork or
// ErrMalformedResponse.
type Gateway interface {
	Exchange(ctx context.Context, p Payload) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, p Payload) (string, error)

// Exchange implements Gateway.
func (f GatewayFunc) Exchange(ctx context.Context, p Payload) (string, error) {
	return f(ctx, p)
}
