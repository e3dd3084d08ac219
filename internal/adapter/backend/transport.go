package backend

import (
	"net"
	"net/http"
	"time"
)

// Default connection settings. A chat widget talks to a single host with at
// most one request in flight, so the pool stays small.
const (
	defaultConnTimeout     = 5 * time.Second
	defaultRespTimeout     = 30 * time.Second
	defaultMaxIdleConns    = 2
	defaultIdleConnTimeout = 90 * time.Second
)

// NewTransport creates an http.Transport with connect and response-header
// timeouts. Zero values select the defaults.
func NewTransport(connTimeout, respTimeout time.Duration) *http.Transport {
	if connTimeout <= 0 {
		connTimeout = defaultConnTimeout
	}
	if respTimeout <= 0 {
		respTimeout = defaultRespTimeout
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   connTimeout,
		ResponseHeaderTimeout: respTimeout,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConns,
		IdleConnTimeout:       defaultIdleConnTimeout,
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient wraps NewTransport. The overall deadline is left to the
// caller's context so one setting governs the whole exchange.
func NewHTTPClient(connTimeout, respTimeout time.Duration) *http.Client {
	return &http.Client{Transport: NewTransport(connTimeout, respTimeout)}
}
