package prtg

import (
	"net/http"
	"time"

	"github.com/s0up4200/prtgctl/historic"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	userAgent  string
	httpClient *http.Client
	gate       *historic.Gate
}

// WithTimeout sets the per-request timeout. It overrides the settings.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetry enables bounded retries with exponential backoff for transport
// and server errors. attempts counts retries after the first try.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(o *clientOptions) {
		if attempts >= 0 {
			o.maxRetries = attempts
		}
		if baseDelay > 0 {
			o.retryDelay = baseDelay
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient replaces the HTTP client. TLS settings and timeout from
// Settings are not applied to it.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithHistoricGate sets the gate that admits historic data requests.
func WithHistoricGate(g *historic.Gate) Option {
	return func(o *clientOptions) {
		o.gate = g
	}
}
