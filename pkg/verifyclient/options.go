package verifyclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mfakit/pkg/signature"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for requests.
// Useful for custom transports, proxies, or testing.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-call timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithSignatureScheme selects how device signatures are computed.
func WithSignatureScheme(s signature.Scheme) Option {
	return func(c *Client) {
		c.scheme = s
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the time source for signature timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
