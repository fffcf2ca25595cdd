// Package client talks to Panoramax catalog endpoints: liveness probes,
// multi-page collection fetches and image downloads.
//
// One Client serves any number of endpoints. Each endpoint's reachability is
// tracked by a liveness.Controller so a dead server is not hammered while it
// is down.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/robert-malhotra/go-panoramax-client/internal/logging"
	"github.com/robert-malhotra/go-panoramax-client/pkg/codec"
	"github.com/robert-malhotra/go-panoramax-client/pkg/decode"
	"github.com/robert-malhotra/go-panoramax-client/pkg/liveness"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxImageBytes = 64 << 20
	DefaultUserAgent     = "go-panoramax-client"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Middleware manipulates an outgoing *http.Request before it is executed.
type Middleware func(context.Context, *http.Request) error

// ClientOption configures the Client.
type ClientOption func(*Client)

// Client is safe for concurrent use.
type Client struct {
	httpClient    Doer
	timeout       time.Duration
	middleware    []Middleware
	userAgent     string
	maxImageBytes int64
	logger        *slog.Logger
	registry      *decode.Registry
	s3            *s3Source

	livenessOpts []liveness.Option
	liveness     *liveness.Controller
}

// -----------------------------------------------------------------------------
// Client options
// -----------------------------------------------------------------------------

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(d Doer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithTimeout bounds each request, body read included. Zero disables the
// bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMiddleware registers one or more request-middleware functions.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) { c.middleware = append(c.middleware, mw...) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxImageBytes caps the size of downloaded images.
func WithMaxImageBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxImageBytes = n
		}
	}
}

// WithLogger sets the logger for the client and its liveness controller.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
			c.livenessOpts = append(c.livenessOpts, liveness.WithLogger(logger))
		}
	}
}

// WithMaxWait caps the liveness backoff window.
func WithMaxWait(d time.Duration) ClientOption {
	return func(c *Client) { c.livenessOpts = append(c.livenessOpts, liveness.WithMaxWait(d)) }
}

// WithClock replaces the liveness time source.
func WithClock(clock liveness.Clock) ClientOption {
	return func(c *Client) { c.livenessOpts = append(c.livenessOpts, liveness.WithClock(clock)) }
}

// WithLivenessTTL sets how long a successful probe is trusted.
func WithLivenessTTL(d time.Duration) ClientOption {
	return func(c *Client) { c.livenessOpts = append(c.livenessOpts, liveness.WithTTL(d)) }
}

// WithRegistry replaces the decoder registry.
func WithRegistry(r *decode.Registry) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.registry = r
		}
	}
}

// NewClient creates a new Panoramax client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:    http.DefaultClient,
		timeout:       DefaultTimeout,
		userAgent:     DefaultUserAgent,
		maxImageBytes: DefaultMaxImageBytes,
		logger:        logging.NewNop(),
		registry:      codec.Registry(),
		s3:            newS3Source(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = logging.WithComponent(c.logger, "client")
	c.liveness = liveness.New(c, c.livenessOpts...)
	return c
}

// Liveness returns the controller tracking endpoint reachability.
func (c *Client) Liveness() *liveness.Controller { return c.liveness }

// IsLive reports whether endpoint is reachable.
func (c *Client) IsLive(ctx context.Context, endpoint string) bool {
	return c.liveness.IsLive(ctx, endpoint)
}

// CheckLive is IsLive with an optional forced probe.
func (c *Client) CheckLive(ctx context.Context, endpoint string, force bool) bool {
	return c.liveness.Check(ctx, endpoint, force)
}

// Invalidate makes the next liveness check of endpoint probe.
func (c *Client) Invalidate(endpoint string) {
	c.liveness.Invalidate(endpoint)
}

// Probe issues HEAD {endpoint}/live. Only a 200 means live.
func (c *Client) Probe(ctx context.Context, endpoint string) (bool, error) {
	base, err := parseEndpoint(endpoint)
	if err != nil {
		return false, err
	}
	u := base.JoinPath("live")

	resp, err := c.doRequest(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return false, &StatusError{Method: http.MethodHead, URL: u.String(), StatusCode: resp.StatusCode}
	}
	return true, nil
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: must be an absolute URL", endpoint)
	}
	return u, nil
}

// -----------------------------------------------------------------------------
// doRequest: one place to build a request, run middleware, and execute it.
// -----------------------------------------------------------------------------

// doRequest applies the per-request timeout, the User-Agent and every
// middleware, then executes the request. Network failures come back wrapped
// in ErrTransport unless the caller's own context ended first. The timeout
// stays armed until the response body is closed.
func (c *Client) doRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Response, error) {
	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("error creating request for %s: %w", rawURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	for _, mw := range c.middleware {
		if err := mw(reqCtx, req); err != nil {
			cancel()
			return nil, fmt.Errorf("error applying middleware for %s: %w", rawURL, err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, rawURL, err)
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
