// Package liveness tracks whether catalog endpoints are reachable.
//
// Each endpoint is Live or Dead. A live result is trusted for a short TTL. A
// dead endpoint is not probed again until an exponential backoff window,
// min(2^retries, maxWait) seconds, has passed since the last check. Callers
// that see a transport failure mid-session call Invalidate so the next
// check probes straight away.
package liveness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robert-malhotra/go-panoramax-client/internal/logging"
)

const (
	// DefaultMaxWait caps the backoff window.
	DefaultMaxWait = 600 * time.Second
	// DefaultTTL is how long a live result is trusted.
	DefaultTTL = 30 * time.Second
)

// Status is the last known reachability of an endpoint.
type Status int

const (
	StatusUnknown Status = iota
	StatusLive
	StatusDead
)

func (s Status) String() string {
	switch s {
	case StatusLive:
		return "live"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// State is a snapshot of one endpoint.
type State struct {
	Status     Status
	LastCheck  time.Time
	RetryCount int
	// Stale is set by Invalidate; the next check probes regardless of
	// TTL or backoff.
	Stale bool
}

// Prober performs one reachability check. Any error counts as unreachable.
type Prober interface {
	Probe(ctx context.Context, endpoint string) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, endpoint string) (bool, error)

func (f ProberFunc) Probe(ctx context.Context, endpoint string) (bool, error) {
	return f(ctx, endpoint)
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxWait caps the backoff window. Non-positive values are ignored.
func WithMaxWait(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.maxWait = d
		}
	}
}

// WithTTL sets how long a live result is trusted. Non-positive values are
// ignored.
func WithTTL(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller is safe for concurrent use. Checks of one endpoint are
// serialized; different endpoints never wait on each other.
type Controller struct {
	prober  Prober
	clock   Clock
	maxWait time.Duration
	ttl     time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	endpoints map[string]*endpointState
}

type endpointState struct {
	mu    sync.Mutex
	known bool
	state State
}

// New returns a Controller that probes through p.
func New(p Prober, opts ...Option) *Controller {
	c := &Controller{
		prober:    p,
		clock:     RealClock(),
		maxWait:   DefaultMaxWait,
		ttl:       DefaultTTL,
		logger:    logging.NewNop(),
		endpoints: make(map[string]*endpointState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, "liveness")
	return c
}

// IsLive reports whether endpoint is reachable, probing only when the
// cached state does not answer the question.
func (c *Controller) IsLive(ctx context.Context, endpoint string) bool {
	return c.Check(ctx, endpoint, false)
}

// Check is IsLive with an optional forced probe.
func (c *Controller) Check(ctx context.Context, endpoint string, force bool) bool {
	e := c.entry(endpoint)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := c.clock.Now()
	if !force && e.known && !e.state.Stale {
		elapsed := now.Sub(e.state.LastCheck)
		switch e.state.Status {
		case StatusLive:
			if elapsed < c.ttl {
				return true
			}
		case StatusDead:
			if elapsed < c.Backoff(e.state.RetryCount) {
				return false
			}
		}
	}

	live, err := c.prober.Probe(ctx, endpoint)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			// Canceled by the caller: the state stays as it was.
			return false
		}
		live = false
	}
	prev := e.state
	if live {
		e.state = State{Status: StatusLive, LastCheck: c.clock.Now()}
	} else {
		retries := 1
		if e.known {
			retries = prev.RetryCount + 1
		}
		e.state = State{Status: StatusDead, LastCheck: c.clock.Now(), RetryCount: retries}
	}

	if !e.known || prev.Status != e.state.Status {
		attrs := []any{slog.String(logging.FieldEndpoint, endpoint), slog.String("status", e.state.Status.String())}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		if live {
			c.logger.Info("endpoint reachable", attrs...)
		} else {
			c.logger.Warn("endpoint unreachable", append(attrs, slog.Duration("retry_in", c.Backoff(e.state.RetryCount)))...)
		}
	}
	e.known = true
	return live
}

// Invalidate marks the endpoint stale so the next check probes. Unknown
// endpoints are left alone; they probe on first use anyway.
func (c *Controller) Invalidate(endpoint string) {
	e := c.entry(endpoint)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.known {
		e.state.Stale = true
	}
}

// State returns the current snapshot for endpoint and whether it has ever
// been checked.
func (c *Controller) State(endpoint string) (State, bool) {
	e := c.entry(endpoint)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.known
}

// Backoff is the wait after retries consecutive failures:
// min(2^retries seconds, maxWait).
func (c *Controller) Backoff(retries int) time.Duration {
	if retries < 0 {
		retries = 0
	}
	if retries >= 32 {
		return c.maxWait
	}
	wait := time.Duration(int64(1)<<uint(retries)) * time.Second
	if wait > c.maxWait {
		return c.maxWait
	}
	return wait
}

func (c *Controller) entry(endpoint string) *endpointState {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.endpoints[endpoint]
	if !ok {
		e = &endpointState{}
		c.endpoints[endpoint] = e
	}
	return e
}
