package liveness

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type countingProber struct {
	calls atomic.Int32
	live  atomic.Bool
	delay time.Duration
}

func (p *countingProber) Probe(ctx context.Context, _ string) (bool, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if !p.live.Load() {
		return false, errors.New("connection refused")
	}
	return true, nil
}

const endpoint = "https://api.panoramax.xyz/api"

func TestLiveCachedForTTL(t *testing.T) {
	clock := newFakeClock()
	p := &countingProber{}
	p.live.Store(true)
	c := New(p, WithClock(clock))
	ctx := context.Background()

	assert.True(t, c.IsLive(ctx, endpoint))
	assert.True(t, c.IsLive(ctx, endpoint))
	assert.Equal(t, int32(1), p.calls.Load())

	clock.Advance(DefaultTTL)
	assert.True(t, c.IsLive(ctx, endpoint))
	assert.Equal(t, int32(2), p.calls.Load())

	state, ok := c.State(endpoint)
	require.True(t, ok)
	assert.Equal(t, StatusLive, state.Status)
	assert.Zero(t, state.RetryCount)
}

func TestDeadBackoff(t *testing.T) {
	clock := newFakeClock()
	p := &countingProber{}
	c := New(p, WithClock(clock))
	ctx := context.Background()

	assert.False(t, c.IsLive(ctx, endpoint))
	state, _ := c.State(endpoint)
	assert.Equal(t, StatusDead, state.Status)
	assert.Equal(t, 1, state.RetryCount)

	// Within the 2s window no probe happens.
	clock.Advance(1 * time.Second)
	assert.False(t, c.IsLive(ctx, endpoint))
	assert.Equal(t, int32(1), p.calls.Load())

	clock.Advance(1 * time.Second)
	assert.False(t, c.IsLive(ctx, endpoint))
	assert.Equal(t, int32(2), p.calls.Load())
	state, _ = c.State(endpoint)
	assert.Equal(t, 2, state.RetryCount)

	// Window is now 4s.
	clock.Advance(3 * time.Second)
	assert.False(t, c.IsLive(ctx, endpoint))
	assert.Equal(t, int32(2), p.calls.Load())

	p.live.Store(true)
	clock.Advance(1 * time.Second)
	assert.True(t, c.IsLive(ctx, endpoint))
	state, _ = c.State(endpoint)
	assert.Equal(t, StatusLive, state.Status)
	assert.Zero(t, state.RetryCount)
}

func TestForceProbes(t *testing.T) {
	clock := newFakeClock()
	p := &countingProber{}
	c := New(p, WithClock(clock))
	ctx := context.Background()

	assert.False(t, c.IsLive(ctx, endpoint))
	p.live.Store(true)
	assert.False(t, c.IsLive(ctx, endpoint))
	assert.True(t, c.Check(ctx, endpoint, true))
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestInvalidate(t *testing.T) {
	clock := newFakeClock()
	p := &countingProber{}
	p.live.Store(true)
	c := New(p, WithClock(clock))
	ctx := context.Background()

	c.Invalidate(endpoint)
	_, known := c.State(endpoint)
	assert.False(t, known)

	assert.True(t, c.IsLive(ctx, endpoint))
	p.live.Store(false)
	c.Invalidate(endpoint)

	state, _ := c.State(endpoint)
	assert.True(t, state.Stale)

	assert.False(t, c.IsLive(ctx, endpoint))
	assert.Equal(t, int32(2), p.calls.Load())
	state, _ = c.State(endpoint)
	assert.False(t, state.Stale)
	assert.Equal(t, 1, state.RetryCount)
}

func TestBackoffCap(t *testing.T) {
	c := New(&countingProber{}, WithMaxWait(10*time.Second))
	assert.Equal(t, 1*time.Second, c.Backoff(0))
	assert.Equal(t, 8*time.Second, c.Backoff(3))
	assert.Equal(t, 10*time.Second, c.Backoff(4))
	assert.Equal(t, 10*time.Second, c.Backoff(1000))

	def := New(&countingProber{})
	assert.Equal(t, DefaultMaxWait, def.Backoff(10))
	assert.Equal(t, 512*time.Second, def.Backoff(9))
}

func TestRetryCountGrowsToCap(t *testing.T) {
	clock := newFakeClock()
	p := &countingProber{}
	c := New(p, WithClock(clock), WithMaxWait(5*time.Second))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		c.IsLive(ctx, endpoint)
		state, _ := c.State(endpoint)
		require.Equal(t, i, state.RetryCount)
		clock.Advance(c.Backoff(state.RetryCount))
	}
	assert.Equal(t, int32(5), p.calls.Load())
}

func TestConcurrentChecksProbeOnce(t *testing.T) {
	p := &countingProber{delay: 20 * time.Millisecond}
	p.live.Store(true)
	c := New(p)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, c.IsLive(context.Background(), endpoint))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestEndpointsIndependent(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	c := New(ProberFunc(func(ctx context.Context, ep string) (bool, error) {
		if ep == "slow" {
			close(started)
			<-block
		}
		return true, nil
	}))

	go c.IsLive(context.Background(), "slow")
	<-started

	done := make(chan bool)
	go func() { done <- c.IsLive(context.Background(), "fast") }()

	select {
	case live := <-done:
		assert.True(t, live)
	case <-time.After(time.Second):
		t.Fatal("check of an unrelated endpoint was blocked")
	}
	close(block)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "live", StatusLive.String())
	assert.Equal(t, "dead", StatusDead.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestCallerCancelDoesNotRecordDead(t *testing.T) {
	clock := newFakeClock()
	started := make(chan struct{})
	p := ProberFunc(func(ctx context.Context, _ string) (bool, error) {
		close(started)
		<-ctx.Done()
		return false, ctx.Err()
	})
	c := New(p, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	assert.False(t, c.IsLive(ctx, endpoint))

	_, ok := c.State(endpoint)
	assert.False(t, ok)
}

func TestProbeTimeoutRecordsDead(t *testing.T) {
	clock := newFakeClock()
	p := ProberFunc(func(ctx context.Context, _ string) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	c := New(p, WithClock(clock))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.False(t, c.IsLive(ctx, endpoint))

	state, ok := c.State(endpoint)
	require.True(t, ok)
	assert.Equal(t, StatusDead, state.Status)
	assert.Equal(t, 1, state.RetryCount)
}
