package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-panoramax-client/pkg/client"
	"github.com/robert-malhotra/go-panoramax-client/pkg/decode"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

const endpoint = "https://api.panoramax.xyz/api"

type fakeFetcher struct {
	mu          sync.Mutex
	collections map[string]*panoramax.Collection
	colErr      error
	imgErr      error
	gate        chan struct{}
	down        atomic.Bool

	collectionCalls atomic.Int32
	imageCalls      atomic.Int32
	liveChecks      atomic.Int32
	invalidations   atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{collections: make(map[string]*panoramax.Collection)}
}

func (f *fakeFetcher) FetchCollection(ctx context.Context, ep, id string) (*panoramax.Collection, error) {
	f.collectionCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.colErr != nil {
		return nil, f.colErr
	}
	col, ok := f.collections[ep+"|"+id]
	if !ok {
		return nil, &client.StatusError{Method: "GET", URL: ep, StatusCode: 404}
	}
	return col, nil
}

func (f *fakeFetcher) FetchImageBytes(_ context.Context, _ string, link panoramax.Link) ([]byte, error) {
	f.imageCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.imgErr != nil {
		return nil, f.imgErr
	}
	return []byte("bytes:" + link.HrefString()), nil
}

func (f *fakeFetcher) IsLive(context.Context, string) bool {
	f.liveChecks.Add(1)
	return !f.down.Load()
}

func (f *fakeFetcher) Invalidate(string) { f.invalidations.Add(1) }

func (f *fakeFetcher) add(ep, id string, images ...*panoramax.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[ep+"|"+id] = panoramax.NewCollection(nil, images)
}

func image(id string, assets ...string) *panoramax.Image {
	img := &panoramax.Image{ID: id, Assets: map[string]panoramax.Link{}}
	for _, name := range assets {
		img.Assets[name] = panoramax.Link{Href: &url.URL{Path: fmt.Sprintf("/%s/%s.jpg", id, name)}}
	}
	return img
}

func TestCollectionMemoized(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"))
	c := New(f)
	ctx := context.Background()

	first, err := c.Collection(ctx, endpoint, "c1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.Collection(ctx, endpoint, "c1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), f.collectionCalls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Collections.Hits)
	assert.Equal(t, int64(1), stats.Collections.Misses)
	assert.Equal(t, 1, stats.Collections.Entries)
}

func TestNamespacesByEndpoint(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"))
	f.add("https://other.example/api", "c1", image("z", "hd"))
	c := New(f)
	ctx := context.Background()

	a, err := c.Item(ctx, endpoint, "c1", "a")
	require.NoError(t, err)
	require.NotNil(t, a)

	z, err := c.Item(ctx, "https://other.example/api", "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, z)
	assert.Equal(t, int32(2), f.collectionCalls.Load())
}

func TestTransportFailureNotStored(t *testing.T) {
	f := newFakeFetcher()
	f.colErr = fmt.Errorf("%w: connection refused", client.ErrTransport)
	c := New(f)
	ctx := context.Background()

	col, err := c.Collection(ctx, endpoint, "c1")
	require.NoError(t, err)
	assert.Nil(t, col)

	f.mu.Lock()
	f.colErr = nil
	f.mu.Unlock()
	f.add(endpoint, "c1", image("a"))

	col, err = c.Collection(ctx, endpoint, "c1")
	require.NoError(t, err)
	require.NotNil(t, col)
	assert.Equal(t, int32(2), f.collectionCalls.Load())
}

func TestUnreachableIsAbsent(t *testing.T) {
	f := newFakeFetcher()
	f.colErr = fmt.Errorf("%w: %s", client.ErrUnreachable, endpoint)
	c := New(f)

	img, err := c.Item(context.Background(), endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, img)

	data, err := c.ImageBytes(context.Background(), endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Zero(t, f.imageCalls.Load())
	assert.Zero(t, c.Stats().Items.Entries)
}

func TestDecodeFailurePropagates(t *testing.T) {
	f := newFakeFetcher()
	f.colErr = fmt.Errorf("error decoding response: %w", &decode.Error{Path: "$.features[0].properties.view:azimuth", Reason: "not an exact int64"})
	c := New(f)

	_, err := c.Collection(context.Background(), endpoint, "c1")
	require.Error(t, err)
	assert.True(t, client.IsDecode(err))

	_, err = c.Item(context.Background(), endpoint, "c1", "a")
	assert.True(t, client.IsDecode(err))

	assert.Zero(t, c.Stats().Collections.Entries)
	assert.Zero(t, c.Stats().Items.Entries)
}

func TestItemMissingIsStored(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a"))
	c := New(f)
	ctx := context.Background()

	img, err := c.Item(ctx, endpoint, "c1", "nope")
	require.NoError(t, err)
	assert.Nil(t, img)

	img, err = c.Item(ctx, endpoint, "c1", "nope")
	require.NoError(t, err)
	assert.Nil(t, img)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Items.Entries)
	assert.Equal(t, int64(1), stats.Items.Hits)
}

func TestImageBytesUsesBestAsset(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "thumb", "sd", "hd"), image("b", "thumb"))
	c := New(f)
	ctx := context.Background()

	data, err := c.ImageBytes(ctx, endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Equal(t, "bytes:/a/hd.jpg", string(data))

	data, err = c.ImageBytes(ctx, endpoint, "c1", "b")
	require.NoError(t, err)
	assert.Equal(t, "bytes:/b/thumb.jpg", string(data))

	_, err = c.ImageBytes(ctx, endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.imageCalls.Load())
	assert.Equal(t, int32(1), f.collectionCalls.Load())
}

func TestImageWithoutAssets(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a"))
	c := New(f)

	data, err := c.ImageBytes(context.Background(), endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Zero(t, f.imageCalls.Load())
	assert.Zero(t, c.Stats().Images.Entries)
}

func TestImageFailureInvalidatesAndIsNotStored(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"))
	f.imgErr = fmt.Errorf("%w: reset by peer", client.ErrTransport)
	c := New(f)
	ctx := context.Background()

	data, err := c.ImageBytes(ctx, endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, int32(1), f.invalidations.Load())

	f.mu.Lock()
	f.imgErr = nil
	f.mu.Unlock()

	data, err = c.ImageBytes(ctx, endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Equal(t, "bytes:/a/hd.jpg", string(data))
	assert.Equal(t, int32(2), f.imageCalls.Load())
}

func TestConcurrentLookupsFetchOnce(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"), image("b", "sd"))
	f.gate = make(chan struct{})
	c := New(f)

	const callers = 32
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := "a"
			if i%2 == 1 {
				id = "b"
			}
			data, err := c.ImageBytes(context.Background(), endpoint, "c1", id)
			assert.NoError(t, err)
			results[i] = data
		}()
	}

	// Let the callers pile up on the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.collectionCalls.Load())
	assert.Equal(t, int32(2), f.imageCalls.Load())
	for i, data := range results {
		want := "bytes:/a/hd.jpg"
		if i%2 == 1 {
			want = "bytes:/b/sd.jpg"
		}
		assert.Equal(t, want, string(data))
	}
}

func TestCallerCancelStillRecords(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"))
	f.gate = make(chan struct{})
	c := New(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Collection(ctx, endpoint, "c1")
		done <- err
	}()

	require.Eventually(t, func() bool { return f.collectionCalls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(f.gate)
	require.Eventually(t, func() bool { return c.Stats().Collections.Entries == 1 }, time.Second, time.Millisecond)

	col, err := c.Collection(context.Background(), endpoint, "c1")
	require.NoError(t, err)
	require.NotNil(t, col)
	assert.Equal(t, int32(1), f.collectionCalls.Load())
}

func TestPrefetch(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"), image("b", "hd"), image("c", "hd"))
	c := New(f, WithPrefetchLimit(2))
	ctx := context.Background()

	require.NoError(t, c.Prefetch(ctx, endpoint, "c1", "a", "b", "c", "missing"))
	assert.Equal(t, int32(3), f.imageCalls.Load())
	assert.Equal(t, 3, c.Stats().Images.Entries)

	_, err := c.ImageBytes(ctx, endpoint, "c1", "b")
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.imageCalls.Load())
}

func TestClose(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"))
	c := New(f)

	_, err := c.Collection(context.Background(), endpoint, "c1")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Collection(context.Background(), endpoint, "c1")
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = c.Item(context.Background(), endpoint, "c1", "a")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.ImageBytes(context.Background(), endpoint, "c1", "a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Prefetch(context.Background(), endpoint, "c1", "a"), ErrClosed)
	assert.Equal(t, Stats{}, c.Stats())
}

func TestImageSkippedWhileEndpointDown(t *testing.T) {
	f := newFakeFetcher()
	f.add(endpoint, "c1", image("a", "hd"))
	f.down.Store(true)
	c := New(f)

	data, err := c.ImageBytes(context.Background(), endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Zero(t, f.imageCalls.Load())
	assert.Zero(t, c.Stats().Images.Entries)

	f.down.Store(false)
	data, err = c.ImageBytes(context.Background(), endpoint, "c1", "a")
	require.NoError(t, err)
	assert.Equal(t, "bytes:/a/hd.jpg", string(data))
}

func TestImageFailureReprobesBeforeNextDownload(t *testing.T) {
	var (
		live      atomic.Bool
		probes    atomic.Int32
		imageGets atomic.Int32
	)
	live.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/live":
			probes.Add(1)
			if !live.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/api/collections/c1/items":
			_, _ = io.WriteString(w, `{"type": "FeatureCollection", "links": [], "features": [`+
				`{"type": "Feature", "id": "a", "geometry": {"type": "Point", "coordinates": [2.35, 48.86]},`+
				` "assets": {"sd": {"href": "/pictures/a/sd.jpg"}}},`+
				`{"type": "Feature", "id": "b", "geometry": {"type": "Point", "coordinates": [2.36, 48.87]},`+
				` "assets": {"sd": {"href": "/pictures/b/sd.jpg"}}}]}`)
		case strings.HasPrefix(r.URL.Path, "/pictures/"):
			imageGets.Add(1)
			live.Store(false)
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	ep := srv.URL + "/api"

	c := New(client.NewClient())
	ctx := context.Background()

	data, err := c.ImageBytes(ctx, ep, "c1", "a")
	require.NoError(t, err)
	assert.Nil(t, data)
	require.Equal(t, int32(1), imageGets.Load())
	require.Equal(t, int32(1), probes.Load())

	for i := 0; i < 5; i++ {
		for _, id := range []string{"a", "b"} {
			data, err := c.ImageBytes(ctx, ep, "c1", id)
			require.NoError(t, err)
			assert.Nil(t, data)
		}
	}
	assert.Equal(t, int32(1), imageGets.Load())
	assert.Equal(t, int32(2), probes.Load())
}
