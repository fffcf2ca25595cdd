package viewer

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

const fallback = "https://api.panoramax.xyz/api"

type fakeSource struct {
	mu    sync.Mutex
	col   *panoramax.Collection
	reads []string
	gotEP []string
}

func (f *fakeSource) Collection(_ context.Context, endpoint, _ string) (*panoramax.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotEP = append(f.gotEP, endpoint)
	return f.col, nil
}

func (f *fakeSource) ImageBytes(_ context.Context, _, _, imageID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, imageID)
	return []byte(imageID), nil
}

func (f *fakeSource) readIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reads...)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func sequence(ids ...string) []*panoramax.Image {
	images := make([]*panoramax.Image, len(ids))
	for i, id := range ids {
		images[i] = &panoramax.Image{ID: id, Collection: "c1"}
	}
	return images
}

func TestNavigation(t *testing.T) {
	images := sequence("a", "b", "c")
	src := &fakeSource{col: panoramax.NewCollection(nil, images)}
	ctx := context.Background()

	b := New(images[1], src, fallback)

	next, err := b.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "c", next.ID())
	assert.Eventually(t, func() bool {
		ids := src.readIDs()
		return len(ids) == 1 && ids[0] == "c"
	}, time.Second, time.Millisecond)

	prev, err := b.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", prev.ID())

	first, err := b.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID())

	last, err := b.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", last.ID())

	end, err := next.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, end)

	atEnd, err := next.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, atEnd)

	start, err := first.Previous(ctx)
	require.NoError(t, err)
	assert.Nil(t, start)

	atStart, err := first.First(ctx)
	require.NoError(t, err)
	assert.Nil(t, atStart)
}

func TestNavigationWithoutCollection(t *testing.T) {
	e := New(&panoramax.Image{ID: "a", Collection: "c1"}, &fakeSource{}, fallback)
	next, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestEndpoint(t *testing.T) {
	src := &fakeSource{}
	img := &panoramax.Image{ID: "a", Collection: "c1", Links: []panoramax.Link{
		{Href: mustURL(t, "https://panoramax.example/api/"), Rel: panoramax.RelRoot},
	}}
	e := New(img, src, fallback)
	assert.Equal(t, "https://panoramax.example/api", e.Endpoint())

	data, err := e.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	assert.Equal(t, fallback, New(&panoramax.Image{ID: "b"}, src, fallback).Endpoint())
}

func TestDisplayName(t *testing.T) {
	img := &panoramax.Image{
		ID:        "a",
		Providers: []panoramax.Provider{{Name: "alice"}, {Name: "bob"}},
	}
	assert.Equal(t, "alice, bob", New(img, nil, fallback).DisplayName())

	img.Properties.Exif.ExifImageDateTime = "2023:06:01 12:30:05"
	assert.Equal(t, "alice, bob - 2023-06-01 12:30:05", New(img, nil, fallback).DisplayName())
}

func TestWebURL(t *testing.T) {
	img := &panoramax.Image{
		ID: "abc",
		Links: []panoramax.Link{
			{Href: mustURL(t, "https://panoramax.xyz/"), Rel: panoramax.RelVia},
		},
		Assets: map[string]panoramax.Link{
			"sd": {Href: mustURL(t, "https://panoramax.example/sd.jpg")},
		},
	}
	assert.Equal(t, "https://panoramax.xyz/?focus=pic&pic=abc", New(img, nil, fallback).WebURL())

	img.Links = nil
	assert.Equal(t, "https://panoramax.example/sd.jpg", New(img, nil, fallback).WebURL())

	img.Assets = nil
	assert.Empty(t, New(img, nil, fallback).WebURL())
}

func TestExifNumbers(t *testing.T) {
	img := &panoramax.Image{}
	img.Properties.Exif.ExifGPSInfoGPSSpeed = "1234/100"
	img.Properties.Exif.ExifGPSInfoGPSAltitude = "35.5"
	img.Properties.Exif.ExifGPSInfoGPSImgDirection = "1/0"
	img.Properties.Exif.ExifGPSInfoGPSProcessingMethod = "GPS"
	e := New(img, nil, fallback)

	speed, ok := e.Speed()
	require.True(t, ok)
	assert.InDelta(t, 12.34, speed, 1e-9)

	elevation, ok := e.Elevation()
	require.True(t, ok)
	assert.Equal(t, 35.5, elevation)

	_, ok = e.Direction()
	assert.False(t, ok)
	assert.Equal(t, "GPS", e.ProcessingMethod())
}

func TestExifTimes(t *testing.T) {
	img := &panoramax.Image{}
	e := New(img, nil, fallback)

	_, ok := e.ExifTime()
	assert.False(t, ok)
	_, ok = e.GPSTime()
	assert.False(t, ok)

	img.Properties.Exif.ExifImageDateTime = "2023:06:01 12:30:05"
	img.Properties.Exif.ExifGPSInfoGPSDateStamp = "2023:06:01"
	img.Properties.Exif.ExifGPSInfoGPSTimeStamp = "10/1 30/1 499/100"

	exifTime, ok := e.ExifTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 6, 1, 12, 30, 5, 0, time.UTC), exifTime)

	gpsTime, ok := e.GPSTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 6, 1, 10, 30, 5, 0, time.UTC), gpsTime)

	img.Properties.Exif.ExifImageDateTime = "yesterday"
	_, ok = e.ExifTime()
	assert.False(t, ok)
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1/2", 0.5, true},
		{" 3 ", 3, true},
		{"", 0, false},
		{"x/2", 0, false},
		{"1/y", 0, false},
		{"5/0", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseRational(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
