// Package viewer exposes a decoded image as a read-only entry for photo
// viewers, backed by the cache.
package viewer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/robert-malhotra/go-panoramax-client/internal/logging"
	"github.com/robert-malhotra/go-panoramax-client/pkg/cache"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

// Source resolves collections and image bytes. *cache.Cache satisfies it.
type Source interface {
	Collection(ctx context.Context, endpoint, collectionID string) (*panoramax.Collection, error)
	ImageBytes(ctx context.Context, endpoint, collectionID, imageID string) ([]byte, error)
}

var _ Source = (*cache.Cache)(nil)

// Option configures an Entry.
type Option func(*Entry)

// WithLogger sets the logger used by background prefetches.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Entry) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Entry is one image as seen by a viewer.
type Entry struct {
	image    *panoramax.Image
	src      Source
	fallback string
	logger   *slog.Logger
}

// New wraps img. fallback is the endpoint used when the image carries no
// root link.
func New(img *panoramax.Image, src Source, fallback string, opts ...Option) *Entry {
	e := &Entry{image: img, src: src, fallback: fallback, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Entry) sibling(img *panoramax.Image) *Entry {
	return &Entry{image: img, src: e.src, fallback: e.fallback, logger: e.logger}
}

func (e *Entry) Image() *panoramax.Image { return e.image }
func (e *Entry) ID() string { return e.image.ID }
func (e *Entry) Lat() float64 { return e.image.Lat() }
func (e *Entry) Lon() float64 { return e.image.Lon() }
func (e *Entry) Links() []panoramax.Link { return append([]panoramax.Link(nil), e.image.Links...) }
func (e *Entry) Providers() []panoramax.Provider { return append([]panoramax.Provider(nil), e.image.Providers...) }
func (e *Entry) Properties() panoramax.Properties { return e.image.Properties }
func (e *Entry) Exif() panoramax.Exif { return e.image.Properties.Exif }
func (e *Entry) CollectionID() string { return e.image.Collection }

// Endpoint is the API root the image came from: its rel="root" link, or the
// fallback.
func (e *Entry) Endpoint() string {
	if root, ok := e.image.Link(panoramax.RelRoot); ok && root.Href != nil {
		return strings.TrimSuffix(root.HrefString(), "/")
	}
	return e.fallback
}

// Read returns the bytes of the image's best asset, or nil when they are
// not available.
func (e *Entry) Read(ctx context.Context) ([]byte, error) {
	return e.src.ImageBytes(ctx, e.Endpoint(), e.image.Collection, e.image.ID)
}

func (e *Entry) position(ctx context.Context) (*panoramax.Collection, int, error) {
	col, err := e.src.Collection(ctx, e.Endpoint(), e.image.Collection)
	if err != nil || col == nil {
		return nil, -1, err
	}
	return col, col.IndexOf(e.image), nil
}

// Next returns the following image of the collection and starts
// downloading its bytes in the background. It returns nil at the end of the
// collection or when the collection is unavailable.
func (e *Entry) Next(ctx context.Context) (*Entry, error) {
	col, idx, err := e.position(ctx)
	if err != nil || col == nil || idx < 0 || idx+1 >= col.Len() {
		return nil, err
	}
	next := e.sibling(col.At(idx + 1))

	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := next.Read(bg); err != nil {
			next.logger.Debug("prefetch next image",
				slog.String(logging.FieldItem, next.ID()),
				logging.Error(err))
		}
	}()
	return next, nil
}

// Previous returns the preceding image, or nil at the start.
func (e *Entry) Previous(ctx context.Context) (*Entry, error) {
	col, idx, err := e.position(ctx)
	if err != nil || col == nil || idx <= 0 {
		return nil, err
	}
	return e.sibling(col.At(idx - 1)), nil
}

// First returns the first image of the collection, or nil when e already
// is the first one.
func (e *Entry) First(ctx context.Context) (*Entry, error) {
	col, idx, err := e.position(ctx)
	if err != nil || col == nil || idx <= 0 {
		return nil, err
	}
	return e.sibling(col.First()), nil
}

// Last returns the last image of the collection, or nil when e already is
// the last one.
func (e *Entry) Last(ctx context.Context) (*Entry, error) {
	col, idx, err := e.position(ctx)
	if err != nil || col == nil || idx < 0 || idx+1 >= col.Len() {
		return nil, err
	}
	return e.sibling(col.Last()), nil
}

// DisplayName joins the provider names, followed by the EXIF time when
// known.
func (e *Entry) DisplayName() string {
	names := make([]string, 0, len(e.image.Providers))
	for _, p := range e.image.Providers {
		names = append(names, p.Name)
	}
	name := strings.Join(names, ", ")
	if t, ok := e.ExifTime(); ok {
		name += " - " + t.Format(displayLayout)
	}
	return name
}

// WebURL points at the image in the web viewer when the image has a via
// link, and at the best asset otherwise. It is empty when neither exists.
func (e *Entry) WebURL() string {
	if via, ok := e.image.Link(panoramax.RelVia); ok && via.Href != nil {
		return via.Href.ResolveReference(focusRef(e.image.ID)).String()
	}
	if best, ok := e.image.BestAsset(); ok {
		return best.HrefString()
	}
	return ""
}
