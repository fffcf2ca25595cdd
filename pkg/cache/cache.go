// Package cache memoizes Panoramax lookups in three tiers: collections,
// items and image bytes. Each endpoint gets its own namespace so two servers
// never share entries.
//
// Every tier runs at most one computation per key. Concurrent callers for
// the same key share its result; different keys never wait on each other.
// Entries live for the lifetime of the Cache.
//
// Lookups report "not available" as a nil value with a nil error. That
// covers an unreachable endpoint, a transport failure and an item missing
// from its collection. Decode failures are returned as errors and are never
// stored.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-panoramax-client/internal/logging"
	"github.com/robert-malhotra/go-panoramax-client/pkg/client"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

// ErrClosed is returned by every lookup after Close.
var ErrClosed = errors.New("cache: closed")

// DefaultPrefetchLimit bounds concurrent downloads in Prefetch.
const DefaultPrefetchLimit = 4

// Fetcher is the part of *client.Client the cache relies on.
type Fetcher interface {
	FetchCollection(ctx context.Context, endpoint, collectionID string) (*panoramax.Collection, error)
	FetchImageBytes(ctx context.Context, endpoint string, link panoramax.Link) ([]byte, error)
	IsLive(ctx context.Context, endpoint string) bool
	Invalidate(endpoint string)
}

var _ Fetcher = (*client.Client)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for failures reported as absent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPrefetchLimit bounds concurrent downloads in Prefetch.
func WithPrefetchLimit(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.prefetchLimit = n
		}
	}
}

// Cache is safe for concurrent use.
type Cache struct {
	fetcher       Fetcher
	logger        *slog.Logger
	prefetchLimit int

	mu         sync.Mutex
	closed     bool
	namespaces map[string]*namespace
}

type namespace struct {
	collections *tier[*panoramax.Collection]
	items       *tier[*panoramax.Image]
	images      *tier[[]byte]
}

func newNamespace() *namespace {
	return &namespace{
		collections: newTier[*panoramax.Collection](),
		items:       newTier[*panoramax.Image](),
		images:      newTier[[]byte](),
	}
}

// New returns an empty cache in front of f.
func New(f Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:       f,
		logger:        logging.NewNop(),
		prefetchLimit: DefaultPrefetchLimit,
		namespaces:    make(map[string]*namespace),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, "cache")
	return c
}

func (c *Cache) namespace(endpoint string) (*namespace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	ns, ok := c.namespaces[endpoint]
	if !ok {
		ns = newNamespace()
		c.namespaces[endpoint] = ns
	}
	return ns, nil
}

// Collection returns the merged collection, or nil when it cannot be
// fetched right now.
func (c *Cache) Collection(ctx context.Context, endpoint, collectionID string) (*panoramax.Collection, error) {
	ns, err := c.namespace(endpoint)
	if err != nil {
		return nil, err
	}
	e, err := ns.collections.get(ctx, collectionID, func(ctx context.Context) (entry[*panoramax.Collection], bool, error) {
		col, err := c.fetcher.FetchCollection(ctx, endpoint, collectionID)
		if err != nil {
			if client.IsDecode(err) {
				return entry[*panoramax.Collection]{}, false, err
			}
			c.logAbsent("collection", endpoint, collectionID, err)
			return entry[*panoramax.Collection]{}, false, nil
		}
		return entry[*panoramax.Collection]{value: col, present: true}, true, nil
	})
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// Item returns one image of a collection, found by scanning the cached
// collection. A collection that was fetched but does not hold the image
// records the absence; an unavailable collection records nothing.
func (c *Cache) Item(ctx context.Context, endpoint, collectionID, imageID string) (*panoramax.Image, error) {
	ns, err := c.namespace(endpoint)
	if err != nil {
		return nil, err
	}
	e, err := ns.items.get(ctx, imageID, func(ctx context.Context) (entry[*panoramax.Image], bool, error) {
		col, err := c.Collection(ctx, endpoint, collectionID)
		if err != nil {
			return entry[*panoramax.Image]{}, false, err
		}
		if col == nil {
			return entry[*panoramax.Image]{}, false, nil
		}
		img, ok := col.Find(imageID)
		if !ok {
			c.logger.Debug("item not in collection",
				slog.String(logging.FieldEndpoint, endpoint),
				slog.String(logging.FieldCollection, collectionID),
				slog.String(logging.FieldItem, imageID))
			return entry[*panoramax.Image]{}, true, nil
		}
		return entry[*panoramax.Image]{value: img, present: true}, true, nil
	})
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// ImageBytes returns the bytes of the image's best asset. Nothing is
// downloaded while the endpoint is down. Failures are never stored; a failed
// download marks the endpoint for a fresh liveness probe.
func (c *Cache) ImageBytes(ctx context.Context, endpoint, collectionID, imageID string) ([]byte, error) {
	ns, err := c.namespace(endpoint)
	if err != nil {
		return nil, err
	}
	e, err := ns.images.get(ctx, imageID, func(ctx context.Context) (entry[[]byte], bool, error) {
		img, err := c.Item(ctx, endpoint, collectionID, imageID)
		if err != nil {
			return entry[[]byte]{}, false, err
		}
		if img == nil {
			return entry[[]byte]{}, false, nil
		}
		if !c.fetcher.IsLive(ctx, endpoint) {
			c.logAbsent("image", endpoint, imageID, fmt.Errorf("%w: %s", client.ErrUnreachable, endpoint))
			return entry[[]byte]{}, false, nil
		}
		link, ok := img.BestAsset()
		if !ok {
			c.logger.Debug("image has no assets",
				slog.String(logging.FieldEndpoint, endpoint),
				slog.String(logging.FieldItem, imageID))
			return entry[[]byte]{}, false, nil
		}
		data, err := c.fetcher.FetchImageBytes(ctx, endpoint, link)
		if err != nil {
			c.fetcher.Invalidate(endpoint)
			c.logAbsent("image", endpoint, imageID, err)
			return entry[[]byte]{}, false, nil
		}
		return entry[[]byte]{value: data, present: true}, true, nil
	})
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// Prefetch warms the image tier for imageIDs with bounded concurrency. It
// waits for every download; failures are logged, not returned. Only ctx
// ending or a closed cache is reported.
func (c *Cache) Prefetch(ctx context.Context, endpoint, collectionID string, imageIDs ...string) error {
	if _, err := c.namespace(endpoint); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.prefetchLimit)
	for _, id := range imageIDs {
		g.Go(func() error {
			_, err := c.ImageBytes(gctx, endpoint, collectionID, id)
			switch {
			case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case err != nil:
				c.logger.Warn("prefetch failed",
					slog.String(logging.FieldEndpoint, endpoint),
					slog.String(logging.FieldItem, id),
					logging.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("prefetch %s: %w", collectionID, err)
	}
	return nil
}

// TierStats counts lookups of one tier.
type TierStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Stats aggregates every namespace.
type Stats struct {
	Collections TierStats
	Items       TierStats
	Images      TierStats
}

// Stats returns counters summed over all endpoints.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	namespaces := make([]*namespace, 0, len(c.namespaces))
	for _, ns := range c.namespaces {
		namespaces = append(namespaces, ns)
	}
	c.mu.Unlock()

	var s Stats
	for _, ns := range namespaces {
		s.Collections = s.Collections.add(ns.collections.stats())
		s.Items = s.Items.add(ns.items.stats())
		s.Images = s.Images.add(ns.images.stats())
	}
	return s
}

func (s TierStats) add(o TierStats) TierStats {
	return TierStats{Hits: s.Hits + o.Hits, Misses: s.Misses + o.Misses, Entries: s.Entries + o.Entries}
}

// Close drops every entry. Later lookups return ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.namespaces = nil
	return nil
}

func (c *Cache) logAbsent(tier, endpoint, key string, err error) {
	level := slog.LevelWarn
	if client.IsUnreachable(err) {
		level = slog.LevelDebug
	}
	c.logger.Log(context.Background(), level, "lookup unavailable",
		slog.String(logging.FieldTier, tier),
		slog.String(logging.FieldEndpoint, endpoint),
		slog.String("key", key),
		logging.Error(err))
}
