package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/robert-malhotra/go-panoramax-client/internal/logging"
	"github.com/robert-malhotra/go-panoramax-client/pkg/codec"
	"github.com/robert-malhotra/go-panoramax-client/pkg/decode"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

// FetchCollection retrieves every image of a collection. It checks the
// endpoint's liveness once, returning ErrUnreachable without any request
// when it is down, then walks {endpoint}/collections/{id}/items following
// rel="next" links. A single page is returned as decoded; several pages are
// merged with links deduplicated in encounter order.
func (c *Client) FetchCollection(ctx context.Context, endpoint, collectionID string) (*panoramax.Collection, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("collection ID cannot be empty")
	}
	base, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if !c.liveness.IsLive(ctx, endpoint) {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, endpoint)
	}

	current := base.JoinPath("collections", collectionID, "items")
	visited := make(map[string]struct{})
	var pages []*panoramax.Collection

	for {
		key := current.String()
		if _, seen := visited[key]; seen {
			c.logger.Debug("pagination loop", slog.String(logging.FieldURL, key))
			break
		}
		visited[key] = struct{}{}

		page, err := c.fetchPage(ctx, current)
		if err != nil {
			if invalidates(err) {
				c.liveness.Invalidate(endpoint)
			}
			c.logger.Warn("collection fetch failed",
				slog.String(logging.FieldEndpoint, endpoint),
				slog.String(logging.FieldCollection, collectionID),
				logging.Error(err))
			return nil, err
		}
		pages = append(pages, page)

		next, ok := page.Link(panoramax.RelNext)
		if !ok || next.Href == nil {
			break
		}
		current = current.ResolveReference(next.Href)
	}

	c.logger.Debug("collection fetched",
		slog.String(logging.FieldEndpoint, endpoint),
		slog.String(logging.FieldCollection, collectionID),
		slog.Int("pages", len(pages)))

	if len(pages) == 1 {
		return pages[0], nil
	}
	return panoramax.Merge(pages...), nil
}

func (c *Client) fetchPage(ctx context.Context, u *url.URL) (*panoramax.Collection, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: http.MethodGet, URL: u.String(), StatusCode: resp.StatusCode}
	}

	v, err := decode.Parse(resp.Body)
	if err != nil {
		if IsDecode(err) {
			return nil, fmt.Errorf("error decoding response from %s: %w", u, err)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrTransport, u, err)
	}
	page, err := codec.DecodePage(c.registry, v)
	if err != nil {
		return nil, fmt.Errorf("error decoding response from %s: %w", u, err)
	}
	return page, nil
}
