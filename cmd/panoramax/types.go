package main

import (
	"fmt"
	"sort"

	stac "github.com/planetlabs/go-stac"

	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
	"github.com/robert-malhotra/go-panoramax-client/pkg/viewer"
)

const (
	formatSummary = "summary"
	formatSTAC    = "stac"

	defaultSTACVersion = "1.0.0"
)

type linkSummary struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type itemSummary struct {
	ID          string            `json:"id"`
	Collection  string            `json:"collection,omitempty"`
	Lon         float64           `json:"lon"`
	Lat         float64           `json:"lat"`
	Datetime    string            `json:"datetime,omitempty"`
	Azimuth     int               `json:"azimuth"`
	Rank        int               `json:"rank"`
	DisplayName string            `json:"display_name,omitempty"`
	WebURL      string            `json:"web_url,omitempty"`
	Assets      map[string]string `json:"assets,omitempty"`
	Links       []linkSummary     `json:"links,omitempty"`
}

type collectionSummary struct {
	ID     string        `json:"id"`
	Count  int           `json:"count"`
	BBox   []float64     `json:"bbox,omitempty"`
	First  string        `json:"first,omitempty"`
	Last   string        `json:"last,omitempty"`
	Images []string      `json:"images"`
	Links  []linkSummary `json:"links,omitempty"`
}

func summarizeLinks(links []panoramax.Link) []linkSummary {
	if len(links) == 0 {
		return nil
	}
	out := make([]linkSummary, 0, len(links))
	for _, l := range links {
		out = append(out, linkSummary{Rel: l.Rel, Href: l.HrefString(), Type: l.Type, Title: l.Title})
	}
	return out
}

func newItemSummary(entry *viewer.Entry) *itemSummary {
	img := entry.Image()
	summary := &itemSummary{
		ID:          img.ID,
		Collection:  img.Collection,
		Lon:         img.Lon(),
		Lat:         img.Lat(),
		Datetime:    img.Properties.Datetime,
		Azimuth:     img.Properties.ViewAzimuth,
		Rank:        img.Properties.RankInCollection,
		DisplayName: entry.DisplayName(),
		WebURL:      entry.WebURL(),
		Links:       summarizeLinks(img.Links),
	}
	if len(img.Assets) > 0 {
		summary.Assets = make(map[string]string, len(img.Assets))
		for name, l := range img.Assets {
			summary.Assets[name] = l.HrefString()
		}
	}
	return summary
}

func newCollectionSummary(id string, col *panoramax.Collection) *collectionSummary {
	summary := &collectionSummary{
		ID:     id,
		Count:  col.Len(),
		Images: make([]string, 0, col.Len()),
		Links:  summarizeLinks(col.Links()),
	}
	for _, img := range col.All() {
		summary.Images = append(summary.Images, img.ID)
	}
	if col.Len() > 0 {
		summary.First = col.First().ID
		summary.Last = col.Last().ID
		summary.BBox = bboxOf(col)
	}
	return summary
}

func bboxOf(col *panoramax.Collection) []float64 {
	b := col.Bound()
	return []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
}

func toSTACLinks(links []panoramax.Link) []*stac.Link {
	out := make([]*stac.Link, 0, len(links))
	for _, l := range links {
		out = append(out, &stac.Link{Rel: l.Rel, Href: l.HrefString(), Type: l.Type, Title: l.Title})
	}
	return out
}

func toSTACItem(img *panoramax.Image) *stac.Item {
	version := img.STACVersion
	if version == "" {
		version = defaultSTACVersion
	}

	p := img.Properties
	props := map[string]any{
		"datetime":                    nullable(p.Datetime),
		"view:azimuth":                p.ViewAzimuth,
		"geovisio:status":             p.GeovisioStatus,
		"geovisio:producer":           p.GeovisioProducer,
		"geovisio:rank_in_collection": p.RankInCollection,
	}
	for key, value := range map[string]string{
		"created":             p.Created,
		"updated":             p.Updated,
		"datetimetz":          p.DatetimeTZ,
		"license":             p.License,
		"geovisio:image":      p.GeovisioImage,
		"geovisio:thumbnail":  p.GeovisioThumbnail,
		"geovisio:visibility": p.GeovisioVisibility,
		"original_file:name":  p.OriginalFileName,
	} {
		if value != "" {
			props[key] = value
		}
	}
	if p.OriginalFileSize > 0 {
		props["original_file:size"] = p.OriginalFileSize
	}
	if p.HorizontalAccuracy > 0 {
		props["quality:horizontal_accuracy"] = p.HorizontalAccuracy
	}
	if len(img.Providers) > 0 {
		providers := make([]map[string]any, 0, len(img.Providers))
		for _, pr := range img.Providers {
			providers = append(providers, map[string]any{"name": pr.Name, "roles": pr.Roles})
		}
		props["providers"] = providers
	}

	assets := make(map[string]*stac.Asset, len(img.Assets))
	for name, l := range img.Assets {
		assets[name] = &stac.Asset{Href: l.HrefString(), Type: l.Type, Title: l.Title, Roles: assetRoles(name)}
	}

	return &stac.Item{
		Version: version,
		Id:      img.ID,
		Geometry: map[string]any{
			"type":        "Point",
			"coordinates": []float64{img.Lon(), img.Lat()},
		},
		Bbox:       img.BBox,
		Properties: props,
		Links:      toSTACLinks(img.Links),
		Assets:     assets,
		Collection: img.Collection,
	}
}

func assetRoles(name string) []string {
	switch name {
	case panoramax.AssetHD:
		return []string{"data"}
	case panoramax.AssetSD:
		return []string{"visual"}
	case panoramax.AssetThumb:
		return []string{"thumbnail"}
	default:
		return nil
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func toSTACCollection(id string, col *panoramax.Collection) *stac.Collection {
	out := &stac.Collection{
		Version:     defaultSTACVersion,
		Id:          id,
		Description: fmt.Sprintf("Panoramax collection %s (%d pictures)", id, col.Len()),
		License:     collectionLicense(col),
		Links:       toSTACLinks(col.Links()),
	}
	if col.Len() == 0 {
		return out
	}

	out.Extent = &stac.Extent{
		Spatial: &stac.SpatialExtent{Bbox: [][]float64{bboxOf(col)}},
	}
	if start, end, ok := timeRange(col); ok {
		out.Extent.Temporal = &stac.TemporalExtent{Interval: [][]any{{start, end}}}
	}

	seen := make(map[string]bool)
	for _, img := range col.All() {
		for _, pr := range img.Providers {
			if pr.Name == "" || seen[pr.Name] {
				continue
			}
			seen[pr.Name] = true
			out.Providers = append(out.Providers, &stac.Provider{Name: pr.Name, Roles: pr.Roles})
		}
	}
	return out
}

// collectionLicense returns the license shared by every picture, or
// "various" when they differ or none is declared.
func collectionLicense(col *panoramax.Collection) string {
	license := ""
	for _, img := range col.All() {
		l := img.Properties.License
		if l == "" || (license != "" && l != license) {
			return "various"
		}
		license = l
	}
	if license == "" {
		return "various"
	}
	return license
}

// timeRange returns the earliest and latest datetime of the pictures.
// RFC 3339 strings in UTC order lexically.
func timeRange(col *panoramax.Collection) (string, string, bool) {
	var stamps []string
	for _, img := range col.All() {
		if img.Properties.Datetime != "" {
			stamps = append(stamps, img.Properties.Datetime)
		}
	}
	if len(stamps) == 0 {
		return "", "", false
	}
	sort.Strings(stamps)
	return stamps[0], stamps[len(stamps)-1], true
}
