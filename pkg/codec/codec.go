// Package codec decodes Panoramax API documents into panoramax values.
//
// Every domain type has a decoder registered in a shared decode.Registry.
// Images need one extra step beyond the generic field algorithm: their
// position comes from geometry.coordinates and their assets are decoded as a
// name to Link map.
package codec

import (
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/paulmach/orb"

	"github.com/robert-malhotra/go-panoramax-client/pkg/decode"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

var (
	registryOnce sync.Once
	registry     *decode.Registry
)

// Registry returns the registry holding the decoders for every panoramax
// type, built on first use.
func Registry() *decode.Registry {
	registryOnce.Do(func() {
		registry = NewRegistry()
	})
	return registry
}

// NewRegistry builds a fresh registry with the panoramax decoders
// installed on top of the decode built-ins.
func NewRegistry() *decode.Registry {
	r := decode.NewRegistry()

	decode.Register[panoramax.Link](r, decodeLink)
	decode.RegisterSlice[panoramax.Link](r)
	decode.RegisterMap[panoramax.Link](r)

	decode.Register[panoramax.Provider](r, decodeProvider)
	decode.RegisterSlice[panoramax.Provider](r)

	decode.Register[panoramax.Exif](r, decodeExif)
	decode.Register[*panoramax.InteriorOrientation](r, decodeInteriorOrientation)
	decode.Register[panoramax.Properties](r, decodeProperties)

	decode.Register[*panoramax.Image](r, DecodeImage)
	decode.RegisterSlice[*panoramax.Image](r)
	return r
}

// ReadPage parses one items page from r.
func ReadPage(r io.Reader) (*panoramax.Collection, error) {
	v, err := decode.Parse(r)
	if err != nil {
		return nil, err
	}
	return DecodePage(Registry(), v)
}

// DecodePage decodes an items page, {"features": [...], "links": [...]},
// into a Collection.
func DecodePage(r *decode.Registry, v decode.Value) (*panoramax.Collection, error) {
	var (
		features []*panoramax.Image
		links    []panoramax.Link
	)
	b := decode.Bind(r, v)
	decode.Into(b, "features", &features)
	decode.Into(b, "links", &links)
	if err := b.Err(); err != nil {
		return nil, err
	}
	return panoramax.NewCollection(links, features), nil
}

// ReadImage parses a single item document from r.
func ReadImage(r io.Reader) (*panoramax.Image, error) {
	v, err := decode.Parse(r)
	if err != nil {
		return nil, err
	}
	return decode.Decode[*panoramax.Image](Registry(), v)
}

// DecodeImage decodes an image feature. The generic algorithm fills every
// declared field; Position and Assets are then substituted from
// geometry.coordinates and the assets object.
func DecodeImage(r *decode.Registry, v decode.Value) (*panoramax.Image, error) {
	img := &panoramax.Image{}
	b := decode.Bind(r, v)
	decode.Into(b, "id", &img.ID)
	decode.Into(b, "bbox", &img.BBox)
	decode.Into(b, "type", &img.Type)
	decode.Into(b, "links", &img.Links)
	decode.Into(b, "providers", &img.Providers)
	decode.Into(b, "collection", &img.Collection)
	decode.Into(b, "properties", &img.Properties)
	decode.Into(b, "stac_version", &img.STACVersion)
	decode.Into(b, "stac_extensions", &img.STACExtensions)
	if err := b.Err(); err != nil {
		return nil, err
	}

	pos, err := position(r, v, b)
	if err != nil {
		return nil, err
	}
	img.Position = pos

	assets, err := assetsOf(r, b)
	if err != nil {
		return nil, err
	}
	img.Assets = assets
	return img, nil
}

func position(r *decode.Registry, feature decode.Value, b *decode.Binder) (orb.Point, error) {
	geometry, ok := b.Field("geometry")
	if !ok || geometry.IsNull() {
		return orb.Point{}, decode.Fail(feature, "missing geometry", nil)
	}
	coords, ok := geometry.Get("coordinates")
	if !ok {
		return orb.Point{}, decode.Fail(geometry, "missing coordinates", nil)
	}
	values, err := decode.Decode[[]float64](r, coords)
	if err != nil {
		return orb.Point{}, err
	}
	if len(values) < 2 {
		return orb.Point{}, decode.Fail(coords, fmt.Sprintf("expected [lon, lat], got %d values", len(values)), nil)
	}
	return orb.Point{values[0], values[1]}, nil
}

func assetsOf(r *decode.Registry, b *decode.Binder) (map[string]panoramax.Link, error) {
	v, ok := b.Field("assets")
	if !ok || v.IsNull() {
		return map[string]panoramax.Link{}, nil
	}
	return decode.Map[panoramax.Link](r, v)
}

func decodeLink(r *decode.Registry, v decode.Value) (panoramax.Link, error) {
	var (
		l    panoramax.Link
		href *url.URL
	)
	b := decode.Bind(r, v)
	decode.Into(b, "href", &href)
	decode.Into(b, "rel", &l.Rel)
	decode.Into(b, "type", &l.Type)
	decode.Into(b, "title", &l.Title)
	l.Href = href
	return l, b.Err()
}

func decodeProvider(r *decode.Registry, v decode.Value) (panoramax.Provider, error) {
	var p panoramax.Provider
	b := decode.Bind(r, v)
	decode.Into(b, "id", &p.ID)
	decode.Into(b, "name", &p.Name)
	decode.Into(b, "roles", &p.Roles)
	return p, b.Err()
}

func decodeInteriorOrientation(r *decode.Registry, v decode.Value) (*panoramax.InteriorOrientation, error) {
	var (
		model, manufacturer string
		focal               float64
		sensor              []int
	)
	b := decode.Bind(r, v)
	decode.Into(b, "camera_model", &model)
	decode.Into(b, "camera_manufacturer", &manufacturer)
	decode.Into(b, "focal_length", &focal)
	decode.Into(b, "sensor_array_dimensions", &sensor)
	if err := b.Err(); err != nil {
		return nil, err
	}

	orient, err := panoramax.NewInteriorOrientation(model, focal, manufacturer, sensor)
	if err != nil {
		return nil, decode.Fail(v, "interior orientation", err)
	}
	return &orient, nil
}

func decodeProperties(r *decode.Registry, v decode.Value) (panoramax.Properties, error) {
	var p panoramax.Properties
	b := decode.Bind(r, v)
	decode.Into(b, "exif", &p.Exif)
	decode.Into(b, "created", &p.Created)
	decode.Into(b, "updated", &p.Updated)
	decode.Into(b, "datetime", &p.Datetime)
	decode.Into(b, "datetimetz", &p.DatetimeTZ)
	decode.Into(b, "license", &p.License)
	decode.Into(b, "semantics", &p.Semantics)
	decode.Into(b, "annotations", &p.Annotations)
	decode.Into(b, "collection", &p.Collection)
	decode.Into(b, "view_azimuth", &p.ViewAzimuth)
	decode.Into(b, "geovisio_image", &p.GeovisioImage)
	decode.Into(b, "geovisio_status", &p.GeovisioStatus)
	decode.Into(b, "geovisio_producer", &p.GeovisioProducer)
	decode.Into(b, "geovisio_thumbnail", &p.GeovisioThumbnail)
	decode.Into(b, "geovisio_visibility", &p.GeovisioVisibility)
	decode.Into(b, "geovisio_rank_in_collection", &p.RankInCollection)
	decode.Into(b, "original_file_name", &p.OriginalFileName)
	decode.Into(b, "original_file_size", &p.OriginalFileSize)
	decode.Into(b, "pers_interior_orientation", &p.InteriorOrientation)
	decode.Into(b, "quality_horizontal_accuracy", &p.HorizontalAccuracy)
	return p, b.Err()
}
