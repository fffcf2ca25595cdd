package panoramax

import "github.com/paulmach/orb"

// LatLon is implemented by values with a geographic position.
type LatLon interface {
	Lat() float64
	Lon() float64
}

// Image is one picture of the catalog (a GeoJSON feature).
type Image struct {
	ID             string
	BBox           []float64
	Type           string
	Links          []Link
	Assets         map[string]Link
	Providers      []Provider
	Collection     string
	Properties     Properties
	STACVersion    string
	STACExtensions []string

	// Position is taken from geometry.coordinates, [lon, lat].
	Position orb.Point
}

var _ LatLon = (*Image)(nil)

// Lat returns the latitude of the image.
func (img *Image) Lat() float64 { return img.Position.Lat() }

// Lon returns the longitude of the image.
func (img *Image) Lon() float64 { return img.Position.Lon() }

// BestAsset returns the best image variant of the image.
func (img *Image) BestAsset() (Link, bool) {
	return BestAsset(img.Assets)
}

// Link returns the first link of the image with the given rel.
func (img *Image) Link(rel string) (Link, bool) {
	return FindLink(img.Links, rel)
}
