package panoramax

// Properties is the properties member of an image feature: EXIF tags plus
// catalog metadata.
type Properties struct {
	Exif Exif

	Created    string
	Updated    string
	Datetime   string
	DatetimeTZ string
	License    string

	// Loosely typed members are kept as plain JSON data.
	Semantics   []any
	Annotations []any
	Collection  any

	ViewAzimuth        int
	GeovisioImage      string
	GeovisioStatus     string
	GeovisioProducer   string
	GeovisioThumbnail  string
	GeovisioVisibility string
	RankInCollection   int

	OriginalFileName string
	OriginalFileSize int64

	// InteriorOrientation is nil when the server does not report one.
	InteriorOrientation *InteriorOrientation

	HorizontalAccuracy float64
}
