package panoramax

import "math"

// Known asset names.
const (
	AssetHD    = "hd"
	AssetSD    = "sd"
	AssetThumb = "thumb"
)

// MaxWidth returns the expected maximum pixel width of a known asset kind.
// The hd variant is the full-size original and reports math.MaxInt.
func MaxWidth(name string) (int, bool) {
	switch name {
	case AssetHD:
		return math.MaxInt, true
	case AssetSD:
		return 2048, true
	case AssetThumb:
		return 500, true
	default:
		return 0, false
	}
}

// BestAsset picks the best available image variant: "hd", then "sd", then
// any asset not named "thumb", then "thumb". Which non-thumb asset wins when
// there are several unknown ones is unspecified.
func BestAsset(assets map[string]Link) (Link, bool) {
	if l, ok := assets[AssetHD]; ok {
		return l, true
	}
	if l, ok := assets[AssetSD]; ok {
		return l, true
	}
	for name, l := range assets {
		if name != AssetThumb {
			return l, true
		}
	}
	l, ok := assets[AssetThumb]
	return l, ok
}
