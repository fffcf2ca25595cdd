// Package panoramax provides the value types of a Panoramax catalog: images
// (GeoJSON features with resolution variants and EXIF metadata), their links,
// providers and properties, and collections of images.
//
// Values are built once by the codec package and shared read-only between a
// Collection and any cache entry that refers to the same image.
//
// Example usage:
//
//	link, ok := image.BestAsset()
//	if ok {
//	    fmt.Println(link.Href)
//	}
//	fmt.Println(image.Lat(), image.Lon())
package panoramax
