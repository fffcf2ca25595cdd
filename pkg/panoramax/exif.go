package panoramax

// Exif holds the raw EXIF and GPS tags reported for an image. Field names are
// the tag keys with their dots removed ("Exif.GPSInfo.GPSAltitude" becomes
// ExifGPSInfoGPSAltitude). Values are kept as the strings the server sends;
// rationals look like "1234/100". An empty field means the tag was absent.
type Exif struct {
	ExifGPSInfoGPSAltitude         string
	ExifGPSInfoGPSAltitudeRef      string
	ExifGPSInfoGPSDateStamp        string
	ExifGPSInfoGPSImgDirection     string
	ExifGPSInfoGPSImgDirectionRef  string
	ExifGPSInfoGPSLatitude         string
	ExifGPSInfoGPSLatitudeRef      string
	ExifGPSInfoGPSLongitude        string
	ExifGPSInfoGPSLongitudeRef     string
	ExifGPSInfoGPSProcessingMethod string
	ExifGPSInfoGPSSpeed            string
	ExifGPSInfoGPSSpeedRef         string
	ExifGPSInfoGPSTimeStamp        string
	ExifImageDateTime              string
	ExifImageExifTag               string
	ExifImageGPSTag                string
	ExifImageImageLength           string
	ExifImageImageWidth            string
	ExifImageMake                  string
	ExifImageModel                 string
	ExifImageOrientation           string
	ExifPhotoDateTimeDigitized     string
	ExifPhotoDateTimeOriginal      string
	ExifPhotoExifVersion           string
	ExifPhotoExposureTime          string
	ExifPhotoFlash                 string
	ExifPhotoFocalLength           string
	ExifPhotoISOSpeedRatings       string
	ExifPhotoLightSource           string
	ExifPhotoOffsetTime            string
	ExifPhotoOffsetTimeDigitized   string
	ExifPhotoOffsetTimeOriginal    string
	ExifPhotoPixelXDimension       string
	ExifPhotoPixelYDimension       string
	ExifPhotoSubSecTime            string
	ExifPhotoSubSecTimeDigitized   string
	ExifPhotoSubSecTimeOriginal    string
	ExifPhotoWhiteBalance          string
}
