package codec

import (
	"github.com/robert-malhotra/go-panoramax-client/pkg/decode"
	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

// decodeExif reads the tags by their normalized keys, so
// "Exif.Image.Make" lands in ExifImageMake.
func decodeExif(r *decode.Registry, v decode.Value) (panoramax.Exif, error) {
	var e panoramax.Exif
	b := decode.Bind(r, v)
	decode.Into(b, "ExifGPSInfoGPSAltitude", &e.ExifGPSInfoGPSAltitude)
	decode.Into(b, "ExifGPSInfoGPSAltitudeRef", &e.ExifGPSInfoGPSAltitudeRef)
	decode.Into(b, "ExifGPSInfoGPSDateStamp", &e.ExifGPSInfoGPSDateStamp)
	decode.Into(b, "ExifGPSInfoGPSImgDirection", &e.ExifGPSInfoGPSImgDirection)
	decode.Into(b, "ExifGPSInfoGPSImgDirectionRef", &e.ExifGPSInfoGPSImgDirectionRef)
	decode.Into(b, "ExifGPSInfoGPSLatitude", &e.ExifGPSInfoGPSLatitude)
	decode.Into(b, "ExifGPSInfoGPSLatitudeRef", &e.ExifGPSInfoGPSLatitudeRef)
	decode.Into(b, "ExifGPSInfoGPSLongitude", &e.ExifGPSInfoGPSLongitude)
	decode.Into(b, "ExifGPSInfoGPSLongitudeRef", &e.ExifGPSInfoGPSLongitudeRef)
	decode.Into(b, "ExifGPSInfoGPSProcessingMethod", &e.ExifGPSInfoGPSProcessingMethod)
	decode.Into(b, "ExifGPSInfoGPSSpeed", &e.ExifGPSInfoGPSSpeed)
	decode.Into(b, "ExifGPSInfoGPSSpeedRef", &e.ExifGPSInfoGPSSpeedRef)
	decode.Into(b, "ExifGPSInfoGPSTimeStamp", &e.ExifGPSInfoGPSTimeStamp)
	decode.Into(b, "ExifImageDateTime", &e.ExifImageDateTime)
	decode.Into(b, "ExifImageExifTag", &e.ExifImageExifTag)
	decode.Into(b, "ExifImageGPSTag", &e.ExifImageGPSTag)
	decode.Into(b, "ExifImageImageLength", &e.ExifImageImageLength)
	decode.Into(b, "ExifImageImageWidth", &e.ExifImageImageWidth)
	decode.Into(b, "ExifImageMake", &e.ExifImageMake)
	decode.Into(b, "ExifImageModel", &e.ExifImageModel)
	decode.Into(b, "ExifImageOrientation", &e.ExifImageOrientation)
	decode.Into(b, "ExifPhotoDateTimeDigitized", &e.ExifPhotoDateTimeDigitized)
	decode.Into(b, "ExifPhotoDateTimeOriginal", &e.ExifPhotoDateTimeOriginal)
	decode.Into(b, "ExifPhotoExifVersion", &e.ExifPhotoExifVersion)
	decode.Into(b, "ExifPhotoExposureTime", &e.ExifPhotoExposureTime)
	decode.Into(b, "ExifPhotoFlash", &e.ExifPhotoFlash)
	decode.Into(b, "ExifPhotoFocalLength", &e.ExifPhotoFocalLength)
	decode.Into(b, "ExifPhotoISOSpeedRatings", &e.ExifPhotoISOSpeedRatings)
	decode.Into(b, "ExifPhotoLightSource", &e.ExifPhotoLightSource)
	decode.Into(b, "ExifPhotoOffsetTime", &e.ExifPhotoOffsetTime)
	decode.Into(b, "ExifPhotoOffsetTimeDigitized", &e.ExifPhotoOffsetTimeDigitized)
	decode.Into(b, "ExifPhotoOffsetTimeOriginal", &e.ExifPhotoOffsetTimeOriginal)
	decode.Into(b, "ExifPhotoPixelXDimension", &e.ExifPhotoPixelXDimension)
	decode.Into(b, "ExifPhotoPixelYDimension", &e.ExifPhotoPixelYDimension)
	decode.Into(b, "ExifPhotoSubSecTime", &e.ExifPhotoSubSecTime)
	decode.Into(b, "ExifPhotoSubSecTimeDigitized", &e.ExifPhotoSubSecTimeDigitized)
	decode.Into(b, "ExifPhotoSubSecTimeOriginal", &e.ExifPhotoSubSecTimeOriginal)
	decode.Into(b, "ExifPhotoWhiteBalance", &e.ExifPhotoWhiteBalance)
	return e, b.Err()
}
