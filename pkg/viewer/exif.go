package viewer

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	exifLayout    = "2006:01:02 15:04:05"
	gpsDateLayout = "2006:01:02"
	displayLayout = "2006-01-02 15:04:05"
)

func focusRef(id string) *url.URL {
	return &url.URL{RawQuery: url.Values{"focus": {"pic"}, "pic": {id}}.Encode()}
}

// Speed is the GPS speed tag, in the unit named by its ref tag.
func (e *Entry) Speed() (float64, bool) {
	return parseRational(e.image.Properties.Exif.ExifGPSInfoGPSSpeed)
}

// Elevation is the GPS altitude tag.
func (e *Entry) Elevation() (float64, bool) {
	return parseRational(e.image.Properties.Exif.ExifGPSInfoGPSAltitude)
}

// Direction is the GPS image direction tag, in degrees.
func (e *Entry) Direction() (float64, bool) {
	return parseRational(e.image.Properties.Exif.ExifGPSInfoGPSImgDirection)
}

// ProcessingMethod is the raw GPS processing method tag.
func (e *Entry) ProcessingMethod() string {
	return e.image.Properties.Exif.ExifGPSInfoGPSProcessingMethod
}

// ExifTime is the image DateTime tag read as UTC.
func (e *Entry) ExifTime() (time.Time, bool) {
	raw := strings.TrimSpace(e.image.Properties.Exif.ExifImageDateTime)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(exifLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GPSTime combines the GPS date stamp with the "h/1 m/1 s/1" time stamp.
func (e *Entry) GPSTime() (time.Time, bool) {
	exif := e.image.Properties.Exif
	if exif.ExifGPSInfoGPSDateStamp == "" || exif.ExifGPSInfoGPSTimeStamp == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(gpsDateLayout, strings.TrimSpace(exif.ExifGPSInfoGPSDateStamp), time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	parts := strings.Fields(exif.ExifGPSInfoGPSTimeStamp)
	if len(parts) == 0 || len(parts) > 3 {
		return time.Time{}, false
	}
	var hms [3]int
	for i, part := range parts {
		v, ok := parseRational(part)
		if !ok {
			return time.Time{}, false
		}
		hms[i] = int(math.Round(v))
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hms[0], hms[1], hms[2], 0, time.UTC), true
}

// parseRational reads EXIF rationals ("1234/100") and plain decimals.
func parseRational(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	num, den, isRatio := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if !isRatio {
		return n, true
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}
