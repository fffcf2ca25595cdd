package config

import "time"

const (
	defaultBaseURL           = "https://api.panoramax.xyz/api"
	defaultMVTPath           = "/map/{z}/{x}/{y}.mvt"
	defaultTimeoutString     = "30s"
	defaultTimeout           = 30 * time.Second
	defaultMaxBackoffSeconds = 600
	defaultImageSize         = 10
	defaultMaxZoom           = 15
	defaultSequenceColor     = "#FFA500"
	defaultImageColor        = "#FF0000"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		API: API{
			BaseURL:           defaultBaseURL,
			MVTPath:           defaultMVTPath,
			Timeout:           defaultTimeoutString,
			MaxBackoffSeconds: defaultMaxBackoffSeconds,
		},
		Display: Display{
			ImageSize:     defaultImageSize,
			MaxZoom:       defaultMaxZoom,
			SequenceColor: defaultSequenceColor,
			ImageColor:    defaultImageColor,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
