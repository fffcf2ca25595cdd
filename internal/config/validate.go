package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if !isAbsoluteURL(c.API.BaseURL) {
		return fmt.Errorf("api.base_url: %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.MVTPath == "" {
		return errors.New("api.mvt_path must be set")
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", d)
	}
	if c.API.MaxBackoffSeconds <= 0 {
		return fmt.Errorf("api.max_backoff_seconds must be positive, got %d", c.API.MaxBackoffSeconds)
	}
	return nil
}

func (c *Config) validateDisplay() error {
	if c.Display.ImageSize <= 0 {
		return fmt.Errorf("display.image_size must be positive, got %d", c.Display.ImageSize)
	}
	if c.Display.MaxZoom <= 0 {
		return fmt.Errorf("display.max_zoom must be positive, got %d", c.Display.MaxZoom)
	}
	if !colorPattern.MatchString(c.Display.SequenceColor) {
		return fmt.Errorf("display.sequence_color: %q is not a #RRGGBB color", c.Display.SequenceColor)
	}
	if !colorPattern.MatchString(c.Display.ImageColor) {
		return fmt.Errorf("display.image_color: %q is not a #RRGGBB color", c.Display.ImageColor)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
