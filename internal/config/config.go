// Package config loads the TOML configuration of the panoramax command.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// API configures how the catalog is reached.
type API struct {
	BaseURL string `toml:"base_url"`
	MVTPath string `toml:"mvt_path"`
	// Timeout is a Go duration string such as "30s".
	Timeout           string `toml:"timeout"`
	MaxBackoffSeconds int    `toml:"max_backoff_seconds"`
	Token             string `toml:"token"`
}

// Display holds the map display parameters handed to renderers.
type Display struct {
	ImageSize     int    `toml:"image_size"`
	MaxZoom       int    `toml:"max_zoom"`
	SequenceColor string `toml:"sequence_color"`
	ImageColor    string `toml:"image_color"`
}

// Logging selects log level and format.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values.
type Config struct {
	API     API     `toml:"api"`
	Display Display `toml:"display"`
	Logging Logging `toml:"log"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "panoramax", "config.toml"), nil
}

// Load reads and validates the file at path. An empty path means the
// default location. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			return &cfg, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a TOML document over the defaults and validates it.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := toml.NewDecoder(r).DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.MVTPath = strings.TrimSpace(c.API.MVTPath)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// RequestTimeout parses API.Timeout. Validate guarantees it parses.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return defaultTimeout
	}
	return d
}

// MaxBackoff is the liveness backoff ceiling.
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.API.MaxBackoffSeconds) * time.Second
}

// MVTURL is the vector tile template, base URL joined with the MVT path.
// The {z}/{x}/{y} placeholders are kept literally.
func (c *Config) MVTURL() string {
	path := c.API.MVTPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.API.BaseURL + path
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
