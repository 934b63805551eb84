package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// LoaderConfig controls URL resolution and transfer behaviour for a loader
// instance. All fields are optional; zero values fall back to defaults.
type LoaderConfig struct {
	// Prepended to every non-absolute URL. Must end with '/' if set; the
	// loader fixes it up otherwise.
	BaseURL string `toml:"base_url"`
	// Inserted between BaseURL and the file URL.
	Path string `toml:"path"`
	// Prepended to the file URL itself (after Path).
	Prefix string `toml:"prefix"`
	// Root directory for plain relative URLs when loading from disk.
	LocalRoot string `toml:"local_root"`
	// Maximum number of transfers in flight at once.
	MaxParallelDownloads int `toml:"max_parallel_downloads"`
	// Per-transfer timeout in milliseconds. Zero disables the timeout.
	ResponseTimeoutMS int `toml:"response_timeout_ms"`
	// Sent on every HTTP request.
	UserAgent string `toml:"user_agent"`
	// Extra headers sent on every HTTP request.
	Headers map[string]string `toml:"headers"`
	// Re-enqueue files whose local source changes on disk.
	WatchAssets bool `toml:"watch_assets"`
}

const (
	DefaultMaxParallelDownloads = 4
	DefaultResponseTimeoutMS    = 30000
	DefaultUserAgent            = "mochi-loader/1.0"
)

func Default() *LoaderConfig {
	return &LoaderConfig{
		MaxParallelDownloads: DefaultMaxParallelDownloads,
		ResponseTimeoutMS:    DefaultResponseTimeoutMS,
		UserAgent:            DefaultUserAgent,
	}
}

// ResponseTimeout returns the per-transfer timeout as a duration.
func (c *LoaderConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMS) * time.Millisecond
}

// LoadFile reads a TOML loader configuration, applying defaults for any
// unset field.
func LoadFile(path string) (*LoaderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *LoaderConfig) Validate() error {
	if c.MaxParallelDownloads < 1 {
		return fmt.Errorf("config: max_parallel_downloads must be >= 1, got %d", c.MaxParallelDownloads)
	}
	if c.ResponseTimeoutMS < 0 {
		return fmt.Errorf("config: response_timeout_ms must not be negative")
	}
	return nil
}

func (c *LoaderConfig) normalize() {
	if c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Path != "" && !strings.HasSuffix(c.Path, "/") {
		c.Path += "/"
	}
}

// Normalize applies the same fixups LoadFile does. Exposed for configs built
// in code rather than parsed from disk.
func (c *LoaderConfig) Normalize() {
	c.normalize()
}
