// Package config loads tool configuration from a TOML file.
//
// Configuration is optional: every field has a default, a missing file is
// not an error, and command-line flags override whatever the file says.
// The file is looked up as .cobmap.toml in the working directory, then in
// the user's home directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cobmap/cobmap/pkg/errors"
	"github.com/cobmap/cobmap/pkg/export"
)

// DefaultFilename is the config file name searched for when no explicit
// path is given.
const DefaultFilename = ".cobmap.toml"

// Config is the full tool configuration.
type Config struct {
	Scan     Scan     `toml:"scan"`
	Analysis Analysis `toml:"analysis"`
	Render   Render   `toml:"render"`
	Cache    Cache    `toml:"cache"`
}

// Scan configures source discovery.
type Scan struct {
	// Extensions lists the file extensions treated as COBOL sources.
	Extensions []string `toml:"extensions"`
	// Excludes are glob patterns matched against file base names.
	Excludes []string `toml:"excludes"`
	// Workers bounds parallel extraction; zero picks the built-in default.
	Workers int `toml:"workers"`
}

// Analysis configures the graph analysis passes.
type Analysis struct {
	// MaxCycles caps cycle enumeration; zero means unbounded.
	MaxCycles int `toml:"max_cycles"`
	// TimeoutSeconds bounds a single analysis run; zero means no timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Render configures graph artifact generation.
type Render struct {
	Style  string `toml:"style"`
	Format string `toml:"format"`
}

// Cache configures result caching.
type Cache struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`
	// RedisAddr is the host:port of the Redis backend.
	RedisAddr string `toml:"redis_addr"`
	// TTLHours bounds cache entry lifetime; zero picks the built-in default.
	TTLHours int `toml:"ttl_hours"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Render: Render{Style: string(export.StyleDetailed), Format: string(export.FormatDOT)},
		Cache:  Cache{Backend: "file"},
	}
}

// Load reads the configuration at path. An empty path triggers the search
// order documented on the package; a missing file yields [Default].
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = find()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func find() string {
	if _, err := os.Stat(DefaultFilename); err == nil {
		return DefaultFilename
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultFilename)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the cross-field constraints a TOML decode cannot express.
func (c Config) Validate() error {
	if _, err := export.ParseStyle(c.Render.Style); err != nil {
		return err
	}
	if _, err := export.ParseFormat(c.Render.Format); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (expected file, redis, or none)", c.Cache.Backend)
	}
	if c.Analysis.MaxCycles < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_cycles cannot be negative")
	}
	if c.Analysis.TimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout_seconds cannot be negative")
	}
	if c.Scan.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers cannot be negative")
	}
	return nil
}
