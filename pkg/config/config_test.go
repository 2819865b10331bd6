package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cobmap/cobmap/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cobmap.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[scan]
extensions = [".cob", ".cbl"]
excludes = ["*-test.cob"]
workers = 4

[analysis]
max_cycles = 500
timeout_seconds = 30

[render]
style = "simple"
format = "svg"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl_hours = 12
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if want := []string{".cob", ".cbl"}; !reflect.DeepEqual(cfg.Scan.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Scan.Extensions, want)
	}
	if cfg.Analysis.MaxCycles != 500 {
		t.Errorf("MaxCycles = %d, want 500", cfg.Analysis.MaxCycles)
	}
	if cfg.Render.Style != "simple" || cfg.Render.Format != "svg" {
		t.Errorf("Render = %+v, want simple/svg", cfg.Render)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v, want redis backend", cfg.Cache)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[analysis]\nmax_cycles = 10\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Render.Style != "detailed" {
		t.Errorf("Style = %q, want default detailed", cfg.Render.Style)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Backend = %q, want default file", cfg.Cache.Backend)
	}
	if cfg.Analysis.MaxCycles != 10 {
		t.Errorf("MaxCycles = %d, want 10", cfg.Analysis.MaxCycles)
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "[scan\nextensions = not valid")

	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad style", func(c *Config) { c.Render.Style = "fancy" }, true},
		{"bad format", func(c *Config) { c.Render.Format = "pdf" }, true},
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcache" }, true},
		{"negative cycles", func(c *Config) { c.Analysis.MaxCycles = -1 }, true},
		{"negative timeout", func(c *Config) { c.Analysis.TimeoutSeconds = -5 }, true},
		{"negative workers", func(c *Config) { c.Scan.Workers = -2 }, true},
		{"none backend", func(c *Config) { c.Cache.Backend = "none" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
