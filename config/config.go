// Package config loads vera's compiler-wide settings from a TOML file,
// the same convention the reference ARM emulator's config package uses
// with github.com/BurntSushi/toml.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds compiler defaults that a CLI invocation can override.
type Config struct {
	Codegen struct {
		MaxSize int `toml:"max_size"` // maximum emitted image size in bytes
	} `toml:"codegen"`

	Ports struct {
		Names []string `toml:"names"` // default port declarations, in order
	} `toml:"ports"`

	Run struct {
		MaxPasses       int `toml:"max_passes"`
		MaxStepsPerPass int `toml:"max_steps_per_pass"`
	} `toml:"run"`

	Format struct {
		CanonicalizeWhitespace bool `toml:"canonicalize_whitespace"`
	} `toml:"format"`
}

// DefaultConfig returns a Config with the values `vera` uses absent any
// TOML file, mirroring the reference's DefaultConfig.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Codegen.MaxSize = 1 << 20 // 1 MiB
	cfg.Run.MaxPasses = 10000
	cfg.Run.MaxStepsPerPass = 1 << 20
	cfg.Format.CanonicalizeWhitespace = true
	return cfg
}

// Load overlays path's TOML contents onto DefaultConfig. A missing file
// is not an error — the defaults are returned unchanged, matching the
// reference's "config file is optional" behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
