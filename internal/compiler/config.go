package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the conventional project configuration file.
const ConfigFileName = "relc.yaml"

// Config is the optional relc.yaml project configuration. All fields have
// working defaults; a missing file is not an error.
type Config struct {
	// SearchPaths lists extra directories for import lookup. It is loaded
	// from relc.yaml, but the resolver does not consult it: import paths
	// resolve only relative to the importing file.
	SearchPaths []string `yaml:"search_paths"`
	// Extension is the source file extension. Defaults to ".rel". It is
	// loaded from relc.yaml, but the resolver does not read it: extension-less
	// import paths always get ".rel" appended.
	Extension string `yaml:"extension"`
	// Out is the default output path for `relc compile`; empty means stdout.
	Out string `yaml:"out"`
}

// DefaultConfig returns the configuration used when no relc.yaml exists.
func DefaultConfig() Config {
	return Config{Extension: ".rel"}
}

// LoadConfig reads and parses a relc.yaml file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Extension == "" {
		cfg.Extension = ".rel"
	}
	return cfg, nil
}

// FindConfig searches dir and its ancestors for relc.yaml, returning the
// defaults when none is found.
func FindConfig(dir string) (Config, string, error) {
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := LoadConfig(candidate)
			return cfg, candidate, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultConfig(), "", nil
		}
		dir = parent
	}
}
