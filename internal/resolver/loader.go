// Package resolver implements the multi-file module resolver: per-file
// parse caching, cycle detection, import/export verification, and the
// reachability closure used to compute an entry file's merged AST.
package resolver

import (
	"fmt"
	"os"
)

// Loader maps a canonical path to source text, synchronously. It is
// injected so the resolver is testable without touching disk.
type Loader interface {
	Load(path string) (string, error)
}

// FileLoader is the default synchronous, filesystem-backed Loader used by
// cmd/relc.
type FileLoader struct{}

// Load reads source text from disk.
func (FileLoader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// MapLoader is an in-memory Loader backed by a path->source map, used in
// tests to exercise multi-file resolution without a filesystem.
type MapLoader map[string]string

// Load looks up path in the map.
func (m MapLoader) Load(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return src, nil
}
