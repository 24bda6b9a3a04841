package project

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// RuntimeConfig mirrors the embedding API's Configure options, loadable
// from a project's kipper.toml [runtime] section.
type RuntimeConfig struct {
	HeapSizeBytes   uint32 `toml:"heap_size"`
	TenureThreshold uint8  `toml:"tenure_threshold"`
}

type manifest struct {
	Runtime RuntimeConfig `toml:"runtime"`
}

// LoadRuntimeConfig parses the [runtime] section of a kipper.toml at path.
// A missing file is not an error; it yields a zero RuntimeConfig, which
// callers should pass straight to heap.DefaultConfig()'s fallback.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return RuntimeConfig{}, nil
	}
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return RuntimeConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return m.Runtime, nil
}
