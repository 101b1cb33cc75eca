package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/tratori/prefetchmap/pkg/prefetchmap"
)

// loadConfigFile reads a JSONC config file at path and merges it over
// prefetchmap.DefaultConfig(), following the same standardize-then-unmarshal
// shape used elsewhere in this ecosystem for comment-tolerant config files.
// A missing path is not an error: the defaults are returned unchanged.
func loadConfigFile(path string) (prefetchmap.Config, error) {
	cfg := prefetchmap.DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return prefetchmap.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return prefetchmap.Config{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return prefetchmap.Config{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	return cfg, nil
}
