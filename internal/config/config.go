// Package config carries the resolution-call configuration the CLI and
// library callers share: query limits, missing-file reporting, and the
// input-discovery globs, with an optional .cozo.kdl overlay file.
package config

import (
	"fmt"
)

// Defaults for resolution limits. Zero means "unbounded" for both the
// timeout and the memory ceiling, matching the query parameters' contract.
const (
	DefaultTimeoutMs = 0
	DefaultMaxBytes  = 0
)

type Config struct {
	Resolution Resolution
	Input      Input
}

// Resolution mirrors the driver's named parameters, minus the references
// themselves (those always come from the query, never from a file).
type Resolution struct {
	TimeoutMs          uint64
	MaxBytes           uint64
	OutputMissingFiles bool
	// Stats enables the auxiliary statistics output alongside the rows.
	Stats bool
}

// Input configures how the CLI discovers serialized graph and path rows on
// disk. Each entry is a doublestar glob relative to Root.
type Input struct {
	Root          string
	GraphGlobs    []string
	NodePathGlobs []string
	RootPathGlobs []string
	IndexGlobs    []string
}

// Default returns the built-in configuration used when no .cozo.kdl file
// is present.
func Default() *Config {
	return &Config{
		Resolution: Resolution{
			TimeoutMs: DefaultTimeoutMs,
			MaxBytes:  DefaultMaxBytes,
		},
		Input: Input{
			Root:          ".",
			GraphGlobs:    []string{"**/*.graph.jsonl"},
			NodePathGlobs: []string{"**/*.node-paths.jsonl"},
			RootPathGlobs: []string{"**/*.root-paths.jsonl"},
			IndexGlobs:    []string{"**/*.paths-index.jsonl"},
		},
	}
}

// Validate rejects configurations no resolution call could honor.
func (c *Config) Validate() error {
	if c.Input.Root == "" {
		return fmt.Errorf("input root must not be empty")
	}
	if len(c.Input.GraphGlobs) == 0 {
		return fmt.Errorf("at least one graph glob is required")
	}
	return nil
}

// Load reads the configuration, overlaying .cozo.kdl from projectRoot onto
// the defaults when the file exists.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
