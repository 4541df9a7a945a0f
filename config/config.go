// Package config loads the settings a Graph and its playback Loop need
// at startup: sample rate, maximum block size, and the
// duplicate-connection policy.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arborly/audiograph/graph"
)

// Config is the top-level settings document, typically loaded from a
// YAML file at process startup.
type Config struct {
	SampleRate float64 `yaml:"sample_rate"`
	// MaxBlockSize bounds the largest block a graph will ever be asked to
	// render; a sink requesting more forces a reallocation.
	MaxBlockSize int `yaml:"max_block_size"`
	// StrictConnections selects Connect's behavior when a target input
	// already has a source wired: true rejects with
	// graph.ErrDuplicateConnection, false silently replaces it.
	StrictConnections bool `yaml:"strict_connections"`
}

// Default returns the settings a new graph uses if nothing else is
// configured: 48kHz, 512-sample blocks, and the lenient (replace)
// duplicate-connection policy.
func Default() Config {
	return Config{
		SampleRate:        48000,
		MaxBlockSize:      512,
		StrictConnections: false,
	}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a Config, filling any unset field from
// Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	if cfg.SampleRate <= 0 {
		return Config{}, fmt.Errorf("config: sample_rate must be positive, got %v", cfg.SampleRate)
	}
	if cfg.MaxBlockSize <= 0 {
		return Config{}, fmt.Errorf("config: max_block_size must be positive, got %v", cfg.MaxBlockSize)
	}
	return cfg, nil
}

// NewGraph builds and allocates a graph.Graph using this config's sample
// rate, block size, and duplicate-connection policy.
func (c Config) NewGraph() *graph.Graph {
	g := graph.New(c.StrictConnections)
	g.Allocate(c.SampleRate, c.MaxBlockSize)
	return g
}
