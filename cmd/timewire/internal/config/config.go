// Package config loads demo configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the demo parameters.
type Config struct {
	// Graph controls the synthetic timing graph.
	Graph GraphConfig `yaml:"graph"`
	// Baseline controls the deep-GCN ablation baseline.
	Baseline BaselineConfig `yaml:"baseline"`
}

// GraphConfig sizes the synthetic netlist.
type GraphConfig struct {
	PrimaryInputs int `yaml:"primary_inputs"`
	Stages        int `yaml:"stages"`
	Fanout        int `yaml:"fanout"`
}

// BaselineConfig sizes the deep-GCN baseline.
type BaselineConfig struct {
	Layers int `yaml:"layers"`
}

// Default returns the default demo configuration.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			PrimaryInputs: 4,
			Stages:        3,
			Fanout:        2,
		},
		Baseline: BaselineConfig{
			Layers: 6,
		},
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that all sizes are usable.
func (c *Config) Validate() error {
	if c.Graph.PrimaryInputs < 1 {
		return fmt.Errorf("graph.primary_inputs must be at least 1, got %d", c.Graph.PrimaryInputs)
	}
	if c.Graph.Stages < 1 {
		return fmt.Errorf("graph.stages must be at least 1, got %d", c.Graph.Stages)
	}
	if c.Graph.Fanout < 1 {
		return fmt.Errorf("graph.fanout must be at least 1, got %d", c.Graph.Fanout)
	}
	if c.Baseline.Layers < 2 {
		return fmt.Errorf("baseline.layers must be at least 2, got %d", c.Baseline.Layers)
	}
	return nil
}
