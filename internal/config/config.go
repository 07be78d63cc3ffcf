// Package config holds the estimator settings the CLI reads from YAML and
// overrides from flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"slice-align/internal/ransac"
	"slice-align/internal/transform"
)

// MLS configures the moving-least-squares model.
type MLS struct {
	Base  string  `yaml:"base"`
	Alpha float64 `yaml:"alpha"`
}

// Config is the registration configuration document.
type Config struct {
	Model         string  `yaml:"model"`
	Threshold     float64 `yaml:"threshold"`
	MinInliers    int     `yaml:"min_inliers"`
	Confidence    float64 `yaml:"confidence"`
	MaxIterations int     `yaml:"max_iterations"`
	MinIterations int     `yaml:"min_iterations"`
	Seed          int64   `yaml:"seed"`
	Workers       int     `yaml:"workers"`
	MLS           MLS     `yaml:"mls"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Model:         "affine",
		Threshold:     2.0,
		MinInliers:    0, // raised to the model minimum by the estimator
		Confidence:    0.995,
		MaxIterations: 1000,
		MinIterations: 10,
		Seed:          1,
		Workers:       1,
		MLS:           MLS{Base: "similarity", Alpha: 1.0},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Kind resolves the configured model name.
func (c Config) Kind() (transform.Kind, error) {
	return transform.ParseKind(c.Model)
}

// Params assembles the estimator parameters for the configured model.
func (c Config) Params(kind transform.Kind) ransac.Params {
	return ransac.Params{
		Kind:          kind,
		Threshold:     c.Threshold,
		MinInliers:    c.MinInliers,
		Confidence:    c.Confidence,
		MaxIterations: c.MaxIterations,
		MinIterations: c.MinIterations,
		Seed:          c.Seed,
		Workers:       c.Workers,
	}
}
