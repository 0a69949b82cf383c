package extraTree

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls the growth of a single tree.
type Config struct {
	// MaxFeatures is the number of features tried per split. Values above
	// the dataset's feature count are clamped to it.
	MaxFeatures int `yaml:"max_features" json:"max_features" bson:"max_features"`
	// Tolerance stops the split search at the first candidate scoring at or below it.
	Tolerance float64 `yaml:"tolerance" json:"tolerance" bson:"tolerance"`
	// MinSamplesToSplit is the smallest subset that may become a decision node.
	MinSamplesToSplit int `yaml:"min_samples_to_split" json:"min_samples_to_split" bson:"min_samples_to_split"`
	// MaxDepth caps the depth of decision nodes; 0 leaves it unbounded.
	MaxDepth  int       `yaml:"max_depth" json:"max_depth" bson:"max_depth"`
	Criterion Criterion `yaml:"criterion" json:"criterion" bson:"criterion"`
}

// DefaultConfig tries every feature, stops searching at an impurity of 1e-3
// and grows until leaves are pure or hold a single row.
func DefaultConfig() Config {
	return Config{
		MaxFeatures:       math.MaxInt32,
		Tolerance:         1e-3,
		MinSamplesToSplit: 2,
		Criterion:         GiniCriterion,
	}
}

func (c Config) Validate() error {
	if c.MaxFeatures < 1 {
		return &ConfigError{Field: "max_features", Reason: fmt.Sprintf("%d is below 1", c.MaxFeatures)}
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return &ConfigError{Field: "tolerance", Reason: fmt.Sprintf("%v is not a non-negative number", c.Tolerance)}
	}
	if c.MinSamplesToSplit < 2 {
		return &ConfigError{Field: "min_samples_to_split", Reason: fmt.Sprintf("%d is below 2", c.MinSamplesToSplit)}
	}
	if c.MaxDepth < 0 {
		return &ConfigError{Field: "max_depth", Reason: fmt.Sprintf("%d is negative", c.MaxDepth)}
	}
	switch c.Criterion {
	case "", GiniCriterion, EntropyCriterion:
	default:
		return &ConfigError{Field: "criterion", Reason: fmt.Sprintf("unknown measure %q", c.Criterion)}
	}
	return nil
}

// ForestConfig controls an ensemble of extra trees.
type ForestConfig struct {
	Config `yaml:",inline" json:",inline" bson:",inline"`
	// NumTrees is the number of trees grown per call to Train.
	NumTrees int `yaml:"trees" json:"trees" bson:"trees"`
	// SampleFactor is the bootstrap size as a fraction of the buffered rows.
	// 0 trains every tree on all buffered rows.
	SampleFactor float64 `yaml:"sample_factor" json:"sample_factor" bson:"sample_factor"`
	// BufferSize bounds the rows kept across Train calls; 0 keeps all of them.
	BufferSize int    `yaml:"buffer_size" json:"buffer_size" bson:"buffer_size"`
	Workers    int    `yaml:"workers" json:"workers" bson:"workers"`
	Seed       uint64 `yaml:"seed" json:"seed" bson:"seed"`
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Config:   DefaultConfig(),
		NumTrees: 10,
		Workers:  NUM_CPU,
	}
}

func (c ForestConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.NumTrees < 1 {
		return &ConfigError{Field: "trees", Reason: fmt.Sprintf("%d is below 1", c.NumTrees)}
	}
	if c.SampleFactor < 0 || math.IsNaN(c.SampleFactor) {
		return &ConfigError{Field: "sample_factor", Reason: fmt.Sprintf("%v is not a non-negative number", c.SampleFactor)}
	}
	if c.BufferSize < 0 {
		return &ConfigError{Field: "buffer_size", Reason: fmt.Sprintf("%d is negative", c.BufferSize)}
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultForestConfig and validates the result.
func LoadConfig(path string) (ForestConfig, error) {
	cfg := DefaultForestConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("extraTree: reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("extraTree: parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}
