// Package config loads the aegis configuration: YAML file with defaults,
// environment override for the API key.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aegis/internal/reasoning"
)

// Config is the root configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Store     StoreConfig     `yaml:"store"`
}

// APIConfig configures the language-model collaborator.
type APIConfig struct {
	// APIKey may be left empty in the file and supplied via GEMINI_API_KEY.
	APIKey         string `yaml:"api_key"`
	DefaultModel   string `yaml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ReasoningConfig mirrors the reasoning loop's tunables.
type ReasoningConfig struct {
	MaxIterations    int     `yaml:"max_iterations"`
	QualityThreshold float64 `yaml:"quality_threshold"`
	PlanningModel    string  `yaml:"planning_model"`
	ReasoningModel   string  `yaml:"reasoning_model"`
	ReflectionModel  string  `yaml:"reflection_model"`
	Temperature      float32 `yaml:"temperature"`
	MaxTokens        int32   `yaml:"max_tokens"`
	EnableReflection bool    `yaml:"enable_reflection"`
	EnableRefinement bool    `yaml:"enable_refinement"`
}

// StoreConfig configures the record store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	rc := reasoning.DefaultConfig()
	return &Config{
		API: APIConfig{
			DefaultModel:   "gemini-2.5-flash",
			TimeoutSeconds: 120,
		},
		Reasoning: ReasoningConfig{
			MaxIterations:    rc.MaxIterations,
			QualityThreshold: rc.QualityThreshold,
			PlanningModel:    rc.PlanningModel,
			ReasoningModel:   rc.ReasoningModel,
			ReflectionModel:  rc.ReflectionModel,
			Temperature:      rc.Temperature,
			MaxTokens:        rc.MaxTokens,
			EnableReflection: rc.EnableReflection,
			EnableRefinement: rc.EnableRefinement,
		},
		Store: StoreConfig{
			Path: ".aegis/aegis.db",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. GEMINI_API_KEY always overrides the file's api key.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.API.APIKey = key
	}
	return cfg, nil
}

// ReasoningOptions converts the file representation into the reasoning
// package's config.
func (c *Config) ReasoningOptions() reasoning.Config {
	return reasoning.Config{
		MaxIterations:    c.Reasoning.MaxIterations,
		QualityThreshold: c.Reasoning.QualityThreshold,
		PlanningModel:    c.Reasoning.PlanningModel,
		ReasoningModel:   c.Reasoning.ReasoningModel,
		ReflectionModel:  c.Reasoning.ReflectionModel,
		Temperature:      c.Reasoning.Temperature,
		MaxTokens:        c.Reasoning.MaxTokens,
		EnableReflection: c.Reasoning.EnableReflection,
		EnableRefinement: c.Reasoning.EnableRefinement,
	}
}
