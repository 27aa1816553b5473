// Package config defines the explicit configuration value object for the
// research workflow. All tunables that the original system read from ambient
// environment flags (question depth, strategic mode, report sizing) are
// carried here and passed into components at construction time; nothing in
// the engine reads global state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the per-deployment settings of the research workflow.
// The zero value is not usable; start from Default and override.
type Config struct {
	// Provider selects the model backend: "anthropic", "openai" or "mock".
	Provider string `yaml:"provider"`
	// Model names the provider-specific model identifier. Empty selects the
	// backend default.
	Model string `yaml:"model"`

	// QuestionDepth controls how many research questions the planning team
	// is asked to formulate.
	QuestionDepth int `yaml:"question_depth"`
	// StrategicMode widens the domain analysis to include strategic and
	// policy framing.
	StrategicMode bool `yaml:"strategic_mode"`

	// TargetLength is the desired report length in words.
	TargetLength int `yaml:"target_length"`
	// CitationStyle names the citation format sections should follow.
	CitationStyle string `yaml:"citation_style"`
	// Audience describes the intended readership of the report.
	Audience string `yaml:"audience"`

	// QualityThreshold is the minimum acceptable peer-review score; runs
	// scoring below it are routed through the editing loop.
	QualityThreshold float64 `yaml:"quality_threshold"`
	// MaxQARetries bounds how many editing loops the quality gate may
	// dispatch before shipping the report regardless of score.
	MaxQARetries int `yaml:"max_qa_retries"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Provider:         "anthropic",
		QuestionDepth:    5,
		TargetLength:     10000,
		CitationStyle:    "APA",
		Audience:         "Academic",
		QualityThreshold: 6.0,
		MaxQARetries:     3,
	}
}

// Load reads a YAML configuration file, applying defaults for absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks structural constraints.
func (c *Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 10 {
		return fmt.Errorf("quality threshold %v outside [0,10]", c.QualityThreshold)
	}
	if c.MaxQARetries < 0 {
		return fmt.Errorf("max qa retries must be non-negative, got %d", c.MaxQARetries)
	}
	if c.TargetLength < 0 {
		return fmt.Errorf("target length must be non-negative, got %d", c.TargetLength)
	}
	return nil
}

// Requirements exposes the report-shaping settings as the read-only
// requirements mapping stored in the workflow state.
func (c *Config) Requirements() map[string]any {
	return map[string]any{
		"target_length":  c.TargetLength,
		"citation_style": c.CitationStyle,
		"audience":       c.Audience,
		"question_depth": c.QuestionDepth,
		"strategic_mode": c.StrategicMode,
	}
}
