package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 5, cfg.QuestionDepth)
	assert.Equal(t, 6.0, cfg.QualityThreshold)
	assert.Equal(t, 3, cfg.MaxQARetries)
}

func TestLoadAppliesDefaultsForAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: mock
question_depth: 8
quality_threshold: 7.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Provider)
	assert.Equal(t, 8, cfg.QuestionDepth)
	assert.Equal(t, 7.5, cfg.QualityThreshold)
	// untouched fields keep their defaults
	assert.Equal(t, "APA", cfg.CitationStyle)
	assert.Equal(t, 3, cfg.MaxQARetries)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: carrier-pigeon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"openai provider", func(c *Config) { c.Provider = "openai" }, true},
		{"unknown provider", func(c *Config) { c.Provider = "llama-farm" }, false},
		{"threshold above ten", func(c *Config) { c.QualityThreshold = 10.5 }, false},
		{"negative retries", func(c *Config) { c.MaxQARetries = -1 }, false},
		{"negative length", func(c *Config) { c.TargetLength = -100 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestRequirementsMapping(t *testing.T) {
	cfg := Default()
	cfg.CitationStyle = "MLA"
	cfg.StrategicMode = true

	req := cfg.Requirements()
	assert.Equal(t, "MLA", req["citation_style"])
	assert.Equal(t, true, req["strategic_mode"])
	assert.Equal(t, 5, req["question_depth"])
	assert.Equal(t, "Academic", req["audience"])
	assert.Equal(t, 10000, req["target_length"])
}
