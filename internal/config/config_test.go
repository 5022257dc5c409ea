package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 500, cfg.Chunker.TargetSize)
	assert.Equal(t, "tei", cfg.Embeddings.Provider)
	assert.Equal(t, 384, cfg.Embeddings.VectorSize)
	assert.Equal(t, 15*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, 3, cfg.Index.TopK)
	assert.Equal(t, 0.7, cfg.Cascade.GreetingThreshold)
	assert.Equal(t, 0.5, cfg.Cascade.ConversationThreshold)
	assert.Equal(t, 0.4, cfg.Cascade.KBThreshold)
	assert.Equal(t, 0.9, cfg.Cascade.SubstringScore)
	assert.Equal(t, 20, cfg.Cascade.MinChunkLength)

	// The generative tier stays opt-in.
	assert.Empty(t, cfg.Generator.Provider)
}

func TestApplyDefaultsKeepsSetValues(t *testing.T) {
	cfg := Config{
		Logging: LoggingConfig{Level: "debug", Format: "console"},
		Cascade: CascadeConfig{KBThreshold: 0.85},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 0.85, cfg.Cascade.KBThreshold)
	assert.Equal(t, 0.7, cfg.Cascade.GreetingThreshold)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown logging format", func(c *Config) { c.Logging.Format = "xml" }},
		{"negative chunk size", func(c *Config) { c.Chunker.TargetSize = -1 }},
		{"negative vector size", func(c *Config) { c.Embeddings.VectorSize = -384 }},
		{"zero top_k survives defaults but explicit negative fails", func(c *Config) { c.Index.TopK = -3 }},
		{"negative generator timeout", func(c *Config) { c.Generator.Timeout = -time.Second }},
		{"negative generator rate", func(c *Config) { c.Generator.RatePerSecond = -2 }},
		{"threshold above one", func(c *Config) { c.Cascade.KBThreshold = 1.2 }},
		{"threshold below zero", func(c *Config) { c.Cascade.GreetingThreshold = -0.1 }},
		{"negative min chunk length", func(c *Config) { c.Cascade.MinChunkLength = -5 }},
	}

	validCfg := valid()
	assert.NoError(t, validCfg.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
