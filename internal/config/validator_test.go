package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Project.Root = "/tmp/project"
	return cfg
}

func TestValidateAndSetDefaults_ValidConfig(t *testing.T) {
	cfg := validConfig()
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.NoError(t, err)
}

func TestValidate_EmptyProjectRoot(t *testing.T) {
	cfg := validConfig()
	cfg.Project.Root = ""

	err := NewValidator().ValidateAndSetDefaults(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "project")
}

func TestValidate_ExtractionBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size threshold", func(c *Config) { c.Extraction.SizeThresholdBytes = 0 }},
		{"zero max file size", func(c *Config) { c.Extraction.MaxFileSize = 0 }},
		{"huge max file size", func(c *Config) { c.Extraction.MaxFileSize = 200 * 1024 * 1024 }},
		{"negative min complexity", func(c *Config) { c.Extraction.MinComplexity = -1 }},
		{"negative deep cap", func(c *Config) { c.Extraction.MaxDeepFunctions = -5 }},
		{"negative workers", func(c *Config) { c.Extraction.Workers = -1 }},
		{"negative timeout", func(c *Config) { c.Extraction.FileTimeoutSec = -10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := NewValidator().ValidateAndSetDefaults(cfg)
			assert.Error(t, err)
		})
	}
}

func TestValidate_CacheShardsPowerOfTwo(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Shards = 3

	err := NewValidator().ValidateAndSetDefaults(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "power of two")

	cfg.Cache.Shards = 8
	err = NewValidator().ValidateAndSetDefaults(cfg)
	assert.NoError(t, err)
}

func TestSetSmartDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Extraction.Workers = 0
	cfg.Cache.Capacity = 0
	cfg.Cache.Shards = 0
	cfg.Watch.DebounceMs = 0

	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, cfg.Extraction.Workers, 1)
	assert.Equal(t, DefaultCacheCapacity, cfg.Cache.Capacity)
	assert.Equal(t, DefaultCacheShards, cfg.Cache.Shards)
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
}

func TestValidateConfig_Convenience(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, ValidateConfig(cfg))
}
