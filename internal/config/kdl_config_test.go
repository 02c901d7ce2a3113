package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(DefaultSizeThreshold), cfg.Extraction.SizeThresholdBytes)
	assert.Equal(t, DefaultMinComplexity, cfg.Extraction.MinComplexity)
	assert.Equal(t, DefaultMaxDeepFunctions, cfg.Extraction.MaxDeepFunctions)
	assert.Equal(t, DefaultCacheCapacity, cfg.Cache.Capacity)
	assert.Equal(t, DefaultCacheShards, cfg.Cache.Shards)
	assert.False(t, cfg.Watch.Enabled)
}

func TestParseKDL_ExtractionConfig(t *testing.T) {
	kdlContent := `
extraction {
    size_threshold "100KB"
    min_complexity 5
    max_deep_functions 25
    file_timeout_sec 10
    workers 4
    build_flow_paths false
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(100*1024), cfg.Extraction.SizeThresholdBytes)
	assert.Equal(t, 5, cfg.Extraction.MinComplexity)
	assert.Equal(t, 25, cfg.Extraction.MaxDeepFunctions)
	assert.Equal(t, 10, cfg.Extraction.FileTimeoutSec)
	assert.Equal(t, 4, cfg.Extraction.Workers)
	assert.False(t, cfg.Extraction.BuildFlowPaths)
}

func TestParseKDL_PartialExtractionConfig(t *testing.T) {
	kdlContent := `
extraction {
    min_complexity 1
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Only min_complexity changed, others should be defaults
	assert.Equal(t, 1, cfg.Extraction.MinComplexity)
	assert.Equal(t, int64(DefaultSizeThreshold), cfg.Extraction.SizeThresholdBytes)
	assert.Equal(t, DefaultMaxDeepFunctions, cfg.Extraction.MaxDeepFunctions)
}

func TestParseKDL_SizeThresholdInteger(t *testing.T) {
	// Plain integer byte counts work without a unit suffix
	kdlContent := `
extraction {
    size_threshold 65536
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(65536), cfg.Extraction.SizeThresholdBytes)
}

func TestParseKDL_FullConfig(t *testing.T) {
	kdlContent := `
project {
    root "."
    name "test-project"
}

extraction {
    max_file_size "5MB"
    size_threshold "64KB"
    workers 8
}

cache {
    capacity 5000
    shards 8
}

watch {
    enabled true
    debounce_ms 500
}

exclude "**/.git/**" "**/node_modules/**"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "test-project", cfg.Project.Name)
	assert.Equal(t, int64(5*1024*1024), cfg.Extraction.MaxFileSize)
	assert.Equal(t, int64(64*1024), cfg.Extraction.SizeThresholdBytes)
	assert.Equal(t, 8, cfg.Extraction.Workers)
	assert.Equal(t, 5000, cfg.Cache.Capacity)
	assert.Equal(t, 8, cfg.Cache.Shards)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.Contains(t, cfg.Exclude, "**/.git/**")
	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"500KB", 500 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"2048B", 2048},
		{"4096", 4096},
	}

	for _, tt := range tests {
		got, err := parseSize(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}

	_, err := parseSize("not-a-size")
	assert.Error(t, err)
}
