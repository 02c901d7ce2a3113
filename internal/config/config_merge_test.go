package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unit tests for config merging logic

func TestMergeConfigs_ExclusionsMerge(t *testing.T) {
	base := &Config{
		Exclude: []string{
			"**/node_modules/**",
			"**/vendor/**",
			"**/generated/**",
		},
	}

	project := &Config{
		Exclude: []string{
			"**/dist/**",
			"**/build/**",
		},
	}

	merged := mergeConfigs(base, project)

	assert.Contains(t, merged.Exclude, "**/node_modules/**")
	assert.Contains(t, merged.Exclude, "**/vendor/**")
	assert.Contains(t, merged.Exclude, "**/generated/**")
	assert.Contains(t, merged.Exclude, "**/dist/**")
	assert.Contains(t, merged.Exclude, "**/build/**")
	assert.Len(t, merged.Exclude, 5)
}

func TestMergeConfigs_ExclusionsDeduplication(t *testing.T) {
	base := &Config{
		Exclude: []string{
			"**/node_modules/**",
			"**/vendor/**",
		},
	}

	project := &Config{
		Exclude: []string{
			"**/node_modules/**", // Duplicate
			"**/dist/**",
		},
	}

	merged := mergeConfigs(base, project)

	assert.Len(t, merged.Exclude, 3)
	assert.Contains(t, merged.Exclude, "**/node_modules/**")
	assert.Contains(t, merged.Exclude, "**/vendor/**")
	assert.Contains(t, merged.Exclude, "**/dist/**")
}

func TestMergeConfigs_InclusionsProjectOverride(t *testing.T) {
	base := &Config{
		Include: []string{"*.go", "*.js"},
	}

	project := &Config{
		Include: []string{"*.py", "*.ts"},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, project.Include, merged.Include)
	assert.Len(t, merged.Include, 2)
}

func TestMergeConfigs_InclusionsUseBaseIfProjectEmpty(t *testing.T) {
	base := &Config{
		Include: []string{"*.go", "*.js"},
	}

	project := &Config{
		Include: []string{},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, base.Include, merged.Include)
}

func TestMergeConfigs_ProjectSettingsTakePrecedence(t *testing.T) {
	base := &Config{
		Extraction: Extraction{
			SizeThresholdBytes: 32 * 1024,
			MinComplexity:      2,
		},
		Cache: Cache{
			Capacity: 1000,
		},
	}

	project := &Config{
		Extraction: Extraction{
			SizeThresholdBytes: 100 * 1024,
			MinComplexity:      5,
		},
		Cache: Cache{
			Capacity: 50000,
		},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, int64(100*1024), merged.Extraction.SizeThresholdBytes)
	assert.Equal(t, 5, merged.Extraction.MinComplexity)
	assert.Equal(t, 50000, merged.Cache.Capacity)
}

func TestMergeConfigs_EmptyBaseExclusions(t *testing.T) {
	base := &Config{
		Exclude: []string{},
	}

	project := &Config{
		Exclude: []string{"**/dist/**"},
	}

	merged := mergeConfigs(base, project)

	assert.Equal(t, project.Exclude, merged.Exclude)
}

// Integration tests for config loading with home directory

func TestLoadWithRoot_MergesGlobalAndProjectConfigs(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalConfig := `
exclude {
    "**/node_modules/**"
    "**/vendor/**"
    "**/generated/**"
}

include {
    "*.go"
    "*.js"
}

extraction {
    size_threshold "32KB"
}
`
	err := os.WriteFile(filepath.Join(tmpHome, ".sci.kdl"), []byte(globalConfig), 0644)
	require.NoError(t, err)

	projectConfig := `
project {
    root "."
    name "test-project"
}

exclude {
    "**/dist/**"
    "**/build/**"
}

extraction {
    size_threshold "100KB"
}
`
	err = os.WriteFile(filepath.Join(tmpProject, ".sci.kdl"), []byte(projectConfig), 0644)
	require.NoError(t, err)

	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	defer os.Setenv("HOME", originalHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Exclude, "**/node_modules/**", "Should include global exclusion")
	assert.Contains(t, cfg.Exclude, "**/vendor/**", "Should include global exclusion")
	assert.Contains(t, cfg.Exclude, "**/generated/**", "Should include global exclusion")
	assert.Contains(t, cfg.Exclude, "**/dist/**", "Should include project exclusion")
	assert.Contains(t, cfg.Exclude, "**/build/**", "Should include project exclusion")

	assert.Equal(t, int64(100*1024), cfg.Extraction.SizeThresholdBytes, "Project size threshold should override global")

	assert.Equal(t, "test-project", cfg.Project.Name)
}

func TestLoadWithRoot_ProjectConfigOnly(t *testing.T) {
	tmpProject := t.TempDir()

	projectConfig := `
project {
    root "."
    name "test-project"
}

exclude {
    "**/dist/**"
}
`
	err := os.WriteFile(filepath.Join(tmpProject, ".sci.kdl"), []byte(projectConfig), 0644)
	require.NoError(t, err)

	os.Setenv("HOME", "/nonexistent")
	defer os.Unsetenv("HOME")

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Exclude, "**/dist/**")
	assert.Equal(t, "test-project", cfg.Project.Name)
}

func TestLoadWithRoot_TOMLProjectConfig(t *testing.T) {
	tmpProject := t.TempDir()

	projectConfig := `
version = 1

[project]
name = "toml-project"

[extraction]
size_threshold = "64KB"
min_complexity = 4

[cache]
capacity = 2000
shards = 4

exclude = ["**/dist/**"]
`
	err := os.WriteFile(filepath.Join(tmpProject, ".sci.toml"), []byte(projectConfig), 0644)
	require.NoError(t, err)

	os.Setenv("HOME", "/nonexistent")
	defer os.Unsetenv("HOME")

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "toml-project", cfg.Project.Name)
	assert.Equal(t, int64(64*1024), cfg.Extraction.SizeThresholdBytes)
	assert.Equal(t, 4, cfg.Extraction.MinComplexity)
	assert.Equal(t, 2000, cfg.Cache.Capacity)
	assert.Equal(t, 4, cfg.Cache.Shards)
	assert.Contains(t, cfg.Exclude, "**/dist/**")
}

func TestLoadWithRoot_KDLWinsOverTOML(t *testing.T) {
	tmpProject := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpProject, ".sci.toml"), []byte(`
[extraction]
min_complexity = 4
`), 0644)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(tmpProject, ".sci.kdl"), []byte(`
extraction {
    min_complexity 7
}
`), 0644)
	require.NoError(t, err)

	os.Setenv("HOME", "/nonexistent")
	defer os.Unsetenv("HOME")

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 7, cfg.Extraction.MinComplexity)
}

func TestLoadWithRoot_GlobalConfigOnly(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalConfig := `
exclude {
    "**/node_modules/**"
    "**/generated/**"
}
`
	err := os.WriteFile(filepath.Join(tmpHome, ".sci.kdl"), []byte(globalConfig), 0644)
	require.NoError(t, err)

	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	defer os.Setenv("HOME", originalHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Exclude, "**/node_modules/**")
	assert.Contains(t, cfg.Exclude, "**/generated/**")
}

func TestLoadWithRoot_DefaultConfigFallback(t *testing.T) {
	tmpProject := t.TempDir()
	os.Setenv("HOME", "/nonexistent")
	defer os.Unsetenv("HOME")

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.NotEmpty(t, cfg.Exclude, "Should have default exclusions")
	assert.Empty(t, cfg.Include, "Should have empty default inclusions (include everything by default)")
}
