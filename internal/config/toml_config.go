package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors Config with TOML field tags. Only values present in
// the file override defaults, so every field is a pointer.
type tomlConfig struct {
	Version *int `toml:"version"`

	Project struct {
		Root *string `toml:"root"`
		Name *string `toml:"name"`
	} `toml:"project"`

	Extraction struct {
		SizeThreshold    *string `toml:"size_threshold"`
		MinComplexity    *int    `toml:"min_complexity"`
		MaxDeepFunctions *int    `toml:"max_deep_functions"`
		FileTimeoutSec   *int    `toml:"file_timeout_sec"`
		Workers          *int    `toml:"workers"`
		MaxFileSize      *string `toml:"max_file_size"`
		BuildFlowPaths   *bool   `toml:"build_flow_paths"`
	} `toml:"extraction"`

	Cache struct {
		Capacity *int `toml:"capacity"`
		Shards   *int `toml:"shards"`
	} `toml:"cache"`

	Watch struct {
		Enabled    *bool `toml:"enabled"`
		DebounceMs *int  `toml:"debounce_ms"`
	} `toml:"watch"`

	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTOML attempts to load configuration from a .sci.toml file
func LoadTOML(projectRoot string) (*Config, error) {
	tomlPath := filepath.Join(projectRoot, ".sci.toml")

	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		return nil, nil // No TOML config found, use defaults
	}

	content, err := os.ReadFile(tomlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .sci.toml: %v", err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, projectRoot)
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

func parseTOML(content []byte) (*Config, error) {
	var raw tomlConfig
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := Default()
	applyTOML(cfg, &raw)
	return cfg, nil
}

func applyTOML(cfg *Config, raw *tomlConfig) {
	if raw.Version != nil {
		cfg.Version = *raw.Version
	}
	if raw.Project.Root != nil {
		cfg.Project.Root = *raw.Project.Root
	}
	if raw.Project.Name != nil {
		cfg.Project.Name = *raw.Project.Name
	}

	if raw.Extraction.SizeThreshold != nil {
		if sz, err := parseSize(*raw.Extraction.SizeThreshold); err == nil {
			cfg.Extraction.SizeThresholdBytes = sz
		}
	}
	if raw.Extraction.MinComplexity != nil {
		cfg.Extraction.MinComplexity = *raw.Extraction.MinComplexity
	}
	if raw.Extraction.MaxDeepFunctions != nil {
		cfg.Extraction.MaxDeepFunctions = *raw.Extraction.MaxDeepFunctions
	}
	if raw.Extraction.FileTimeoutSec != nil {
		cfg.Extraction.FileTimeoutSec = *raw.Extraction.FileTimeoutSec
	}
	if raw.Extraction.Workers != nil {
		cfg.Extraction.Workers = *raw.Extraction.Workers
	}
	if raw.Extraction.MaxFileSize != nil {
		if sz, err := parseSize(*raw.Extraction.MaxFileSize); err == nil {
			cfg.Extraction.MaxFileSize = sz
		}
	}
	if raw.Extraction.BuildFlowPaths != nil {
		cfg.Extraction.BuildFlowPaths = *raw.Extraction.BuildFlowPaths
	}

	if raw.Cache.Capacity != nil {
		cfg.Cache.Capacity = *raw.Cache.Capacity
	}
	if raw.Cache.Shards != nil {
		cfg.Cache.Shards = *raw.Cache.Shards
	}

	if raw.Watch.Enabled != nil {
		cfg.Watch.Enabled = *raw.Watch.Enabled
	}
	if raw.Watch.DebounceMs != nil {
		cfg.Watch.DebounceMs = *raw.Watch.DebounceMs
	}

	if len(raw.Include) > 0 {
		cfg.Include = raw.Include
	}
	if len(raw.Exclude) > 0 {
		cfg.Exclude = raw.Exclude
	}
}
