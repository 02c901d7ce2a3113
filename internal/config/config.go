package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Default extraction tuning values. These mirror the thresholds the
// extraction engine was calibrated with on large mixed-language trees.
const (
	DefaultSizeThreshold    = 50 * 1024 // bytes; above this the pattern strategy runs
	DefaultMinComplexity    = 3         // gate for full control-flow analysis
	DefaultMaxDeepFunctions = 50        // per-file cap on deeply analyzed functions
	DefaultFileTimeoutSec   = 30
	DefaultCacheCapacity    = 100000
	DefaultCacheShards      = 16
)

type Config struct {
	Version    int
	Project    Project
	Extraction Extraction
	Cache      Cache
	Watch      Watch
	Include    []string
	Exclude    []string
}

type Project struct {
	Root string
	Name string
}

// Extraction controls strategy selection and analysis depth
type Extraction struct {
	SizeThresholdBytes int64 // above this, always use the pattern strategy
	MinComplexity      int   // minimum estimate for full control-flow analysis
	MaxDeepFunctions   int   // per-file cap on deeply analyzed functions
	FileTimeoutSec     int   // per-file extraction deadline; 0 = no timeout
	Workers            int   // 0 = auto-detect (NumCPU)
	MaxFileSize        int64 // files larger than this are skipped outright
	BuildFlowPaths     bool  // trace entry-to-exit paths after block extraction
}

// Cache controls the shared symbol resolution cache
type Cache struct {
	Capacity int // entry bound before eviction kicks in
	Shards   int // power of two; shard count for concurrent access
}

// Watch controls filesystem watching for automatic re-extraction
type Watch struct {
	Enabled    bool
	DebounceMs int
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadFile loads exactly one configuration file, chosen by extension
// (TOML for .toml, KDL otherwise). Relative project roots resolve
// against the file's directory.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = parseTOML(content)
	} else {
		cfg, err = parseKDL(string(content))
	}
	if err != nil {
		return nil, err
	}

	resolveRoot(cfg, filepath.Dir(path))
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// LoadWithRoot loads configuration by layering, lowest precedence first:
// built-in defaults, global ~/.sci.kdl, project .sci.toml, project .sci.kdl.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	// An explicit config file short-circuits the layered search
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	homeDir, err := os.UserHomeDir()
	if err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	var projectConfig *Config
	if tomlCfg, err := LoadTOML(searchDir); err == nil && tomlCfg != nil {
		projectConfig = tomlCfg
	} else if err != nil {
		return nil, err
	}
	if kdlCfg, err := LoadKDL(searchDir); err == nil && kdlCfg != nil {
		// KDL wins over TOML when both exist in the same directory
		projectConfig = kdlCfg
	} else if err != nil {
		return nil, err
	}

	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg := Default()
	cfg.Project.Root = cwd
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// Default returns the built-in configuration. Callers that load from
// files get these values for anything the file leaves unset.
func Default() *Config {
	return &Config{
		Version: 1,
		Extraction: Extraction{
			SizeThresholdBytes: DefaultSizeThreshold,
			MinComplexity:      DefaultMinComplexity,
			MaxDeepFunctions:   DefaultMaxDeepFunctions,
			FileTimeoutSec:     DefaultFileTimeoutSec,
			Workers:            runtime.NumCPU(),
			MaxFileSize:        10 * 1024 * 1024,
			BuildFlowPaths:     true,
		},
		Cache: Cache{
			Capacity: DefaultCacheCapacity,
			Shards:   DefaultCacheShards,
		},
		Watch: Watch{
			Enabled:    false,
			DebounceMs: 300,
		},
		Include: []string{},
		Exclude: []string{
			// Git metadata (never analyzable)
			"**/.git/**",

			// Hidden directories (catch-all for dot directories)
			"**/.*/**",

			// Package managers & dependencies
			"**/node_modules/**",
			"**/vendor/**",
			"**/bower_components/**",

			// Build artifacts & output
			"**/dist/**",
			"**/build/**",
			"**/out/**",
			"**/target/**",
			"**/bin/**",
			"**/obj/**",
			"**/*.min.js",
			"**/*.min.css",
			"**/*.bundle.js",

			// Python compiled files
			"**/__pycache__/**",
			"**/*.pyc",

			// Editor temp files
			"**/*.swp",
			"**/*.swo",
			"**/*~",

			// OS files
			"**/Thumbs.db",
			"**/desktop.ini",

			// Logs
			"**/logs/**",
			"**/*.log",
		},
	}
}

// mergeConfigs merges a base config with a project config
// Project config takes precedence, but base exclusions are preserved
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		ordered := make([]string, 0, len(base.Exclude)+len(project.Exclude))

		for _, pattern := range base.Exclude {
			if !excludeMap[pattern] {
				excludeMap[pattern] = true
				ordered = append(ordered, pattern)
			}
		}
		for _, pattern := range project.Exclude {
			if !excludeMap[pattern] {
				excludeMap[pattern] = true
				ordered = append(ordered, pattern)
			}
		}
		merged.Exclude = ordered
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from
// language build files and adds them to the exclusion list
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewArtifactDetector(c.Project.Root)
	detectedPatterns := detector.DetectOutputDirectories()

	if len(detectedPatterns) > 0 {
		c.Exclude = append(c.Exclude, detectedPatterns...)
		c.Exclude = DeduplicatePatterns(c.Exclude)
	}
}
