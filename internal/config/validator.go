package config

import (
	"errors"
	"fmt"
	"runtime"

	scierrors "github.com/standardbeagle/sci/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return scierrors.NewConfigError("project", "", err)
	}

	if err := v.validateExtractionConfig(&cfg.Extraction); err != nil {
		return scierrors.NewConfigError("extraction", "", err)
	}

	if err := v.validateCacheConfig(&cfg.Cache); err != nil {
		return scierrors.NewConfigError("cache", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateProjectConfig validates project configuration
func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

// validateExtractionConfig validates extraction configuration
func (v *Validator) validateExtractionConfig(ext *Extraction) error {
	if ext.SizeThresholdBytes <= 0 {
		return fmt.Errorf("SizeThresholdBytes must be positive, got %d", ext.SizeThresholdBytes)
	}

	if ext.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", ext.MaxFileSize)
	}

	if ext.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", ext.MaxFileSize)
	}

	if ext.MinComplexity < 0 {
		return fmt.Errorf("MinComplexity cannot be negative, got %d", ext.MinComplexity)
	}

	if ext.MaxDeepFunctions < 0 {
		return fmt.Errorf("MaxDeepFunctions cannot be negative, got %d", ext.MaxDeepFunctions)
	}

	// Workers: 0 means auto-detect (will be set by smart defaults)
	if ext.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", ext.Workers)
	}

	if ext.FileTimeoutSec < 0 {
		return fmt.Errorf("FileTimeoutSec cannot be negative, got %d", ext.FileTimeoutSec)
	}

	return nil
}

// validateCacheConfig validates resolution cache configuration
func (v *Validator) validateCacheConfig(cache *Cache) error {
	if cache.Capacity < 0 {
		return fmt.Errorf("Capacity cannot be negative, got %d", cache.Capacity)
	}

	if cache.Shards < 0 {
		return fmt.Errorf("Shards cannot be negative, got %d", cache.Shards)
	}

	if cache.Shards != 0 && cache.Shards&(cache.Shards-1) != 0 {
		return fmt.Errorf("Shards must be a power of two, got %d", cache.Shards)
	}

	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Extraction.Workers == 0 {
		numCPU := runtime.NumCPU()
		cfg.Extraction.Workers = max(1, numCPU-1)
	}

	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = DefaultCacheCapacity
	}

	if cfg.Cache.Shards == 0 {
		cfg.Cache.Shards = DefaultCacheShards
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
