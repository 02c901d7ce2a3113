// Build artifact detection from language-specific configuration files
// Parses package.json, tsconfig.json, Cargo.toml, etc. to find output directories
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ArtifactDetector finds language-specific build output directories so the
// project walker can skip generated code that would pollute extraction.
type ArtifactDetector struct {
	projectRoot string
}

// NewArtifactDetector creates a new build artifact detector
func NewArtifactDetector(projectRoot string) *ArtifactDetector {
	return &ArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans for build configuration files and extracts
// output directories. Returns glob patterns to exclude (e.g., "**/dist/**").
func (d *ArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string

	patterns = append(patterns, d.detectJavaScriptOutputs()...)
	patterns = append(patterns, d.detectRustOutputs()...)
	patterns = append(patterns, d.detectPythonOutputs()...)

	return patterns
}

// detectJavaScriptOutputs finds JS/TS build outputs
func (d *ArtifactDetector) detectJavaScriptOutputs() []string {
	var patterns []string

	// Check package.json for build scripts and output directories
	packageJSON := filepath.Join(d.projectRoot, "package.json")
	if data, err := os.ReadFile(packageJSON); err == nil {
		var pkg map[string]interface{}
		if json.Unmarshal(data, &pkg) == nil {
			if scripts, ok := pkg["scripts"].(map[string]interface{}); ok {
				for _, script := range scripts {
					if scriptStr, ok := script.(string); ok {
						if strings.Contains(scriptStr, "--outDir") || strings.Contains(scriptStr, "-outDir") {
							parts := strings.Fields(scriptStr)
							for i, part := range parts {
								if (part == "--outDir" || part == "-outDir") && i+1 < len(parts) {
									outDir := strings.Trim(parts[i+1], "\"'")
									patterns = append(patterns, "**/"+outDir+"/**")
								}
							}
						}
					}
				}
			}

			if buildConfig, ok := pkg["build"].(map[string]interface{}); ok {
				if outDir, ok := buildConfig["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	// Check tsconfig.json
	tsconfigJSON := filepath.Join(d.projectRoot, "tsconfig.json")
	if data, err := os.ReadFile(tsconfigJSON); err == nil {
		var tsconfig map[string]interface{}
		if json.Unmarshal(data, &tsconfig) == nil {
			if compilerOptions, ok := tsconfig["compilerOptions"].(map[string]interface{}); ok {
				if outDir, ok := compilerOptions["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	return patterns
}

// detectRustOutputs finds Rust build outputs (Cargo.toml)
func (d *ArtifactDetector) detectRustOutputs() []string {
	var patterns []string

	cargoTOML := filepath.Join(d.projectRoot, "Cargo.toml")
	if data, err := os.ReadFile(cargoTOML); err == nil {
		var cargo map[string]interface{}
		if toml.Unmarshal(data, &cargo) == nil {
			// Check for custom target directory
			if profile, ok := cargo["profile"].(map[string]interface{}); ok {
				if release, ok := profile["release"].(map[string]interface{}); ok {
					if targetDir, ok := release["target-dir"].(string); ok {
						patterns = append(patterns, "**/"+targetDir+"/**")
					}
				}
			}
		}
	}

	return patterns
}

// detectPythonOutputs finds Python build outputs
func (d *ArtifactDetector) detectPythonOutputs() []string {
	var patterns []string

	pyprojectTOML := filepath.Join(d.projectRoot, "pyproject.toml")
	if data, err := os.ReadFile(pyprojectTOML); err == nil {
		var pyproject map[string]interface{}
		if toml.Unmarshal(data, &pyproject) == nil {
			if tool, ok := pyproject["tool"].(map[string]interface{}); ok {
				if poetry, ok := tool["poetry"].(map[string]interface{}); ok {
					if build, ok := poetry["build"].(map[string]interface{}); ok {
						if targetDir, ok := build["target-dir"].(string); ok {
							patterns = append(patterns, "**/"+targetDir+"/**")
						}
					}
				}
			}
		}
	}

	return patterns
}

// DeduplicatePatterns removes duplicate exclusion patterns
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}
