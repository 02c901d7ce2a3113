package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .sci.kdl file
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".sci.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil // No KDL config found, use defaults
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .sci.kdl: %v", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	resolveRoot(cfg, projectRoot)
	return cfg, nil
}

// resolveRoot makes the project root absolute, resolving relative paths
// against the directory the config file was found in.
func resolveRoot(cfg *Config, projectRoot string) {
	if cfg == nil {
		return
	}
	if cfg.Project.Root != "" {
		var absRoot string
		if filepath.IsAbs(cfg.Project.Root) {
			absRoot = cfg.Project.Root
		} else {
			absRoot = filepath.Join(projectRoot, cfg.Project.Root)
		}
		cfg.Project.Root = filepath.Clean(absRoot)
		return
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err == nil {
		cfg.Project.Root = absRoot
	} else {
		cfg.Project.Root = projectRoot
	}
}

func parseKDL(content string) (*Config, error) {
	defaultRoot, _ := os.Getwd()
	if defaultRoot == "" {
		defaultRoot = "."
	}

	cfg := Default()
	cfg.Project.Root = defaultRoot

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "extraction":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "size_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.SizeThresholdBytes = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Extraction.SizeThresholdBytes = sz
						}
					}
				case "min_complexity":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.MinComplexity = v
					}
				case "max_deep_functions":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.MaxDeepFunctions = v
					}
				case "file_timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.FileTimeoutSec = v
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.Workers = v
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Extraction.MaxFileSize = sz
						}
					}
				case "build_flow_paths":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.BuildFlowPaths = b
					}
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "capacity":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.Capacity = v
					}
				case "shards":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.Shards = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// Replace default exclusions if exclude block is present
			cfg.Exclude = collectStringArgs(n)
		}
	}

	cfg.EnrichExclusionsWithBuildArtifacts()

	return cfg, nil
}

// Helper functions leveraging the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// First try to collect from arguments (for inline format)
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// If no arguments, collect from children (for block format like exclude { "pattern" })
	// In KDL block format, strings are child nodes where the node name is the string value
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	var num int64
	if _, err := fmt.Sscanf(strings.TrimSpace(numStr), "%d", &num); err != nil {
		return 0, fmt.Errorf("invalid size value: %s", s)
	}

	return num * multiplier, nil
}
