package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/standardbeagle/sci/internal/config"
	"github.com/standardbeagle/sci/internal/debug"
	"github.com/standardbeagle/sci/internal/engine"
	"github.com/standardbeagle/sci/internal/mcp"
	"github.com/standardbeagle/sci/internal/version"

	"github.com/urfave/cli/v2"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	rootDir := c.String("root")
	if rootDir != "" {
		absRoot, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootDir, err)
		}
		rootDir = absRoot
	}

	// Only an explicitly set config flag pins a single file; otherwise
	// the layered search (global, then project TOML/KDL) applies.
	configPath := ""
	if c.IsSet("config") {
		configPath = c.String("config")
	}

	cfg, err := config.LoadWithRoot(configPath, rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootDir != "" {
		cfg.Project.Root = rootDir
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "sci",
		Usage:                  "Structural code intelligence for AI assistants",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".sci.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to analyze (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/vendor/**')",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Analyze source files (whole project when no paths given)",
				ArgsUsage: "[path ...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:      "outline",
				Aliases:   []string{"o"},
				Usage:     "Show the symbol outline of a single file",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: outlineCommand,
			},
			{
				Name:      "resolve",
				Usage:     "Resolve a symbol name against the project",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "File providing the lookup context (imports, namespace)",
					},
				},
				Action: resolveCommand,
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Analyze the project and re-extract on file changes",
				Action:  watchCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"serve"},
				Usage:   "Start MCP (Model Context Protocol) server with stdio transport",
				Action:  mcpCommand,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the extraction result document",
				Action: func(c *cli.Context) error {
					return printJSON(mcp.ResultSchema())
				},
			},
			{
				Name:  "config",
				Usage: "Configuration helpers",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write a starter .sci.kdl to the project root",
						Action: configInitCommand,
					},
					{
						Name:   "show",
						Usage:  "Print the effective configuration as JSON",
						Action: configShowCommand,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Show detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Println(version.FullInfo())
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			// Auto-detect MCP mode so `sci` works as a bare MCP command
			if isMCPMode() {
				debug.LogMCP("Auto-detected MCP mode, entering MCP server\n")
				return mcpCommand(c)
			}
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newEngine(c *cli.Context) (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

func analyzeCommand(c *cli.Context) error {
	eng, _, err := newEngine(c)
	if err != nil {
		return err
	}

	if c.NArg() == 0 {
		result, err := eng.AnalyzeProject(c.Context)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return printJSON(result)
		}
		fmt.Printf("Analyzed %d files in %s: %d symbols, %d relationships\n",
			result.Files, result.Elapsed.Round(time.Millisecond),
			result.Symbols, result.Relationships)
		for _, failure := range result.Failures {
			fmt.Printf("  failed %s: %s\n", failure.Path, failure.Err)
		}
		return nil
	}

	for _, path := range c.Args().Slice() {
		result, err := eng.AnalyzeFile(c.Context, path)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", path, err)
		}
		if c.Bool("json") {
			if err := printJSON(result); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%s (%s, %s strategy): %d symbols, %d relationships\n",
			path, result.Language, result.Strategy,
			len(result.Symbols), len(result.Relationships))
	}
	return nil
}

func outlineCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("outline requires exactly one file path")
	}
	eng, _, err := newEngine(c)
	if err != nil {
		return err
	}

	result, err := eng.AnalyzeFile(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(result.Symbols)
	}
	for _, sym := range result.Symbols {
		fmt.Printf("%6d-%-6d %-12s %s\n", sym.StartLine, sym.EndLine, sym.Kind, sym.QualifiedName)
	}
	return nil
}

func resolveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("resolve requires exactly one symbol name")
	}
	name := c.Args().First()

	eng, _, err := newEngine(c)
	if err != nil {
		return err
	}
	if _, err := eng.AnalyzeProject(c.Context); err != nil {
		return err
	}

	entry, ok := eng.Resolve(name, c.String("from"))
	if !ok {
		suggestions := eng.Suggest(name, 5)
		if len(suggestions) == 0 {
			return fmt.Errorf("symbol %q not found", name)
		}
		return fmt.Errorf("symbol %q not found, did you mean: %s", name, strings.Join(suggestions, ", "))
	}
	return printJSON(entry)
}

func watchCommand(c *cli.Context) error {
	eng, cfg, err := newEngine(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := eng.AnalyzeProject(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Analyzed %d files, watching %s for changes (Ctrl-C to stop)\n",
		result.Files, cfg.Project.Root)

	watcher, err := eng.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.SetOnFlush(func(changed []string) {
		for _, path := range changed {
			fmt.Printf("re-extracted %s\n", path)
		}
	})

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	// Stdout carries JSON-RPC; all diagnostics must go to the log file
	debug.SetMCPMode(true)
	if logPath, err := debug.InitDebugLogFile(); err == nil && logPath != "" {
		defer debug.CloseDebugLog()
	}

	eng, cfg, err := newEngine(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(eng, cfg)
	debug.LogMCP("Starting MCP server with stdio transport...\n")
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	return nil
}

func configInitCommand(c *cli.Context) error {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	path := filepath.Join(root, ".sci.kdl")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// isMCPMode reports whether the process looks like it was launched by an
// MCP client rather than a human at a terminal.
func isMCPMode() bool {
	if v := os.Getenv("SCI_MCP_MODE"); v == "1" || v == "true" {
		return true
	}

	// Non-terminal stdin means a pipe, which MCP clients use for JSON-RPC
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		return true
	}

	if len(os.Args) > 0 {
		arg0 := strings.ToLower(filepath.Base(os.Args[0]))
		if strings.Contains(arg0, "mcp") || strings.Contains(arg0, "server") {
			return true
		}
	}

	return false
}

const starterConfig = `// sci project configuration
project {
    root "."
}

extraction {
    size_threshold "50KB"
    min_complexity 3
    max_deep_functions 50
    file_timeout_sec 30
}

cache {
    capacity 100000
    shards 16
}

watch {
    enabled false
    debounce_ms 50
}

// include "src/**/*.cpp"
// exclude "**/third_party/**"
`
