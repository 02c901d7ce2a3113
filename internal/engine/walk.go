package engine

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/sci/internal/config"
	"github.com/standardbeagle/sci/internal/debug"
)

// FileFailure records one file the project walk could not extract.
type FileFailure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// ProjectResult summarizes one full project analysis pass.
type ProjectResult struct {
	Root          string        `json:"root"`
	Files         int           `json:"files"`
	Symbols       int           `json:"symbols"`
	Relationships int           `json:"relationships"`
	Failures      []FileFailure `json:"failures,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
}

// AnalyzeProject walks the configured project root and extracts every
// matching source file in parallel. Individual file failures are
// recorded and never abort the walk.
func (e *Engine) AnalyzeProject(ctx context.Context) (*ProjectResult, error) {
	root := e.cfg.Project.Root
	if root == "" {
		root = "."
	}
	started := time.Now()

	gitignore := config.NewGitignoreParser()
	if err := gitignore.LoadGitignore(root); err != nil {
		gitignore = nil
	}

	paths, err := e.collectFiles(ctx, root, gitignore)
	if err != nil {
		return nil, err
	}

	out := &ProjectResult{Root: root}
	var mu sync.Mutex

	workers := e.cfg.Extraction.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			result, err := e.AnalyzeFile(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// A canceled parent context ends the walk; any other
				// failure is recorded per file.
				if gctx.Err() != nil && err == gctx.Err() {
					return err
				}
				debug.LogEngine("extraction failed for %s: %v", path, err)
				out.Failures = append(out.Failures, FileFailure{Path: path, Err: err.Error()})
				return nil
			}
			out.Files++
			out.Symbols += len(result.Symbols)
			out.Relationships += len(result.Relationships)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Elapsed = time.Since(started)
	return out, nil
}

// collectFiles gathers extraction candidates under root, applying
// exclude patterns, include patterns, and gitignore rules.
func (e *Engine) collectFiles(ctx context.Context, root string, gitignore *config.GitignoreParser) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if e.excluded(rel, d.IsDir()) || (gitignore != nil && gitignore.ShouldIgnore(rel, d.IsDir())) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if _, known := e.registry.LanguageForExt(filepath.Ext(path)); !known {
			return nil
		}
		if len(e.cfg.Include) > 0 && !matchesAny(e.cfg.Include, rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// excluded matches a slash-relative path against the configured
// exclude patterns. Directory paths also match as "<path>/".
func (e *Engine) excluded(rel string, isDir bool) bool {
	for _, pattern := range e.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if isDir {
			// "**/build/**" style patterns only match contents, so
			// probe a hypothetical child of the directory too.
			if ok, _ := doublestar.Match(pattern, rel+"/x"); ok {
				return true
			}
		}
	}
	return false
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
