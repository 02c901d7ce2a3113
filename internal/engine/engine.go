// Package engine orchestrates structural extraction across a project:
// strategy selection per file, the shared resolution cache, result
// caching, the parallel project walk, and filesystem watching.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/sci/internal/config"
	"github.com/standardbeagle/sci/internal/debug"
	"github.com/standardbeagle/sci/internal/errors"
	"github.com/standardbeagle/sci/internal/extract"
	"github.com/standardbeagle/sci/internal/resolve"
	"github.com/standardbeagle/sci/internal/security"
	"github.com/standardbeagle/sci/internal/types"
)

// recentEntry pairs a cached result with the content hash it was
// computed from, so unchanged files skip re-extraction entirely.
type recentEntry struct {
	contentHash uint64
	result      *types.ExtractionResult
}

// Engine is the extraction orchestrator. It is safe for concurrent use;
// per-file extraction state lives on the stack of each call.
type Engine struct {
	cfg      *config.Config
	registry *extract.Registry
	tree     *extract.SyntaxTreeExtractor
	pattern  *extract.PatternExtractor
	cache    *resolve.Cache
	recent   *lru.Cache[string, recentEntry]

	mu       sync.Mutex
	contexts map[string]*resolve.Context
	stats    ProjectStats
}

// ProjectStats aggregates extraction counters across all analyzed
// files.
type ProjectStats struct {
	FilesAnalyzed       int `json:"files_analyzed"`
	FilesFailed         int `json:"files_failed"`
	FilesFromCache      int `json:"files_from_cache"`
	TreeStrategyRuns    int `json:"tree_strategy_runs"`
	PatternStrategyRuns int `json:"pattern_strategy_runs"`
	PatternFallbacks    int `json:"pattern_fallbacks"`
	Symbols             int `json:"symbols"`
	Relationships       int `json:"relationships"`
}

// recentResultCap bounds the unchanged-file result cache. Results are
// small relative to source, so this trades modest memory for re-walk
// speed.
const recentResultCap = 2048

// New builds an engine from configuration. The resolution cache is
// shared by every file the engine analyzes.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	recent, err := lru.New[string, recentEntry](recentResultCap)
	if err != nil {
		return nil, err
	}

	registry := extract.NewRegistry()
	opts := extract.Options{
		MinComplexity:    cfg.Extraction.MinComplexity,
		MaxDeepFunctions: cfg.Extraction.MaxDeepFunctions,
		BuildFlowPaths:   cfg.Extraction.BuildFlowPaths,
	}
	return &Engine{
		cfg:      cfg,
		registry: registry,
		tree:     extract.NewSyntaxTreeExtractor(registry, opts),
		pattern:  extract.NewPatternExtractor(registry, opts),
		cache:    resolve.NewCache(cfg.Cache.Capacity, cfg.Cache.Shards),
		recent:   recent,
		contexts: make(map[string]*resolve.Context),
	}, nil
}

// Cache exposes the shared resolution cache.
func (e *Engine) Cache() *resolve.Cache {
	return e.cache
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Stats returns a snapshot of the aggregate counters.
func (e *Engine) Stats() ProjectStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// AnalyzeFile extracts one file from disk, honoring the per-file
// timeout and the size limits from configuration.
func (e *Engine) AnalyzeFile(ctx context.Context, path string) (*types.ExtractionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewFileError("stat", path, err)
	}
	if max := e.cfg.Extraction.MaxFileSize; max > 0 && info.Size() > max {
		return nil, errors.NewFileSizeError(path, info.Size(), max)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileError("read", path, err)
	}
	if err := security.CheckSource(content); err != nil {
		return nil, errors.NewBinaryFileError(path, err)
	}

	if sec := e.cfg.Extraction.FileTimeoutSec; sec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(sec)*time.Second)
		defer cancel()
	}

	started := time.Now()
	result, err := e.AnalyzeContent(ctx, path, content)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return nil, errors.NewTimeoutError(path, time.Since(started))
	}
	return result, err
}

// AnalyzeContent extracts in-memory content attributed to path. The
// chosen strategy, fallback, and cache updates all happen here.
func (e *Engine) AnalyzeContent(ctx context.Context, path string, content []byte) (*types.ExtractionResult, error) {
	hash := xxhash.Sum64(content)
	if prev, ok := e.recent.Get(path); ok && prev.contentHash == hash {
		e.mu.Lock()
		e.stats.FilesFromCache++
		e.mu.Unlock()
		return prev.result, nil
	}

	result, err := e.extractOnce(ctx, path, content)
	if err != nil {
		e.mu.Lock()
		e.stats.FilesFailed++
		e.mu.Unlock()
		return nil, err
	}

	e.cache.ReplaceFile(path, entriesFromResult(result))
	e.recent.Add(path, recentEntry{contentHash: hash, result: result})

	e.mu.Lock()
	e.stats.FilesAnalyzed++
	e.stats.Symbols += len(result.Symbols)
	e.stats.Relationships += len(result.Relationships)
	e.contexts[path] = contextFromResult(result)
	e.mu.Unlock()
	return result, nil
}

// extractOnce runs strategy selection and the pattern fallback for one
// file.
func (e *Engine) extractOnce(ctx context.Context, path string, content []byte) (*types.ExtractionResult, error) {
	ext := filepath.Ext(path)
	useTree := e.registry.HasParser(ext) &&
		int64(len(content)) <= e.cfg.Extraction.SizeThresholdBytes

	if useTree {
		result, err := e.tree.Extract(ctx, path, content)
		if err == nil {
			e.mu.Lock()
			e.stats.TreeStrategyRuns++
			e.mu.Unlock()
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		debug.LogEngine("tree strategy failed for %s, falling back to pattern: %v", path, err)
		e.mu.Lock()
		e.stats.PatternFallbacks++
		e.mu.Unlock()
	}

	result, err := e.pattern.Extract(ctx, path, content)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.stats.PatternStrategyRuns++
	e.mu.Unlock()
	return result, nil
}

// Forget drops a removed file from every cache.
func (e *Engine) Forget(path string) {
	e.cache.RemoveFile(path)
	e.recent.Remove(path)
	e.mu.Lock()
	delete(e.contexts, path)
	e.mu.Unlock()
}

// Resolve looks up a symbol name in the shared cache using the lookup
// environment of fromFile, when that file has been analyzed.
func (e *Engine) Resolve(name, fromFile string) (resolve.Entry, bool) {
	e.mu.Lock()
	rctx := e.contexts[fromFile]
	e.mu.Unlock()
	if rctx == nil {
		rctx = &resolve.Context{FilePath: fromFile}
	}
	return e.cache.Resolve(name, rctx)
}

// Suggest returns near-miss candidates for a name that failed to
// resolve.
func (e *Engine) Suggest(name string, max int) []string {
	return e.cache.Suggest(name, max)
}

// entriesFromResult projects an extraction result into resolution cache
// entries, folding the file's relationships into per-symbol edges.
func entriesFromResult(result *types.ExtractionResult) []resolve.Entry {
	entries := make([]resolve.Entry, 0, len(result.Symbols))
	index := make(map[string]int, len(result.Symbols))
	for _, sym := range result.Symbols {
		if _, dup := index[sym.QualifiedName]; dup {
			continue
		}
		index[sym.QualifiedName] = len(entries)
		entries = append(entries, resolve.Entry{
			QualifiedName: sym.QualifiedName,
			Kind:          sym.Kind,
			FilePath:      result.FilePath,
			StartLine:     sym.StartLine,
			EndLine:       sym.EndLine,
		})
	}

	// Parent-child containment from ParentScope.
	for _, sym := range result.Symbols {
		if sym.ParentScope == "" {
			continue
		}
		if pi, ok := index[sym.ParentScope]; ok {
			entries[pi].ChildIDs = append(entries[pi].ChildIDs, sym.QualifiedName)
		}
	}

	for _, rel := range result.Relationships {
		switch rel.RelationshipType {
		case types.RelationshipCalls:
			if fi, ok := index[rel.FromName]; ok {
				entries[fi].Callees = appendUnique(entries[fi].Callees, rel.ToName)
			}
			if ti, ok := index[rel.ToName]; ok {
				entries[ti].Callers = appendUnique(entries[ti].Callers, rel.FromName)
			}
		case types.RelationshipInherits, types.RelationshipImplements:
			if fi, ok := index[rel.FromName]; ok {
				entries[fi].InheritsFrom = appendUnique(entries[fi].InheritsFrom, rel.ToName)
			}
		case types.RelationshipReadsField, types.RelationshipWritesField:
			if ti, ok := index[rel.ToName]; ok {
				entries[ti].UsedBy = appendUnique(entries[ti].UsedBy, rel.FromName)
			}
		}
	}
	return entries
}

// contextFromResult derives a file's lookup environment from its
// imports and namespace aliases.
func contextFromResult(result *types.ExtractionResult) *resolve.Context {
	rctx := &resolve.Context{FilePath: result.FilePath}

	for _, rel := range result.Relationships {
		if rel.RelationshipType == types.RelationshipImports {
			rctx.Imports = append(rctx.Imports, rel.ToName)
		}
	}
	for _, p := range result.Patterns {
		if p.PatternType != "namespace_alias" {
			continue
		}
		alias, target, ok := strings.Cut(p.Name, "=")
		if !ok || alias == "" || target == "" {
			continue
		}
		if rctx.Aliases == nil {
			rctx.Aliases = make(map[string]string)
		}
		rctx.Aliases[alias] = target
	}

	// The outermost namespace declared in the file is the default
	// lookup namespace for names referenced from it.
	for _, sym := range result.Symbols {
		if sym.Kind == types.SymbolKindNamespace {
			rctx.Namespace = sym.QualifiedName
			break
		}
	}
	return rctx
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
