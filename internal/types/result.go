package types

// Strategy identifies which extraction path produced a result
type Strategy int

const (
	StrategyUnknown Strategy = iota
	StrategySyntaxTree
	StrategyPattern
)

var strategyStrings = map[Strategy]string{
	StrategySyntaxTree: "syntax_tree",
	StrategyPattern:    "pattern",
}

// String returns a string representation of the strategy
func (s Strategy) String() string {
	if name, ok := strategyStrings[s]; ok {
		return name
	}
	return "unknown"
}

// PatternInfo records one detected code pattern occurrence with its
// match confidence, for downstream pattern analytics.
type PatternInfo struct {
	PatternType string  `json:"pattern_type"`
	Name        string  `json:"name"`
	LineNumber  int     `json:"line_number"`
	Confidence  float64 `json:"confidence"`
}

// ExtractionStats summarizes one file's extraction pass.
type ExtractionStats struct {
	LinesProcessed      int `json:"lines_processed"`
	SymbolsExtracted    int `json:"symbols_extracted"`
	RelationshipsFound  int `json:"relationships_found"`
	ControlFlowAnalyzed int `json:"control_flow_analyzed"`
}

// ExtractionResult is the unified per-file output schema. Both extraction
// strategies populate it identically; consumers must not need to know
// which strategy ran.
type ExtractionResult struct {
	FilePath        string          `json:"file_path"`
	Language        string          `json:"language"`
	Strategy        Strategy        `json:"-"`
	Symbols         []Symbol        `json:"symbols"`
	Relationships   []Relationship  `json:"relationships"`
	ControlFlowData ControlFlowData `json:"control_flow_data"`
	Patterns        []PatternInfo   `json:"patterns"`
	Stats           ExtractionStats `json:"stats"`
}

// NewExtractionResult returns an empty result with non-nil slices so
// serialized output always carries arrays, never nulls.
func NewExtractionResult(filePath, language string) *ExtractionResult {
	return &ExtractionResult{
		FilePath:      filePath,
		Language:      language,
		Symbols:       []Symbol{},
		Relationships: []Relationship{},
		ControlFlowData: ControlFlowData{
			Blocks: []ControlFlowBlock{},
			Calls:  []ControlFlowCall{},
		},
		Patterns: []PatternInfo{},
	}
}

// Merge folds another result for the same file into r. Used when the
// pattern path supplements a partially successful syntax-tree pass.
func (r *ExtractionResult) Merge(other *ExtractionResult) {
	if other == nil {
		return
	}
	r.Symbols = append(r.Symbols, other.Symbols...)
	r.Relationships = append(r.Relationships, other.Relationships...)
	r.ControlFlowData.Blocks = append(r.ControlFlowData.Blocks, other.ControlFlowData.Blocks...)
	r.ControlFlowData.Calls = append(r.ControlFlowData.Calls, other.ControlFlowData.Calls...)
	r.ControlFlowData.Paths = append(r.ControlFlowData.Paths, other.ControlFlowData.Paths...)
	r.Patterns = append(r.Patterns, other.Patterns...)
	r.Stats.LinesProcessed += other.Stats.LinesProcessed
	r.Stats.SymbolsExtracted += other.Stats.SymbolsExtracted
	r.Stats.RelationshipsFound += other.Stats.RelationshipsFound
	r.Stats.ControlFlowAnalyzed += other.Stats.ControlFlowAnalyzed
}

// ProjectStats aggregates extraction stats across a whole analysis run.
type ProjectStats struct {
	FilesProcessed     int   `json:"files_processed"`
	FilesFailed        int   `json:"files_failed"`
	FilesSkipped       int   `json:"files_skipped"`
	SymbolsExtracted   int   `json:"symbols_extracted"`
	RelationshipsFound int   `json:"relationships_found"`
	DurationMillis     int64 `json:"duration_millis"`
}
