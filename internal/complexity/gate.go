package complexity

// Gate decides whether full control-flow extraction runs for a
// function. It admits functions at or above a minimum estimate, up to a
// per-file cap bounding total analysis cost. Functions it rejects still
// get lightweight field-access analysis, just not block extraction.
//
// A Gate tracks one file's admissions and is not safe for concurrent
// use; per-file extraction is single-threaded by design.
type Gate struct {
	minComplexity    int
	maxDeepFunctions int
	admitted         int
}

// NewGate returns a gate with the given threshold and per-file cap.
// A cap of zero disables deep analysis entirely.
func NewGate(minComplexity, maxDeepFunctions int) *Gate {
	return &Gate{
		minComplexity:    minComplexity,
		maxDeepFunctions: maxDeepFunctions,
	}
}

// Admit reports whether a function with the given estimate should get
// full control-flow extraction, and counts it against the cap when so.
func (g *Gate) Admit(estimate int) bool {
	if estimate <= 0 {
		return false
	}
	if estimate < g.minComplexity {
		return false
	}
	if g.admitted >= g.maxDeepFunctions {
		return false
	}
	g.admitted++
	return true
}

// Admitted returns how many functions have been admitted so far.
func (g *Gate) Admitted() int {
	return g.admitted
}

// Reset clears the admission count for reuse on the next file.
func (g *Gate) Reset() {
	g.admitted = 0
}
