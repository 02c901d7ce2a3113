package scope

// BraceTracker counts brace depth across lines, ignoring braces inside
// string literals, character literals, and comments. The pattern
// extractor uses it to detect scope exit and close pending blocks.
type BraceTracker struct {
	depth          int
	inBlockComment bool
}

// NewBraceTracker returns a tracker at depth zero.
func NewBraceTracker() *BraceTracker {
	return &BraceTracker{}
}

// Depth returns the current brace depth.
func (t *BraceTracker) Depth() int {
	return t.depth
}

// InBlockComment reports whether the tracker is inside an unterminated
// block comment.
func (t *BraceTracker) InBlockComment() bool {
	return t.inBlockComment
}

// Apply scans one line, updates the depth, and returns the number of
// opening and closing braces seen outside strings and comments.
func (t *BraceTracker) Apply(line string) (opens, closes int) {
	return t.ApplyStripped(t.strip(line))
}

// ApplyStripped counts braces on a line already blanked by Strip and
// updates the depth. Strip carries comment state, so a line must be
// stripped exactly once; callers that need the stripped text call Strip
// and then feed the result here.
func (t *BraceTracker) ApplyStripped(stripped string) (opens, closes int) {
	for _, r := range stripped {
		switch r {
		case '{':
			opens++
		case '}':
			closes++
		}
	}
	t.depth += opens - closes
	if t.depth < 0 {
		// Unbalanced input; clamp rather than corrupt later scope math
		t.depth = 0
	}
	return opens, closes
}

// Strip returns the line with string/char literals and comments blanked
// out, preserving byte offsets so column positions stay valid.
func (t *BraceTracker) Strip(line string) string {
	return t.strip(line)
}

func (t *BraceTracker) strip(line string) string {
	out := []byte(line)
	i := 0
	n := len(line)

	blank := func(from, to int) {
		for j := from; j < to && j < n; j++ {
			if out[j] != ' ' && out[j] != '\t' {
				out[j] = ' '
			}
		}
	}

	for i < n {
		if t.inBlockComment {
			if i+1 < n && line[i] == '*' && line[i+1] == '/' {
				blank(i, i+2)
				t.inBlockComment = false
				i += 2
				continue
			}
			blank(i, i+1)
			i++
			continue
		}

		c := line[i]
		switch c {
		case '/':
			if i+1 < n && line[i+1] == '/' {
				blank(i, n)
				return string(out)
			}
			if i+1 < n && line[i+1] == '*' {
				blank(i, i+2)
				t.inBlockComment = true
				i += 2
				continue
			}
			i++
		case '#':
			// Hash comments (Python, shell-style config) when not a
			// preprocessor directive
			if !isPreprocessor(line) {
				blank(i, n)
				return string(out)
			}
			i++
		case '"', '\'', '`':
			quote := c
			start := i
			i++
			for i < n {
				if line[i] == '\\' {
					i += 2
					continue
				}
				if line[i] == quote {
					i++
					break
				}
				i++
			}
			blank(start, i)
		default:
			i++
		}
	}
	return string(out)
}

func isPreprocessor(line string) bool {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t':
			continue
		case '#':
			return true
		default:
			return false
		}
	}
	return false
}
