package scope

import "strings"

// LogicalLine is one or more physical lines joined into a single
// statement for pattern matching. Multi-line signatures must be seen as
// one line or declaration patterns miss them.
type LogicalLine struct {
	Text      string
	StartLine int // 1-based
	EndLine   int // 1-based
}

// maxJoinedLines bounds how many physical lines a signature join may
// consume; runaway joins on malformed input stop here.
const maxJoinedLines = 8

// JoinLogicalLines merges physical lines whose parentheses are left
// unbalanced, which is how multi-line function signatures and call
// argument lists are reassembled before matching. Brace structure is
// untouched; only paren balance drives joining.
func JoinLogicalLines(lines []string) []LogicalLine {
	tracker := NewBraceTracker()
	out := make([]LogicalLine, 0, len(lines))

	i := 0
	for i < len(lines) {
		stripped := tracker.Strip(lines[i])
		balance := parenBalance(stripped)

		if balance <= 0 {
			out = append(out, LogicalLine{
				Text:      lines[i],
				StartLine: i + 1,
				EndLine:   i + 1,
			})
			i++
			continue
		}

		// Open parens outlive the line: join until balanced or bounded
		var b strings.Builder
		b.WriteString(strings.TrimRight(lines[i], " \t"))
		start := i
		j := i + 1
		for j < len(lines) && j-start < maxJoinedLines && balance > 0 {
			next := tracker.Strip(lines[j])
			balance += parenBalance(next)
			b.WriteByte(' ')
			b.WriteString(strings.TrimSpace(lines[j]))
			j++
		}
		out = append(out, LogicalLine{
			Text:      b.String(),
			StartLine: start + 1,
			EndLine:   j,
		})
		i = j
	}
	return out
}

func parenBalance(s string) int {
	balance := 0
	for _, r := range s {
		switch r {
		case '(':
			balance++
		case ')':
			balance--
		}
	}
	return balance
}
