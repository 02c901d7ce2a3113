package resolve

import (
	"github.com/hbollon/go-edlib"
)

// Suggest returns up to max cached base names similar to the misspelled
// name, best match first. Used to soften resolution misses in tool
// responses.
func (c *Cache) Suggest(name string, max int) []string {
	if max <= 0 {
		return nil
	}
	names := c.BaseNames()
	if len(names) == 0 {
		return nil
	}
	matches, err := edlib.FuzzySearchSetThreshold(baseName(name), names, max, 0.6, edlib.Levenshtein)
	if err != nil {
		return nil
	}
	out := matches[:0]
	for _, m := range matches {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
