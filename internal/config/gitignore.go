// Gitignore support for the project walker. Each .gitignore line is
// rewritten into a doublestar glob so matching shares the semantics of
// the engine's exclude patterns.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreRule is one .gitignore line translated to a doublestar glob.
type ignoreRule struct {
	glob    string
	negate  bool
	dirOnly bool
}

// matches reports whether the rule covers the slash-relative path. A
// rule that matches a directory also covers everything inside it.
func (r ignoreRule) matches(path string, isDir bool) bool {
	if !r.dirOnly || isDir {
		if ok, _ := doublestar.Match(r.glob, path); ok {
			return true
		}
	}
	ok, _ := doublestar.Match(r.glob+"/**", path)
	return ok
}

// GitignoreParser applies .gitignore rules during the project walk.
// Rules are evaluated in file order and the last match wins, so a
// later "!keep.log" re-includes a file ignored by an earlier "*.log".
type GitignoreParser struct {
	rules []ignoreRule
}

func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore reads root/.gitignore. A missing file leaves the
// parser empty and is not an error.
func (gp *GitignoreParser) LoadGitignore(root string) error {
	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern translates one gitignore line into a matching rule.
// Blank lines and comments are dropped.
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	rule := ignoreRule{}
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = strings.TrimSpace(line[1:])
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	// Git anchors any pattern containing a slash to the root; a bare
	// name like "*.log" matches at every depth.
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return
	}
	if !anchored && !strings.Contains(line, "/") {
		line = "**/" + line
	}

	rule.glob = line
	gp.rules = append(gp.rules, rule)
}

// ShouldIgnore reports whether a slash-relative path is ignored. The
// walker skips ignored directories entirely, but paths under an
// ignored directory still match here so callers can probe them
// directly.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = strings.Trim(filepath.ToSlash(path), "/")

	ignored := false
	for _, rule := range gp.rules {
		if rule.matches(path, isDir) {
			ignored = !rule.negate
		}
	}
	return ignored
}
