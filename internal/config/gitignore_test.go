package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(lines ...string) *GitignoreParser {
	gp := NewGitignoreParser()
	for _, line := range lines {
		gp.AddPattern(line)
	}
	return gp
}

func TestGitignore_PatternMatching(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		path    string
		isDir   bool
		ignored bool
	}{
		{"suffix glob matches at root", []string{"*.log"}, "app.log", false, true},
		{"suffix glob matches nested", []string{"*.log"}, "src/deep/app.log", false, true},
		{"suffix glob leaves other files", []string{"*.log"}, "src/app.go", false, false},
		{"bare name matches any depth", []string{"node_modules"}, "web/node_modules", true, true},
		{"bare name covers directory contents", []string{"node_modules"}, "node_modules/pkg/index.js", false, true},
		{"anchored matches root only", []string{"/dist"}, "dist", true, true},
		{"anchored skips nested", []string{"/dist"}, "src/dist", true, false},
		{"anchored covers contents", []string{"/dist"}, "dist/app.js", false, true},
		{"slash pattern is root relative", []string{"doc/*.txt"}, "doc/readme.txt", false, true},
		{"slash pattern skips nested copy", []string{"doc/*.txt"}, "src/doc/readme.txt", false, false},
		{"dir-only matches directory", []string{"build/"}, "build", true, true},
		{"dir-only skips plain file", []string{"build/"}, "build", false, false},
		{"dir-only covers contents", []string{"build/"}, "build/out/main.o", false, true},
		{"character class", []string{"[Dd]ebug"}, "Debug", true, true},
		{"question mark", []string{"file?.tmp"}, "file1.tmp", false, true},
		{"comment is inert", []string{"# *.go"}, "main.go", false, false},
		{"blank line is inert", []string{"   "}, "main.go", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gp := newParser(tt.lines...)
			assert.Equal(t, tt.ignored, gp.ShouldIgnore(tt.path, tt.isDir))
		})
	}
}

func TestGitignore_LastMatchWins(t *testing.T) {
	gp := newParser("*.log", "!important.log", "logs/")

	assert.True(t, gp.ShouldIgnore("debug.log", false))
	assert.False(t, gp.ShouldIgnore("important.log", false), "negation re-includes")
	assert.True(t, gp.ShouldIgnore("logs/trace.log", false))

	// Re-ignoring after a negation flips the result back.
	gp.AddPattern("important.log")
	assert.True(t, gp.ShouldIgnore("important.log", false))
}

func TestGitignore_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := "# build output\ntarget/\n\n*.tmp\n!keep.tmp\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))

	assert.True(t, gp.ShouldIgnore("target", true))
	assert.True(t, gp.ShouldIgnore("target/debug/main.o", false))
	assert.True(t, gp.ShouldIgnore("scratch.tmp", false))
	assert.False(t, gp.ShouldIgnore("keep.tmp", false))
	assert.False(t, gp.ShouldIgnore("src/main.go", false))
}

func TestGitignore_MissingFileIsEmpty(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.False(t, gp.ShouldIgnore("anything.go", false))
}
