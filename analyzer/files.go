package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hannajonsd/ts-introspect/parser"
)

// skipDirs are never descended into
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"build":        true,
	"dist":         true,
	"coverage":     true,
}

var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

// SkipDir reports whether a directory name is excluded from every scan
func SkipDir(name string) bool {
	return skipDirs[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

// IsAnalyzable reports whether a file takes part in the dependency graph:
// a source file that is neither a declaration file nor a test.
func IsAnalyzable(path string) bool {
	if !parser.IsSourceFile(path) {
		return false
	}

	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range declarationSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	if strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "__tests__" {
			return false
		}
	}
	return true
}

// Matcher applies include and exclude patterns and the root .gitignore
type Matcher struct {
	root      string
	include   []string
	exclude   []string
	gitignore *GitignoreParser
}

// NewMatcher creates a matcher for root. An empty include list includes everything.
func NewMatcher(root string, include, exclude []string) *Matcher {
	return &Matcher{
		root:      root,
		include:   include,
		exclude:   exclude,
		gitignore: NewGitignoreParser(root),
	}
}

// SkipDirectory reports whether the walk should not enter dir
func (m *Matcher) SkipDirectory(dir string) bool {
	if dir == m.root {
		return false
	}
	if SkipDir(filepath.Base(dir)) || m.gitignore.ShouldIgnore(dir, true) {
		return true
	}
	return matchAny(m.exclude, m.rel(dir))
}

// Match reports whether file is part of the analysis
func (m *Matcher) Match(file string) bool {
	if !IsAnalyzable(file) || m.gitignore.ShouldIgnore(file, false) {
		return false
	}
	rel := m.rel(file)
	if matchAny(m.exclude, rel) {
		return false
	}
	return len(m.include) == 0 || matchAny(m.include, rel)
}

func (m *Matcher) rel(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// FindSourceFiles walks root and returns the matching files in lexical order
func FindSourceFiles(ctx context.Context, m *Matcher) ([]string, error) {
	var sourceFiles []string

	err := filepath.Walk(m.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			if m.SkipDirectory(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if m.Match(path) {
			sourceFiles = append(sourceFiles, path)
		}
		return nil
	})

	return sourceFiles, err
}
