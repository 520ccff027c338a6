package analyzer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches paths against the root .gitignore
type GitignoreParser struct {
	rootDir          string
	ignorePatterns   []string
	negationPatterns []string
}

// NewGitignoreParser creates a new gitignore parser for the given directory
func NewGitignoreParser(rootDir string) *GitignoreParser {
	parser := &GitignoreParser{
		rootDir: rootDir,
	}
	parser.loadGitignore()
	return parser
}

// loadGitignore reads and parses the .gitignore file
func (gp *GitignoreParser) loadGitignore() {
	file, err := os.Open(filepath.Join(gp.rootDir, ".gitignore"))
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "!") {
			gp.negationPatterns = append(gp.negationPatterns, strings.TrimPrefix(line, "!"))
		} else {
			gp.ignorePatterns = append(gp.ignorePatterns, line)
		}
	}
}

// ShouldIgnore checks if a path should be ignored based on .gitignore patterns
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	relPath, err := filepath.Rel(gp.rootDir, path)
	if err != nil || relPath == "." {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	ignored := false
	for _, pattern := range gp.ignorePatterns {
		if matchGitignore(pattern, relPath, isDir) {
			ignored = true
			break
		}
	}
	if !ignored {
		return false
	}

	for _, pattern := range gp.negationPatterns {
		if matchGitignore(pattern, relPath, isDir) {
			return false
		}
	}
	return true
}

// matchGitignore translates one gitignore pattern to a doublestar pattern.
// A pattern without an inner slash matches at any depth; a trailing slash
// restricts it to directories.
func matchGitignore(pattern, relPath string, isDir bool) bool {
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	if dirOnly && !isDir {
		return false
	}

	anchored := strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	if !anchored {
		pattern = "**/" + pattern
	}

	ok, _ := doublestar.Match(pattern, relPath)
	return ok
}
