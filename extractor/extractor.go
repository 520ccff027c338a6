package extractor

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
	"github.com/hannajonsd/ts-introspect/logging"
	"github.com/hannajonsd/ts-introspect/metadata"
	"github.com/hannajonsd/ts-introspect/parser"
)

// DependencyInfo lists what one file depends on. Every list is sorted and
// free of duplicates.
type DependencyInfo struct {
	Internal []string `json:"internal" yaml:"internal"`
	External []string `json:"external" yaml:"external"`
	Types    []string `json:"types" yaml:"types"`
}

// ExportInfo is an exported top-level declaration
type ExportInfo = parser.Export

func (d DependencyInfo) clone() DependencyInfo {
	return DependencyInfo{
		Internal: append([]string{}, d.Internal...),
		External: append([]string{}, d.External...),
		Types:    append([]string{}, d.Types...),
	}
}

type cacheKey struct {
	path string
	sum  [sha256.Size]byte
}

// Extractor extracts dependency and export information from source files
// under a project root.
type Extractor struct {
	root         string
	logger       *slog.Logger
	cache        *lru.Cache[cacheKey, DependencyInfo]
	strictSyntax bool
}

// Option configures an Extractor
type Option func(*Extractor) error

// WithLogger sets the logger used for diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) error {
		e.logger = logging.OrDiscard(l)
		return nil
	}
}

// WithCache memoizes dependency extraction for up to size files. Entries are
// keyed by path and content digest, so an edited file is always re-parsed.
func WithCache(size int) Option {
	return func(e *Extractor) error {
		if size <= 0 {
			return nil
		}
		c, err := lru.New[cacheKey, DependencyInfo](size)
		if err != nil {
			return fmt.Errorf("failed to create extraction cache: %w", err)
		}
		e.cache = c
		return nil
	}
}

// WithStrictSyntax makes a syntax tree containing errors a ParseFailed error
// instead of extracting from the partial tree.
func WithStrictSyntax() Option {
	return func(e *Extractor) error {
		e.strictSyntax = true
		return nil
	}
}

// New creates an extractor whose module paths are relative to root
func New(root string, opts ...Option) (*Extractor, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.InvalidPath, "cannot resolve project root", err).WithPath(root)
	}
	e := &Extractor{root: abs, logger: logging.Discard()}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Root returns the absolute project root
func (e *Extractor) Root() string {
	return e.root
}

// ExtractDependencies parses path and classifies every import-like construct.
// When content is nil the file is read from disk.
func (e *Extractor) ExtractDependencies(path string, content []byte) (DependencyInfo, error) {
	absPath, content, err := e.load(path, content)
	if err != nil {
		return DependencyInfo{}, err
	}

	var key cacheKey
	if e.cache != nil {
		key = cacheKey{path: absPath, sum: sha256.Sum256(content)}
		if info, ok := e.cache.Get(key); ok {
			return info.clone(), nil
		}
	}

	fileParser, res, err := e.parse(absPath, content)
	if err != nil {
		return DependencyInfo{}, err
	}
	defer fileParser.Close()
	defer res.Close()

	edges, err := fileParser.ExtractImports(res.Tree.RootNode(), res.Source)
	if err != nil {
		return DependencyInfo{}, ierrors.Wrap(ierrors.ParseFailed, "cannot extract imports", err).WithPath(path)
	}

	info := e.classify(absPath, edges)
	if e.cache != nil {
		e.cache.Add(key, info.clone())
	}
	return info, nil
}

// ExtractExports returns the exported top-level declarations of path, except
// the __metadata binding. When content is nil the file is read from disk.
func (e *Extractor) ExtractExports(path string, content []byte) ([]ExportInfo, error) {
	absPath, content, err := e.load(path, content)
	if err != nil {
		return nil, err
	}

	fileParser, res, err := e.parse(absPath, content)
	if err != nil {
		return nil, err
	}
	defer fileParser.Close()
	defer res.Close()

	found, err := fileParser.ExtractExports(res.Tree.RootNode(), res.Source)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.ParseFailed, "cannot extract exports", err).WithPath(path)
	}

	seen := make(map[ExportInfo]bool)
	exports := []ExportInfo{}
	for _, exp := range found {
		if exp.Name == metadata.Identifier || seen[exp] {
			continue
		}
		seen[exp] = true
		exports = append(exports, exp)
	}
	return exports, nil
}

func (e *Extractor) load(path string, content []byte) (string, []byte, error) {
	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(e.root, path)
	}
	if !parser.IsSourceFile(absPath) {
		return "", nil, ierrors.New(ierrors.UnsupportedFile, "no grammar for file extension").WithPath(path)
	}
	if content != nil {
		return absPath, content, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ierrors.Wrap(ierrors.FileNotFound, "source file does not exist", err).WithPath(path)
		}
		return "", nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return absPath, data, nil
}

func (e *Extractor) parse(absPath string, content []byte) (parser.Parser, *parser.ParseResult, error) {
	fileParser, err := parser.CreateParser(absPath)
	if err != nil {
		return nil, nil, ierrors.Wrap(ierrors.UnsupportedFile, "cannot create parser", err).WithPath(absPath)
	}

	res, err := fileParser.ParseSource(absPath, content)
	if err != nil {
		fileParser.Close()
		return nil, nil, ierrors.Wrap(ierrors.ParseFailed, "cannot parse source", err).WithPath(absPath)
	}

	if res.HasSyntaxError() {
		if e.strictSyntax {
			res.Close()
			fileParser.Close()
			return nil, nil, ierrors.New(ierrors.ParseFailed, "syntax errors in source").WithPath(absPath)
		}
		e.logger.Debug("extracting from partial syntax tree", "file", absPath)
	}
	return fileParser, res, nil
}
