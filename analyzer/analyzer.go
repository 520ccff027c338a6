package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hannajonsd/ts-introspect/config"
	"github.com/hannajonsd/ts-introspect/extractor"
	"github.com/hannajonsd/ts-introspect/graph"
	"github.com/hannajonsd/ts-introspect/logging"
	"github.com/hannajonsd/ts-introspect/parser"
)

// Builder builds the module dependency graph of a project
type Builder struct {
	cfg       *config.Config
	extractor *extractor.Extractor
	matcher   *Matcher
	logger    *slog.Logger
	skipped   []SkippedFile
}

// NewBuilder creates a builder. ext must be rooted at cfg.Root; a nil ext
// gets a default extractor.
func NewBuilder(cfg *config.Config, ext *extractor.Extractor, logger *slog.Logger) (*Builder, error) {
	logger = logging.OrDiscard(logger)
	if ext == nil {
		var err error
		ext, err = extractor.New(cfg.Root, extractor.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}
	return &Builder{
		cfg:       cfg,
		extractor: ext,
		matcher:   NewMatcher(ext.Root(), cfg.Include, cfg.Exclude),
		logger:    logger,
	}, nil
}

// FindSourceFiles enumerates the analyzable files of the project
func (b *Builder) FindSourceFiles(ctx context.Context) ([]string, error) {
	files, err := FindSourceFiles(ctx, b.matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to find source files: %w", err)
	}
	return files, nil
}

// Build scans the project and returns a fresh graph. Every file becomes a
// node before any edge is added; a file that cannot be analyzed keeps its
// empty node, is logged and is listed by Skipped.
func (b *Builder) Build(ctx context.Context) (*graph.Graph, error) {
	b.skipped = nil

	files, err := b.FindSourceFiles(ctx)
	if err != nil {
		return nil, err
	}
	b.logger.Info("found source files", "root", b.extractor.Root(), "count", len(files))

	g := graph.New(graph.WithEntryPoints(b.cfg.EntryPoints...))
	owners := make(map[string]string, len(files))
	var order []string

	for _, file := range files {
		module := b.extractor.ModulePath(file)
		if prev, dup := owners[module]; dup {
			b.logger.Warn("module path collision, keeping first file", "module", module, "kept", prev, "dropped", file)
			continue
		}
		owners[module] = file
		order = append(order, module)
		g.AddNode(module)
	}

	for _, module := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file := owners[module]
		info, err := b.extractor.ExtractDependencies(file, nil)
		if err != nil {
			b.logger.Warn("skipping file", "file", file, "error", err)
			b.skipped = append(b.skipped, SkippedFile{Path: file, Reason: err.Error()})
			continue
		}

		uses := append(append([]string{}, info.Internal...), info.Types...)
		g.SetUses(module, parser.SortedUnique(uses))
	}

	b.logger.Debug("graph built", "modules", g.Len(), "skipped", len(b.skipped))
	return g, nil
}

// Skipped lists the files the last Build could not analyze
func (b *Builder) Skipped() []SkippedFile {
	return append([]SkippedFile{}, b.skipped...)
}

// Build builds the graph of rootDir with the default configuration
func Build(ctx context.Context, rootDir string) (*graph.Graph, error) {
	cfg := config.Default()
	cfg.Root = rootDir

	b, err := NewBuilder(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx)
}
