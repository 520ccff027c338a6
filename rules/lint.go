package rules

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hannajonsd/ts-introspect/config"
	"github.com/hannajonsd/ts-introspect/extractor"
	"github.com/hannajonsd/ts-introspect/logging"
)

// RuleReadError names the finding reported for a file that cannot be read
const RuleReadError = "read-error"

// LintResult holds the findings of one file split by severity
type LintResult struct {
	File     string    `json:"file" yaml:"file"`
	Errors   []Finding `json:"errors" yaml:"errors"`
	Warnings []Finding `json:"warnings" yaml:"warnings"`
}

// HasIssues reports whether the file produced any finding
func (r LintResult) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.Warnings) > 0
}

// Summary aggregates the results of one lint run
type Summary struct {
	RunID           string       `json:"runId" yaml:"runId"`
	Results         []LintResult `json:"results" yaml:"results"`
	TotalErrors     int          `json:"totalErrors" yaml:"totalErrors"`
	TotalWarnings   int          `json:"totalWarnings" yaml:"totalWarnings"`
	FilesChecked    int          `json:"filesChecked" yaml:"filesChecked"`
	FilesWithIssues int          `json:"filesWithIssues" yaml:"filesWithIssues"`
	Passed          bool         `json:"passed" yaml:"passed"`
}

// Linter runs the registered rules over files
type Linter struct {
	Registry *Registry
	Config   *config.Config
	Logger   *slog.Logger
	// Deps is shared by every file of a run; nil builds one per file.
	Deps DependencyExtractor
	// Legacy runs the fixed rule table instead of the registry.
	Legacy bool
	// Now overrides the clock used by date rules.
	Now func() time.Time
}

// NewLinter creates a linter with a shared extractor sized from cfg.CacheSize
func NewLinter(reg *Registry, cfg *config.Config, logger *slog.Logger) (*Linter, error) {
	logger = logging.OrDiscard(logger)
	opts := []extractor.Option{extractor.WithLogger(logger)}
	if cfg.CacheSize > 0 {
		opts = append(opts, extractor.WithCache(cfg.CacheSize))
	}
	ext, err := extractor.New(cfg.Root, opts...)
	if err != nil {
		return nil, err
	}
	return &Linter{Registry: reg, Config: cfg, Logger: logger, Deps: ext}, nil
}

// LintFile checks one file's content
func (l *Linter) LintFile(path string, content []byte) LintResult {
	ctx := &Context{
		Path:    path,
		Content: content,
		Config:  l.Config,
		Deps:    l.Deps,
	}
	if l.Now != nil {
		ctx.Now = l.Now()
	}

	var findings []Finding
	if l.Legacy || l.Registry == nil {
		findings = LegacyValidate(ctx)
	} else {
		findings = l.Registry.RunAll(ctx)
	}
	return classify(path, findings)
}

func classify(path string, findings []Finding) LintResult {
	res := LintResult{File: path, Errors: []Finding{}, Warnings: []Finding{}}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			res.Errors = append(res.Errors, f)
		case SeverityWarn:
			res.Warnings = append(res.Warnings, f)
		}
	}
	return res
}

// LintPaths reads and checks every file. Unreadable files are reported as
// read-error findings; only context cancellation returns an error.
func (l *Linter) LintPaths(ctx context.Context, paths []string) (Summary, error) {
	logger := logging.OrDiscard(l.Logger)
	sum := Summary{RunID: uuid.NewString(), Results: []LintResult{}}
	logger = logger.With("run", sum.RunID)
	logger.Debug("lint started", "files", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		var res LintResult
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read file", "file", path, "error", err)
			res = classify(path, []Finding{{
				Rule:     RuleReadError,
				Severity: SeverityError,
				Message:  err.Error(),
			}})
		} else {
			res = l.LintFile(path, content)
		}

		sum.add(res)
		for _, f := range append(append([]Finding{}, res.Errors...), res.Warnings...) {
			logger.Debug("finding", "file", path, "rule", f.Rule, "severity", f.Severity, "message", f.Message)
		}
	}

	sum.finish(l.Config != nil && l.Config.Strict)
	logger.Info("lint finished",
		"files", sum.FilesChecked,
		"errors", sum.TotalErrors,
		"warnings", sum.TotalWarnings,
		"passed", sum.Passed,
	)
	return sum, nil
}

func (s *Summary) add(res LintResult) {
	s.Results = append(s.Results, res)
	s.FilesChecked++
	s.TotalErrors += len(res.Errors)
	s.TotalWarnings += len(res.Warnings)
	if res.HasIssues() {
		s.FilesWithIssues++
	}
}

// finish decides Passed; strict mode also fails on warnings
func (s *Summary) finish(strict bool) {
	s.Passed = s.TotalErrors == 0 && (!strict || s.TotalWarnings == 0)
}

// Summarize aggregates already computed results
func Summarize(results []LintResult, strict bool) Summary {
	sum := Summary{RunID: uuid.NewString(), Results: []LintResult{}}
	for _, res := range results {
		sum.add(res)
	}
	sum.finish(strict)
	return sum
}
