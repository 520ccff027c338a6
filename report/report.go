// Package report renders analysis and lint results for the terminal or as
// JSON or YAML documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hannajonsd/ts-introspect/extractor"
	"github.com/hannajonsd/ts-introspect/fingerprint"
	"github.com/hannajonsd/ts-introspect/graph"
	"github.com/hannajonsd/ts-introspect/manifest"
	"github.com/hannajonsd/ts-introspect/rules"
)

// Format selects the output encoding
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHuman, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "text", "":
		return FormatHuman, nil
	}
	return "", fmt.Errorf("unknown output format %q (want human, json or yaml)", s)
}

// Printer writes results in one format
type Printer struct {
	w      io.Writer
	format Format
}

// New creates a printer
func New(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// encode writes v as a JSON or YAML document. It reports false for human output.
func (p *Printer) encode(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// Lint shows the findings of a lint run
func (p *Printer) Lint(sum rules.Summary) error {
	if done, err := p.encode(sum); done {
		return err
	}

	if sum.FilesWithIssues == 0 {
		if sum.FilesChecked == 0 {
			p.printf("  No source files found to check\n")
		} else {
			p.printf("✅ All %d files satisfy their documentation contract\n", sum.FilesChecked)
		}
	} else {
		p.printf("\nFound issues in %d files:\n\n", sum.FilesWithIssues)
		for _, res := range sum.Results {
			if !res.HasIssues() {
				continue
			}
			p.printf(" %s\n", res.File)
			for _, f := range res.Errors {
				p.finding("❌", f)
			}
			for _, f := range res.Warnings {
				p.finding("⚠️ ", f)
			}
			p.printf("\n")
		}
	}

	p.printf("%s\n", strings.Repeat("-", 60))
	p.printf("SUMMARY\n")
	p.printf("Files checked: %d\n", sum.FilesChecked)
	p.printf("Files with issues: %d\n", sum.FilesWithIssues)
	p.printf("Errors: %d\n", sum.TotalErrors)
	p.printf("Warnings: %d\n", sum.TotalWarnings)
	if sum.Passed {
		p.printf("Result: passed\n")
	} else {
		p.printf("Result: failed\n")
	}
	return nil
}

func (p *Printer) finding(icon string, f rules.Finding) {
	fix := ""
	if f.Fixable {
		fix = " [fixable]"
	}
	p.printf("  %s %s: %s%s\n", icon, f.Rule, f.Message, fix)
}

type graphDocument struct {
	Stats   graph.Stats                `json:"stats" yaml:"stats"`
	Modules map[string]graph.UsageInfo `json:"modules" yaml:"modules"`
}

// Graph shows every module with its direct dependencies
func (p *Printer) Graph(g *graph.Graph) error {
	st := g.Stats()
	if done, err := p.encode(graphDocument{Stats: st, Modules: g.Map()}); done {
		return err
	}

	for _, m := range g.Nodes() {
		p.printf("%s\n", m)
		for _, dep := range g.Uses(m) {
			marker := ""
			if !g.HasNode(dep) {
				marker = " (not found)"
			}
			p.printf("  -> %s%s\n", dep, marker)
		}
	}
	p.printf("\n%d modules, %d edges, %d dangling\n", st.Modules, st.Edges, st.Dangling)
	return nil
}

// Modules shows a titled list of module paths
func (p *Printer) Modules(title string, modules []string) error {
	if modules == nil {
		modules = []string{}
	}
	if done, err := p.encode(modules); done {
		return err
	}

	if len(modules) == 0 {
		p.printf("%s: none\n", title)
		return nil
	}
	p.printf("%s (%d):\n", title, len(modules))
	for _, m := range modules {
		p.printf("  - %s\n", m)
	}
	return nil
}

// Cycles shows circular dependencies, each closed back on its first module
func (p *Printer) Cycles(cycles [][]string) error {
	if cycles == nil {
		cycles = [][]string{}
	}
	if done, err := p.encode(cycles); done {
		return err
	}

	if len(cycles) == 0 {
		p.printf("✅ No circular dependencies found\n")
		return nil
	}
	p.printf("Found %d circular dependencies:\n", len(cycles))
	for i, c := range cycles {
		p.printf("  %d. %s -> %s\n", i+1, strings.Join(c, " -> "), c[0])
	}
	return nil
}

type externalPackage struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Range   bool   `json:"range,omitempty" yaml:"range,omitempty"`
	Listed  bool   `json:"inManifest" yaml:"inManifest"`
}

type depsDocument struct {
	File     string            `json:"file" yaml:"file"`
	Internal []string          `json:"internal" yaml:"internal"`
	Types    []string          `json:"types" yaml:"types"`
	External []externalPackage `json:"external" yaml:"external"`
}

// Dependencies shows what one file imports. External packages are looked
// up in m when it is not nil.
func (p *Printer) Dependencies(file string, deps extractor.DependencyInfo, m *manifest.Manifest) error {
	doc := depsDocument{File: file, Internal: deps.Internal, Types: deps.Types, External: []externalPackage{}}
	for _, name := range deps.External {
		pkg := externalPackage{Name: name}
		if m != nil && m.Declares(name) {
			pkg.Listed = true
			pkg.Version = m.Version(name)
			pkg.Range = manifest.IsRange(pkg.Version)
		}
		doc.External = append(doc.External, pkg)
	}
	if done, err := p.encode(doc); done {
		return err
	}

	p.printf("%s\n", file)
	p.list("Internal", doc.Internal)
	p.list("Type-only", doc.Types)
	p.printf("\n External (%d):\n", len(doc.External))
	for _, pkg := range doc.External {
		switch {
		case manifest.IsBuiltin(pkg.Name):
			p.printf("  - %s [builtin]\n", pkg.Name)
		case !pkg.Listed:
			p.printf("  - %s@unknown (not in manifest)\n", pkg.Name)
		case pkg.Range:
			p.printf("  - %s@%s (semver range)\n", pkg.Name, pkg.Version)
		default:
			p.printf("  - %s@%s\n", pkg.Name, pkg.Version)
		}
	}
	return nil
}

func (p *Printer) list(title string, items []string) {
	p.printf("\n %s (%d):\n", title, len(items))
	for _, item := range items {
		p.printf("  - %s\n", item)
	}
}

// Exports shows the exported declarations of one file
func (p *Printer) Exports(file string, exports []extractor.ExportInfo) error {
	if exports == nil {
		exports = []extractor.ExportInfo{}
	}
	if done, err := p.encode(exports); done {
		return err
	}

	p.printf("%s (%d exports)\n", file, len(exports))
	for _, e := range exports {
		p.printf("  %-10s %s\n", e.Kind, e.Name)
	}
	return nil
}

type hashDocument struct {
	File      string `json:"file" yaml:"file"`
	Current   string `json:"current" yaml:"current"`
	Stored    string `json:"stored,omitempty" yaml:"stored,omitempty"`
	HasStored bool   `json:"hasStored" yaml:"hasStored"`
	Stale     bool   `json:"stale" yaml:"stale"`
	Written   bool   `json:"written" yaml:"written"`
}

// Hash shows the fingerprint status of one file
func (p *Printer) Hash(file string, st fingerprint.Status, written bool) error {
	if done, err := p.encode(hashDocument{
		File:      file,
		Current:   st.Current,
		Stored:    st.Stored,
		HasStored: st.HasStored,
		Stale:     st.Stale,
		Written:   written,
	}); done {
		return err
	}

	p.printf("%s\n", file)
	p.printf("  current: %s\n", st.Current)
	switch {
	case written:
		p.printf("  stored:  %s (updated)\n", st.Current)
	case !st.HasStored:
		p.printf("  stored:  none\n")
	case st.Stale:
		p.printf("  stored:  %s (stale)\n", st.Stored)
	default:
		p.printf("  stored:  %s (current)\n", st.Stored)
	}
	return nil
}

type ruleDocument struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Severity    rules.Severity `json:"severity" yaml:"severity"`
	Default     rules.Severity `json:"defaultSeverity" yaml:"defaultSeverity"`
	Fixable     bool           `json:"fixable" yaml:"fixable"`
}

// Rules lists registered rules with their effective severity
func (p *Printer) Rules(defs []rules.Definition, effective func(rules.Definition) rules.Severity) error {
	docs := make([]ruleDocument, 0, len(defs))
	for _, d := range defs {
		docs = append(docs, ruleDocument{
			Name:        d.Name,
			Description: d.Description,
			Severity:    effective(d),
			Default:     d.DefaultSeverity,
			Fixable:     d.Fixable,
		})
	}
	if done, err := p.encode(docs); done {
		return err
	}

	for _, d := range docs {
		fix := ""
		if d.Fixable {
			fix = " (fixable)"
		}
		p.printf("  %-20s %-5s %s%s\n", d.Name, d.Severity, d.Description, fix)
	}
	return nil
}
