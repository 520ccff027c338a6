package rules

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hannajonsd/ts-introspect/fingerprint"
	"github.com/hannajonsd/ts-introspect/manifest"
	"github.com/hannajonsd/ts-introspect/metadata"
)

// Built-in rule names
const (
	RuleMetadataPresent    = "metadata-present"
	RuleMetadataUnique     = "metadata-unique"
	RuleStaleHash          = "stale-hash"
	RuleRequiredFields     = "required-fields"
	RuleDependencyMismatch = "dependency-mismatch"
	RuleUntrackedMarkers   = "untracked-markers"
	RuleStaleMetadata      = "stale-metadata"
	RuleEmptyHistory       = "empty-history"
	RuleUndeclaredExternal = "undeclared-external"
)

// Builtins returns the built-in rule definitions in their canonical order
func Builtins() []Definition {
	return []Definition{
		{
			Name:            RuleMetadataPresent,
			Description:     "File must contain a __metadata declaration",
			DefaultSeverity: SeverityError,
			Fixable:         true,
			Check:           checkMetadataPresent,
		},
		{
			Name:            RuleMetadataUnique,
			Description:     "File must not declare __metadata more than once",
			DefaultSeverity: SeverityError,
			Check:           checkMetadataUnique,
		},
		{
			Name:            RuleStaleHash,
			Description:     "Stored content hash must match the current content",
			DefaultSeverity: SeverityError,
			Fixable:         true,
			Check:           checkStaleHash,
		},
		{
			Name:            RuleRequiredFields,
			Description:     "Metadata must contain every required field",
			DefaultSeverity: SeverityError,
			Check:           checkRequiredFields,
		},
		{
			Name:            RuleDependencyMismatch,
			Description:     "Every imported internal module must be declared",
			DefaultSeverity: SeverityWarn,
			Fixable:         true,
			Check:           checkDependencyMismatch,
		},
		{
			Name:            RuleUntrackedMarkers,
			Description:     "Marker comments must be tracked in metadata todos or fixes",
			DefaultSeverity: SeverityWarn,
			Check:           checkUntrackedMarkers,
		},
		{
			Name:            RuleStaleMetadata,
			Description:     "Metadata must have been updated recently",
			DefaultSeverity: SeverityWarn,
			Fixable:         true,
			Check:           checkStaleMetadata,
		},
		{
			Name:            RuleEmptyHistory,
			Description:     "Changelog should have at least one entry",
			DefaultSeverity: SeverityOff,
			Check:           checkEmptyHistory,
		},
		{
			Name:            RuleUndeclaredExternal,
			Description:     "External imports must be listed in package.json",
			DefaultSeverity: SeverityOff,
			Check:           checkUndeclaredExternal,
		},
	}
}

// found returns the scanned document when it holds a well-formed block
func found(ctx *Context) (*metadata.Document, bool) {
	doc, err := ctx.Document()
	if err != nil || !doc.Found {
		return nil, false
	}
	return doc, true
}

func checkMetadataPresent(ctx *Context) *Finding {
	doc, err := ctx.Document()
	if err == nil && doc.Present() {
		return nil
	}
	return &Finding{Message: fmt.Sprintf("missing %s declaration", metadata.Identifier)}
}

func checkMetadataUnique(ctx *Context) *Finding {
	doc, err := ctx.Document()
	if err != nil || doc.Declarations <= 1 {
		return nil
	}
	return &Finding{Message: fmt.Sprintf("found %d %s declarations, expected one", doc.Declarations, metadata.Identifier)}
}

func checkStaleHash(ctx *Context) *Finding {
	doc, err := ctx.Document()
	if err != nil {
		return nil
	}
	st := fingerprint.CheckDocument(ctx.Content, doc)
	if !st.Stale {
		return nil
	}
	return &Finding{Message: fmt.Sprintf("content hash is stale (stored %s, current %s)", st.Stored, st.Current)}
}

func checkRequiredFields(ctx *Context) *Finding {
	doc, ok := found(ctx)
	if !ok {
		return nil
	}

	var missing []string
	for _, field := range ctx.config().RequiredFields {
		if !doc.HasField(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &Finding{Message: "missing required fields: " + strings.Join(missing, ", ")}
}

func checkDependencyMismatch(ctx *Context) *Finding {
	doc, ok := found(ctx)
	if !ok {
		return nil
	}
	declared, ok := doc.DeclaredDependencies()
	if !ok {
		return nil
	}
	actual, err := ctx.Dependencies()
	if err != nil {
		return nil
	}

	ext, err := ctx.extractor()
	if err != nil {
		return nil
	}
	modules := declaredModules(ext, ctx.Path, declared.Internal)

	var missing []string
	for _, dep := range actual.Internal {
		if !modules[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &Finding{Message: "undeclared internal dependencies: " + strings.Join(missing, ", ")}
}

// declaredModules resolves declared entries to module paths. A relative entry
// ("./db/client", "../log.ts") names the module relative to the file's
// directory. A bare entry names either the root-relative module or the one
// relative to the file's directory.
func declaredModules(ext DependencyExtractor, file string, declared []string) map[string]bool {
	dir := filepath.Dir(file)
	modules := make(map[string]bool, len(declared))
	for _, d := range declared {
		d = strings.ReplaceAll(strings.TrimSpace(d), "\\", "/")
		if d == "" || d == "." || d == ".." {
			continue
		}
		rel := filepath.FromSlash(d)
		if !strings.HasPrefix(d, "./") && !strings.HasPrefix(d, "../") {
			rel = filepath.FromSlash(strings.TrimLeft(d, "/"))
			modules[ext.ModulePath(rel)] = true
		}
		modules[ext.ModulePath(filepath.Join(dir, rel))] = true
	}
	return modules
}

var markerPattern = regexp.MustCompile(`@(?i:todo|fixme|hack|bug)\b|\b(?:TODO|FIXME|HACK|XXX|BUG)\b`)

func checkUntrackedMarkers(ctx *Context) *Finding {
	doc, err := ctx.Document()
	if err != nil {
		return nil
	}

	count := 0
	for _, c := range doc.Comments {
		if doc.Contains(c.Span.Start) {
			continue
		}
		count += len(markerPattern.FindAllStringIndex(c.Text, -1))
	}
	if count == 0 {
		return nil
	}
	noun := "comments"
	if count == 1 {
		noun = "comment"
	}
	return &Finding{Message: fmt.Sprintf("%d untracked marker %s outside %s; record them in todos or fixes", count, noun, metadata.Identifier)}
}

func checkStaleMetadata(ctx *Context) *Finding {
	doc, ok := found(ctx)
	if !ok {
		return nil
	}
	limit := ctx.config().StaleDays
	if limit <= 0 {
		return nil
	}
	updated, ok := doc.UpdatedAt()
	if !ok {
		return nil
	}

	days := int(math.Floor(ctx.now().Sub(updated).Hours() / 24))
	if days <= limit {
		return nil
	}
	return &Finding{Message: fmt.Sprintf("metadata last updated %d days ago (limit %d)", days, limit)}
}

func checkEmptyHistory(ctx *Context) *Finding {
	doc, ok := found(ctx)
	if !ok {
		return nil
	}
	history, ok := doc.History()
	if !ok || len(history) > 0 {
		return nil
	}
	return &Finding{Message: metadata.FieldChangelog + " is empty"}
}

func checkUndeclaredExternal(ctx *Context) *Finding {
	actual, err := ctx.Dependencies()
	if err != nil || len(actual.External) == 0 {
		return nil
	}
	m, err := manifest.Find(ctx.config().Root, ctx.Path)
	if err != nil || m == nil {
		return nil
	}

	var missing []string
	for _, pkg := range actual.External {
		if manifest.IsBuiltin(pkg) || m.Declares(pkg) {
			continue
		}
		missing = append(missing, pkg)
	}
	if len(missing) == 0 {
		return nil
	}
	return &Finding{Message: fmt.Sprintf("packages not declared in %s: %s", manifest.FileName, strings.Join(missing, ", "))}
}
