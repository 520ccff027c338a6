package extractor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hannajonsd/ts-introspect/parser"
)

// classify splits import edges into internal module paths, external package
// names and type-only module paths.
func (e *Extractor) classify(importer string, edges []parser.ImportEdge) DependencyInfo {
	var internal, external, types []string

	for _, edge := range edges {
		if isRelative(edge.Specifier) {
			target := e.resolve(importer, edge.Specifier)
			if edge.TypeOnly {
				types = append(types, target)
			} else {
				internal = append(internal, target)
			}
			continue
		}

		if pkg := packageName(edge.Specifier); pkg != "" {
			external = append(external, pkg)
		}
	}

	return DependencyInfo{
		Internal: parser.SortedUnique(internal),
		External: parser.SortedUnique(external),
		Types:    parser.SortedUnique(types),
	}
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// packageName converts a bare specifier to its package name:
// "@scope/pkg/sub" -> "@scope/pkg", "lodash/fp" -> "lodash".
func packageName(spec string) string {
	// Absolute paths and URLs are not packages
	if spec == "" || strings.HasPrefix(spec, "/") || strings.Contains(spec, "://") {
		return ""
	}

	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// resolve turns a relative specifier into the module path of its target
func (e *Extractor) resolve(importer, spec string) string {
	target := filepath.Join(filepath.Dir(importer), filepath.FromSlash(spec))
	return e.ModulePath(resolveIndex(target))
}

// resolveIndex maps a directory import to its index file when the directory
// holds one and no sibling file of the same name exists.
func resolveIndex(target string) string {
	base := stripSourceExt(target)
	for _, ext := range parser.SourceExtensions {
		if fileExists(base + ext) {
			return base
		}
	}
	for _, ext := range parser.SourceExtensions {
		if fileExists(filepath.Join(base, "index"+ext)) {
			return filepath.Join(base, "index")
		}
	}
	return base
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ModulePath returns the canonical module path of a file: slash-separated,
// relative to the root, without a source extension. Files outside the root
// are located by the last path segment equal to the root's base name, or
// failing that by dropping the leading "../" segments.
func (e *Extractor) ModulePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(e.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = e.rootMarker(path, rel)
	}
	return stripSourceExt(filepath.ToSlash(rel))
}

func (e *Extractor) rootMarker(path, rel string) string {
	marker := filepath.Base(e.root)
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i := len(segments) - 2; i >= 0; i-- {
		if segments[i] == marker {
			return strings.Join(segments[i+1:], "/")
		}
	}

	rel = filepath.ToSlash(rel)
	for strings.HasPrefix(rel, "../") {
		rel = strings.TrimPrefix(rel, "../")
	}
	return rel
}

func stripSourceExt(path string) string {
	ext := filepath.Ext(path)
	for _, known := range parser.SourceExtensions {
		if strings.EqualFold(ext, known) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}
