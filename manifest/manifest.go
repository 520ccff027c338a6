package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
)

// FileName is the npm manifest looked up next to source files
const FileName = "package.json"

// Manifest holds the dependency sections of a package.json
type Manifest struct {
	Path                 string            `json:"-"`
	Name                 string            `json:"name"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// Load reads and decodes the manifest at path
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierrors.New(ierrors.FileNotFound, "manifest not found").WithPath(path)
		}
		return nil, ierrors.Wrap(ierrors.InvalidPath, "failed to read manifest", err).WithPath(path)
	}

	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, ierrors.Wrap(ierrors.ParseFailed, "invalid manifest", err).WithPath(path)
	}
	m.Path = path
	return &m, nil
}

// Find returns the nearest package.json at or above the directory of file,
// never looking above root. It returns nil and no error when there is none.
func Find(root, file string) (*Manifest, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		return nil, err
	}
	if rel, err := filepath.Rel(rootAbs, dir); err != nil || strings.HasPrefix(rel, "..") {
		dir = rootAbs
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		if dir == rootAbs {
			return nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Version returns the version range declared for pkg in any section
func (m *Manifest) Version(pkg string) string {
	for _, section := range m.sections() {
		if v, ok := section[pkg]; ok {
			return v
		}
	}
	return ""
}

// Declares reports whether pkg is listed in any dependency section or is
// the package itself
func (m *Manifest) Declares(pkg string) bool {
	if pkg == m.Name {
		return true
	}
	for _, section := range m.sections() {
		if _, ok := section[pkg]; ok {
			return true
		}
	}
	return false
}

// Packages lists every declared package, sorted
func (m *Manifest) Packages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, section := range m.sections() {
		for name := range section {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *Manifest) sections() []map[string]string {
	return []map[string]string{m.Dependencies, m.DevDependencies, m.PeerDependencies, m.OptionalDependencies}
}

// IsRange reports whether a version string is a semver range rather than
// an exact version
func IsRange(version string) bool {
	if version == "" {
		return false
	}
	if version == "*" || version == "latest" || strings.HasSuffix(version, ".x") {
		return true
	}
	for _, indicator := range []string{"^", "~", ">=", "<=", ">", "<", " - ", "||"} {
		if strings.Contains(version, indicator) {
			return true
		}
	}
	return false
}
