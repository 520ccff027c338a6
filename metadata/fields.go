package metadata

import (
	"strings"
	"time"
)

// Field names written by the generator. Older files use the aliases.
const (
	FieldModule       = "module"
	FieldDescription  = "description"
	FieldDependencies = "dependencies"
	FieldStatus       = "status"
	FieldUpdatedAt    = "updatedAt"
	FieldChangelog    = "changelog"
)

var aliases = map[string][]string{
	FieldUpdatedAt: {"lastUpdated"},
	FieldChangelog: {"history"},
}

// Field returns a top-level field of the block, accepting known aliases
func (d *Document) Field(name string) (Value, bool) {
	if !d.Found {
		return Value{}, false
	}
	if v, ok := d.Fields.Get(name); ok {
		return v, true
	}
	for _, alias := range aliases[name] {
		if v, ok := d.Fields.Get(alias); ok {
			return v, true
		}
	}
	return Value{}, false
}

// HasField reports whether a top-level field or one of its aliases is present
func (d *Document) HasField(name string) bool {
	_, ok := d.Field(name)
	return ok
}

// Dependencies is the declared dependency section of the block
type Dependencies struct {
	Internal []string
	External []string
	Types    []string
}

// DeclaredDependencies reads the dependencies field. ok is false when the
// field is absent or is not an object literal.
func (d *Document) DeclaredDependencies() (Dependencies, bool) {
	v, ok := d.Field(FieldDependencies)
	if !ok || v.Kind != KindObject {
		return Dependencies{}, false
	}
	deps := Dependencies{Internal: []string{}, External: []string{}, Types: []string{}}
	if items, ok := v.Get("internal"); ok {
		deps.Internal = items.Strings()
	}
	if items, ok := v.Get("external"); ok {
		deps.External = items.Strings()
	}
	if items, ok := v.Get("types"); ok {
		deps.Types = items.Strings()
	}
	return deps, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UpdatedAt parses the last-updated date. ok is false when the field is
// missing or is not a recognizable date string.
func (d *Document) UpdatedAt() (time.Time, bool) {
	v, ok := d.Field(FieldUpdatedAt)
	if !ok || v.Kind != KindString {
		return time.Time{}, false
	}
	return ParseDate(v.Str)
}

// ParseDate accepts ISO-8601 dates with or without a time component
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// History returns the changelog entries. ok is false when the field is
// absent or is not an array literal.
func (d *Document) History() ([]Value, bool) {
	v, ok := d.Field(FieldChangelog)
	if !ok || v.Kind != KindArray {
		return nil, false
	}
	return v.Items, true
}
