package rules

import (
	"fmt"
	"sync"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
)

// Registry holds the named rules of one run. Registration is expected to
// finish before rules run; after Freeze the registry is read-only and may be
// used from several goroutines.
type Registry struct {
	mu     sync.RWMutex
	rules  map[string]Definition
	order  []string
	frozen bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Definition)}
}

// NewDefaultRegistry creates a registry holding the built-in rules
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			panic(fmt.Sprintf("built-in rule %s: %v", def.Name, err))
		}
	}
	return r
}

// Register adds a rule
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return ierrors.New(ierrors.InvalidRule, "rule name must not be empty")
	}
	if def.Check == nil {
		return ierrors.New(ierrors.InvalidRule, fmt.Sprintf("rule %q has no check function", def.Name))
	}
	if def.DefaultSeverity == "" {
		def.DefaultSeverity = SeverityError
	}
	if _, ok := ParseSeverity(string(def.DefaultSeverity)); !ok {
		return ierrors.New(ierrors.InvalidRule, fmt.Sprintf("rule %q has unknown severity %q", def.Name, def.DefaultSeverity))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ierrors.New(ierrors.RegistryFrozen, fmt.Sprintf("cannot register %q", def.Name))
	}
	if _, exists := r.rules[def.Name]; exists {
		return ierrors.New(ierrors.DuplicateRule, fmt.Sprintf("rule %q is already registered", def.Name))
	}
	r.rules[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Unregister removes a rule and reports whether it was registered. A frozen
// registry is left unchanged.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return false
	}
	if _, ok := r.rules[name]; !ok {
		return false
	}
	delete(r.rules, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a registered rule
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.rules[name]
	return def, ok
}

// List returns the rules in registration order
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.rules[name])
	}
	return defs
}

// Len returns the number of registered rules
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Freeze rejects further changes
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called since the last Reset
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Reset drops every rule and unfreezes the registry
func (r *Registry) Reset() {
	r.mu.Lock()
	r.rules = make(map[string]Definition)
	r.order = nil
	r.frozen = false
	r.mu.Unlock()
}

// RunRule runs one rule by name, even when it is configured off. The
// finding carries the configured severity, or the default one when the
// rule is off.
func (r *Registry) RunRule(name string, ctx *Context) (*Finding, error) {
	def, ok := r.Get(name)
	if !ok {
		return nil, ierrors.New(ierrors.UnknownRule, fmt.Sprintf("unknown rule %q", name))
	}
	sev := EffectiveSeverity(ctx.config(), def)
	if sev == SeverityOff {
		sev = def.DefaultSeverity
	}
	return run(def, sev, ctx), nil
}

// RunAll runs every rule whose effective severity is not off, in
// registration order
func (r *Registry) RunAll(ctx *Context) []Finding {
	return runTable(r.List(), ctx)
}

func runTable(defs []Definition, ctx *Context) []Finding {
	cfg := ctx.config()
	var findings []Finding
	for _, def := range defs {
		sev := EffectiveSeverity(cfg, def)
		if sev == SeverityOff {
			continue
		}
		if f := run(def, sev, ctx); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}
