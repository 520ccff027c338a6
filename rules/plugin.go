package rules

import (
	"fmt"
	"plugin"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
)

// PluginSymbol is the function a rule plugin exports:
//
//	func IntrospectRules() []rules.Definition
const PluginSymbol = "IntrospectRules"

// LoadPlugin opens a Go plugin built with -buildmode=plugin and registers
// every rule it provides
func LoadPlugin(reg *Registry, path string) ([]string, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.PluginLoad, "failed to open plugin", err).WithPath(path)
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.PluginLoad, "plugin does not export "+PluginSymbol, err).WithPath(path)
	}
	return registerSymbol(reg, path, sym)
}

// registerSymbol registers the rules returned by a looked-up plugin symbol
// and returns their names
func registerSymbol(reg *Registry, path string, sym plugin.Symbol) ([]string, error) {
	var provide func() []Definition
	switch fn := sym.(type) {
	case func() []Definition:
		provide = fn
	case *func() []Definition:
		provide = *fn
	default:
		return nil, ierrors.New(ierrors.PluginLoad, fmt.Sprintf("%s has type %T, want func() []rules.Definition", PluginSymbol, sym)).WithPath(path)
	}

	var names []string
	for _, def := range provide() {
		if err := reg.Register(def); err != nil {
			return names, ierrors.Wrap(ierrors.PluginLoad, fmt.Sprintf("failed to register rule %q", def.Name), err).WithPath(path)
		}
		names = append(names, def.Name)
	}
	return names, nil
}
