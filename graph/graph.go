package graph

import (
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// UsageInfo is one node of the dependency graph
type UsageInfo struct {
	Uses   []string `json:"uses" yaml:"uses"`
	UsedBy []string `json:"usedBy" yaml:"usedBy"`
}

// Graph maps module paths to their usage. It is not safe for concurrent
// mutation; queries may run concurrently once building is done.
type Graph struct {
	nodes       map[string]*UsageInfo
	entryPoints []string
}

// Option configures a Graph
type Option func(*Graph)

// WithEntryPoints adds doublestar patterns, matched against module paths,
// for modules that are expected to have no internal consumers.
func WithEntryPoints(patterns ...string) Option {
	return func(g *Graph) {
		g.entryPoints = append(g.entryPoints, patterns...)
	}
}

// New creates an empty graph
func New(opts ...Option) *Graph {
	g := &Graph{nodes: make(map[string]*UsageInfo)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode inserts an empty node unless it already exists
func (g *Graph) AddNode(module string) {
	if _, ok := g.nodes[module]; !ok {
		g.nodes[module] = &UsageInfo{Uses: []string{}, UsedBy: []string{}}
	}
}

// HasNode reports whether module is a node
func (g *Graph) HasNode(module string) bool {
	_, ok := g.nodes[module]
	return ok
}

// SetUses replaces the outgoing edges of from. from is removed from the
// usedBy list of targets it no longer uses and added, sorted, to that of every
// new target that is a node. Targets that are not nodes are kept in uses but
// never gain a usedBy entry.
func (g *Graph) SetUses(from string, targets []string) {
	g.AddNode(from)
	node := g.nodes[from]
	for _, old := range node.Uses {
		if contains(targets, old) {
			continue
		}
		if dep, ok := g.nodes[old]; ok {
			dep.UsedBy = remove(dep.UsedBy, from)
		}
	}
	node.Uses = append([]string{}, targets...)

	for _, target := range targets {
		dep, ok := g.nodes[target]
		if !ok || contains(dep.UsedBy, from) {
			continue
		}
		dep.UsedBy = append(dep.UsedBy, from)
		sort.Strings(dep.UsedBy)
	}
}

// Node returns a copy of a node's usage
func (g *Graph) Node(module string) (UsageInfo, bool) {
	node, ok := g.nodes[module]
	if !ok {
		return UsageInfo{}, false
	}
	return UsageInfo{
		Uses:   append([]string{}, node.Uses...),
		UsedBy: append([]string{}, node.UsedBy...),
	}, true
}

// Nodes returns every module path in ascending order
func (g *Graph) Nodes() []string {
	modules := make([]string, 0, len(g.nodes))
	for m := range g.nodes {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Uses returns what module depends on, or an empty list
func (g *Graph) Uses(module string) []string {
	node, ok := g.nodes[module]
	if !ok {
		return []string{}
	}
	return append([]string{}, node.Uses...)
}

// UsedBy returns the modules depending on module, or an empty list
func (g *Graph) UsedBy(module string) []string {
	node, ok := g.nodes[module]
	if !ok {
		return []string{}
	}
	return append([]string{}, node.UsedBy...)
}

// IsEntryPoint reports whether module is named index (at any depth) or
// matches a configured entry-point pattern.
func (g *Graph) IsEntryPoint(module string) bool {
	if module == "index" || path.Base(module) == "index" {
		return true
	}
	for _, pattern := range g.entryPoints {
		if ok, _ := doublestar.Match(pattern, module); ok {
			return true
		}
	}
	return false
}

// UnusedModules returns the sorted nodes nothing depends on, excluding entry points
func (g *Graph) UnusedModules() []string {
	unused := []string{}
	for _, m := range g.Nodes() {
		if len(g.nodes[m].UsedBy) == 0 && !g.IsEntryPoint(m) {
			unused = append(unused, m)
		}
	}
	return unused
}

// FindCircularDependencies returns each cycle once. A cycle is the path from
// a module's position on the DFS stack back to the module, in traversal
// order; cycles over the same member set are reported once.
func (g *Graph) FindCircularDependencies() [][]string {
	visited := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string
	seen := make(map[string]bool)
	cycles := [][]string{}

	var visit func(module string)
	visit = func(module string) {
		visited[module] = true
		onStack[module] = len(stack)
		stack = append(stack, module)

		for _, dep := range g.nodes[module].Uses {
			if _, ok := g.nodes[dep]; !ok {
				continue
			}
			if idx, active := onStack[dep]; active {
				cycle := append([]string{}, stack[idx:]...)
				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, module)
	}

	for _, m := range g.Nodes() {
		if !visited[m] {
			visit(m)
		}
	}
	return cycles
}

// cycleKey is the sorted member set joined by NUL, which cannot occur in a path
func cycleKey(cycle []string) string {
	members := append([]string{}, cycle...)
	sort.Strings(members)
	return strings.Join(members, "\x00")
}

// Stats summarizes the graph
type Stats struct {
	Modules  int `json:"modules" yaml:"modules"`
	Edges    int `json:"edges" yaml:"edges"`
	Dangling int `json:"danglingEdges" yaml:"danglingEdges"`
}

// Stats counts nodes, edges, and edges whose target is not a node
func (g *Graph) Stats() Stats {
	st := Stats{Modules: len(g.nodes)}
	for _, node := range g.nodes {
		for _, dep := range node.Uses {
			st.Edges++
			if _, ok := g.nodes[dep]; !ok {
				st.Dangling++
			}
		}
	}
	return st
}

// Map returns a copy of the graph as a plain map
func (g *Graph) Map() map[string]UsageInfo {
	out := make(map[string]UsageInfo, len(g.nodes))
	for m := range g.nodes {
		out[m], _ = g.Node(m)
	}
	return out
}

// MarshalJSON encodes the graph as an object keyed by module path
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Map())
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
