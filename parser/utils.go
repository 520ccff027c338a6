package parser

import (
	"context"
	"fmt"
	"os"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// DeduplicateStrings removes duplicate strings from a slice
func DeduplicateStrings(strs []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, s := range strs {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	return result
}

// SortedUnique returns the distinct values of strs in ascending order, never nil
func SortedUnique(strs []string) []string {
	result := DeduplicateStrings(strs)
	if result == nil {
		return []string{}
	}
	sort.Strings(result)
	return result
}

// DeduplicateImports removes duplicate edges, keeping first-seen order
func DeduplicateImports(edges []ImportEdge) []ImportEdge {
	seen := make(map[ImportEdge]bool)
	var result []ImportEdge

	for _, e := range edges {
		if !seen[e] {
			seen[e] = true
			result = append(result, e)
		}
	}

	return result
}

// ExtractStringValue returns the text of a string or substitution-free
// template literal without its delimiters. ok is false for anything else.
func ExtractStringValue(node *sitter.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case "string":
	case "template_string":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if node.NamedChild(i).Type() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}

	text := node.Content(source)
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	return text, true
}

// WalkAST recursively traverses an AST and applies a visitor function to each node
func WalkAST(node *sitter.Node, source []byte, visitor func(*sitter.Node)) {
	visitor(node)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		WalkAST(child, source, visitor)
	}
}

// hasToken reports whether node has a direct anonymous child with the given text
func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

// ParseFile reads and parses a file from disk
func (bp *BaseParser) ParseFile(filePath string) (*ParseResult, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return bp.ParseSource(filePath, source)
}

// ParseSource parses in-memory source; filePath is only recorded
func (bp *BaseParser) ParseSource(filePath string, source []byte) (*ParseResult, error) {
	tree, err := bp.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filePath, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s", filePath)
	}

	return &ParseResult{
		Tree:     tree,
		Source:   source,
		Language: bp.langName,
		FilePath: filePath,
	}, nil
}

// HasSyntaxError reports whether the tree contains ERROR or MISSING nodes
func (r *ParseResult) HasSyntaxError() bool {
	return r.Tree.RootNode().HasError()
}

// Close releases the syntax tree
func (r *ParseResult) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// ParseBest parses source with each grammar in turn and returns the first
// error-free result. When every grammar reports errors the first result is
// returned so callers can still inspect the partial tree.
func ParseBest(source []byte, langs ...Language) (*ParseResult, error) {
	var first *ParseResult
	for _, lang := range langs {
		p, err := NewParser(lang)
		if err != nil {
			return nil, err
		}
		res, err := p.ParseSource("", source)
		p.Close()
		if err != nil {
			continue
		}
		if !res.HasSyntaxError() {
			first.Close()
			return res, nil
		}
		if first == nil {
			first = res
		} else {
			res.Close()
		}
	}
	if first == nil {
		return nil, fmt.Errorf("failed to parse source with %v", langs)
	}
	return first, nil
}

// GetLanguage returns the language name for this parser
func (bp *BaseParser) GetLanguage() string {
	return bp.langName
}

// Close releases the underlying tree-sitter parser
func (bp *BaseParser) Close() {
	if bp.parser != nil {
		bp.parser.Close()
	}
}
