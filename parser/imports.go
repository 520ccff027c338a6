package parser

import sitter "github.com/smacker/go-tree-sitter"

// ExtractImports walks the whole tree and returns every module specifier
// referenced by a static import, re-export, dynamic import() or require().
// Specifiers that are not string literals are skipped.
func (bp *BaseParser) ExtractImports(node *sitter.Node, source []byte) ([]ImportEdge, error) {
	var edges []ImportEdge

	WalkAST(node, source, func(n *sitter.Node) {
		var edge *ImportEdge
		switch n.Type() {
		case "import_statement":
			edge = processImportStatement(n, source)
		case "export_statement":
			edge = processReExport(n, source)
		case "call_expression":
			edge = processCallExpression(n, source)
		}
		if edge != nil {
			edges = append(edges, *edge)
		}
	})

	return DeduplicateImports(edges), nil
}

func processImportStatement(node *sitter.Node, source []byte) *ImportEdge {
	kind := ImportStatic
	specNode := node.ChildByFieldName("source")
	var clause *sitter.Node

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_clause":
			clause = child
		case "import_require_clause":
			// import x = require('y')
			kind = ImportRequire
			specNode = child.ChildByFieldName("source")
			if specNode == nil {
				specNode = firstNamedOfType(child, "string")
			}
		}
	}

	spec, ok := ExtractStringValue(specNode, source)
	if !ok {
		return nil
	}

	typeOnly := hasToken(node, "type") || (clause != nil && importClauseTypeOnly(clause))
	return &ImportEdge{Specifier: spec, Kind: kind, TypeOnly: typeOnly}
}

// importClauseTypeOnly is true for `import { type A, type B }`: every named
// specifier carries an inline type marker and there is no default or
// namespace binding.
func importClauseTypeOnly(clause *sitter.Node) bool {
	specifiers := 0
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				if !hasToken(spec, "type") {
					return false
				}
				specifiers++
			}
		default:
			// default identifier or namespace_import
			return false
		}
	}
	return specifiers > 0
}

func processReExport(node *sitter.Node, source []byte) *ImportEdge {
	spec, ok := ExtractStringValue(node.ChildByFieldName("source"), source)
	if !ok {
		return nil
	}

	typeOnly := hasToken(node, "type")
	if !typeOnly {
		if clause := firstNamedOfType(node, "export_clause"); clause != nil {
			typeOnly = exportClauseTypeOnly(clause)
		}
	}
	return &ImportEdge{Specifier: spec, Kind: ImportReExport, TypeOnly: typeOnly}
}

func exportClauseTypeOnly(clause *sitter.Node) bool {
	specifiers := 0
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		if !hasToken(spec, "type") {
			return false
		}
		specifiers++
	}
	return specifiers > 0
}

func processCallExpression(node *sitter.Node, source []byte) *ImportEdge {
	fn := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.NamedChildCount() == 0 {
		return nil
	}

	var kind ImportKind
	switch {
	case fn.Type() == "import":
		kind = ImportDynamic
	case fn.Type() == "identifier" && fn.Content(source) == "require":
		kind = ImportRequire
	default:
		return nil
	}

	spec, ok := ExtractStringValue(args.NamedChild(0), source)
	if !ok {
		return nil
	}
	return &ImportEdge{Specifier: spec, Kind: kind}
}

func firstNamedOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}
