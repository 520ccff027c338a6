package parser

import sitter "github.com/smacker/go-tree-sitter"

// ExtractExports returns the exported declarations at the top level of node.
// Re-exports (`export ... from`) name another module's declarations and are
// left to ExtractImports.
func (bp *BaseParser) ExtractExports(node *sitter.Node, source []byte) ([]Export, error) {
	var exports []Export

	for i := 0; i < int(node.NamedChildCount()); i++ {
		stmt := node.NamedChild(i)
		if stmt.Type() != "export_statement" || stmt.ChildByFieldName("source") != nil {
			continue
		}
		exports = append(exports, processExportStatement(stmt, source)...)
	}

	return exports, nil
}

func processExportStatement(stmt *sitter.Node, source []byte) []Export {
	isDefault := hasToken(stmt, "default")

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		found := declarationExports(decl, source)
		if isDefault && len(found) == 0 {
			return []Export{{Name: "default", Kind: declarationKind(decl)}}
		}
		return found
	}

	if value := stmt.ChildByFieldName("value"); value != nil {
		return []Export{{Name: "default", Kind: expressionKind(Unwrap(value))}}
	}

	if clause := firstNamedOfType(stmt, "export_clause"); clause != nil {
		return exportClauseNames(clause, source)
	}

	return nil
}

func exportClauseNames(clause *sitter.Node, source []byte) []Export {
	var exports []Export
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		name := spec.ChildByFieldName("alias")
		if name == nil {
			name = spec.ChildByFieldName("name")
		}
		if name == nil {
			continue
		}
		kind := ExportUnknown
		if hasToken(spec, "type") {
			kind = ExportType
		}
		text, ok := ExtractStringValue(name, source)
		if !ok {
			text = name.Content(source)
		}
		exports = append(exports, Export{Name: text, Kind: kind})
	}
	return exports
}

func declarationKind(decl *sitter.Node) ExportKind {
	switch decl.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		return ExportClass
	case "function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "function", "generator_function", "arrow_function":
		return ExportFunction
	case "interface_declaration":
		return ExportInterface
	case "type_alias_declaration":
		return ExportType
	case "enum_declaration":
		return ExportEnum
	case "lexical_declaration":
		if hasToken(decl, "const") {
			return ExportConst
		}
		return ExportUnknown
	default:
		return ExportUnknown
	}
}

func expressionKind(expr *sitter.Node) ExportKind {
	if expr == nil {
		return ExportUnknown
	}
	switch expr.Type() {
	case "class", "function_expression", "function", "generator_function", "arrow_function":
		return declarationKind(expr)
	default:
		return ExportUnknown
	}
}

func declarationExports(decl *sitter.Node, source []byte) []Export {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		// const bindings are const; let and var are unknown
		kind := declarationKind(decl)
		var exports []Export
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			declarator := decl.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			for _, name := range bindingNames(declarator.ChildByFieldName("name"), source) {
				exports = append(exports, Export{Name: name, Kind: kind})
			}
		}
		return exports

	case "ambient_declaration":
		// export declare const x: T;
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			if found := declarationExports(decl.NamedChild(i), source); len(found) > 0 {
				return found
			}
		}
		return nil

	case "module", "internal_module":
		if name := decl.ChildByFieldName("name"); name != nil {
			return []Export{{Name: name.Content(source), Kind: ExportUnknown}}
		}
		return nil
	}

	kind := declarationKind(decl)
	if kind == ExportUnknown || kind == ExportConst {
		return nil
	}
	name := decl.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	return []Export{{Name: name.Content(source), Kind: kind}}
}

// bindingNames lists the identifiers bound by a declarator name, which may be
// a destructuring pattern.
func bindingNames(pattern *sitter.Node, source []byte) []string {
	if pattern == nil {
		return nil
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{pattern.Content(source)}
	case "pair_pattern":
		return bindingNames(pattern.ChildByFieldName("value"), source)
	case "assignment_pattern", "object_assignment_pattern":
		return bindingNames(pattern.ChildByFieldName("left"), source)
	case "object_pattern", "array_pattern", "rest_pattern":
		var names []string
		for i := 0; i < int(pattern.NamedChildCount()); i++ {
			names = append(names, bindingNames(pattern.NamedChild(i), source)...)
		}
		return names
	}
	return nil
}
