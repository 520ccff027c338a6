// Package metadata locates and decodes the `__metadata` declaration a module
// uses to describe itself. Everything is read from the syntax tree; the tree
// is released before Scan returns.
package metadata

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hannajonsd/ts-introspect/parser"
)

// Identifier is the binding name of the metadata declaration
const Identifier = "__metadata"

// HashKey is the field holding the stored content fingerprint
const HashKey = "contentHash"

var bannerKeywords = []string{"introspection", "metadata"}

// Comment is a comment node found anywhere in the content
type Comment struct {
	Text string
	Line int
	Span Span
}

// Document is the result of scanning one file's content
type Document struct {
	// Found is true when a top-level __metadata declaration initialized with
	// an object literal (possibly wrapped in casts or parentheses) exists.
	Found bool
	// Block covers the declaration statement plus its banner comments.
	Block Span
	// Fields is the decoded object literal of the first block.
	Fields Value
	// Declarations counts __metadata declarators anywhere in the tree.
	Declarations int
	Comments     []Comment
	SyntaxError  bool

	storedHash string
	hashSpan   *Span
}

// Scan parses content and extracts the metadata block. Content that is not
// valid TypeScript is retried with the TSX grammar.
func Scan(content []byte) (*Document, error) {
	res, err := parser.ParseBest(content, parser.LangTypeScript, parser.LangTSX)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	root := res.Tree.RootNode()
	doc := &Document{SyntaxError: root.HasError()}

	parser.WalkAST(root, content, func(n *sitter.Node) {
		switch n.Type() {
		case "comment":
			doc.Comments = append(doc.Comments, Comment{
				Text: n.Content(content),
				Line: int(n.StartPoint().Row) + 1,
				Span: Span{Start: int(n.StartByte()), End: int(n.EndByte())},
			})
		case "variable_declarator":
			if isMetadataDeclarator(n, content) {
				doc.Declarations++
			}
		}
	})

	if stmt, object := locateBlock(root, content); object != nil {
		doc.Found = true
		doc.Block = Span{Start: bannerStart(stmt, content), End: int(stmt.EndByte())}
		doc.Fields = decode(object, content, 0)
		doc.storedHash, doc.hashSpan = findHash(doc.Fields)
		return doc, nil
	}

	doc.storedHash, doc.hashSpan = fallbackHash(root, content)
	return doc, nil
}

// Present reports whether any __metadata declaration exists, well-formed or not
func (d *Document) Present() bool {
	return d.Found || d.Declarations > 0
}

// StoredHash returns the embedded content fingerprint
func (d *Document) StoredHash() (string, bool) {
	return d.storedHash, d.hashSpan != nil
}

// HashSpan is the byte range of the stored fingerprint's string literal, quotes included
func (d *Document) HashSpan() (Span, bool) {
	if d.hashSpan == nil {
		return Span{}, false
	}
	return *d.hashSpan, true
}

// Contains reports whether offset lies inside the located block
func (d *Document) Contains(offset int) bool {
	return d.Found && offset >= d.Block.Start && offset < d.Block.End
}

// Strip returns content with the located block removed
func (d *Document) Strip(content []byte) []byte {
	if !d.Found {
		return content
	}
	out := make([]byte, 0, len(content)-(d.Block.End-d.Block.Start))
	out = append(out, content[:d.Block.Start]...)
	return append(out, content[d.Block.End:]...)
}

func isMetadataDeclarator(n *sitter.Node, source []byte) bool {
	name := n.ChildByFieldName("name")
	return name != nil && name.Type() == "identifier" && name.Content(source) == Identifier
}

// locateBlock finds the first top-level statement declaring __metadata with an
// object literal initializer. It returns the statement and the unwrapped object.
func locateBlock(root *sitter.Node, source []byte) (*sitter.Node, *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		decl := stmt
		if stmt.Type() == "export_statement" {
			decl = stmt.ChildByFieldName("declaration")
			if decl == nil {
				continue
			}
		}
		if object := metadataObject(decl, source); object != nil {
			return stmt, object
		}
	}
	return nil, nil
}

func metadataObject(decl *sitter.Node, source []byte) *sitter.Node {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
	default:
		return nil
	}
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Type() != "variable_declarator" || !isMetadataDeclarator(declarator, source) {
			continue
		}
		value := parser.Unwrap(declarator.ChildByFieldName("value"))
		if value != nil && value.Type() == "object" {
			return value
		}
	}
	return nil
}

// bannerStart extends the block upwards over a generated banner: a separator
// rule directly above the statement, one or more lines naming the block and a
// separator rule on top. A single block comment of the same shape also counts.
// Comments above the top rule are never part of the banner.
func bannerStart(stmt *sitter.Node, source []byte) int {
	start := int(stmt.StartByte())

	closing := stmt.PrevSibling()
	if !bannerLine(closing, stmt, source) {
		return start
	}
	text := closing.Content(source)
	if isBlockBanner(text) {
		return int(closing.StartByte())
	}
	if !isRule(text) {
		return start
	}

	named := false
	below := closing
	for prev := closing.PrevSibling(); bannerLine(prev, below, source); prev = prev.PrevSibling() {
		text = prev.Content(source)
		switch {
		case isRule(text):
			if named {
				return int(prev.StartByte())
			}
			return start
		case namesBlock(text):
			named = true
		default:
			return start
		}
		below = prev
	}
	return start
}

// bannerLine reports whether n is a comment on its own line with only
// whitespace between it and below.
func bannerLine(n, below *sitter.Node, source []byte) bool {
	if n == nil || n.Type() != "comment" {
		return false
	}
	if !onlyWhitespace(source[n.EndByte():below.StartByte()]) {
		return false
	}
	lineStart := bytes.LastIndexByte(source[:n.StartByte()], '\n') + 1
	return onlyWhitespace(source[lineStart:n.StartByte()])
}

func namesBlock(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bannerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isBlockBanner matches a single /* */ comment whose first and last lines are
// rules and whose other lines all name the block.
func isBlockBanner(text string) bool {
	if !strings.HasPrefix(text, "/*") {
		return false
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 3 || !isRule(lines[0]) || !isRule(lines[len(lines)-1]) {
		return false
	}
	for _, line := range lines[1 : len(lines)-1] {
		if !namesBlock(line) {
			return false
		}
	}
	return true
}

// isRule matches separator comments such as `// =====` or `/* ----- */`
func isRule(text string) bool {
	body := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "/*"))
	marks := 0
	for _, r := range body {
		switch r {
		case '=', '-', '*', '#', '~', '_':
			marks++
		case ' ', '\t':
		default:
			return false
		}
	}
	return marks >= 3
}

func onlyWhitespace(b []byte) bool {
	return strings.TrimSpace(string(b)) == ""
}

// findHash returns the stored fingerprint from a decoded block: a top-level
// contentHash wins over a nested one such as _meta.contentHash.
func findHash(fields Value) (string, *Span) {
	for _, f := range fields.Fields {
		if f.Key == HashKey && f.Value.Kind == KindString {
			span := f.span
			return f.Value.Str, &span
		}
	}
	for _, f := range fields.Fields {
		if f.Value.Kind == KindObject {
			if h, span := findHash(f.Value); span != nil {
				return h, span
			}
		}
	}
	return "", nil
}

// fallbackHash recovers a stored fingerprint when no well-formed top-level
// block exists: first from any nested __metadata object, then from a
// contentHash pair stranded inside an ERROR node.
func fallbackHash(root *sitter.Node, source []byte) (string, *Span) {
	var hash string
	var span *Span

	parser.WalkAST(root, source, func(n *sitter.Node) {
		if span != nil || n.Type() != "variable_declarator" || !isMetadataDeclarator(n, source) {
			return
		}
		value := parser.Unwrap(n.ChildByFieldName("value"))
		if value != nil && value.Type() == "object" {
			hash, span = findHash(decode(value, source, 0))
		}
	})
	if span != nil {
		return hash, span
	}

	parser.WalkAST(root, source, func(n *sitter.Node) {
		if span != nil || n.Type() != "ERROR" {
			return
		}
		parser.WalkAST(n, source, func(inner *sitter.Node) {
			if span == nil {
				hash, span = strandedHash(inner, source)
			}
		})
	})
	return hash, span
}

// strandedHash matches `contentHash: '...'` as error recovery leaves it:
// either an object pair or, once the braces are lost, a labeled statement.
func strandedHash(n *sitter.Node, source []byte) (string, *Span) {
	var key string
	var valueNode *sitter.Node

	switch n.Type() {
	case "pair":
		key, _ = propertyKey(n.ChildByFieldName("key"), source)
		valueNode = n.ChildByFieldName("value")
	case "labeled_statement":
		if label := n.ChildByFieldName("label"); label != nil {
			key = label.Content(source)
		}
		if body := n.ChildByFieldName("body"); body != nil && body.Type() == "expression_statement" && body.NamedChildCount() > 0 {
			valueNode = body.NamedChild(0)
		}
	default:
		return "", nil
	}

	if key != HashKey {
		return "", nil
	}
	s, ok := parser.ExtractStringValue(valueNode, source)
	if !ok {
		return "", nil
	}
	return s, &Span{Start: int(valueNode.StartByte()), End: int(valueNode.EndByte())}
}
