package metadata

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hannajonsd/ts-introspect/parser"
)

// Kind tags the variant held by a Value
type Kind int

const (
	KindOther Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "other"
	}
}

// Value is a literal decoded from the metadata object. Expressions that are
// not literals (identifiers, calls, spreads) decode as KindOther with their
// source text in Str.
type Value struct {
	Kind   Kind
	Str    string
	Items  []Value
	Fields []Field
}

// Field is one key of an object literal, in source order
type Field struct {
	Key   string
	Value Value
	span  Span
}

// Span is a byte range in the scanned content
type Span struct {
	Start int
	End   int
}

// maxDepth bounds recursion into nested literals
const maxDepth = 128

// Get returns the first field named key of an object value
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether an object value has a field named key
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys lists the field names of an object value in source order
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Strings returns the string items of an array value; other items are skipped.
func (v Value) Strings() []string {
	out := []string{}
	if v.Kind != KindArray {
		return out
	}
	for _, item := range v.Items {
		if item.Kind == KindString {
			out = append(out, item.Str)
		}
	}
	return out
}

// IsEmpty is true for empty arrays, empty objects and empty strings
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindArray:
		return len(v.Items) == 0
	case KindObject:
		return len(v.Fields) == 0
	case KindString:
		return v.Str == ""
	case KindNull:
		return true
	}
	return false
}

// decode converts an expression node into a Value after stripping wrappers
func decode(node *sitter.Node, source []byte, depth int) Value {
	node = parser.Unwrap(node)
	if node == nil {
		return Value{Kind: KindNull}
	}
	if depth > maxDepth {
		return Value{Kind: KindOther, Str: node.Content(source)}
	}

	switch node.Type() {
	case "string", "template_string":
		if s, ok := parser.ExtractStringValue(node, source); ok {
			return Value{Kind: KindString, Str: s}
		}
	case "number":
		return Value{Kind: KindNumber, Str: node.Content(source)}
	case "true", "false":
		return Value{Kind: KindBool, Str: node.Type()}
	case "null", "undefined":
		return Value{Kind: KindNull}
	case "array":
		return decodeArray(node, source, depth)
	case "object":
		return decodeObject(node, source, depth)
	}
	return Value{Kind: KindOther, Str: node.Content(source)}
}

func decodeArray(node *sitter.Node, source []byte, depth int) Value {
	items := make([]Value, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		items = append(items, decode(child, source, depth+1))
	}
	return Value{Kind: KindArray, Items: items}
}

func decodeObject(node *sitter.Node, source []byte, depth int) Value {
	fields := make([]Field, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "pair":
			key, ok := propertyKey(child.ChildByFieldName("key"), source)
			if !ok {
				continue
			}
			valueNode := child.ChildByFieldName("value")
			f := Field{Key: key, Value: decode(valueNode, source, depth+1)}
			if inner := parser.Unwrap(valueNode); inner != nil {
				f.span = Span{Start: int(inner.StartByte()), End: int(inner.EndByte())}
			}
			fields = append(fields, f)
		case "shorthand_property_identifier":
			name := child.Content(source)
			fields = append(fields, Field{Key: name, Value: Value{Kind: KindOther, Str: name}})
		}
	}
	return Value{Kind: KindObject, Fields: fields}
}

func propertyKey(key *sitter.Node, source []byte) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case "property_identifier", "identifier":
		return key.Content(source), true
	case "string":
		return parser.ExtractStringValue(key, source)
	case "number":
		text := key.Content(source)
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return text, true
	}
	return "", false
}
