package parser

import sitter "github.com/smacker/go-tree-sitter"

// unwrapStep peels one wrapper off n. ok is false when n is not the wrapper
// kind the step handles.
type unwrapStep func(n *sitter.Node) (inner *sitter.Node, ok bool)

func stripParens(n *sitter.Node) (*sitter.Node, bool) {
	if n.Type() != "parenthesized_expression" || n.NamedChildCount() == 0 {
		return nil, false
	}
	return n.NamedChild(0), true
}

// stripTypeCast handles `x as T`, `x as const` and `x satisfies T`.
func stripTypeCast(n *sitter.Node) (*sitter.Node, bool) {
	switch n.Type() {
	case "as_expression", "satisfies_expression":
		if n.NamedChildCount() == 0 {
			return nil, false
		}
		return n.NamedChild(0), true
	}
	return nil, false
}

func stripNonNull(n *sitter.Node) (*sitter.Node, bool) {
	if n.Type() != "non_null_expression" || n.NamedChildCount() == 0 {
		return nil, false
	}
	return n.NamedChild(0), true
}

// stripTypeAssertion handles the `<T>x` form; the expression follows the type arguments.
func stripTypeAssertion(n *sitter.Node) (*sitter.Node, bool) {
	if n.Type() != "type_assertion" || n.NamedChildCount() < 2 {
		return nil, false
	}
	return n.NamedChild(int(n.NamedChildCount()) - 1), true
}

var unwrapPipeline = []unwrapStep{
	stripParens,
	stripTypeCast,
	stripNonNull,
	stripTypeAssertion,
}

func unwrapOnce(n *sitter.Node) (*sitter.Node, bool) {
	for _, step := range unwrapPipeline {
		if inner, ok := step(n); ok && inner != nil {
			return inner, true
		}
	}
	return n, false
}

// Unwrap strips type-cast, non-null and parenthesization wrappers until the
// underlying expression is reached: ((x as const) satisfies T)! yields x.
func Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		inner, ok := unwrapOnce(n)
		if !ok {
			return n
		}
		n = inner
	}
	return n
}
