package parser

// JavaScriptParser parses .js, .jsx, .mjs and .cjs files
type JavaScriptParser struct {
	BaseParser
}

func NewJavaScriptParser() (*JavaScriptParser, error) {
	return &JavaScriptParser{BaseParser: newBaseParser(LangJavaScript)}, nil
}

// TypeScriptParser parses TypeScript; with jsx set it uses the tsx grammar,
// which accepts JSX but rejects <T>expr type assertions.
type TypeScriptParser struct {
	BaseParser
}

func NewTypeScriptParser(jsx bool) (*TypeScriptParser, error) {
	lang := LangTypeScript
	if jsx {
		lang = LangTSX
	}
	return &TypeScriptParser{BaseParser: newBaseParser(lang)}, nil
}
