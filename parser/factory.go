package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language names a tree-sitter grammar
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
)

// SourceExtensions lists every extension a grammar exists for, in module
// resolution order.
var SourceExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// LanguageForPath picks the grammar for a file by extension
func LanguageForPath(filePath string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	default:
		return "", false
	}
}

// IsSourceFile reports whether a grammar exists for filePath
func IsSourceFile(filePath string) bool {
	_, ok := LanguageForPath(filePath)
	return ok
}

// CreateParser creates the appropriate parser based on file extension
func CreateParser(filePath string) (Parser, error) {
	lang, ok := LanguageForPath(filePath)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
	return NewParser(lang)
}

// NewParser creates a parser for the named grammar
func NewParser(lang Language) (Parser, error) {
	switch lang {
	case LangTypeScript:
		return NewTypeScriptParser(false)
	case LangTSX:
		return NewTypeScriptParser(true)
	case LangJavaScript:
		return NewJavaScriptParser()
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

func grammar(lang Language) *sitter.Language {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

func newBaseParser(lang Language) BaseParser {
	language := grammar(lang)
	parser := sitter.NewParser()
	parser.SetLanguage(language)

	return BaseParser{
		parser:   parser,
		language: language,
		langName: string(lang),
	}
}
