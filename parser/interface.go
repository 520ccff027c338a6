package parser

import sitter "github.com/smacker/go-tree-sitter"

// Parser defines the interface for grammar-specific source code parsers
type Parser interface {
	GetLanguage() string
	Close()
	ParseFile(filePath string) (*ParseResult, error)
	ParseSource(filePath string, source []byte) (*ParseResult, error)
	ExtractImports(node *sitter.Node, source []byte) ([]ImportEdge, error)
	ExtractExports(node *sitter.Node, source []byte) ([]Export, error)
}

// BaseParser provides common functionality for all grammar parsers
type BaseParser struct {
	parser   *sitter.Parser
	language *sitter.Language
	langName string
}

// ParseResult contains the parsed AST and metadata for a source file
type ParseResult struct {
	Tree     *sitter.Tree
	Source   []byte
	Language string
	FilePath string
}

// ImportKind classifies the construct an import edge came from
type ImportKind string

const (
	ImportStatic   ImportKind = "import"
	ImportReExport ImportKind = "re-export"
	ImportDynamic  ImportKind = "dynamic"
	ImportRequire  ImportKind = "require"
)

// ImportEdge is one module specifier referenced by an import-like construct
type ImportEdge struct {
	Specifier string     // "./util", "react", "@scope/pkg/sub"
	Kind      ImportKind // static, re-export, dynamic or require
	TypeOnly  bool       // import type / export type / all specifiers type-marked
}

// ExportKind is the declaration kind of an exported name
type ExportKind string

const (
	ExportClass     ExportKind = "class"
	ExportFunction  ExportKind = "function"
	ExportInterface ExportKind = "interface"
	ExportType      ExportKind = "type"
	ExportConst     ExportKind = "const"
	ExportEnum      ExportKind = "enum"
	ExportUnknown   ExportKind = "unknown"
)

// Export is a top-level exported declaration
type Export struct {
	Name string     `json:"name" yaml:"name"`
	Kind ExportKind `json:"kind" yaml:"kind"`
}
