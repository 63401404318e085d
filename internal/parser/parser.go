package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Parser wraps tree-sitter parser for Apex
//
// Apex is close enough to Java that the Java grammar carries the parse
// once the source has been normalized: inline query blocks are lifted
// out as placeholder literals and Apex-only keywords are rewritten in
// place. Every replacement preserves byte positions, so node locations
// always refer to the original source.
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
}

// NewParser creates a new Apex parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	lang := java.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
	}
}

// ParseFile parses an Apex source file
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	normalized, queries := normalizeSource(source)

	tree, err := p.parser.ParseCtx(context.Background(), nil, normalized)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s: %v", filename, err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	// Build our internal AST from the tree-sitter CST. Names and raw
	// snippets are extracted from the original bytes, not the
	// normalized ones, so rewritten keywords surface as written.
	builder := NewASTBuilder(filename, source, queries)
	ast := builder.Build(rootNode)

	return ast, nil
}

// Parse parses Apex source code
func (p *Parser) Parse(source []byte) (*Node, error) {
	return p.ParseFile("<input>", source)
}

// ParseString parses Apex source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.Parse([]byte(source))
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseApexFile parses a single file with a throwaway parser instance
func ParseApexFile(filename string, source []byte) (*Node, error) {
	parser := NewParser()
	defer parser.Close()

	return parser.ParseFile(filename, source)
}
