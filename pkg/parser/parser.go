// Package parser wraps tree-sitter for the grammar-based front end and
// provides language detection for the scanner.
//
// Only Python carries a grammar here. PHP is detected so the scanner
// can select it, but its extraction is a heuristic line scanner that
// never touches tree-sitter; asking this package for a PHP grammar is
// an error.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/nmicheli/concord/pkg/models"
)

// Parser wraps a tree-sitter parser instance. It is not safe for
// concurrent use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and the source it came from.
type ParseResult struct {
	Tree     *sitter.Tree
	Language models.Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source code with the grammar for lang.
func (p *Parser) Parse(ctx context.Context, source []byte, lang models.Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// GetTreeSitterLanguage returns the tree-sitter grammar for a language.
func GetTreeSitterLanguage(lang models.Language) (*sitter.Language, error) {
	switch lang {
	case models.LangPython:
		return python.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("no grammar for language: %q", lang)
	}
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) models.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return models.LangPython
	case ".php":
		return models.LangPHP
	default:
		return models.LangUnknown
	}
}

// NodeVisitor is a function that visits tree nodes. Returning false
// stops descent into the node's children.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the tree calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node. Returns empty
// string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
