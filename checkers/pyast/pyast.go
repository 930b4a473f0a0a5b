// Package pyast wraps tree-sitter parsing of the contracting dialect, which
// shares Python's surface grammar. Both checkers build on it so their
// positions come from the same parser.
package pyast

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parse parses source into a tree-sitter tree. A fresh parser is created per
// call; tree-sitter parsers are not safe for concurrent use. The caller owns
// the tree and must Close it.
func Parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser.ParseCtx(ctx, nil, content)
}

// Walk visits n and its children in preorder. Returning false from visit
// skips the node's children.
func Walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), visit)
	}
}

// Line returns the node's 1-based start line.
func Line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// Column returns the node's 1-based start column.
func Column(n *sitter.Node) int {
	return int(n.StartPoint().Column) + 1
}
