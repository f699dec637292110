// Package extract turns a tree-sitter Java parse tree into the facts
// consumed by context assembly.
//
// Everything here is a pure function of the parse result: the extractor
// never reads files, and walking the tree in child order keeps every
// collected slice in source order.
package extract

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/parser"
)

// JavaFacts builds the selection facts for lines startLine..endLine
// (1-based, inclusive) of a parsed Java file. The returned selection has
// Method, Class and File populated; Project is left for the caller.
func JavaFacts(result *parser.ParseResult, startLine, endLine int) (*facts.Selection, error) {
	if result == nil || result.Root == nil {
		return nil, fmt.Errorf("%w: no parse tree", facts.ErrInvalidInput)
	}
	return NewJavaExtractor(result).Selection(startLine, endLine)
}

// findChildByType finds the first child node of the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all direct child nodes of the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var children []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			children = append(children, child)
		}
	}
	return children
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

// getLineRange returns the 1-based start and end line numbers for a node.
func getLineRange(node *sitter.Node) (int, int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}

// spans reports whether node covers every line of start..end.
func spans(node *sitter.Node, start, end int) bool {
	s, e := getLineRange(node)
	return s <= start && e >= end
}

// within reports whether node lies entirely inside start..end.
func within(node *sitter.Node, start, end int) bool {
	s, e := getLineRange(node)
	return s >= start && e <= end
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// walk visits node and its descendants depth-first in source order.
// Returning false from fn skips the node's children.
func walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}

// nodesInRange returns the outermost named nodes under scope that lie
// entirely inside start..end.
func nodesInRange(scope *sitter.Node, start, end int) []*sitter.Node {
	var roots []*sitter.Node
	walk(scope, func(n *sitter.Node) bool {
		if !n.IsNamed() {
			return false
		}
		if within(n, start, end) {
			roots = append(roots, n)
			return false
		}
		s, e := getLineRange(n)
		return s <= end && e >= start
	})
	return roots
}

// splitLines splits source into lines without their terminators.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	lines := strings.Split(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// dedent strips trailing whitespace and the indentation common to all
// non-blank lines.
func dedent(lines []string) []string {
	common := -1
	for _, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(l) - len(trimmed); common < 0 || n < common {
			common = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		l = strings.TrimRight(l, " \t")
		if len(l) >= common && common > 0 {
			l = l[common:]
		}
		out[i] = l
	}
	return out
}

// trimBlankEdges drops leading and trailing blank lines.
func trimBlankEdges(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// collapseSpace joins runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// appendUnique appends s to list unless it is empty or already seen.
func appendUnique(list []string, seen map[string]bool, s string) []string {
	if s == "" || seen[s] {
		return list
	}
	seen[s] = true
	return append(list, s)
}
