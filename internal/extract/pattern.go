package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// statementKinds maps statement node types to histogram keys.
var statementKinds = map[string]string{
	"if_statement":                 "if",
	"for_statement":                "for",
	"enhanced_for_statement":       "for_each",
	"while_statement":              "while",
	"do_statement":                 "do",
	"switch_expression":            "switch",
	"return_statement":             "return",
	"expression_statement":         "expression",
	"local_variable_declaration":   "declaration",
	"throw_statement":              "throw",
	"try_statement":                "try",
	"try_with_resources_statement": "try",
	"break_statement":              "break",
	"continue_statement":           "continue",
	"synchronized_statement":       "synchronized",
	"yield_statement":              "yield",
	"assert_statement":             "assert",
}

// blockKinds maps block-introducing node types to block names.
var blockKinds = map[string]string{
	"if_statement":                 "if",
	"for_statement":                "for",
	"enhanced_for_statement":       "for_each",
	"while_statement":              "while",
	"do_statement":                 "do",
	"switch_expression":            "switch",
	"try_statement":                "try",
	"try_with_resources_statement": "try",
	"catch_clause":                 "catch",
	"finally_clause":               "finally",
	"synchronized_statement":       "synchronized",
	"lambda_expression":            "lambda",
}

// extractPattern summarizes the statements under roots. Statements directly
// under roots sit at nesting level 0; each enclosing block adds one.
func extractPattern(roots []*sitter.Node) facts.CodePattern {
	var p facts.CodePattern

	var visit func(n *sitter.Node, depth int)
	visit = func(n *sitter.Node, depth int) {
		t := n.Type()
		if kind, ok := statementKinds[t]; ok {
			if p.StatementTypes == nil {
				p.StatementTypes = make(map[string]int)
			}
			p.StatementTypes[kind]++
			p.MaxNesting = max(p.MaxNesting, depth)
		}

		switch t {
		case "if_statement", "ternary_expression":
			p.Conditions++
		case "for_statement", "enhanced_for_statement", "while_statement", "do_statement":
			p.Loops++
		case "switch_block_statement_group", "switch_rule":
			p.Branches++
		case "try_statement", "try_with_resources_statement":
			p.TryBlocks++
		case "catch_clause":
			p.CatchClauses++
		case "throw_statement":
			p.Throws++
		}

		childDepth := depth
		if kind, ok := blockKinds[t]; ok {
			p.Blocks = append(p.Blocks, kind)
			// catch and finally share the nesting level of their try body.
			if t != "catch_clause" && t != "finally_clause" {
				childDepth++
			}
		}

		var alternative *sitter.Node
		if t == "if_statement" {
			alternative = n.ChildByFieldName("alternative")
		}
		for _, child := range namedChildren(n) {
			// else-if chains stay at the level of the first if.
			if child.Type() == "if_statement" && sameNode(child, alternative) {
				visit(child, depth)
				continue
			}
			visit(child, childDepth)
		}
	}

	for _, r := range roots {
		visit(r, 0)
	}
	return p
}
