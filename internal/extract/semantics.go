package extract

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// Algorithm pattern names, reported in this order.
const (
	AlgoIteration       = "iteration"
	AlgoNestedIteration = "nested_iteration"
	AlgoRecursion       = "recursion"
	AlgoSwap            = "swap"
	AlgoSort            = "sort"
	AlgoSearch          = "search"
	AlgoAccumulation    = "accumulation"
)

var algorithmOrder = []string{
	AlgoIteration, AlgoNestedIteration, AlgoRecursion, AlgoSwap,
	AlgoSort, AlgoSearch, AlgoAccumulation,
}

var operatorKinds = map[string]string{
	"+": "arithmetic", "-": "arithmetic", "*": "arithmetic", "/": "arithmetic", "%": "arithmetic",
	"==": "comparison", "!=": "comparison", "<": "comparison", ">": "comparison",
	"<=": "comparison", ">=": "comparison",
	"&&": "logical", "||": "logical",
	"&": "bitwise", "|": "bitwise", "^": "bitwise", "<<": "bitwise", ">>": "bitwise", ">>>": "bitwise",
}

// dataOperations maps well-known JDK method names to data operation kinds.
var dataOperations = map[string]string{
	"add": "collection_add", "addAll": "collection_add", "offer": "collection_add", "push": "collection_add",
	"get": "collection_get", "getOrDefault": "collection_get", "peek": "collection_get",
	"put": "collection_put", "putIfAbsent": "collection_put", "putAll": "collection_put", "merge": "collection_put",
	"remove": "collection_remove", "removeIf": "collection_remove", "poll": "collection_remove",
	"pop": "collection_remove", "clear": "collection_remove",
	"contains": "collection_contains", "containsKey": "collection_contains",
	"containsValue": "collection_contains", "isEmpty": "collection_contains",
	"substring": "string_op", "trim": "string_op", "toLowerCase": "string_op", "toUpperCase": "string_op",
	"replace": "string_op", "split": "string_op", "concat": "string_op", "format": "string_op",
	"charAt": "string_op", "startsWith": "string_op", "endsWith": "string_op", "append": "string_op",
	"stream": "stream_op", "map": "stream_op", "filter": "stream_op", "collect": "stream_op",
	"reduce": "stream_op", "forEach": "stream_op", "sorted": "stream_op", "flatMap": "stream_op",
}

var searchCalls = map[string]bool{
	"binarySearch": true, "indexOf": true, "lastIndexOf": true, "find": true,
	"findFirst": true, "findAny": true, "anyMatch": true,
}

var javaBuiltinTypes = map[string]bool{
	"Integer": true, "Long": true, "Double": true, "Float": true,
	"Boolean": true, "Byte": true, "Short": true, "Character": true,
	"Void": true, "Number": true,

	"String": true, "Object": true, "Class": true,
	"Exception": true, "RuntimeException": true, "Throwable": true,
	"Error": true, "IllegalArgumentException": true, "IllegalStateException": true,
	"NullPointerException": true, "IndexOutOfBoundsException": true,

	"List": true, "Map": true, "Set": true, "Collection": true,
	"Iterator": true, "Iterable": true, "ArrayList": true,
	"HashMap": true, "HashSet": true, "LinkedList": true,
	"TreeMap": true, "TreeSet": true, "Queue": true, "Deque": true,
	"LinkedHashMap": true, "LinkedHashSet": true, "Vector": true,
	"Stack": true, "Properties": true, "Hashtable": true,
	"Collections": true, "Arrays": true,

	"System": true, "Math": true, "StringBuilder": true, "StringBuffer": true,
	"Optional": true, "Stream": true, "Comparable": true, "Comparator": true,
	"Runnable": true, "Callable": true, "Future": true,
	"Thread": true, "Enum": true, "Annotation": true,
}

func isLoop(t string) bool {
	switch t {
	case "for_statement", "enhanced_for_statement", "while_statement", "do_statement":
		return true
	}
	return false
}

// extractSemantics builds the semantic feature vector of roots. methodName
// is the enclosing method, used for recursion detection.
func (e *JavaExtractor) extractSemantics(roots []*sitter.Node, methodName string) facts.SemanticFeatures {
	var s facts.SemanticFeatures
	ops := make(map[string]int)
	dataOps := make(map[string]int)
	algos := make(map[string]bool)
	seenWord := make(map[string]bool)
	seenConcept := make(map[string]bool)

	var visit func(n *sitter.Node, loopDepth int)
	visit = func(n *sitter.Node, loopDepth int) {
		t := n.Type()
		switch t {
		case "identifier", "type_identifier":
			for _, w := range splitIdentifier(e.nodeText(n)) {
				s.Vocabulary = appendUnique(s.Vocabulary, seenWord, w)
			}
			if t == "type_identifier" {
				if name := e.nodeText(n); !javaBuiltinTypes[name] {
					s.Concepts = appendUnique(s.Concepts, seenConcept, name)
				}
			}

		case "binary_expression":
			if op := n.ChildByFieldName("operator"); op != nil {
				if kind, ok := operatorKinds[op.Type()]; ok {
					ops[kind]++
				}
			}

		case "unary_expression":
			if op := n.ChildByFieldName("operator"); op != nil && op.Type() == "!" {
				ops["logical"]++
			}

		case "update_expression":
			ops["arithmetic"]++

		case "assignment_expression":
			ops["assignment"]++
			if loopDepth > 0 && e.accumulates(n) {
				algos[AlgoAccumulation] = true
			}

		case "variable_declarator":
			if n.ChildByFieldName("value") != nil {
				ops["assignment"]++
			}

		case "method_invocation":
			ops["call"]++
			name := e.nodeText(n.ChildByFieldName("name"))
			if kind, ok := dataOperations[name]; ok {
				dataOps[kind]++
			}
			if strings.Contains(strings.ToLower(name), "sort") {
				algos[AlgoSort] = true
			}
			if searchCalls[name] {
				algos[AlgoSearch] = true
			}
			obj := n.ChildByFieldName("object")
			if methodName != "" && name == methodName && (obj == nil || obj.Type() == "this") {
				algos[AlgoRecursion] = true
			}

		case "object_creation_expression":
			ops["object_creation"]++

		case "return_statement":
			ops["return"]++

		case "block", "switch_block_statement_group", "constructor_body":
			if e.hasSwap(namedChildren(n)) {
				algos[AlgoSwap] = true
			}
		}

		childDepth := loopDepth
		if isLoop(t) {
			algos[AlgoIteration] = true
			if loopDepth > 0 {
				algos[AlgoNestedIteration] = true
			}
			if e.exitsEarly(n) {
				algos[AlgoSearch] = true
			}
			childDepth++
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i), childDepth)
		}
	}

	for _, r := range roots {
		visit(r, 0)
	}
	if e.hasSwap(roots) {
		algos[AlgoSwap] = true
	}
	// Exchanging elements inside nested loops is a comparison sort.
	if algos[AlgoNestedIteration] && algos[AlgoSwap] {
		algos[AlgoSort] = true
	}

	if len(ops) > 0 {
		s.Operations = ops
	}
	if len(dataOps) > 0 {
		s.DataOperations = dataOps
	}
	for _, a := range algorithmOrder {
		if algos[a] {
			s.Algorithms = append(s.Algorithms, a)
		}
	}
	return s
}

// accumulates reports whether an assignment folds a value into its target:
// a compound operator, or x = x op y.
func (e *JavaExtractor) accumulates(n *sitter.Node) bool {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return false
	}
	switch op.Type() {
	case "+=", "-=", "*=", "/=", "|=", "&=":
		return true
	case "=":
		left := e.nodeText(n.ChildByFieldName("left"))
		right := n.ChildByFieldName("right")
		if right == nil || right.Type() != "binary_expression" {
			return false
		}
		return e.nodeText(right.ChildByFieldName("left")) == left ||
			e.nodeText(right.ChildByFieldName("right")) == left
	}
	return false
}

// exitsEarly reports whether a loop body holds a conditional return or
// break, the shape of a linear search.
func (e *JavaExtractor) exitsEarly(loop *sitter.Node) bool {
	found := false
	walk(loop.ChildByFieldName("body"), func(n *sitter.Node) bool {
		if found || isLoop(n.Type()) || n.Type() == "lambda_expression" {
			return false
		}
		if n.Type() == "if_statement" {
			walk(n.ChildByFieldName("consequence"), func(c *sitter.Node) bool {
				if c.Type() == "return_statement" || c.Type() == "break_statement" {
					found = true
				}
				return !found
			})
		}
		return !found
	})
	return found
}

// hasSwap looks for the three-statement exchange t = a; a = b; b = t.
func (e *JavaExtractor) hasSwap(stmts []*sitter.Node) bool {
	for i := 0; i+2 < len(stmts); i++ {
		tmp, a, ok := e.declaredFrom(stmts[i])
		if !ok {
			continue
		}
		l1, r1, ok := e.assignment(stmts[i+1])
		if !ok || l1 != a {
			continue
		}
		l2, r2, ok := e.assignment(stmts[i+2])
		if ok && l2 == r1 && r2 == tmp {
			return true
		}
	}
	return false
}

// declaredFrom matches "T name = value;" (or "name = value;") and returns
// the target name and value text.
func (e *JavaExtractor) declaredFrom(stmt *sitter.Node) (string, string, bool) {
	if stmt.Type() == "local_variable_declaration" {
		decls := findChildrenByType(stmt, "variable_declarator")
		if len(decls) != 1 {
			return "", "", false
		}
		value := decls[0].ChildByFieldName("value")
		if value == nil {
			return "", "", false
		}
		return e.nodeText(decls[0].ChildByFieldName("name")), collapseSpace(e.nodeText(value)), true
	}
	return e.assignment(stmt)
}

// assignment matches a plain "left = right;" expression statement.
func (e *JavaExtractor) assignment(stmt *sitter.Node) (string, string, bool) {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return "", "", false
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "assignment_expression" {
		return "", "", false
	}
	if op := expr.ChildByFieldName("operator"); op == nil || op.Type() != "=" {
		return "", "", false
	}
	return collapseSpace(e.nodeText(expr.ChildByFieldName("left"))),
		collapseSpace(e.nodeText(expr.ChildByFieldName("right"))), true
}

// splitIdentifier splits camelCase, PascalCase and snake_case names into
// lowercase words of at least two letters.
func splitIdentifier(name string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			words = append(words, strings.ToLower(string(cur)))
		}
		cur = cur[:0]
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r):
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// "parseHTTPResponse" splits as parse, http, response.
			if prevLower || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
