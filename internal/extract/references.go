package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// references are the names used by a span of code.
type references struct {
	identifiers []string
	calls       []facts.CallSite
	locals      []facts.Variable
	fieldAccess []string
}

// collectReferences walks roots in source order. When fields is non-nil,
// bare identifiers naming a field and not shadowed by a parameter (shadow)
// or a local are reported as field accesses, as is every this.x access.
func (e *JavaExtractor) collectReferences(roots []*sitter.Node, fields, shadow map[string]bool) references {
	var refs references
	seenIdent := make(map[string]bool)
	seenLocal := make(map[string]bool)

	// Candidates are resolved after the walk so that locals declared
	// later in the span still shadow a field of the same name.
	type fieldRef struct {
		name     string
		explicit bool
	}
	var candidates []fieldRef

	for _, root := range roots {
		walk(root, func(n *sitter.Node) bool {
			switch n.Type() {
			case "identifier":
				name := e.nodeText(n)
				refs.identifiers = appendUnique(refs.identifiers, seenIdent, name)
				if fields != nil && fields[name] && isBareReference(n) {
					candidates = append(candidates, fieldRef{name: name})
				}

			case "method_invocation":
				refs.calls = append(refs.calls, e.callSite(n))

			case "field_access":
				obj := n.ChildByFieldName("object")
				if fields != nil && obj != nil && obj.Type() == "this" {
					name := e.nodeText(n.ChildByFieldName("field"))
					if fields[name] {
						candidates = append(candidates, fieldRef{name: name, explicit: true})
					}
				}

			case "local_variable_declaration":
				typeName := collapseSpace(e.nodeText(n.ChildByFieldName("type")))
				for _, decl := range findChildrenByType(n, "variable_declarator") {
					name := e.nodeText(decl.ChildByFieldName("name"))
					if name != "" && !seenLocal[name] {
						seenLocal[name] = true
						refs.locals = append(refs.locals, facts.Variable{Name: name, Type: typeName})
					}
				}

			case "enhanced_for_statement":
				name := e.nodeText(n.ChildByFieldName("name"))
				if name != "" && !seenLocal[name] {
					seenLocal[name] = true
					refs.locals = append(refs.locals, facts.Variable{
						Name: name,
						Type: collapseSpace(e.nodeText(n.ChildByFieldName("type"))),
					})
				}
			}
			return true
		})
	}

	seenField := make(map[string]bool)
	for _, c := range candidates {
		if !c.explicit && (shadow[c.name] || seenLocal[c.name]) {
			continue
		}
		refs.fieldAccess = appendUnique(refs.fieldAccess, seenField, c.name)
	}
	return refs
}

// callSite extracts the method name and plain identifier arguments of a
// method_invocation.
func (e *JavaExtractor) callSite(node *sitter.Node) facts.CallSite {
	call := facts.CallSite{Name: e.nodeText(node.ChildByFieldName("name"))}
	for _, arg := range namedChildren(node.ChildByFieldName("arguments")) {
		if arg.Type() == "identifier" {
			call.Args = append(call.Args, e.nodeText(arg))
		}
	}
	return call
}

// isBareReference reports whether an identifier is used as a value rather
// than naming a method, a member of another object, or a declaration.
func isBareReference(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case "method_invocation":
		return !sameNode(n, parent.ChildByFieldName("name"))
	case "field_access":
		return !sameNode(n, parent.ChildByFieldName("field"))
	case "variable_declarator", "formal_parameter", "catch_formal_parameter", "enhanced_for_statement":
		return !sameNode(n, parent.ChildByFieldName("name"))
	case "lambda_expression":
		return !sameNode(n, parent.ChildByFieldName("parameters"))
	case "labeled_statement", "inferred_parameters", "method_reference":
		return false
	}
	return true
}
