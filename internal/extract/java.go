package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/parser"
)

// JavaExtractor extracts code facts from a parsed Java AST.
type JavaExtractor struct {
	result *parser.ParseResult
	lines  []string
}

// NewJavaExtractor creates an extractor for the given Java parse result.
func NewJavaExtractor(result *parser.ParseResult) *JavaExtractor {
	return &JavaExtractor{
		result: result,
		lines:  splitLines(string(result.Source)),
	}
}

// Selection builds the facts for lines start..end (1-based, inclusive).
func (e *JavaExtractor) Selection(start, end int) (*facts.Selection, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("%w: invalid line range %d-%d", facts.ErrInvalidInput, start, end)
	}
	if end > len(e.lines) {
		return nil, fmt.Errorf("%w: line range %d-%d outside file of %d lines",
			facts.ErrInvalidInput, start, end, len(e.lines))
	}

	classNode := e.enclosingType(start, end)
	if classNode == nil {
		return nil, fmt.Errorf("%w: %s declares no class", facts.ErrInvalidInput, e.getFilePath())
	}

	file := e.fileFacts(classNode)
	class, methodNodes := e.classFacts(classNode, file.Package)

	sel := &facts.Selection{
		FilePath:  file.Path,
		StartLine: start,
		EndLine:   end,
		Lines:     dedent(e.lines[start-1 : end]),
		Class:     class,
		File:      file,
	}

	scope := classNode
	if methodNode := e.enclosingMethod(classNode, start, end); methodNode != nil {
		scope = methodNode
		for i, n := range methodNodes {
			if sameNode(n, methodNode) {
				sel.Method = class.Methods[i]
				break
			}
		}
		if sel.Method == nil {
			// Members of anonymous or local classes are not class members.
			sel.Method = e.methodFacts(methodNode, fieldSet(class.Fields))
		}
	}

	roots := nodesInRange(scope, start, end)
	refs := e.collectReferences(roots, nil, nil)
	sel.Identifiers = refs.identifiers
	sel.Calls = refs.calls
	sel.Locals = refs.locals
	sel.Pattern = extractPattern(roots)

	methodName := ""
	if sel.Method != nil {
		methodName = sel.Method.Name
	}
	sel.Semantics = e.extractSemantics(roots, methodName)

	return sel, nil
}

// enclosingType returns the innermost type declaration covering the range,
// falling back to the first top-level type of the file.
func (e *JavaExtractor) enclosingType(start, end int) *sitter.Node {
	var found *sitter.Node
	walk(e.result.Root, func(n *sitter.Node) bool {
		if !spans(n, start, end) {
			return false
		}
		if parser.IsJavaTypeNode(n) {
			found = n
		}
		return true
	})
	if found != nil {
		return found
	}
	for _, n := range namedChildren(e.result.Root) {
		if parser.IsJavaTypeNode(n) {
			return n
		}
	}
	return nil
}

// enclosingMethod returns the innermost method or constructor under
// classNode covering the range.
func (e *JavaExtractor) enclosingMethod(classNode *sitter.Node, start, end int) *sitter.Node {
	var found *sitter.Node
	walk(classNode, func(n *sitter.Node) bool {
		if !spans(n, start, end) {
			return false
		}
		if parser.IsJavaMethodNode(n) {
			found = n
		}
		return true
	})
	return found
}

func (e *JavaExtractor) fileFacts(classNode *sitter.Node) *facts.File {
	path := e.getFilePath()
	file := &facts.File{
		Path:    path,
		Name:    filepath.Base(path),
		Package: e.packageName(),
		Imports: e.imports(),
	}

	seen := map[string]bool{e.typeName(classNode): true}
	for _, n := range namedChildren(e.result.Root) {
		if parser.IsJavaTypeNode(n) {
			file.RelatedClasses = appendUnique(file.RelatedClasses, seen, e.typeName(n))
		}
	}
	for _, imp := range file.Imports {
		if imp.Static || strings.HasSuffix(imp.Path, ".*") {
			continue
		}
		file.RelatedClasses = appendUnique(file.RelatedClasses, seen, simpleName(imp.Path))
	}
	return file
}

func (e *JavaExtractor) packageName() string {
	decl := findChildByType(e.result.Root, "package_declaration")
	if decl == nil {
		return ""
	}
	for _, child := range namedChildren(decl) {
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return e.nodeText(child)
		}
	}
	return ""
}

func (e *JavaExtractor) imports() []facts.Import {
	var imports []facts.Import
	for _, node := range findChildrenByType(e.result.Root, "import_declaration") {
		var imp facts.Import
		wildcard := false
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "static":
				imp.Static = true
			case "scoped_identifier", "identifier":
				imp.Path = e.nodeText(child)
			case "asterisk":
				wildcard = true
			}
		}
		if imp.Path == "" {
			continue
		}
		if wildcard {
			imp.Path += ".*"
		}
		imports = append(imports, imp)
	}
	return imports
}

// classFacts returns the class facts along with the declaration node of
// each entry in Methods.
func (e *JavaExtractor) classFacts(node *sitter.Node, pkg string) (*facts.Class, []*sitter.Node) {
	class := &facts.Class{
		Name:    e.typeName(node),
		Package: pkg,
	}

	if sc := node.ChildByFieldName("superclass"); sc != nil {
		for _, child := range namedChildren(sc) {
			class.SuperClass = e.nodeText(child)
		}
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		class.Interfaces = e.typeList(ifaces)
	}
	if ext := findChildByType(node, "extends_interfaces"); ext != nil {
		class.Interfaces = append(class.Interfaces, e.typeList(ext)...)
	}

	members := e.members(node)
	for _, m := range members {
		if m.Type() == "field_declaration" {
			class.Fields = append(class.Fields, e.fieldFacts(m)...)
		}
	}

	fields := fieldSet(class.Fields)
	var methodNodes []*sitter.Node
	for _, m := range members {
		if parser.IsJavaMethodNode(m) {
			class.Methods = append(class.Methods, e.methodFacts(m, fields))
			methodNodes = append(methodNodes, m)
		}
	}
	return class, methodNodes
}

// members returns the member declarations of a type body in order.
func (e *JavaExtractor) members(typeNode *sitter.Node) []*sitter.Node {
	body := typeNode.ChildByFieldName("body")
	var members []*sitter.Node
	for _, child := range namedChildren(body) {
		if child.Type() == "enum_body_declarations" {
			members = append(members, namedChildren(child)...)
			continue
		}
		members = append(members, child)
	}
	return members
}

func (e *JavaExtractor) typeName(node *sitter.Node) string {
	return e.nodeText(node.ChildByFieldName("name"))
}

// typeList extracts a list of types from an extends/implements clause.
func (e *JavaExtractor) typeList(node *sitter.Node) []string {
	var types []string
	for _, child := range namedChildren(node) {
		switch child.Type() {
		case "type_identifier", "generic_type", "scoped_type_identifier":
			types = append(types, e.nodeText(child))
		case "type_list":
			types = append(types, e.typeList(child)...)
		}
	}
	return types
}

func (e *JavaExtractor) fieldFacts(node *sitter.Node) []facts.Field {
	modifiers := e.extractModifiers(node)
	typeName := collapseSpace(e.nodeText(node.ChildByFieldName("type")))

	var fields []facts.Field
	for _, decl := range findChildrenByType(node, "variable_declarator") {
		name := e.nodeText(decl.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		fields = append(fields, facts.Field{
			Name:       name,
			Type:       typeName,
			Visibility: javaVisibility(modifiers),
			Static:     contains(modifiers, "static"),
			Final:      contains(modifiers, "final"),
		})
	}
	return fields
}

// methodFacts extracts one method or constructor. fields names the
// enclosing class's fields for field-access detection.
func (e *JavaExtractor) methodFacts(node *sitter.Node, fields map[string]bool) *facts.Method {
	startLine, endLine := getLineRange(node)
	m := &facts.Method{
		Name:        e.nodeText(node.ChildByFieldName("name")),
		Constructor: node.Type() == "constructor_declaration",
		StartLine:   startLine,
		EndLine:     endLine,
	}
	if !m.Constructor {
		m.ReturnType = collapseSpace(e.nodeText(node.ChildByFieldName("type")))
	}
	m.Parameters = e.parameters(node.ChildByFieldName("parameters"))
	m.Signature = e.signature(node, m)

	body := node.ChildByFieldName("body")
	if body == nil {
		return m
	}
	m.Body = e.bodyLines(body)

	statements := namedChildren(body)
	shadow := make(map[string]bool, len(m.Parameters))
	for _, p := range m.Parameters {
		shadow[p.Name] = true
	}
	refs := e.collectReferences(statements, fields, shadow)
	m.Locals = refs.locals
	m.Calls = refs.calls
	m.FieldAccess = refs.fieldAccess
	m.Pattern = extractPattern(statements)
	m.Semantics = e.extractSemantics(statements, m.Name)
	return m
}

// signature renders the declaration head: keyword modifiers, type
// parameters, return type, name, parameter list and throws clause.
func (e *JavaExtractor) signature(node *sitter.Node, m *facts.Method) string {
	var parts []string
	for _, mod := range e.extractModifiers(node) {
		if !strings.HasPrefix(mod, "@") {
			parts = append(parts, mod)
		}
	}
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		parts = append(parts, e.nodeText(tp))
	}
	if m.ReturnType != "" {
		parts = append(parts, m.ReturnType)
	}
	parts = append(parts, m.Name+collapseSpace(e.nodeText(node.ChildByFieldName("parameters"))))
	if throws := findChildByType(node, "throws"); throws != nil {
		parts = append(parts, collapseSpace(e.nodeText(throws)))
	}
	return strings.Join(parts, " ")
}

// bodyLines returns the lines between the braces of a body block.
func (e *JavaExtractor) bodyLines(body *sitter.Node) []string {
	text := e.nodeText(body)
	text = strings.TrimPrefix(text, "{")
	text = strings.TrimSuffix(text, "}")
	lines := trimBlankEdges(splitLines(text))
	if len(lines) == 1 {
		return []string{strings.TrimSpace(lines[0])}
	}
	return dedent(lines)
}

// parameters extracts parameters from a formal_parameters node.
func (e *JavaExtractor) parameters(node *sitter.Node) []facts.Parameter {
	var params []facts.Parameter
	for _, child := range namedChildren(node) {
		switch child.Type() {
		case "formal_parameter":
			params = append(params, facts.Parameter{
				Name: e.nodeText(child.ChildByFieldName("name")),
				Type: collapseSpace(e.nodeText(child.ChildByFieldName("type"))),
			})
		case "spread_parameter":
			var p facts.Parameter
			for _, part := range namedChildren(child) {
				switch part.Type() {
				case "modifiers":
				case "variable_declarator":
					p.Name = e.nodeText(part.ChildByFieldName("name"))
				default:
					if p.Type == "" {
						p.Type = collapseSpace(e.nodeText(part)) + "..."
					}
				}
			}
			params = append(params, p)
		}
	}
	return params
}

// extractModifiers extracts keyword modifiers and annotation names
// (prefixed with @) from a declaration.
func (e *JavaExtractor) extractModifiers(node *sitter.Node) []string {
	var modifiers []string
	mods := findChildByType(node, "modifiers")
	if mods == nil {
		return nil
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		mod := mods.Child(i)
		switch t := mod.Type(); {
		case isJavaModifier(t):
			modifiers = append(modifiers, t)
		case t == "marker_annotation" || t == "annotation":
			if name := e.nodeText(mod.ChildByFieldName("name")); name != "" {
				modifiers = append(modifiers, "@"+name)
			}
		}
	}
	return modifiers
}

// getFilePath returns the parsed file's path.
func (e *JavaExtractor) getFilePath() string {
	if e.result.FilePath != "" {
		return e.result.FilePath
	}
	return "unknown"
}

func (e *JavaExtractor) nodeText(node *sitter.Node) string {
	return e.result.NodeText(node)
}

var javaModifiers = map[string]bool{
	"public":       true,
	"private":      true,
	"protected":    true,
	"static":       true,
	"final":        true,
	"abstract":     true,
	"synchronized": true,
	"native":       true,
	"transient":    true,
	"volatile":     true,
	"strictfp":     true,
	"default":      true,
}

func isJavaModifier(nodeType string) bool {
	return javaModifiers[nodeType]
}

// javaVisibility maps modifiers to public, protected, private or package.
func javaVisibility(modifiers []string) string {
	for _, m := range modifiers {
		switch m {
		case "public", "protected", "private":
			return m
		}
	}
	return "package"
}

func fieldSet(fields []facts.Field) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f.Name] = true
	}
	return set
}

// simpleName returns the last segment of a dotted name.
func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
