package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

func newJavaParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return parser
}

// JavaTypeNodes are the node types that declare a Java type.
var JavaTypeNodes = map[string]string{
	"class_declaration":      "class",
	"interface_declaration":  "interface",
	"enum_declaration":       "enum",
	"record_declaration":     "record",
	"annotation_declaration": "annotation",
}

// JavaMethodNodes are the node types that declare executable members.
var JavaMethodNodes = map[string]string{
	"method_declaration":      "method",
	"constructor_declaration": "constructor",
}

// IsJavaTypeNode reports whether node declares a class, interface, enum,
// record or annotation type.
func IsJavaTypeNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := JavaTypeNodes[node.Type()]
	return ok
}

// IsJavaMethodNode reports whether node is a method or constructor
// declaration.
func IsJavaMethodNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := JavaMethodNodes[node.Type()]
	return ok
}
