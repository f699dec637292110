// Package facts defines the static code facts consumed by context assembly.
//
// Facts are produced by a parser-backed provider (see the extract and project
// packages) and are never computed by the scoring, budgeting or prompt code.
// All collections are ordered slices so that everything downstream of a
// Selection is deterministic.
package facts

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a selection or its class facts are
// missing or malformed. No partial result accompanies it.
var ErrInvalidInput = errors.New("invalid input")

// Parameter is a single formal parameter of a method.
type Parameter struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Variable is a declared local variable.
type Variable struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

// CallSite is a method invocation. Args holds the plain identifiers passed
// as arguments; complex argument expressions are omitted.
type CallSite struct {
	Name string   `yaml:"name" json:"name"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Field is a class field declaration.
type Field struct {
	Name       string `yaml:"name" json:"name"`
	Type       string `yaml:"type" json:"type"`
	Visibility string `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Static     bool   `yaml:"static,omitempty" json:"static,omitempty"`
	Final      bool   `yaml:"final,omitempty" json:"final,omitempty"`
}

// Import is a single import statement.
type Import struct {
	Path   string `yaml:"path" json:"path"`
	Static bool   `yaml:"static,omitempty" json:"static,omitempty"`
}

// Dependency is a build dependency of the project.
type Dependency struct {
	GroupID    string `yaml:"group_id" json:"group_id"`
	ArtifactID string `yaml:"artifact_id" json:"artifact_id"`
	Version    string `yaml:"version,omitempty" json:"version,omitempty"`
	Scope      string `yaml:"scope,omitempty" json:"scope,omitempty"`
}

// Coordinates returns the dependency as group:artifact:version.
func (d Dependency) Coordinates() string {
	return d.GroupID + ":" + d.ArtifactID + ":" + d.Version
}

// CodePattern summarizes the statement and control-flow shape of a code span.
type CodePattern struct {
	// StatementTypes counts statements by kind (if, for, return, expression, ...).
	StatementTypes map[string]int `yaml:"statement_types,omitempty" json:"statement_types,omitempty"`
	// MaxNesting is the deepest block nesting level; top-level statements are 0.
	MaxNesting int `yaml:"max_nesting" json:"max_nesting"`
	// Blocks lists block-introducing constructs in source order.
	Blocks []string `yaml:"blocks,omitempty" json:"blocks,omitempty"`

	Conditions   int `yaml:"conditions" json:"conditions"`
	Loops        int `yaml:"loops" json:"loops"`
	Branches     int `yaml:"branches" json:"branches"`
	TryBlocks    int `yaml:"try_blocks,omitempty" json:"try_blocks,omitempty"`
	CatchClauses int `yaml:"catch_clauses,omitempty" json:"catch_clauses,omitempty"`
	Throws       int `yaml:"throws,omitempty" json:"throws,omitempty"`
}

// DecisionPoints is the number of branching constructs in the pattern.
func (p CodePattern) DecisionPoints() int {
	return p.Conditions + p.Loops + p.Branches + p.CatchClauses
}

// SemanticFeatures is the feature vector used for semantic similarity.
type SemanticFeatures struct {
	// Operations counts operation kinds (arithmetic, comparison, call, ...).
	Operations map[string]int `yaml:"operations,omitempty" json:"operations,omitempty"`
	// DataOperations counts data-structure operations (collection_add, string_transform, ...).
	DataOperations map[string]int `yaml:"data_operations,omitempty" json:"data_operations,omitempty"`
	// Vocabulary holds lowercased words taken from identifiers.
	Vocabulary []string `yaml:"vocabulary,omitempty" json:"vocabulary,omitempty"`
	// Concepts holds the domain type names referenced.
	Concepts []string `yaml:"concepts,omitempty" json:"concepts,omitempty"`
	// Algorithms holds detected algorithm patterns (iteration, recursion, swap, ...).
	Algorithms []string `yaml:"algorithms,omitempty" json:"algorithms,omitempty"`
}

// Method holds the facts of one method or constructor.
type Method struct {
	Name        string      `yaml:"name" json:"name"`
	Signature   string      `yaml:"signature" json:"signature"`
	Parameters  []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	ReturnType  string      `yaml:"return_type,omitempty" json:"return_type,omitempty"`
	Body        []string    `yaml:"body,omitempty" json:"body,omitempty"`
	Locals      []Variable  `yaml:"locals,omitempty" json:"locals,omitempty"`
	Calls       []CallSite  `yaml:"calls,omitempty" json:"calls,omitempty"`
	FieldAccess []string    `yaml:"field_access,omitempty" json:"field_access,omitempty"`
	Constructor bool        `yaml:"constructor,omitempty" json:"constructor,omitempty"`
	StartLine   int         `yaml:"start_line" json:"start_line"`
	EndLine     int         `yaml:"end_line" json:"end_line"`

	Pattern   CodePattern      `yaml:"pattern" json:"pattern"`
	Semantics SemanticFeatures `yaml:"semantics" json:"semantics"`
}

// Key identifies a method by name and signature.
func (m *Method) Key() string {
	return m.Name + "|" + m.Signature
}

// CallNames returns the distinct names of methods called, in first-call order.
func (m *Method) CallNames() []string {
	return CallNames(m.Calls)
}

// Class holds the facts of the class enclosing a selection.
type Class struct {
	Name       string    `yaml:"name" json:"name"`
	Package    string    `yaml:"package,omitempty" json:"package,omitempty"`
	Fields     []Field   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods    []*Method `yaml:"methods,omitempty" json:"methods,omitempty"`
	SuperClass string    `yaml:"super_class,omitempty" json:"super_class,omitempty"`
	Interfaces []string  `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
}

// File holds the facts of the source file containing a selection.
type File struct {
	Path           string   `yaml:"path" json:"path"`
	Name           string   `yaml:"name" json:"name"`
	Package        string   `yaml:"package,omitempty" json:"package,omitempty"`
	Imports        []Import `yaml:"imports,omitempty" json:"imports,omitempty"`
	RelatedClasses []string `yaml:"related_classes,omitempty" json:"related_classes,omitempty"`
}

// Project holds the facts of the project containing a selection.
type Project struct {
	Name         string       `yaml:"name" json:"name"`
	RootPath     string       `yaml:"root_path,omitempty" json:"root_path,omitempty"`
	Language     string       `yaml:"language" json:"language"`
	BuildSystem  string       `yaml:"build_system" json:"build_system"`
	Version      string       `yaml:"version,omitempty" json:"version,omitempty"`
	Dependencies []Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	ConfigFiles  []string     `yaml:"config_files,omitempty" json:"config_files,omitempty"`
	RelatedFiles []string     `yaml:"related_files,omitempty" json:"related_files,omitempty"`
}

// Selection is the user's selected span plus back-references to the
// enclosing facts. It is immutable once captured for a request.
type Selection struct {
	FilePath  string   `yaml:"file_path" json:"file_path"`
	StartLine int      `yaml:"start_line" json:"start_line"`
	EndLine   int      `yaml:"end_line" json:"end_line"`
	Lines     []string `yaml:"lines" json:"lines"`

	// Identifiers are all names referenced inside the selection.
	Identifiers []string   `yaml:"identifiers,omitempty" json:"identifiers,omitempty"`
	Calls       []CallSite `yaml:"calls,omitempty" json:"calls,omitempty"`
	Locals      []Variable `yaml:"locals,omitempty" json:"locals,omitempty"`

	Pattern   CodePattern      `yaml:"pattern" json:"pattern"`
	Semantics SemanticFeatures `yaml:"semantics" json:"semantics"`

	Method  *Method  `yaml:"method,omitempty" json:"method,omitempty"`
	Class   *Class   `yaml:"class,omitempty" json:"class,omitempty"`
	File    *File    `yaml:"file,omitempty" json:"file,omitempty"`
	Project *Project `yaml:"project,omitempty" json:"project,omitempty"`
}

// Validate checks the selection's location fields.
func (s *Selection) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: selection is nil", ErrInvalidInput)
	}
	if s.FilePath == "" {
		return fmt.Errorf("%w: selection has no file path", ErrInvalidInput)
	}
	if s.StartLine < 1 || s.EndLine < s.StartLine {
		return fmt.Errorf("%w: invalid line range %d-%d", ErrInvalidInput, s.StartLine, s.EndLine)
	}
	return nil
}

// CallNames returns the distinct call names in first-call order.
func CallNames(calls []CallSite) []string {
	seen := make(map[string]bool, len(calls))
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		names = append(names, c.Name)
	}
	return names
}

// VariableNames returns the names of the given variables.
func VariableNames(vars []Variable) []string {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	return names
}
