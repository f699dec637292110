// Package context assembles the five-layer context package for a single
// code-editing request.
//
// The layers are, in priority order, SELECTED, METHOD, CLASS, FILE and
// PROJECT. Priority order is also truncation order: the budget package walks
// the layers in exactly this sequence and SELECTED is never truncated.
package context

import (
	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/relevance"
)

// Kind identifies a context layer.
type Kind int

const (
	KindSelected Kind = iota
	KindMethod
	KindClass
	KindFile
	KindProject
)

// NumKinds is the number of layers in every package.
const NumKinds = 5

// Kinds returns all layer kinds in priority order.
func Kinds() []Kind {
	return []Kind{KindSelected, KindMethod, KindClass, KindFile, KindProject}
}

// String returns the upper-case layer name.
func (k Kind) String() string {
	switch k {
	case KindSelected:
		return "SELECTED"
	case KindMethod:
		return "METHOD"
	case KindClass:
		return "CLASS"
	case KindFile:
		return "FILE"
	case KindProject:
		return "PROJECT"
	default:
		return "UNKNOWN"
	}
}

// Protected reports whether layers of this kind are exempt from truncation.
func (k Kind) Protected() bool {
	return k == KindSelected
}

// LayerMeta is the budget bookkeeping shared by every layer.
type LayerMeta struct {
	EstimatedTokens int  `yaml:"estimated_tokens" json:"estimated_tokens"`
	Truncated       bool `yaml:"truncated" json:"truncated"`
}

// Meta returns the layer's bookkeeping for in-place updates.
func (m *LayerMeta) Meta() *LayerMeta { return m }

// Layer is one of the five concrete layer types.
type Layer interface {
	Kind() Kind
	Meta() *LayerMeta
}

// SelectedLayer holds the user's selected lines.
type SelectedLayer struct {
	LayerMeta `yaml:",inline" json:",inline"`

	FilePath  string   `yaml:"file_path" json:"file_path"`
	StartLine int      `yaml:"start_line" json:"start_line"`
	EndLine   int      `yaml:"end_line" json:"end_line"`
	Lines     []string `yaml:"lines" json:"lines"`
	// Complexity is 1 plus the number of decision points in the selection.
	Complexity int `yaml:"complexity" json:"complexity"`
}

// Kind implements Layer.
func (*SelectedLayer) Kind() Kind { return KindSelected }

// MethodLayer holds the method enclosing the selection. It is empty when the
// selection is not inside a method.
type MethodLayer struct {
	LayerMeta `yaml:",inline" json:",inline"`

	Name       string            `yaml:"name,omitempty" json:"name,omitempty"`
	Signature  string            `yaml:"signature,omitempty" json:"signature,omitempty"`
	ReturnType string            `yaml:"return_type,omitempty" json:"return_type,omitempty"`
	Parameters []facts.Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Body       []string          `yaml:"body,omitempty" json:"body,omitempty"`

	Conditions int `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Loops      int `yaml:"loops,omitempty" json:"loops,omitempty"`
	Branches   int `yaml:"branches,omitempty" json:"branches,omitempty"`
}

// Kind implements Layer.
func (*MethodLayer) Kind() Kind { return KindMethod }

// Empty reports whether the layer has no enclosing method.
func (l *MethodLayer) Empty() bool {
	return l.Signature == "" && len(l.Body) == 0
}

// ClassLayer holds the enclosing class. Methods lists the related methods in
// rank order followed by the remaining methods in declaration order, so
// truncating from the tail drops the least relevant methods first.
type ClassLayer struct {
	LayerMeta `yaml:",inline" json:",inline"`

	Name       string          `yaml:"name,omitempty" json:"name,omitempty"`
	Package    string          `yaml:"package,omitempty" json:"package,omitempty"`
	SuperClass string          `yaml:"super_class,omitempty" json:"super_class,omitempty"`
	Interfaces []string        `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Fields     []facts.Field   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods    []*facts.Method `yaml:"-" json:"-"`
	// Related is always a prefix of Methods.
	Related []relevance.Candidate `yaml:"related,omitempty" json:"related,omitempty"`
}

// Kind implements Layer.
func (*ClassLayer) Kind() Kind { return KindClass }

// FileLayer holds the file containing the selection.
type FileLayer struct {
	LayerMeta `yaml:",inline" json:",inline"`

	Path           string         `yaml:"path,omitempty" json:"path,omitempty"`
	Name           string         `yaml:"name,omitempty" json:"name,omitempty"`
	Package        string         `yaml:"package,omitempty" json:"package,omitempty"`
	Imports        []facts.Import `yaml:"imports,omitempty" json:"imports,omitempty"`
	RelatedClasses []string       `yaml:"related_classes,omitempty" json:"related_classes,omitempty"`
}

// Kind implements Layer.
func (*FileLayer) Kind() Kind { return KindFile }

// ProjectLayer holds the project summary.
type ProjectLayer struct {
	LayerMeta `yaml:",inline" json:",inline"`

	Name         string             `yaml:"name,omitempty" json:"name,omitempty"`
	Language     string             `yaml:"language,omitempty" json:"language,omitempty"`
	BuildSystem  string             `yaml:"build_system,omitempty" json:"build_system,omitempty"`
	Version      string             `yaml:"version,omitempty" json:"version,omitempty"`
	Dependencies []facts.Dependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	ConfigFiles  []string           `yaml:"config_files,omitempty" json:"config_files,omitempty"`
	RelatedFiles []string           `yaml:"related_files,omitempty" json:"related_files,omitempty"`
}

// Kind implements Layer.
func (*ProjectLayer) Kind() Kind { return KindProject }

// Package is the context assembled for one request. It is owned by that
// request and mutated in place by budget allocation.
type Package struct {
	Selected *SelectedLayer `yaml:"selected" json:"selected"`
	Method   *MethodLayer   `yaml:"method" json:"method"`
	Class    *ClassLayer    `yaml:"class" json:"class"`
	File     *FileLayer     `yaml:"file" json:"file"`
	Project  *ProjectLayer  `yaml:"project" json:"project"`

	TotalTokens  int  `yaml:"total_tokens" json:"total_tokens"`
	ExceedsLimit bool `yaml:"exceeds_limit" json:"exceeds_limit"`
}

// Layers returns the five layers in priority order.
func (p *Package) Layers() []Layer {
	return []Layer{p.Selected, p.Method, p.Class, p.File, p.Project}
}

// Layer returns the layer of the given kind, or nil for an unknown kind.
func (p *Package) Layer(k Kind) Layer {
	switch k {
	case KindSelected:
		return p.Selected
	case KindMethod:
		return p.Method
	case KindClass:
		return p.Class
	case KindFile:
		return p.File
	case KindProject:
		return p.Project
	}
	return nil
}

// SumTokens returns the sum of the layers' current estimates.
func (p *Package) SumTokens() int {
	total := 0
	for _, l := range p.Layers() {
		total += l.Meta().EstimatedTokens
	}
	return total
}
