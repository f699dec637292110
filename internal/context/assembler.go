package context

import (
	"fmt"

	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/relevance"
)

// RelatedFinder ranks the methods of a class against a selection.
type RelatedFinder interface {
	FindRelated(sel *facts.Selection, class *facts.Class) ([]relevance.Candidate, error)
}

// Assembler builds context packages from selection facts.
type Assembler struct {
	finder RelatedFinder
}

// NewAssembler creates an Assembler that uses finder for the class layer.
func NewAssembler(finder RelatedFinder) *Assembler {
	return &Assembler{finder: finder}
}

// Assemble builds the five-layer package for sel. Every layer is present;
// method, file and project layers whose facts are missing are empty. Class
// facts are required. Estimates are left at zero for the budget allocator
// to fill in.
//
// The selection's facts are copied, never referenced, so allocation can
// truncate the package without touching them.
func (a *Assembler) Assemble(sel *facts.Selection) (*Package, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	class, err := a.classLayer(sel)
	if err != nil {
		return nil, err
	}

	return &Package{
		Selected: selectedLayer(sel),
		Method:   methodLayer(sel.Method),
		Class:    class,
		File:     fileLayer(sel.File),
		Project:  projectLayer(sel.Project),
	}, nil
}

func selectedLayer(sel *facts.Selection) *SelectedLayer {
	return &SelectedLayer{
		FilePath:   sel.FilePath,
		StartLine:  sel.StartLine,
		EndLine:    sel.EndLine,
		Lines:      append([]string(nil), sel.Lines...),
		Complexity: 1 + sel.Pattern.DecisionPoints(),
	}
}

func methodLayer(m *facts.Method) *MethodLayer {
	if m == nil {
		return &MethodLayer{}
	}
	return &MethodLayer{
		Name:       m.Name,
		Signature:  m.Signature,
		ReturnType: m.ReturnType,
		Parameters: append([]facts.Parameter(nil), m.Parameters...),
		Body:       append([]string(nil), m.Body...),
		Conditions: m.Pattern.Conditions,
		Loops:      m.Pattern.Loops,
		Branches:   m.Pattern.Branches,
	}
}

func (a *Assembler) classLayer(sel *facts.Selection) (*ClassLayer, error) {
	class := sel.Class
	if class == nil {
		return nil, fmt.Errorf("%w: selection in %s has no enclosing class", facts.ErrInvalidInput, sel.FilePath)
	}

	var related []relevance.Candidate
	if a.finder != nil {
		found, err := a.finder.FindRelated(sel, class)
		if err != nil {
			return nil, fmt.Errorf("finding related methods of %s: %w", class.Name, err)
		}
		related = found
	}

	// Related methods first, in rank order, then everything else in
	// declaration order.
	inRelated := make(map[*facts.Method]bool, len(related))
	methods := make([]*facts.Method, 0, len(class.Methods))
	for _, c := range related {
		inRelated[c.Method] = true
		methods = append(methods, c.Method)
	}
	for _, m := range class.Methods {
		if m == nil || inRelated[m] {
			continue
		}
		methods = append(methods, m)
	}

	return &ClassLayer{
		Name:       class.Name,
		Package:    class.Package,
		SuperClass: class.SuperClass,
		Interfaces: append([]string(nil), class.Interfaces...),
		Fields:     append([]facts.Field(nil), class.Fields...),
		Methods:    methods,
		Related:    related,
	}, nil
}

func fileLayer(f *facts.File) *FileLayer {
	if f == nil {
		return &FileLayer{}
	}
	return &FileLayer{
		Path:           f.Path,
		Name:           f.Name,
		Package:        f.Package,
		Imports:        append([]facts.Import(nil), f.Imports...),
		RelatedClasses: unique(f.RelatedClasses),
	}
}

func projectLayer(p *facts.Project) *ProjectLayer {
	if p == nil {
		return &ProjectLayer{}
	}
	return &ProjectLayer{
		Name:         p.Name,
		Language:     p.Language,
		BuildSystem:  p.BuildSystem,
		Version:      p.Version,
		Dependencies: append([]facts.Dependency(nil), p.Dependencies...),
		ConfigFiles:  append([]string(nil), p.ConfigFiles...),
		RelatedFiles: unique(p.RelatedFiles),
	}
}

// unique removes duplicates, keeping first occurrences in order.
func unique(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
