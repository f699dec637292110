// Package relevance finds and ranks the methods of a class that are related
// to a code selection.
//
// Four independent passes decide membership: call relation, variable
// sharing, pattern similarity and semantic similarity. A method that passes
// any of them becomes a Candidate, and candidates are ranked by a weighted
// overall score. Ties keep declaration order.
package relevance

import (
	"fmt"
	"sort"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// Candidate is a related method with its overall score and signals.
type Candidate struct {
	Method *facts.Method `yaml:"-" json:"-"`
	// Order is the method's position in the class declaration order.
	Order   int     `yaml:"order" json:"order"`
	Score   float64 `yaml:"score" json:"score"`
	Signals Signals `yaml:"signals" json:"signals"`
}

// Scorer ranks class methods against a selection.
type Scorer struct {
	opts Options
}

// NewScorer creates a Scorer with the given options.
func NewScorer(opts Options) *Scorer {
	return &Scorer{opts: opts}
}

// Options returns the scorer's options.
func (s *Scorer) Options() Options {
	return s.opts
}

// FindRelated returns the methods of class related to sel, highest score
// first. The selection's own enclosing method is never a candidate.
// FindRelated does not modify its inputs.
func (s *Scorer) FindRelated(sel *facts.Selection, class *facts.Class) ([]Candidate, error) {
	if sel == nil {
		return nil, fmt.Errorf("%w: selection is nil", facts.ErrInvalidInput)
	}
	if class == nil {
		return nil, fmt.Errorf("%w: class facts are missing", facts.ErrInvalidInput)
	}
	if len(class.Methods) == 0 {
		return []Candidate{}, nil
	}

	selCalls := toSet(facts.CallNames(sel.Calls))
	identifiers := toSet(sel.Identifiers)
	graph := newCallGraph(class.Methods)

	var enclosingKey, enclosingName string
	if sel.Method != nil {
		enclosingKey = sel.Method.Key()
		enclosingName = sel.Method.Name
	}

	seen := make(map[string]bool, len(class.Methods))
	candidates := make([]Candidate, 0, len(class.Methods))
	for order, m := range class.Methods {
		if m == nil {
			continue
		}
		key := m.Key()
		if key == enclosingKey || seen[key] {
			continue
		}
		seen[key] = true

		sig := s.signals(m, sel, selCalls, identifiers, graph, enclosingName)
		if !s.passes(sig) {
			continue
		}
		candidates = append(candidates, Candidate{
			Method:  m,
			Order:   order,
			Score:   s.score(sig),
			Signals: sig,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Order < candidates[j].Order
	})
	return candidates, nil
}

func (s *Scorer) signals(m *facts.Method, sel *facts.Selection, selCalls, identifiers map[string]bool, graph callGraph, enclosingName string) Signals {
	return Signals{
		DirectCall:      selCalls[m.Name],
		IndirectCall:    graph.reaches(m, selCalls),
		CallsEnclosing:  callsMethod(m, enclosingName),
		VariableSharing: sharesVariables(m, sel, identifiers),

		Structural:  structuralSimilarity(sel.Pattern, m.Pattern, s.opts.Structural),
		ControlFlow: controlFlowSimilarity(sel.Pattern, m.Pattern, s.opts.ControlFlow),
		Exception:   exceptionSimilarity(sel.Pattern, m.Pattern),
		Functional:  functionalSimilarity(sel.Semantics, m.Semantics, s.opts.Functional),
		Domain:      domainSimilarity(sel.Semantics, m.Semantics),
		Algorithm:   algorithmSimilarity(sel.Semantics, m.Semantics),
	}
}

func (s *Scorer) passes(sig Signals) bool {
	callPass := sig.DirectCall || sig.IndirectCall || sig.CallsEnclosing
	patternPass := sig.Structural > s.opts.PatternThreshold ||
		sig.ControlFlow > s.opts.PatternThreshold ||
		sig.Exception > s.opts.PatternThreshold
	semanticPass := sig.Functional > s.opts.SemanticThreshold ||
		sig.Domain > s.opts.SemanticThreshold ||
		sig.Algorithm > s.opts.SemanticThreshold
	return callPass || sig.VariableSharing || patternPass || semanticPass
}

// score combines the signals into the overall relevance score in [0,1].
func (s *Scorer) score(sig Signals) float64 {
	w := s.opts.Weights
	var total float64
	if sig.HasDirectRelation() {
		total += w.DirectCall
	}
	if sig.VariableSharing {
		total += w.VariableSharing
	}
	total += w.Pattern * sig.PatternScore()
	total += w.Semantic * sig.SemanticScore()
	return clamp01(total)
}
