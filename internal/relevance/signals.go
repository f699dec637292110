package relevance

import (
	"github.com/hargabyte/ctxpack/internal/facts"
)

// Signals records every relevance signal computed for one method.
type Signals struct {
	DirectCall      bool `yaml:"direct_call" json:"direct_call"`
	IndirectCall    bool `yaml:"indirect_call" json:"indirect_call"`
	CallsEnclosing  bool `yaml:"calls_enclosing" json:"calls_enclosing"`
	VariableSharing bool `yaml:"variable_sharing" json:"variable_sharing"`

	Structural  float64 `yaml:"structural" json:"structural"`
	ControlFlow float64 `yaml:"control_flow" json:"control_flow"`
	Exception   float64 `yaml:"exception" json:"exception"`
	Functional  float64 `yaml:"functional" json:"functional"`
	Domain      float64 `yaml:"domain" json:"domain"`
	Algorithm   float64 `yaml:"algorithm" json:"algorithm"`
}

// HasDirectRelation reports whether the method is called by the selection
// or calls the selection's enclosing method.
func (s Signals) HasDirectRelation() bool {
	return s.DirectCall || s.CallsEnclosing
}

// PatternScore is the pattern term used in ranking.
func (s Signals) PatternScore() float64 {
	return max(s.Structural, s.ControlFlow)
}

// SemanticScore is the semantic term used in ranking.
func (s Signals) SemanticScore() float64 {
	return max(s.Functional, s.Domain, s.Algorithm)
}

// callGraph maps a method name to the in-class methods carrying that name.
type callGraph map[string][]*facts.Method

func newCallGraph(methods []*facts.Method) callGraph {
	g := make(callGraph, len(methods))
	for _, m := range methods {
		if m == nil {
			continue
		}
		g[m.Name] = append(g[m.Name], m)
	}
	return g
}

// reaches reports whether m, following calls through methods of the same
// class, eventually calls any name in targets.
func (g callGraph) reaches(m *facts.Method, targets map[string]bool) bool {
	visited := map[string]bool{}
	queue := m.CallNames()
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if targets[name] {
			return true
		}
		if visited[name] {
			continue
		}
		visited[name] = true
		for _, callee := range g[name] {
			queue = append(queue, callee.CallNames()...)
		}
	}
	return false
}

func callsMethod(m *facts.Method, name string) bool {
	if name == "" {
		return false
	}
	for _, c := range m.Calls {
		if c.Name == name {
			return true
		}
	}
	return false
}

// sharesVariables reports whether m touches a name the selection references,
// or whether one of the selection's locals flows into m's parameters.
func sharesVariables(m *facts.Method, sel *facts.Selection, identifiers map[string]bool) bool {
	for _, f := range m.FieldAccess {
		if identifiers[f] {
			return true
		}
	}
	for _, v := range m.Locals {
		if identifiers[v.Name] {
			return true
		}
	}

	locals := make(map[string]string, len(sel.Locals))
	for _, v := range sel.Locals {
		locals[v.Name] = v.Type
	}
	for _, c := range sel.Calls {
		if c.Name != m.Name {
			continue
		}
		for _, arg := range c.Args {
			if _, ok := locals[arg]; ok {
				return true
			}
		}
	}
	for _, p := range m.Parameters {
		if typ, ok := locals[p.Name]; ok && typ != "" && typ == p.Type {
			return true
		}
	}
	return false
}

func structuralSimilarity(a, b facts.CodePattern, w StructuralWeights) float64 {
	return clamp01(w.StatementTypes*histogramCosine(a.StatementTypes, b.StatementTypes) +
		w.Nesting*nestingSimilarity(a.MaxNesting, b.MaxNesting) +
		w.Blocks*blockSimilarity(a.Blocks, b.Blocks))
}

func controlFlowSimilarity(a, b facts.CodePattern, w ControlFlowWeights) float64 {
	return clamp01(w.Conditions*countRatio(a.Conditions, b.Conditions) +
		w.Loops*countRatio(a.Loops, b.Loops) +
		w.Branches*countRatio(a.Branches, b.Branches))
}

func exceptionSimilarity(a, b facts.CodePattern) float64 {
	return (countRatio(a.TryBlocks, b.TryBlocks) +
		countRatio(a.CatchClauses, b.CatchClauses) +
		countRatio(a.Throws, b.Throws)) / 3
}

func functionalSimilarity(a, b facts.SemanticFeatures, w FunctionalWeights) float64 {
	return clamp01(w.Operations*histogramCosine(a.Operations, b.Operations) +
		w.DataOperations*histogramCosine(a.DataOperations, b.DataOperations) +
		w.BusinessLogic*jaccard(stemAll(a.Vocabulary), stemAll(b.Vocabulary)))
}

func domainSimilarity(a, b facts.SemanticFeatures) float64 {
	return conceptSimilarity(a.Concepts, b.Concepts)
}

func algorithmSimilarity(a, b facts.SemanticFeatures) float64 {
	return jaccard(a.Algorithms, b.Algorithms)
}
