package relevance

// Weights combine the four signal groups into the overall relevance score.
type Weights struct {
	DirectCall      float64 `yaml:"direct_call" json:"direct_call"`
	VariableSharing float64 `yaml:"variable_sharing" json:"variable_sharing"`
	Pattern         float64 `yaml:"pattern" json:"pattern"`
	Semantic        float64 `yaml:"semantic" json:"semantic"`
}

// StructuralWeights combine the structural pattern sub-signals.
type StructuralWeights struct {
	StatementTypes float64 `yaml:"statement_types" json:"statement_types"`
	Nesting        float64 `yaml:"nesting" json:"nesting"`
	Blocks         float64 `yaml:"blocks" json:"blocks"`
}

// ControlFlowWeights combine the control-flow pattern sub-signals.
type ControlFlowWeights struct {
	Conditions float64 `yaml:"conditions" json:"conditions"`
	Loops      float64 `yaml:"loops" json:"loops"`
	Branches   float64 `yaml:"branches" json:"branches"`
}

// FunctionalWeights combine the functional semantic sub-signals.
type FunctionalWeights struct {
	Operations     float64 `yaml:"operations" json:"operations"`
	DataOperations float64 `yaml:"data_operations" json:"data_operations"`
	BusinessLogic  float64 `yaml:"business_logic" json:"business_logic"`
}

// Options configures a Scorer. Values are read-only after construction.
type Options struct {
	Weights     Weights
	Structural  StructuralWeights
	ControlFlow ControlFlowWeights
	Functional  FunctionalWeights

	// PatternThreshold is the score a structural, control-flow or
	// exception similarity must exceed for the pattern pass.
	PatternThreshold float64
	// SemanticThreshold is the score a functional, domain or algorithm
	// similarity must exceed for the semantic pass.
	SemanticThreshold float64
}

// DefaultOptions returns the standard weights and thresholds.
func DefaultOptions() Options {
	return Options{
		Weights: Weights{
			DirectCall:      0.4,
			VariableSharing: 0.3,
			Pattern:         0.2,
			Semantic:        0.1,
		},
		Structural: StructuralWeights{
			StatementTypes: 0.4,
			Nesting:        0.3,
			Blocks:         0.3,
		},
		ControlFlow: ControlFlowWeights{
			Conditions: 0.4,
			Loops:      0.3,
			Branches:   0.3,
		},
		Functional: FunctionalWeights{
			Operations:     0.4,
			DataOperations: 0.3,
			BusinessLogic:  0.3,
		},
		PatternThreshold:  0.7,
		SemanticThreshold: 0.5,
	}
}
