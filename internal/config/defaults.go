package config

import (
	"github.com/hargabyte/ctxpack/internal/budget"
	"github.com/hargabyte/ctxpack/internal/prompt"
	"github.com/hargabyte/ctxpack/internal/relevance"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	limits := budget.DefaultLimits()
	rel := relevance.DefaultOptions()
	pr := prompt.DefaultOptions()

	return &Config{
		Budget: BudgetConfig{
			MaxTokens: limits.MaxTokens,
			LayerCaps: LayerCaps{
				Selected: limits.Selected,
				Method:   limits.Method,
				Class:    limits.Class,
				File:     limits.File,
				Project:  limits.Project,
			},
		},
		Relevance: RelevanceConfig{
			Weights:           rel.Weights,
			Structural:        rel.Structural,
			ControlFlow:       rel.ControlFlow,
			Functional:        rel.Functional,
			PatternThreshold:  rel.PatternThreshold,
			SemanticThreshold: rel.SemanticThreshold,
		},
		Prompt: PromptConfig{
			MethodBodyLineLimit: pr.MethodBodyLineLimit,
			Language:            pr.Language,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Budget = mergeBudgetConfig(loaded.Budget, defaults.Budget)
	result.Relevance = mergeRelevanceConfig(loaded.Relevance, defaults.Relevance)
	result.Prompt = mergePromptConfig(loaded.Prompt, defaults.Prompt)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)

	return result
}

func mergeBudgetConfig(loaded, defaults BudgetConfig) BudgetConfig {
	return BudgetConfig{
		MaxTokens: pickInt(loaded.MaxTokens, defaults.MaxTokens),
		LayerCaps: LayerCaps{
			Selected: pickInt(loaded.LayerCaps.Selected, defaults.LayerCaps.Selected),
			Method:   pickInt(loaded.LayerCaps.Method, defaults.LayerCaps.Method),
			Class:    pickInt(loaded.LayerCaps.Class, defaults.LayerCaps.Class),
			File:     pickInt(loaded.LayerCaps.File, defaults.LayerCaps.File),
			Project:  pickInt(loaded.LayerCaps.Project, defaults.LayerCaps.Project),
		},
	}
}

// mergeRelevanceConfig takes each weight group whole: a group with any
// non-zero member replaces the default group, so a weight can be set to 0
// explicitly as long as its siblings are given too.
func mergeRelevanceConfig(loaded, defaults RelevanceConfig) RelevanceConfig {
	result := defaults

	if loaded.Weights != (relevance.Weights{}) {
		result.Weights = loaded.Weights
	}
	if loaded.Structural != (relevance.StructuralWeights{}) {
		result.Structural = loaded.Structural
	}
	if loaded.ControlFlow != (relevance.ControlFlowWeights{}) {
		result.ControlFlow = loaded.ControlFlow
	}
	if loaded.Functional != (relevance.FunctionalWeights{}) {
		result.Functional = loaded.Functional
	}

	if loaded.PatternThreshold != 0 {
		result.PatternThreshold = loaded.PatternThreshold
	}
	if loaded.SemanticThreshold != 0 {
		result.SemanticThreshold = loaded.SemanticThreshold
	}

	return result
}

func mergePromptConfig(loaded, defaults PromptConfig) PromptConfig {
	result := PromptConfig{}

	result.MethodBodyLineLimit = pickInt(loaded.MethodBodyLineLimit, defaults.MethodBodyLineLimit)

	if loaded.Language != "" {
		result.Language = loaded.Language
	} else {
		result.Language = defaults.Language
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.DefaultFormat != "" {
		result.DefaultFormat = loaded.DefaultFormat
	} else {
		result.DefaultFormat = defaults.DefaultFormat
	}

	return result
}

func pickInt(loaded, def int) int {
	if loaded != 0 {
		return loaded
	}
	return def
}

// ValidFormats lists the valid values for the output format
var ValidFormats = []string{"text", "yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}
