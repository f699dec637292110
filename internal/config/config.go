package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/ctxpack/internal/budget"
	"github.com/hargabyte/ctxpack/internal/prompt"
	"github.com/hargabyte/ctxpack/internal/relevance"
)

// ConfigFileName is the name of the ctxpack configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the ctxpack configuration directory
const ConfigDirName = ".ctxpack"

// Config holds all ctxpack configuration
type Config struct {
	Budget    BudgetConfig    `yaml:"budget"`
	Relevance RelevanceConfig `yaml:"relevance"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Output    OutputConfig    `yaml:"output"`
}

// BudgetConfig holds the token ceiling and per-layer caps
type BudgetConfig struct {
	MaxTokens int       `yaml:"max_tokens"`
	LayerCaps LayerCaps `yaml:"layer_caps"`
}

// LayerCaps holds the maximum allowance of each context layer
type LayerCaps struct {
	Selected int `yaml:"selected"`
	Method   int `yaml:"method"`
	Class    int `yaml:"class"`
	File     int `yaml:"file"`
	Project  int `yaml:"project"`
}

// RelevanceConfig holds the related-method scoring weights and thresholds
type RelevanceConfig struct {
	Weights           relevance.Weights            `yaml:"weights"`
	Structural        relevance.StructuralWeights  `yaml:"structural"`
	ControlFlow       relevance.ControlFlowWeights `yaml:"control_flow"`
	Functional        relevance.FunctionalWeights  `yaml:"functional"`
	PatternThreshold  float64                      `yaml:"pattern_threshold"`
	SemanticThreshold float64                      `yaml:"semantic_threshold"`
}

// PromptConfig holds prompt rendering settings
type PromptConfig struct {
	MethodBodyLineLimit int    `yaml:"method_body_line_limit"`
	Language            string `yaml:"language"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .ctxpack/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .ctxpack directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .ctxpack directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// weightTolerance absorbs float rounding when checking that a weight group
// sums to one.
const weightTolerance = 1e-6

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if cfg.Budget.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d",
			ErrInvalidConfig, cfg.Budget.MaxTokens)
	}

	caps := map[string]int{
		"selected": cfg.Budget.LayerCaps.Selected,
		"method":   cfg.Budget.LayerCaps.Method,
		"class":    cfg.Budget.LayerCaps.Class,
		"file":     cfg.Budget.LayerCaps.File,
		"project":  cfg.Budget.LayerCaps.Project,
	}
	for _, name := range []string{"selected", "method", "class", "file", "project"} {
		if caps[name] <= 0 {
			return fmt.Errorf("%w: layer_caps.%s must be positive, got %d",
				ErrInvalidConfig, name, caps[name])
		}
	}

	r := cfg.Relevance
	groups := []struct {
		name    string
		weights []float64
	}{
		{"weights", []float64{r.Weights.DirectCall, r.Weights.VariableSharing, r.Weights.Pattern, r.Weights.Semantic}},
		{"structural", []float64{r.Structural.StatementTypes, r.Structural.Nesting, r.Structural.Blocks}},
		{"control_flow", []float64{r.ControlFlow.Conditions, r.ControlFlow.Loops, r.ControlFlow.Branches}},
		{"functional", []float64{r.Functional.Operations, r.Functional.DataOperations, r.Functional.BusinessLogic}},
	}
	for _, g := range groups {
		sum := 0.0
		for _, w := range g.weights {
			if w < 0 || w > 1 {
				return fmt.Errorf("%w: relevance.%s values must be between 0 and 1, got %v",
					ErrInvalidConfig, g.name, g.weights)
			}
			sum += w
		}
		if math.Abs(sum-1) > weightTolerance {
			return fmt.Errorf("%w: relevance.%s must sum to 1, got %f",
				ErrInvalidConfig, g.name, sum)
		}
	}

	if r.PatternThreshold < 0 || r.PatternThreshold > 1 {
		return fmt.Errorf("%w: pattern_threshold must be between 0 and 1, got %f",
			ErrInvalidConfig, r.PatternThreshold)
	}
	if r.SemanticThreshold < 0 || r.SemanticThreshold > 1 {
		return fmt.Errorf("%w: semantic_threshold must be between 0 and 1, got %f",
			ErrInvalidConfig, r.SemanticThreshold)
	}

	if cfg.Prompt.MethodBodyLineLimit <= 0 {
		return fmt.Errorf("%w: method_body_line_limit must be positive, got %d",
			ErrInvalidConfig, cfg.Prompt.MethodBodyLineLimit)
	}

	if !IsValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	return nil
}

// SaveDefault writes the default configuration to .ctxpack/config.yaml in workDir.
// Creates the .ctxpack directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# ctxpack configuration\n# Token budget, related-method scoring and prompt rendering settings\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

// BudgetLimits converts the budget section for the allocator.
func (c *Config) BudgetLimits() budget.Limits {
	return budget.Limits{
		MaxTokens: c.Budget.MaxTokens,
		Selected:  c.Budget.LayerCaps.Selected,
		Method:    c.Budget.LayerCaps.Method,
		Class:     c.Budget.LayerCaps.Class,
		File:      c.Budget.LayerCaps.File,
		Project:   c.Budget.LayerCaps.Project,
	}
}

// RelevanceOptions converts the relevance section for the scorer.
func (c *Config) RelevanceOptions() relevance.Options {
	return relevance.Options{
		Weights:           c.Relevance.Weights,
		Structural:        c.Relevance.Structural,
		ControlFlow:       c.Relevance.ControlFlow,
		Functional:        c.Relevance.Functional,
		PatternThreshold:  c.Relevance.PatternThreshold,
		SemanticThreshold: c.Relevance.SemanticThreshold,
	}
}

// PromptOptions converts the prompt section for the builder.
func (c *Config) PromptOptions() prompt.Options {
	return prompt.Options{
		MethodBodyLineLimit: c.Prompt.MethodBodyLineLimit,
		Language:            c.Prompt.Language,
	}
}
