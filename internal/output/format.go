// Package output renders pipeline results for the CLI and MCP server.
//
// Three formats are supported:
//
//   - text (default): the combined prompt document, ready to paste
//   - yaml: the structured result, self-documenting keys
//   - json: the same structure as yaml
//
// Density controls how much of the structured result is emitted:
//
//   - sparse: selection, budget and per-layer estimates only
//   - medium (default): adds related methods with scores and the prompt
//   - dense: adds relevance signals, full layer contents and a BPE token count
package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatText prints the rendered prompt document.
	FormatText Format = "text"

	// FormatYAML is the structured YAML output
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "text", "yaml", "json" (case-insensitive)
// Returns an error for invalid format values.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected text, yaml, or json)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Structured reports whether the format emits the result structure rather
// than the prompt text.
func (f Format) Structured() bool {
	return f == FormatYAML || f == FormatJSON
}

// Density represents the level of detail in structured output.
type Density string

const (
	// DensitySparse reports the budget outcome only.
	DensitySparse Density = "sparse"

	// DensityMedium provides balanced detail (default)
	DensityMedium Density = "medium"

	// DensityDense provides full detail
	DensityDense Density = "dense"
)

// ParseDensity parses a density string into a Density value.
// Accepts: "sparse", "medium", "dense" (case-insensitive)
// Returns an error for invalid density values.
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return DensitySparse, nil
	case "medium":
		return DensityMedium, nil
	case "dense":
		return DensityDense, nil
	default:
		return "", fmt.Errorf("invalid density: %q (expected sparse, medium, or dense)", s)
	}
}

// String returns the string representation of the density.
func (d Density) String() string {
	return string(d)
}

// IncludesPrompt returns true if this density level includes the prompt text
// and the related-method list.
func (d Density) IncludesPrompt() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesSignals returns true if this density level includes per-method
// relevance signals.
func (d Density) IncludesSignals() bool {
	return d == DensityDense
}

// IncludesContent returns true if this density level includes layer contents.
func (d Density) IncludesContent() bool {
	return d == DensityDense
}

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatText

// DefaultDensity is the default density level when none is specified.
const DefaultDensity = DensityMedium
