package output

import (
	"github.com/hargabyte/ctxpack/internal/context"
	"github.com/hargabyte/ctxpack/internal/pipeline"
	"github.com/hargabyte/ctxpack/internal/prompt"
	"github.com/hargabyte/ctxpack/internal/relevance"
)

// ResultOutput is the structured form of a pipeline result.
type ResultOutput struct {
	Selection SelectionOutput `yaml:"selection" json:"selection"`
	Focus     prompt.Focus    `yaml:"focus" json:"focus"`
	Budget    BudgetOutput    `yaml:"budget" json:"budget"`

	// Layers are listed in priority order, SELECTED first.
	Layers []LayerOutput `yaml:"layers" json:"layers"`

	// Related lists the ranked related methods kept in the CLASS layer.
	Related []RelatedOutput `yaml:"related_methods,omitempty" json:"related_methods,omitempty"`

	Prompt *PromptOutput `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Usage  prompt.Usage  `yaml:"usage" json:"usage"`

	// ModelTokens is the BPE token count of the document, dense output only.
	ModelTokens int `yaml:"model_tokens,omitempty" json:"model_tokens,omitempty"`

	// Document is the combined prompt, printed by the text format.
	Document string `yaml:"-" json:"-"`
}

// SelectionOutput identifies the selected span.
type SelectionOutput struct {
	File      string `yaml:"file" json:"file"`
	StartLine int    `yaml:"start_line" json:"start_line"`
	EndLine   int    `yaml:"end_line" json:"end_line"`
}

// BudgetOutput reports the allocation outcome.
type BudgetOutput struct {
	TotalTokens  int  `yaml:"total_tokens" json:"total_tokens"`
	ExceedsLimit bool `yaml:"exceeds_limit" json:"exceeds_limit"`
}

// LayerOutput summarizes one context layer.
type LayerOutput struct {
	Kind            string `yaml:"kind" json:"kind"`
	EstimatedTokens int    `yaml:"estimated_tokens" json:"estimated_tokens"`
	Truncated       bool   `yaml:"truncated" json:"truncated"`

	// Content is the full layer, dense output only.
	Content context.Layer `yaml:"content,omitempty" json:"content,omitempty"`
}

// RelatedOutput is one ranked related method.
type RelatedOutput struct {
	Name      string             `yaml:"name" json:"name"`
	Signature string             `yaml:"signature" json:"signature"`
	Score     float64            `yaml:"score" json:"score"`
	Signals   *relevance.Signals `yaml:"signals,omitempty" json:"signals,omitempty"`
}

// PromptOutput carries the two prompt halves.
type PromptOutput struct {
	System string `yaml:"system" json:"system"`
	User   string `yaml:"user" json:"user"`
}

// NewResultOutput converts a pipeline result at the given density.
func NewResultOutput(res *pipeline.Result, density Density) *ResultOutput {
	pkg := res.Package
	out := &ResultOutput{
		Selection: SelectionOutput{
			File:      pkg.Selected.FilePath,
			StartLine: pkg.Selected.StartLine,
			EndLine:   pkg.Selected.EndLine,
		},
		Focus: res.Prompt.Focus,
		Budget: BudgetOutput{
			TotalTokens:  pkg.TotalTokens,
			ExceedsLimit: pkg.ExceedsLimit,
		},
		Usage:    res.Prompt.Usage,
		Document: res.Prompt.Document,
	}

	for _, l := range pkg.Layers() {
		lo := LayerOutput{
			Kind:            l.Kind().String(),
			EstimatedTokens: l.Meta().EstimatedTokens,
			Truncated:       l.Meta().Truncated,
		}
		if density.IncludesContent() {
			lo.Content = l
		}
		out.Layers = append(out.Layers, lo)
	}

	if density.IncludesContent() {
		// A count failure leaves the field out; the estimate in Usage stands.
		if n, err := prompt.CountModelTokens(res.Prompt.Document); err == nil {
			out.ModelTokens = n
		}
	}

	if !density.IncludesPrompt() {
		return out
	}

	for _, c := range pkg.Class.Related {
		ro := RelatedOutput{
			Name:      c.Method.Name,
			Signature: c.Method.Signature,
			Score:     c.Score,
		}
		if density.IncludesSignals() {
			signals := c.Signals
			ro.Signals = &signals
		}
		out.Related = append(out.Related, ro)
	}
	out.Prompt = &PromptOutput{
		System: res.Prompt.System,
		User:   res.Prompt.User,
	}
	return out
}
