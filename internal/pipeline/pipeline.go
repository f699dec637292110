// Package pipeline runs one context-packaging request end to end:
// assemble, allocate, render.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/hargabyte/ctxpack/internal/budget"
	"github.com/hargabyte/ctxpack/internal/config"
	"github.com/hargabyte/ctxpack/internal/context"
	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/prompt"
	"github.com/hargabyte/ctxpack/internal/relevance"
)

// Result is the outcome of one request.
type Result struct {
	Package *context.Package `yaml:"package" json:"package"`
	Prompt  *prompt.Prompt   `yaml:"prompt" json:"prompt"`
}

// Pipeline holds the configured components. It keeps no per-request state
// and is safe for concurrent use.
type Pipeline struct {
	assembler *context.Assembler
	allocator *budget.Allocator
	builder   *prompt.Builder
	logger    *zap.Logger
}

// New creates a Pipeline from cfg. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Pipeline{
		assembler: context.NewAssembler(relevance.NewScorer(cfg.RelevanceOptions())),
		allocator: budget.NewAllocator(cfg.BudgetLimits(), logger.Named("budget")),
		builder:   prompt.NewBuilder(cfg.PromptOptions()),
		logger:    logger,
	}
}

// Run assembles, allocates and renders the context for sel.
func (p *Pipeline) Run(sel *facts.Selection, instruction string) (*Result, error) {
	pkg, err := p.assembler.Assemble(sel)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("assembled context",
		zap.String("file", sel.FilePath),
		zap.Int("start_line", sel.StartLine),
		zap.Int("end_line", sel.EndLine),
		zap.Int("related_methods", len(pkg.Class.Related)))

	p.allocator.Allocate(pkg)
	for _, l := range pkg.Layers() {
		p.logger.Debug("layer estimate",
			zap.Stringer("layer", l.Kind()),
			zap.Int("tokens", l.Meta().EstimatedTokens),
			zap.Bool("truncated", l.Meta().Truncated))
	}

	pr := p.builder.Build(pkg, instruction)
	p.logger.Debug("rendered prompt",
		zap.Stringer("focus", pr.Focus),
		zap.Int("total_tokens", pkg.TotalTokens),
		zap.Bool("exceeds_limit", pkg.ExceedsLimit),
		zap.Int("prompt_tokens", pr.Usage.TotalTokens))

	return &Result{Package: pkg, Prompt: pr}, nil
}
