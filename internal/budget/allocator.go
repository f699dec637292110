// Package budget enforces the global token ceiling on a context package by
// cascading, priority-ordered truncation.
package budget

import (
	"go.uber.org/zap"

	"github.com/hargabyte/ctxpack/internal/context"
)

// DefaultMaxTokens is the global ceiling on a package's estimated size.
const DefaultMaxTokens = 32000

// Limits holds the global ceiling and per-layer caps. Caps are maximum
// allowances; allowance a layer does not use is not passed on to later
// layers.
type Limits struct {
	MaxTokens int
	Selected  int
	Method    int
	Class     int
	File      int
	Project   int
}

// DefaultLimits returns the standard ceiling and caps.
func DefaultLimits() Limits {
	return Limits{
		MaxTokens: DefaultMaxTokens,
		Selected:  8000,
		Method:    6000,
		Class:     4000,
		File:      3000,
		Project:   2000,
	}
}

// Cap returns the cap for a layer kind.
func (l Limits) Cap(k context.Kind) int {
	switch k {
	case context.KindSelected:
		return l.Selected
	case context.KindMethod:
		return l.Method
	case context.KindClass:
		return l.Class
	case context.KindFile:
		return l.File
	case context.KindProject:
		return l.Project
	}
	return 0
}

// Allocator fits packages into Limits.
type Allocator struct {
	limits Limits
	logger *zap.Logger
}

// NewAllocator creates an Allocator. A nil logger disables logging.
func NewAllocator(limits Limits, logger *zap.Logger) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{limits: limits, logger: logger}
}

// Limits returns the allocator's limits.
func (a *Allocator) Limits() Limits {
	return a.limits
}

// Allocate estimates every layer and, if the package exceeds the ceiling,
// truncates the layers in priority order. SELECTED is always kept whole.
// Every later layer is cut to min(estimate, cap, remaining), with remaining
// clamped at zero once SELECTED alone exceeds the ceiling.
//
// ExceedsLimit reflects the estimate before truncation and stays set once
// set, so allocating the same package again changes nothing. TotalTokens is
// the sum of the final estimates. Allocate never fails.
func (a *Allocator) Allocate(pkg *context.Package) {
	total := Estimate(pkg)
	pkg.ExceedsLimit = pkg.ExceedsLimit || total > a.limits.MaxTokens
	if total <= a.limits.MaxTokens {
		a.logger.Debug("within budget",
			zap.Int("total_tokens", total),
			zap.Int("max_tokens", a.limits.MaxTokens))
		return
	}

	a.logger.Debug("budget exceeded, truncating",
		zap.Int("total_tokens", total),
		zap.Int("max_tokens", a.limits.MaxTokens))

	remaining := a.limits.MaxTokens
	for _, layer := range pkg.Layers() {
		meta := layer.Meta()
		estimate := meta.EstimatedTokens

		if layer.Kind().Protected() {
			remaining -= estimate
			continue
		}

		// remaining goes negative when SELECTED alone exceeds the ceiling.
		allowed := min(estimate, a.limits.Cap(layer.Kind()), remaining)
		if allowed < 0 {
			allowed = 0
		}

		truncate(layer, allowed)
		meta.EstimatedTokens = EstimateLayer(layer)
		if allowed < estimate {
			meta.Truncated = true
			a.logger.Debug("truncated layer",
				zap.Stringer("layer", layer.Kind()),
				zap.Int("estimate", estimate),
				zap.Int("allowed", allowed),
				zap.Int("retained", meta.EstimatedTokens))
		}
		remaining -= allowed
	}

	pkg.TotalTokens = pkg.SumTokens()
}

// truncate drops trailing content until the layer's estimate fits allowed.
func truncate(layer context.Layer, allowed int) {
	unit := unitCost(layer.Kind())
	if unit <= 0 {
		return
	}
	keep := allowed / unit

	switch l := layer.(type) {
	case *context.MethodLayer:
		if keep < len(l.Body) {
			l.Body = l.Body[:keep]
		}
	case *context.ClassLayer:
		if keep < len(l.Methods) {
			l.Methods = l.Methods[:keep]
		}
		if keep < len(l.Related) {
			l.Related = l.Related[:keep]
		}
	case *context.FileLayer:
		if keep < len(l.Imports) {
			l.Imports = l.Imports[:keep]
		}
	case *context.ProjectLayer:
		if keep < len(l.Dependencies) {
			l.Dependencies = l.Dependencies[:keep]
		}
	}
}
