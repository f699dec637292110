package budget

import (
	"github.com/hargabyte/ctxpack/internal/context"
)

// Structural token costs. These are a cheap proxy for the size of each
// layer and are unrelated to any real tokenizer.
const (
	TokensPerSelectedLine = 10
	TokensPerBodyLine     = 8
	TokensPerMethod       = 5
	TokensPerImport       = 3
	TokensPerDependency   = 2
)

// unitCost returns the token cost of one content item of a layer kind.
func unitCost(k context.Kind) int {
	switch k {
	case context.KindSelected:
		return TokensPerSelectedLine
	case context.KindMethod:
		return TokensPerBodyLine
	case context.KindClass:
		return TokensPerMethod
	case context.KindFile:
		return TokensPerImport
	case context.KindProject:
		return TokensPerDependency
	}
	return 0
}

// itemCount returns the number of budgeted content items in a layer.
func itemCount(l context.Layer) int {
	switch l := l.(type) {
	case *context.SelectedLayer:
		return len(l.Lines)
	case *context.MethodLayer:
		return len(l.Body)
	case *context.ClassLayer:
		return len(l.Methods)
	case *context.FileLayer:
		return len(l.Imports)
	case *context.ProjectLayer:
		return len(l.Dependencies)
	}
	return 0
}

// EstimateLayer returns the structural token estimate of a layer's current
// content. Prompt usage is counted separately, on rendered text, by
// prompt.CountTokens.
func EstimateLayer(l context.Layer) int {
	if l == nil {
		return 0
	}
	return unitCost(l.Kind()) * itemCount(l)
}

// Estimate sets every layer's EstimatedTokens from its content and returns
// the sum. TotalTokens is updated to match.
func Estimate(pkg *context.Package) int {
	total := 0
	for _, l := range pkg.Layers() {
		n := EstimateLayer(l)
		l.Meta().EstimatedTokens = n
		total += n
	}
	pkg.TotalTokens = total
	return total
}
