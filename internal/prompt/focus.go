package prompt

import "strings"

// Focus is the review focus inferred from the user's instruction.
type Focus int

const (
	FocusNone Focus = iota
	FocusOptimize
	FocusBug
	FocusRefactor
)

// String returns the focus name.
func (f Focus) String() string {
	switch f {
	case FocusOptimize:
		return "optimize"
	case FocusBug:
		return "bug"
	case FocusRefactor:
		return "refactor"
	default:
		return "none"
	}
}

// focusFamilies is checked in order; the first family with a matching
// keyword wins.
var focusFamilies = []struct {
	focus    Focus
	keywords []string
}{
	{FocusOptimize, []string{"optimize", "optimise", "优化"}},
	{FocusBug, []string{"bug", "error", "错误"}},
	{FocusRefactor, []string{"refactor", "重构"}},
}

// DetectFocus scans an instruction for the keyword families. Matching is
// case-insensitive and by substring, so "optimized" counts as "optimize".
func DetectFocus(instruction string) Focus {
	lower := strings.ToLower(instruction)
	for _, fam := range focusFamilies {
		for _, kw := range fam.keywords {
			if strings.Contains(lower, kw) {
				return fam.focus
			}
		}
	}
	return FocusNone
}

// MarshalText renders the focus by name in YAML and JSON output.
func (f Focus) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
