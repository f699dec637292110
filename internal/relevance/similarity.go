package relevance

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// Every similarity in this file returns a value in [0,1]. When neither side
// carries any evidence (both histograms empty, both counts zero) the result
// is 0, so that two empty spans are never considered similar.

// histogramCosine returns the cosine similarity of two count histograms.
// Keys are visited in sorted order so the floating-point sum is deterministic.
func histogramCosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var dot, normA, normB float64
	for _, k := range keys {
		x, y := float64(a[k]), float64(b[k])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// countRatio compares two non-negative counts as min/max.
func countRatio(a, b int) float64 {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	if a == 0 && b == 0 {
		return 0
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lo) / float64(hi)
}

// nestingSimilarity compares two maximum nesting depths.
func nestingSimilarity(a, b int) float64 {
	hi := a
	if b > hi {
		hi = b
	}
	if hi == 0 {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(hi)
}

// blockSimilarity compares two block sequences by the length of their
// longest common subsequence. Block kinds are encoded as single runes so the
// comparison runs on whole kinds rather than on their spelling.
func blockSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	kinds := make(map[string]rune)
	var next rune = 'A'
	encode := func(blocks []string) string {
		var sb strings.Builder
		for _, blk := range blocks {
			r, ok := kinds[blk]
			if !ok {
				r = next
				kinds[blk] = r
				next++
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}
	common := edlib.LCS(encode(a), encode(b))
	return clamp01(2 * float64(common) / float64(len(a)+len(b)))
}

// jaccard returns |a∩b| / |a∪b| over the distinct elements of a and b.
func jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for k := range setA {
		if setB[k] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// stemAll lowercases and stems each word.
func stemAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, porter2.Stem(w))
	}
	return out
}

// nameSimilarity returns the Jaro-Winkler similarity of two identifiers,
// compared case-insensitively.
func nameSimilarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return clamp01(float64(score))
}

// conceptMatchFloor is the lowest Jaro-Winkler score that counts as a
// concept match. Short unrelated identifiers routinely score around 0.6.
const conceptMatchFloor = 0.85

// conceptSimilarity is the symmetric mean of best-match name similarity
// between two concept lists.
func conceptSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return (bestMatchMean(a, b) + bestMatchMean(b, a)) / 2
}

func bestMatchMean(from, to []string) float64 {
	var sum float64
	for _, x := range from {
		best := 0.0
		for _, y := range to {
			if s := nameSimilarity(x, y); s >= conceptMatchFloor && s > best {
				best = s
			}
		}
		sum += best
	}
	return sum / float64(len(from))
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		if it != "" {
			set[it] = true
		}
	}
	return set
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
