package relevance

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCountRatio(t *testing.T) {
	tests := []struct {
		a, b int
		want float64
	}{
		{0, 0, 0},
		{0, 3, 0},
		{2, 4, 0.5},
		{4, 2, 0.5},
		{3, 3, 1},
		{-1, 2, 0},
	}
	for _, tt := range tests {
		if got := countRatio(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("countRatio(%d, %d) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNestingSimilarity(t *testing.T) {
	tests := []struct {
		a, b int
		want float64
	}{
		{0, 0, 0},
		{2, 2, 1},
		{1, 2, 0.5},
		{0, 4, 0},
	}
	for _, tt := range tests {
		if got := nestingSimilarity(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("nestingSimilarity(%d, %d) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHistogramCosine(t *testing.T) {
	if got := histogramCosine(nil, map[string]int{"if": 1}); got != 0 {
		t.Errorf("empty histogram: got %f, want 0", got)
	}
	if got := histogramCosine(map[string]int{"if": 1}, map[string]int{"for": 1}); got != 0 {
		t.Errorf("disjoint histograms: got %f, want 0", got)
	}
	got := histogramCosine(map[string]int{"if": 2, "for": 1}, map[string]int{"if": 4, "for": 2})
	if !approx(got, 1) {
		t.Errorf("proportional histograms: got %f, want 1", got)
	}
}

func TestBlockSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"empty", nil, []string{"if"}, 0},
		{"identical", []string{"if", "for"}, []string{"if", "for"}, 1},
		{"subsequence", []string{"if", "for", "try"}, []string{"if", "try"}, 0.8},
		{"reordered", []string{"if", "for"}, []string{"for", "if"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blockSimilarity(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("blockSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestJaccardAndStemming(t *testing.T) {
	if got := jaccard([]string{"a", "b"}, []string{"b", "c"}); !approx(got, 1.0/3) {
		t.Errorf("jaccard = %f, want 1/3", got)
	}
	if got := jaccard(nil, nil); got != 0 {
		t.Errorf("jaccard of empty sets = %f, want 0", got)
	}

	a := stemAll([]string{"Orders", "processing"})
	b := stemAll([]string{"order", "processed"})
	if got := jaccard(a, b); !approx(got, 1) {
		t.Errorf("stemmed vocabularies should match, got %f (%v vs %v)", got, a, b)
	}
}

func TestConceptSimilarity(t *testing.T) {
	if got := conceptSimilarity([]string{"Customer"}, []string{"customer"}); got != 1 {
		t.Errorf("case-insensitive match: got %f, want 1", got)
	}
	if got := conceptSimilarity([]string{"Invoice"}, []string{"Zebra"}); got != 0 {
		t.Errorf("unrelated concepts: got %f, want 0", got)
	}
	if got := conceptSimilarity(nil, []string{"Invoice"}); got != 0 {
		t.Errorf("missing concepts: got %f, want 0", got)
	}
}
