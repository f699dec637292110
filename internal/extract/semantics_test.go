package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hargabyte/ctxpack/internal/facts"
)

const algorithmsSource = `package com.example.algo;

import java.util.List;

public class Algorithms {
    public void bubble(int[] a) {
        for (int i = 0; i < a.length; i++) {
            for (int j = 0; j < a.length - 1; j++) {
                if (a[j] > a[j + 1]) {
                    int t = a[j];
                    a[j] = a[j + 1];
                    a[j + 1] = t;
                }
            }
        }
    }

    public int sum(List<Integer> xs) {
        int total = 0;
        for (int x : xs) {
            total += x;
        }
        return total;
    }

    public int find(int[] a, int k) {
        for (int i = 0; i < a.length; i++) {
            if (a[i] == k) {
                return i;
            }
        }
        return -1;
    }

    public int fact(int n) {
        if (n <= 1) {
            return 1;
        }
        return n * fact(n - 1);
    }

    public void guarded(Runnable r) {
        try {
            r.run();
        } catch (IllegalStateException e) {
            throw new AuditFailure(e);
        } finally {
            done();
        }
    }
}
`

func algorithmMethods(t *testing.T) map[string]*facts.Method {
	t.Helper()
	result := parseJavaCode(t, algorithmsSource)
	t.Cleanup(result.Close)

	sel, err := JavaFacts(result, 7, 7)
	if err != nil {
		t.Fatalf("JavaFacts: %v", err)
	}
	byName := make(map[string]*facts.Method, len(sel.Class.Methods))
	for _, m := range sel.Class.Methods {
		byName[m.Name] = m
	}
	return byName
}

func TestAlgorithmPatterns(t *testing.T) {
	methods := algorithmMethods(t)

	tests := []struct {
		method string
		want   []string
	}{
		{"bubble", []string{AlgoIteration, AlgoNestedIteration, AlgoSwap, AlgoSort}},
		{"sum", []string{AlgoIteration, AlgoAccumulation}},
		{"find", []string{AlgoIteration, AlgoSearch}},
		{"fact", []string{AlgoRecursion}},
		{"guarded", nil},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m, ok := methods[tt.method]
			if !ok {
				t.Fatalf("method %s not extracted", tt.method)
			}
			if diff := cmp.Diff(tt.want, m.Semantics.Algorithms); diff != "" {
				t.Errorf("algorithms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMethodPatterns(t *testing.T) {
	methods := algorithmMethods(t)

	bubble := methods["bubble"].Pattern
	if bubble.Loops != 2 || bubble.Conditions != 1 {
		t.Errorf("bubble: got %d loops and %d conditions, want 2 and 1", bubble.Loops, bubble.Conditions)
	}
	if bubble.MaxNesting != 3 {
		t.Errorf("bubble: max nesting %d, want 3", bubble.MaxNesting)
	}
	if diff := cmp.Diff([]string{"for", "for", "if"}, bubble.Blocks); diff != "" {
		t.Errorf("bubble blocks mismatch (-want +got):\n%s", diff)
	}

	guarded := methods["guarded"].Pattern
	if guarded.TryBlocks != 1 || guarded.CatchClauses != 1 || guarded.Throws != 1 {
		t.Errorf("guarded: got try=%d catch=%d throw=%d, want 1 each",
			guarded.TryBlocks, guarded.CatchClauses, guarded.Throws)
	}
	if diff := cmp.Diff([]string{"try", "catch", "finally"}, guarded.Blocks); diff != "" {
		t.Errorf("guarded blocks mismatch (-want +got):\n%s", diff)
	}
	if guarded.MaxNesting != 1 {
		t.Errorf("guarded: max nesting %d, want 1", guarded.MaxNesting)
	}
	if diff := cmp.Diff([]string{"AuditFailure"}, methods["guarded"].Semantics.Concepts); diff != "" {
		t.Errorf("guarded concepts mismatch (-want +got):\n%s", diff)
	}

	fact := methods["fact"].Semantics.Operations
	if fact["comparison"] != 1 || fact["arithmetic"] != 2 || fact["return"] != 2 {
		t.Errorf("fact operations: got %v", fact)
	}
}

func TestSplitIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"loadOrder", []string{"load", "order"}},
		{"OrderService", []string{"order", "service"}},
		{"parseHTTPResponse", []string{"parse", "http", "response"}},
		{"MAX_RETRY_COUNT", []string{"max", "retry", "count"}},
		{"i", nil},
		{"x2y", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitIdentifier(tt.in)); diff != "" {
			t.Errorf("splitIdentifier(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDedent(t *testing.T) {
	in := []string{"        if (x) {", "            y();  ", "", "        }"}
	want := []string{"if (x) {", "    y();", "", "}"}
	if diff := cmp.Diff(want, dedent(in)); diff != "" {
		t.Errorf("dedent mismatch (-want +got):\n%s", diff)
	}
}
