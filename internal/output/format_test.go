package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/pipeline"
)

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		format Format
		check  func(Formatter) bool
	}{
		{FormatText, func(f Formatter) bool { _, ok := f.(*TextFormatter); return ok }},
		{FormatYAML, func(f Formatter) bool { _, ok := f.(*YAMLFormatter); return ok }},
		{FormatJSON, func(f Formatter) bool { _, ok := f.(*JSONFormatter); return ok }},
	}
	for _, tt := range tests {
		f, err := GetFormatter(tt.format)
		if err != nil {
			t.Fatalf("GetFormatter(%s) failed: %v", tt.format, err)
		}
		if !tt.check(f) {
			t.Errorf("GetFormatter(%s): unexpected %T", tt.format, f)
		}
	}

	if _, err := GetFormatter(Format("cgf")); err == nil {
		t.Error("GetFormatter should return error for invalid format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"text", FormatText, false},
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"json", FormatJSON, false},
		{"  json  ", FormatJSON, false},
		{"cgf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDensity(t *testing.T) {
	tests := []struct {
		input    string
		expected Density
		wantErr  bool
	}{
		{"sparse", DensitySparse, false},
		{"Medium", DensityMedium, false},
		{"dense", DensityDense, false},
		{"smart", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDensity(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDensity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDensity(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()
	load := &facts.Method{Name: "load", Signature: "Item load(int id)"}
	save := &facts.Method{
		Name:      "save",
		Signature: "void save(int id)",
		Body:      []string{"Item item = load(id);", "store(item);"},
		Calls:     []facts.CallSite{{Name: "load", Args: []string{"id"}}, {Name: "store"}},
	}
	sel := &facts.Selection{
		FilePath:    "src/Repo.java",
		StartLine:   4,
		EndLine:     4,
		Lines:       []string{"Item item = load(id);"},
		Identifiers: []string{"item", "load", "id"},
		Calls:       []facts.CallSite{{Name: "load", Args: []string{"id"}}},
		Method:      save,
		Class:       &facts.Class{Name: "Repo", Methods: []*facts.Method{load, save}},
	}

	res, err := pipeline.New(nil, nil).Run(sel, "fix this bug")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestNewResultOutputDensity(t *testing.T) {
	res := testResult(t)

	sparse := NewResultOutput(res, DensitySparse)
	var kinds []string
	for _, l := range sparse.Layers {
		kinds = append(kinds, l.Kind)
		if l.Content != nil {
			t.Errorf("sparse output should omit %s content", l.Kind)
		}
	}
	if diff := cmp.Diff([]string{"SELECTED", "METHOD", "CLASS", "FILE", "PROJECT"}, kinds); diff != "" {
		t.Errorf("layer order mismatch (-want +got):\n%s", diff)
	}
	if sparse.Prompt != nil || sparse.Related != nil {
		t.Error("sparse output should omit prompt and related methods")
	}

	medium := NewResultOutput(res, DensityMedium)
	if medium.Prompt == nil || medium.Prompt.User != res.Prompt.User {
		t.Error("medium output should carry the prompt")
	}
	if len(medium.Related) != 1 || medium.Related[0].Name != "load" || medium.Related[0].Signals != nil {
		t.Errorf("medium related: got %+v", medium.Related)
	}

	dense := NewResultOutput(res, DensityDense)
	if dense.Related[0].Signals == nil || !dense.Related[0].Signals.DirectCall {
		t.Error("dense output should carry relevance signals")
	}
	if dense.Layers[0].Content == nil {
		t.Error("dense output should carry layer contents")
	}
	if dense.ModelTokens <= 0 || medium.ModelTokens != 0 {
		t.Errorf("model tokens: dense %d, medium %d", dense.ModelTokens, medium.ModelTokens)
	}
}

func TestFormatters(t *testing.T) {
	out := NewResultOutput(testResult(t), DensityMedium)

	t.Run("text prints the document", func(t *testing.T) {
		got, err := NewTextFormatter().Format(out)
		if err != nil {
			t.Fatal(err)
		}
		if got != out.Document+"\n" {
			t.Errorf("text output should be the prompt document")
		}
		if !strings.HasPrefix(got, "<system>") {
			t.Errorf("unexpected text output start: %q", got[:min(len(got), 20)])
		}
	})

	t.Run("text falls back to yaml", func(t *testing.T) {
		got, err := NewTextFormatter().Format(map[string]int{"a": 1})
		if err != nil {
			t.Fatal(err)
		}
		if got != "a: 1\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		got, err := NewYAMLFormatter().Format(out)
		if err != nil {
			t.Fatal(err)
		}
		var decoded map[string]interface{}
		if err := yaml.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("invalid yaml: %v", err)
		}
		if decoded["focus"] != "bug" {
			t.Errorf("focus: got %v", decoded["focus"])
		}
		if _, ok := decoded["Document"]; ok {
			t.Error("document should not be serialized")
		}
	})

	t.Run("json", func(t *testing.T) {
		got, err := NewJSONFormatter().Format(out)
		if err != nil {
			t.Fatal(err)
		}
		var decoded struct {
			Selection SelectionOutput `json:"selection"`
			Layers    []LayerOutput   `json:"layers"`
		}
		if err := json.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if decoded.Selection.File != "src/Repo.java" || len(decoded.Layers) != 5 {
			t.Errorf("got %+v", decoded)
		}
	})
}
