package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/ctxpack/internal/config"
	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/prompt"
)

func orderSelection(bodyLines int) *facts.Selection {
	load := &facts.Method{Name: "loadOrder", Signature: "Order loadOrder(long id)", ReturnType: "Order"}
	getTotal := &facts.Method{
		Name: "getTotal", Signature: "public BigDecimal getTotal()", ReturnType: "BigDecimal",
		FieldAccess: []string{"total"},
	}
	body := make([]string, 0, bodyLines)
	for i := 0; i < bodyLines; i++ {
		body = append(body, fmt.Sprintf("audit(%d);", i))
	}
	submit := &facts.Method{
		Name:      "submit",
		Signature: "public void submit(long id)",
		Body:      body,
		Calls:     []facts.CallSite{{Name: "loadOrder", Args: []string{"id"}}},
	}
	class := &facts.Class{
		Name:    "OrderService",
		Package: "com.shop",
		Fields:  []facts.Field{{Name: "total", Type: "BigDecimal"}},
		Methods: []*facts.Method{load, getTotal, submit},
	}
	return &facts.Selection{
		FilePath:    "src/main/java/com/shop/OrderService.java",
		StartLine:   30,
		EndLine:     31,
		Lines:       []string{"Order order = loadOrder(id);", "total = total.add(order.amount());"},
		Identifiers: []string{"order", "loadOrder", "id", "total", "amount"},
		Calls:       []facts.CallSite{{Name: "loadOrder", Args: []string{"id"}}, {Name: "add"}, {Name: "amount"}},
		Locals:      []facts.Variable{{Name: "order", Type: "Order"}},
		Method:      submit,
		Class:       class,
		File: &facts.File{
			Path: "src/main/java/com/shop/OrderService.java", Name: "OrderService.java", Package: "com.shop",
			Imports: []facts.Import{{Path: "java.math.BigDecimal"}},
		},
		Project: &facts.Project{
			Name: "shop", Language: "Java", BuildSystem: "Maven",
			Dependencies: []facts.Dependency{{GroupID: "org.slf4j", ArtifactID: "slf4j-api", Version: "2.0.9"}},
		},
	}
}

func TestRun(t *testing.T) {
	p := New(config.DefaultConfig(), nil)

	res, err := p.Run(orderSelection(30), "please optimize")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Package.ExceedsLimit {
		t.Error("small request should fit the budget")
	}
	if res.Prompt.Focus != prompt.FocusOptimize {
		t.Errorf("focus: got %s, want optimize", res.Prompt.Focus)
	}

	var related []string
	for _, c := range res.Package.Class.Related {
		related = append(related, c.Method.Name)
	}
	if diff := cmp.Diff([]string{"loadOrder", "getTotal"}, related); diff != "" {
		t.Errorf("related methods mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(res.Prompt.User, "public BigDecimal getTotal() {\n        return total;\n    }") {
		t.Errorf("expected getter stub in class context:\n%s", res.Prompt.User)
	}
	if !strings.Contains(res.Prompt.User, "  - org.slf4j:slf4j-api:2.0.9") {
		t.Error("expected dependency line in project context")
	}
	if res.Prompt.Usage != prompt.MeasureUsage(res.Prompt.Document) {
		t.Error("usage must be measured on the rendered document")
	}
}

func TestRunTruncatesAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.DefaultConfig()
	cfg.Budget.MaxTokens = 100

	res, err := New(cfg, zap.New(core)).Run(orderSelection(30), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// SELECTED 20, METHOD 240 -> 80 within the remaining 80.
	if !res.Package.ExceedsLimit {
		t.Error("expected ExceedsLimit")
	}
	if !res.Package.Method.Truncated || len(res.Package.Method.Body) != 10 {
		t.Errorf("METHOD: truncated=%v with %d lines, want truncated with 10",
			res.Package.Method.Truncated, len(res.Package.Method.Body))
	}
	if !strings.Contains(res.Prompt.User, "    audit(9);\n    // ... remaining code\n}") {
		t.Errorf("expected elided method body:\n%s", res.Prompt.User)
	}

	if logs.FilterMessage("truncated layer").Len() == 0 {
		t.Error("expected a debug log entry for each truncated layer")
	}
}

func TestRunInvalidInput(t *testing.T) {
	p := New(nil, nil)

	sel := orderSelection(1)
	sel.StartLine = 40

	if _, err := p.Run(sel, ""); !errors.Is(err, facts.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New(config.DefaultConfig(), nil)
	want, err := p.Run(orderSelection(50), "refactor")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var g errgroup.Group
	results := make([]*Result, 8)
	for i := range results {
		g.Go(func() error {
			res, err := p.Run(orderSelection(50), "refactor")
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, res := range results {
		if res.Prompt.Document != want.Prompt.Document {
			t.Errorf("result %d differs from the sequential run", i)
		}
	}
}
