package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hargabyte/ctxpack/internal/extract"
	"github.com/hargabyte/ctxpack/internal/facts"
	"github.com/hargabyte/ctxpack/internal/parser"
	"github.com/hargabyte/ctxpack/internal/project"
)

// Request names a span of a Java source file on disk.
type Request struct {
	File        string
	StartLine   int
	EndLine     int
	Instruction string

	// ProjectRoot overrides build file discovery when set.
	ProjectRoot string
}

// Facts parses the requested file and extracts the selection facts,
// including the project facts.
func (p *Pipeline) Facts(ctx context.Context, req Request) (*facts.Selection, error) {
	if req.File == "" {
		return nil, fmt.Errorf("%w: no file given", facts.ErrInvalidInput)
	}

	lang := parser.LanguageFromPath(req.File)
	if lang == "" {
		return nil, &parser.UnsupportedLanguageError{Language: filepath.Ext(req.File)}
	}
	ps, err := parser.NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer ps.Close()

	result, err := ps.ParseFile(ctx, req.File)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	if perr := result.FirstError(); perr != nil {
		p.logger.Warn("source has syntax errors, facts may be partial",
			zap.String("file", req.File),
			zap.Uint32("line", perr.Line),
			zap.Uint32("column", perr.Column))
	}

	sel, err := extract.JavaFacts(result, req.StartLine, req.EndLine)
	if err != nil {
		return nil, err
	}

	root := req.ProjectRoot
	if root == "" {
		if root, err = project.FindRoot(req.File); err != nil {
			return nil, err
		}
	}
	proj, err := project.Load(ctx, root, req.File)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", root, err)
	}
	sel.Project = proj

	p.logger.Debug("extracted facts",
		zap.String("file", req.File),
		zap.String("project", proj.Name),
		zap.String("build_system", proj.BuildSystem),
		zap.Bool("in_method", sel.Method != nil))
	return sel, nil
}

// RunFile extracts the facts for req and runs the pipeline on them.
func (p *Pipeline) RunFile(ctx context.Context, req Request) (*Result, error) {
	sel, err := p.Facts(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.Run(sel, req.Instruction)
}
