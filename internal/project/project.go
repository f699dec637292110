// Package project reads build metadata for the project containing a
// selection: Maven pom.xml or Gradle build scripts, resource config files,
// and the source files that sit next to the selected one.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// Build system names.
const (
	Maven   = "Maven"
	Gradle  = "Gradle"
	Unknown = "unknown"
)

// Language is the language recorded for every project.
const Language = "Java"

// resourceDir holds runtime configuration in the standard layout.
var resourceDir = filepath.Join("src", "main", "resources")

var buildFiles = []string{"pom.xml", "build.gradle", "build.gradle.kts"}

// FindRoot walks up from the directory of path looking for a build file.
// It returns the directory of path itself when none is found.
func FindRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	start := filepath.Dir(abs)

	dir := start
	for {
		for _, name := range buildFiles {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// Load reads the project facts rooted at root. selectedFile, when set, is
// the file holding the selection; its sibling source files become the
// project's related files.
func Load(ctx context.Context, root, selectedFile string) (*facts.Project, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: project root %s is not a directory", facts.ErrInvalidInput, root)
	}

	p := &facts.Project{
		Name:        filepath.Base(root),
		RootPath:    root,
		Language:    Language,
		BuildSystem: Unknown,
	}

	// Each task fills its own fields of p.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loadBuild(root, p)
	})
	g.Go(func() error {
		files, err := configFiles(gctx, root)
		p.ConfigFiles = files
		return err
	})
	if selectedFile != "" {
		g.Go(func() error {
			files, err := relatedFiles(root, selectedFile)
			p.RelatedFiles = files
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

// loadBuild reads the first build file found, Maven before Gradle.
func loadBuild(root string, p *facts.Project) error {
	switch {
	case exists(filepath.Join(root, "pom.xml")):
		return loadMaven(filepath.Join(root, "pom.xml"), p)
	case exists(filepath.Join(root, "build.gradle")):
		return loadGradle(root, "build.gradle", p)
	case exists(filepath.Join(root, "build.gradle.kts")):
		return loadGradle(root, "build.gradle.kts", p)
	}
	return nil
}

// configPattern matches application and bootstrap configuration at any
// depth under the resource directory.
const configPattern = "src/main/resources/**/{application,bootstrap}*.{yml,yaml,properties}"

// configFiles lists the configuration files under the resource directory,
// relative to root and in lexical order.
func configFiles(ctx context.Context, root string) ([]string, error) {
	if !exists(filepath.Join(root, resourceDir)) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := doublestar.Glob(os.DirFS(root), configPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", resourceDir, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Strings(files)
	return files, nil
}

// relatedFiles lists the other Java sources in the selected file's
// directory, relative to root.
func relatedFiles(root, selectedFile string) ([]string, error) {
	dir := filepath.Dir(selectedFile)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	self := filepath.Base(selectedFile)
	var files []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == self || filepath.Ext(e.Name()) != ".java" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
		files = append(files, filepath.ToSlash(path))
	}
	sort.Strings(files)
	return files, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
