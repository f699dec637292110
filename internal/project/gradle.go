package project

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hargabyte/ctxpack/internal/facts"
)

// gradleDependency matches string-notation dependencies in Groovy and
// Kotlin DSL: implementation 'g:a:v' or testImplementation("g:a").
var gradleDependency = regexp.MustCompile(
	`^\s*(implementation|api|compileOnly|runtimeOnly|testImplementation|testCompileOnly|` +
		`testRuntimeOnly|annotationProcessor|compile|testCompile|runtime)\s*\(?\s*["']([^"':\s]+):([^"':\s]+)(?::([^"'\s]+))?["']`)

var (
	gradleVersion     = regexp.MustCompile(`^\s*version\s*=?\s*["']([^"']+)["']`)
	gradleRootProject = regexp.MustCompile(`^\s*rootProject\.name\s*=\s*["']([^"']+)["']`)
)

// loadGradle fills p from a Gradle build script. Map notation, version
// catalogs and project(...) dependencies are not resolved.
func loadGradle(root, buildFile string, p *facts.Project) error {
	p.BuildSystem = Gradle

	err := scanLines(filepath.Join(root, buildFile), func(line string) {
		if m := gradleDependency.FindStringSubmatch(line); m != nil {
			p.Dependencies = append(p.Dependencies, facts.Dependency{
				GroupID:    m[2],
				ArtifactID: m[3],
				Version:    m[4],
				Scope:      m[1],
			})
			return
		}
		if m := gradleVersion.FindStringSubmatch(line); m != nil && p.Version == "" {
			p.Version = m[1]
		}
	})
	if err != nil {
		return err
	}

	for _, settings := range []string{"settings.gradle", "settings.gradle.kts"} {
		path := filepath.Join(root, settings)
		if !exists(path) {
			continue
		}
		return scanLines(path, func(line string) {
			if m := gradleRootProject.FindStringSubmatch(line); m != nil {
				p.Name = m[1]
			}
		})
	}
	return nil
}

func scanLines(path string, fn func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
