// Package prompt renders a context package into a system/user prompt pair
// and reports the realized token usage of the rendered text.
package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/hargabyte/ctxpack/internal/context"
)

// DefaultMethodBodyLineLimit is the number of method body lines rendered
// before the elision marker.
const DefaultMethodBodyLineLimit = 20

// DefaultLanguage tags fenced code blocks when the project has no language.
const DefaultLanguage = "java"

// Options configures rendering.
type Options struct {
	MethodBodyLineLimit int
	Language            string
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		MethodBodyLineLimit: DefaultMethodBodyLineLimit,
		Language:            DefaultLanguage,
	}
}

// Usage is the token usage of a rendered prompt.
type Usage struct {
	SystemTokens int `yaml:"system_tokens" json:"system_tokens"`
	UserTokens   int `yaml:"user_tokens" json:"user_tokens"`
	TotalTokens  int `yaml:"total_tokens" json:"total_tokens"`
}

// Prompt is a rendered prompt pair.
type Prompt struct {
	Focus    Focus  `yaml:"focus" json:"focus"`
	System   string `yaml:"system" json:"system"`
	User     string `yaml:"user" json:"user"`
	Document string `yaml:"document" json:"document"`
	Usage    Usage  `yaml:"usage" json:"usage"`
}

// Builder renders packages into prompts.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder. Zero option values fall back to defaults.
func NewBuilder(opts Options) *Builder {
	if opts.MethodBodyLineLimit <= 0 {
		opts.MethodBodyLineLimit = DefaultMethodBodyLineLimit
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return &Builder{opts: opts}
}

// Build renders pkg. The instruction only selects the system prompt focus.
func (b *Builder) Build(pkg *context.Package, instruction string) *Prompt {
	focus := DetectFocus(instruction)
	system := SystemPrompt(focus)
	user := b.userPrompt(pkg)
	doc := Combine(system, user)

	return &Prompt{
		Focus:    focus,
		System:   system,
		User:     user,
		Document: doc,
		Usage:    MeasureUsage(doc),
	}
}

func (b *Builder) userPrompt(pkg *context.Package) string {
	lang := b.opts.Language
	if pkg.Project != nil && pkg.Project.Language != "" {
		lang = strings.ToLower(pkg.Project.Language)
	}
	fence := func(body string) string {
		return "```" + lang + "\n" + body + "\n```"
	}

	sections := []string{
		userOpening,
		headingSelected + "\n" + fence(renderSelected(pkg.Selected, pkg.Method)),
		headingMethod + "\n" + fence(renderMethod(pkg.Method, b.opts.MethodBodyLineLimit)),
		headingClass + "\n" + fence(renderClass(pkg.Class)),
		headingFile + "\n" + fence(renderFile(pkg.File)),
		headingProject + "\n" + renderProject(pkg.Project),
		userClosing,
	}
	return strings.Join(sections, "\n\n")
}

// Combine joins the system and user prompts into the tagged document.
func Combine(system, user string) string {
	return systemOpen + "\n" + system + "\n" + systemClose + "\n\n" +
		userOpen + "\n" + user + "\n" + userClose
}

// CountTokens estimates the tokens of rendered text as characters / 4. It
// is independent of the structural estimates used for budgeting.
func CountTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// MeasureUsage splits a combined document at its section markers and counts
// each section. The system section runs from the start of the document to
// the closing system tag, the user section from the opening user tag to the
// closing user tag. A missing marker yields zero for its section.
func MeasureUsage(doc string) Usage {
	var u Usage
	if end := strings.Index(doc, systemClose); end >= 0 {
		u.SystemTokens = CountTokens(doc[:end])
	}
	start := strings.Index(doc, userOpen)
	end := strings.LastIndex(doc, userClose)
	if start >= 0 && end > start {
		u.UserTokens = CountTokens(doc[start:end])
	}
	u.TotalTokens = u.SystemTokens + u.UserTokens
	return u
}
