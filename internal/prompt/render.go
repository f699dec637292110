package prompt

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hargabyte/ctxpack/internal/context"
	"github.com/hargabyte/ctxpack/internal/facts"
)

const indent = "    "

// fallbackWrapper opens the selection when it has no enclosing method.
const fallbackWrapper = "void selection() {"

var getterPattern = regexp.MustCompile(`^(get|is)([A-Z]\w*)$`)

// renderSelected wraps the selected lines in a minimal method.
func renderSelected(sel *context.SelectedLayer, method *context.MethodLayer) string {
	var sb strings.Builder
	if method != nil && method.Signature != "" {
		sb.WriteString(method.Signature + " {\n")
	} else {
		sb.WriteString(fallbackWrapper + "\n")
	}
	for _, line := range sel.Lines {
		sb.WriteString(indent + line + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// renderMethod writes the signature and up to limit body lines. The elision
// marker is added when lines were cut, either here or by the budget.
func renderMethod(m *context.MethodLayer, limit int) string {
	if m == nil || m.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.Signature + " {\n")

	n := min(len(m.Body), limit)
	for _, line := range m.Body[:n] {
		sb.WriteString(indent + line + "\n")
	}
	if len(m.Body) > n || m.Truncated {
		sb.WriteString(indent + elisionMarker + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// renderClass writes a class skeleton: fields, a constructor stub and
// accessor stubs for getter-like related methods.
func renderClass(c *context.ClassLayer) string {
	if c == nil || c.Name == "" {
		return ""
	}
	var sb strings.Builder

	sb.WriteString("public class " + c.Name)
	if c.SuperClass != "" {
		sb.WriteString(" extends " + c.SuperClass)
	}
	if len(c.Interfaces) > 0 {
		sb.WriteString(" implements " + strings.Join(c.Interfaces, ", "))
	}
	sb.WriteString(" {\n")

	for _, f := range c.Fields {
		sb.WriteString(indent + fieldDecl(f) + "\n")
	}

	var params, assigns []string
	for _, f := range c.Fields {
		if f.Static {
			continue
		}
		params = append(params, f.Type+" "+f.Name)
		assigns = append(assigns, "this."+f.Name+" = "+f.Name+";")
	}
	sb.WriteString("\n" + indent + "public " + c.Name + "(" + strings.Join(params, ", ") + ") {\n")
	for _, a := range assigns {
		sb.WriteString(indent + indent + a + "\n")
	}
	sb.WriteString(indent + "}\n")

	for _, cand := range c.Related {
		m := cand.Method
		field, ok := getterField(m)
		if !ok {
			continue
		}
		ret := m.ReturnType
		if ret == "" {
			ret = "Object"
		}
		sb.WriteString("\n" + indent + "public " + ret + " " + m.Name + "() {\n")
		sb.WriteString(indent + indent + "return " + field + ";\n")
		sb.WriteString(indent + "}\n")
	}

	sb.WriteString("}")
	return sb.String()
}

func fieldDecl(f facts.Field) string {
	parts := make([]string, 0, 5)
	vis := f.Visibility
	if vis == "" {
		vis = "private"
	}
	if vis != "package" {
		parts = append(parts, vis)
	}
	if f.Static {
		parts = append(parts, "static")
	}
	if f.Final {
		parts = append(parts, "final")
	}
	parts = append(parts, f.Type, f.Name)
	return strings.Join(parts, " ") + ";"
}

// getterField returns the field a getter-like method reads: getName and
// isName both read name.
func getterField(m *facts.Method) (string, bool) {
	if m == nil || len(m.Parameters) > 0 {
		return "", false
	}
	match := getterPattern.FindStringSubmatch(m.Name)
	if match == nil {
		return "", false
	}
	return decapitalize(match[2]), true
}

func decapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// renderFile writes the package clause, imports and a class skeleton comment.
func renderFile(f *context.FileLayer) string {
	if f == nil || (f.Name == "" && f.Package == "" && len(f.Imports) == 0) {
		return ""
	}
	var sb strings.Builder
	if f.Package != "" {
		sb.WriteString("package " + f.Package + ";\n\n")
	}
	for _, imp := range f.Imports {
		if imp.Static {
			sb.WriteString("import static " + imp.Path + ";\n")
		} else {
			sb.WriteString("import " + imp.Path + ";\n")
		}
	}

	name := strings.TrimSuffix(f.Name, path.Ext(f.Name))
	if name == "" {
		name = "Unknown"
	}
	sb.WriteString("\n/**\n")
	sb.WriteString(" * Skeleton of " + name + "\n")
	sb.WriteString(" */\n")
	sb.WriteString("public class " + name + " {\n")
	sb.WriteString(indent + "// ... class body\n")
	sb.WriteString("}")
	return sb.String()
}

// renderProject writes the project summary and one line per dependency.
func renderProject(p *context.ProjectLayer) string {
	if p == nil || (p.Name == "" && p.Language == "" && p.BuildSystem == "") {
		return ""
	}
	var sb strings.Builder
	summary := strings.TrimSpace(p.Language + " " + p.BuildSystem)
	sb.WriteString("- Project type: " + summary + " project\n")
	if p.Name != "" {
		sb.WriteString("- Project name: " + p.Name + "\n")
	}
	if len(p.Dependencies) > 0 {
		sb.WriteString("- Dependencies:\n")
		for _, d := range p.Dependencies {
			sb.WriteString("  - " + d.Coordinates() + "\n")
		}
	}
	if len(p.ConfigFiles) > 0 {
		sb.WriteString("- Config files: " + strings.Join(p.ConfigFiles, ", ") + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
