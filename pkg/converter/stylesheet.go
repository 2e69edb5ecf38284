package converter

import (
	"strings"
	"unicode/utf8"

	"github.com/kataras/figma-jsx/pkg/figma"
)

type stylesheetWriter struct {
	sb        strings.Builder
	indent    string
	lineWidth int
}

// renderStylesheet nests every registered class inside the root rule, in first-visit order.
func renderStylesheet(reg *Registry, rootClass, indent string, lineWidth int) string {
	w := &stylesheetWriter{indent: indent, lineWidth: lineWidth}

	var root *Entry
	nested := make([]*Entry, 0, reg.Len())
	for _, e := range reg.Entries() {
		if e.Class == rootClass && root == nil {
			root = e
			continue
		}
		nested = append(nested, e)
	}
	if root == nil {
		return ""
	}

	w.rule(0, "."+rootClass, ruleDeclarations(root), func() {
		for _, e := range nested {
			w.rule(1, nestedSelector(e.Class, rootClass), ruleDeclarations(e), nil, false)
		}
	}, len(nested) > 0)

	return w.sb.String()
}

// nestedSelector renders rootClass_suffix as &_suffix and anything else as a plain class.
func nestedSelector(class, rootClass string) string {
	if suffix, ok := strings.CutPrefix(class, rootClass+"_"); ok && suffix != "" {
		return "&_" + suffix
	}
	return "." + class
}

// ruleDeclarations prepends position: relative to containers whose children are
// positioned against them.
func ruleDeclarations(e *Entry) []Declaration {
	if !e.Container || !hasPositionedChild(e.Node) {
		return e.Declarations
	}
	for _, d := range e.Declarations {
		if d.Property == "position" {
			return e.Declarations
		}
	}
	return append([]Declaration{{"position", "relative"}}, e.Declarations...)
}

func hasPositionedChild(node *figma.Node) bool {
	for i := range node.Children {
		c := &node.Children[i]
		if c.IsVisible() && (c.IsFixed || c.LayoutPositioning == "ABSOLUTE") {
			return true
		}
	}
	return false
}

// rule writes "selector { decl; decl;" wrapping declarations at the line width, the first
// declaration always on the opening line, then nested rules and the closing brace.
func (w *stylesheetWriter) rule(depth int, selector string, decls []Declaration, body func(), hasBody bool) {
	pad := strings.Repeat(w.indent, depth)
	cont := strings.Repeat(w.indent, depth+1)

	line := pad + selector + " {"
	if len(decls) == 0 && !hasBody {
		w.writeLine(line + "}")
		return
	}

	for i, d := range decls {
		s := d.String()
		if i == 0 || utf8.RuneCountInString(line)+1+utf8.RuneCountInString(s) <= w.lineWidth {
			line += " " + s
			continue
		}
		w.writeLine(line)
		line = cont + s
	}

	if !hasBody {
		if utf8.RuneCountInString(line)+2 <= w.lineWidth {
			w.writeLine(line + " }")
			return
		}
		w.writeLine(line)
		w.writeLine(pad + "}")
		return
	}

	w.writeLine(line)
	body()
	w.writeLine(pad + "}")
}

func (w *stylesheetWriter) writeLine(s string) {
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}
