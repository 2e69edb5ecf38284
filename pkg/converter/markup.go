package converter

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kataras/figma-jsx/pkg/figma"
)

// markupWriter accumulates JSX lines.
type markupWriter struct {
	sb        strings.Builder
	indent    string
	lineWidth int
}

func (w *markupWriter) line(depth int, s string) {
	w.sb.WriteString(strings.Repeat(w.indent, depth))
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

// tag writes an opening (or self-closing) tag, one attribute per line when the
// single-line form would exceed the line width.
func (w *markupWriter) tag(depth int, name string, attrs []string, selfClosing bool) {
	end := ">"
	if selfClosing {
		end = " />"
	}

	single := "<" + name
	for _, a := range attrs {
		single += " " + a
	}
	single += end

	if len(attrs) < 2 || utf8.RuneCountInString(strings.Repeat(w.indent, depth)+single) <= w.lineWidth {
		w.line(depth, single)
		return
	}

	w.line(depth, "<"+name)
	for _, a := range attrs {
		w.line(depth+1, a)
	}
	if selfClosing {
		w.line(depth, "/>")
	} else {
		w.line(depth, ">")
	}
}

func (w *markupWriter) close(depth int, name string) {
	w.line(depth, "</"+name+">")
}

// text writes a leaf element whose only child is characters.
func (w *markupWriter) text(depth int, name, class, characters string) {
	w.line(depth, "<"+name+` className="`+class+`">`+jsxText(characters)+"</"+name+">")
}

func (w *markupWriter) String() string {
	return w.sb.String()
}

func classAttr(class string) string {
	return `className="` + class + `"`
}

// jsxText returns characters as JSX children, falling back to a string expression when the
// text contains characters JSX would interpret or collapse.
func jsxText(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "{}<>&\n\r\t") || strings.TrimSpace(s) != s {
		return "{" + strconv.Quote(s) + "}"
	}
	return s
}

func attrString(name, value string) string {
	if strings.ContainsAny(value, "\"\\\n\r\t{}") {
		return name + "={" + strconv.Quote(value) + "}"
	}
	return name + `="` + value + `"`
}

// componentAttrs renders an instance's componentProperties as JSX props in document order.
func componentAttrs(node *figma.Node, idx *Index) []string {
	attrs := make([]string, 0, len(node.ComponentProperties))
	seen := make(map[string]bool, len(node.ComponentProperties))

	for _, prop := range node.ComponentProperties {
		name := propName(prop.Name)
		if name == "" || name == "className" || seen[name] {
			continue
		}

		value, ok := propValue(prop, idx)
		if !ok {
			continue
		}
		seen[name] = true
		attrs = append(attrs, value(name))
	}
	return attrs
}

func propValue(prop figma.ComponentProperty, idx *Index) (func(name string) string, bool) {
	switch v := prop.Value.(type) {
	case bool:
		return func(name string) string { return name + "={" + strconv.FormatBool(v) + "}" }, true
	case float64:
		if !finite(v) {
			return nil, false
		}
		return func(name string) string { return name + "={" + strconv.FormatFloat(v, 'f', -1, 64) + "}" }, true
	case string:
		if prop.Type == "INSTANCE_SWAP" {
			swapped, ok := idx.Node(v)
			if !ok {
				return nil, false
			}
			component := PascalCase(idx.ComponentName(swapped))
			return func(name string) string { return name + "={<" + component + " />}" }, true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return func(name string) string { return name + "={true}" }, true
		case "false":
			return func(name string) string { return name + "={false}" }, true
		}
		return func(name string) string { return attrString(name, v) }, true
	}
	return nil, false
}

// title upper-cases the first letter of w and keeps the rest. Casers carry state,
// so one is created per call.
func title(w string) string {
	return cases.Title(language.Und, cases.NoLower).String(w)
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// PascalCase turns a layer name into a JSX component name ("icon button" -> "IconButton").
// Names that would not start with a letter are prefixed with "Component".
func PascalCase(name string) string {
	var sb strings.Builder
	for _, w := range words(name) {
		sb.WriteString(title(w))
	}
	out := sb.String()
	if r, _ := utf8.DecodeRuneInString(out); !unicode.IsLetter(r) {
		out = "Component" + out
	}
	return out
}

// propName derives a camelCase prop name from a component property key, dropping the
// "#id" suffix Figma appends ("Show Icon#12:0" -> "showIcon").
func propName(key string) string {
	if i := strings.IndexByte(key, '#'); i >= 0 {
		key = key[:i]
	}
	ws := words(key)
	if len(ws) == 0 {
		return ""
	}

	var sb strings.Builder
	first := ws[0]
	if strings.ToUpper(first) == first {
		sb.WriteString(cases.Lower(language.Und).String(first))
	} else {
		r, size := utf8.DecodeRuneInString(first)
		sb.WriteRune(unicode.ToLower(r))
		sb.WriteString(first[size:])
	}
	for _, w := range ws[1:] {
		sb.WriteString(title(w))
	}

	out := sb.String()
	if r, _ := utf8.DecodeRuneInString(out); unicode.IsDigit(r) {
		out = "p" + out
	}
	return out
}
