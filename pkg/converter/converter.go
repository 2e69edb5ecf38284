// Package converter turns one node of a Figma document into a JSX template and a nested
// SCSS stylesheet.
//
// A conversion indexes the whole document once (component instances point at definitions
// elsewhere in the file), walks the target subtree once to name classes, resolve styles and
// write markup, and finally renders the stylesheet from the classes in first-visit order.
// Converters hold no mutable state, so one Converter may serve concurrent conversions.
package converter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kataras/figma-jsx/pkg/figma"
	"github.com/kataras/figma-jsx/pkg/variables"
)

const (
	// DefaultLineWidth is the column budget shared by the markup and stylesheet emitters.
	DefaultLineWidth = 80
	// DefaultIndent is one nesting level.
	DefaultIndent = "  "
)

// Logger receives diagnostics. *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Options configures a Converter. The zero value is usable.
type Options struct {
	Variables     *variables.Map
	VariableStyle string        // VariableStyleSCSS (default) or VariableStyleCSS
	Suppressions  []Declaration // nil = DefaultSuppressions
	LineWidth     int
	Indent        string
	Logger        Logger // nil = silent
}

// Result is the output of one conversion.
type Result struct {
	Markup     string
	Stylesheet string
	RootClass  string
	Classes    []string // first-visit order
	Collisions []Collision
}

// Converter converts nodes with fixed options.
type Converter struct {
	resolver  *Resolver
	lineWidth int
	indent    string
	log       Logger
}

// New returns a Converter for opts.
func New(opts Options) *Converter {
	c := &Converter{
		resolver:  NewResolver(opts.Variables, opts.VariableStyle, opts.Suppressions),
		lineWidth: opts.LineWidth,
		indent:    opts.Indent,
		log:       opts.Logger,
	}
	if c.lineWidth <= 0 {
		c.lineWidth = DefaultLineWidth
	}
	if c.indent == "" {
		c.indent = DefaultIndent
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return c
}

// Convert is a shortcut for New(Options{Variables: vars}).Convert.
func Convert(document, target *figma.Node, rootClass string, vars *variables.Map) (*Result, error) {
	return New(Options{Variables: vars}).Convert(document, target, rootClass)
}

// Resolver exposes the style resolver used by the converter.
func (c *Converter) Resolver() *Resolver {
	return c.resolver
}

// frame is one work-list item: entering a node, or closing the container it opened.
type frame struct {
	node   *figma.Node
	parent *figma.Node
	depth  int
	exit   bool
}

// Convert renders target. document is the whole tree target belongs to and may be nil when
// target is self-contained. rootClass overrides the root's class name when not empty.
func (c *Converter) Convert(document, target *figma.Node, rootClass string) (*Result, error) {
	if target == nil {
		return nil, errors.New("converter: nil target node")
	}

	idx := BuildIndex(document, target)
	reg := NewRegistry()
	root := ClassName(target, true, rootClass)
	markup := &markupWriter{indent: c.indent, lineWidth: c.lineWidth}
	result := &Result{RootClass: root}

	c.log.Debugf("converting %q (%s) as .%s, %d nodes indexed", target.Name, target.ID, root, idx.Len())

	stack := []frame{{node: target}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.exit {
			markup.close(f.depth, "div")
			continue
		}

		node, isRoot := f.node, f.depth == 0
		if !isRoot && !node.IsVisible() {
			continue
		}

		class := ClassName(node, isRoot, root)
		entry, owner := reg.Claim(class, node)
		if !owner {
			result.Collisions = append(result.Collisions, Collision{Class: class, First: entry.Node.ID, Second: node.ID})
			c.log.Warnf("class %q of %q (%s) is already used by %q (%s); reusing it", class, node.Name, node.ID, entry.Node.Name, entry.Node.ID)
		}

		terminal := !isRoot && node.Type == figma.TypeInstance
		if owner && !entry.resolved {
			parentMode := ""
			if f.parent != nil {
				parentMode = f.parent.LayoutMode
			}
			entry.Declarations = c.resolver.resolve(node, parentMode, f.parent, terminal)
			entry.resolved = true
		}

		switch {
		case terminal:
			attrs := append([]string{classAttr(class)}, componentAttrs(node, idx)...)
			markup.tag(f.depth, componentName(node, idx), attrs, true)

		case !isRoot && node.Type == figma.TypeText && node.Characters != "":
			markup.text(f.depth, "span", class, node.Characters)

		case !isRoot && node.Type == figma.TypeImage:
			markup.tag(f.depth, "img", []string{classAttr(class), attrString("alt", nodeFragment(node))}, true)

		default:
			// The root is always a container, whatever its type.
			children := visibleChildren(node)
			if len(children) == 0 {
				if node.Type == figma.TypeText && node.Characters != "" {
					markup.text(f.depth, "div", class, node.Characters)
				} else {
					markup.tag(f.depth, "div", []string{classAttr(class)}, true)
				}
				continue
			}
			if owner {
				entry.Container = true
			}
			markup.tag(f.depth, "div", []string{classAttr(class)}, false)
			stack = append(stack, frame{depth: f.depth, exit: true})
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: children[i], parent: node, depth: f.depth + 1})
			}
		}
	}

	result.Markup = markup.String()
	result.Stylesheet = renderStylesheet(reg, root, c.indent, c.lineWidth)
	result.Classes = reg.Classes()
	return result, nil
}

func visibleChildren(node *figma.Node) []*figma.Node {
	out := make([]*figma.Node, 0, len(node.Children))
	for i := range node.Children {
		if node.Children[i].IsVisible() {
			out = append(out, &node.Children[i])
		}
	}
	return out
}

// componentName is the JSX element name for an instance: its own layer name, or the
// definition's name when the layer name has no usable characters.
func componentName(node *figma.Node, idx *Index) string {
	if len(words(node.Name)) > 0 {
		return PascalCase(node.Name)
	}
	if master, ok := idx.Master(node); ok {
		return PascalCase(idx.ComponentName(master))
	}
	return PascalCase(node.Name)
}
