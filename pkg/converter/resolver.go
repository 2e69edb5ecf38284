package converter

import (
	"strconv"
	"strings"

	"github.com/kataras/figma-jsx/pkg/figma"
	"github.com/kataras/figma-jsx/pkg/variables"
)

// Declaration is one "property: value" pair of a rule.
type Declaration struct {
	Property string
	Value    string
}

func (d Declaration) String() string {
	return d.Property + ": " + d.Value + ";"
}

// DefaultSuppressions lists values assumed to be inherited from the base stylesheet;
// declarations equal to one of them are dropped.
var DefaultSuppressions = []Declaration{
	{"color", "#333333"},
	{"font-family", `"Inter"`},
	{"font-size", "16px"},
	{"font-weight", "400"},
	{"letter-spacing", "0px"},
}

// Variable reference styles.
const (
	VariableStyleSCSS = "scss" // $name
	VariableStyleCSS  = "css"  // var(--name)
)

// Resolver maps a node's design attributes onto an ordered list of declarations.
// It never fails: missing or malformed data only omits declarations.
type Resolver struct {
	vars          *variables.Map
	variableStyle string
	suppress      map[Declaration]bool
}

// NewResolver returns a resolver. A nil suppressions slice uses DefaultSuppressions;
// an empty non-nil slice disables suppression.
func NewResolver(vars *variables.Map, variableStyle string, suppressions []Declaration) *Resolver {
	if suppressions == nil {
		suppressions = DefaultSuppressions
	}
	suppress := make(map[Declaration]bool, len(suppressions))
	for _, d := range suppressions {
		suppress[d] = true
	}
	return &Resolver{vars: vars, variableStyle: variableStyle, suppress: suppress}
}

type declarations []Declaration

func (d *declarations) add(property, value string) {
	*d = append(*d, Declaration{Property: property, Value: value})
}

// Resolve returns the declarations for node given its parent's layout mode and the parent
// node (nil for the conversion root). Instances only get positioning and sizing.
func (r *Resolver) Resolve(node *figma.Node, parentLayoutMode string, parent *figma.Node) []Declaration {
	return r.resolve(node, parentLayoutMode, parent, node.Type == figma.TypeInstance)
}

func (r *Resolver) resolve(node *figma.Node, parentLayoutMode string, parent *figma.Node, terminal bool) []Declaration {
	var d declarations

	r.positioning(node, parent, &d)
	if !terminal {
		r.autoLayout(node, &d)
	}
	r.sizing(node, parentLayoutMode, &d)

	if !terminal {
		r.aspectRatio(node, &d)
		r.overflow(node, &d)
		if node.Type == figma.TypeText {
			r.text(node, &d)
		} else {
			r.background(node, &d)
			r.border(node, &d)
			if radius := float64(node.CornerRadius); radius > 0 && node.CornerRadius.Valid() {
				d.add("border-radius", px(radius))
			}
			r.shadows(node, &d)
		}
		if o, ok := numeric(node.Opacity); ok && o < 1 && o >= 0 {
			d.add("opacity", strconv.FormatFloat(o, 'f', 2, 64))
		}
	}

	out := d[:0]
	for _, decl := range d {
		if !r.suppress[decl] {
			out = append(out, decl)
		}
	}
	return out
}

// positioning handles fixed/absolute nodes and their offsets from the parent's box.
func (r *Resolver) positioning(node, parent *figma.Node, d *declarations) {
	switch {
	case node.IsFixed:
		d.add("position", "fixed")
	case node.LayoutPositioning == "ABSOLUTE":
		d.add("position", "absolute")
	default:
		return
	}

	if parent == nil || node.AbsoluteBoundingBox == nil || parent.AbsoluteBoundingBox == nil {
		return
	}
	nb, pb := node.AbsoluteBoundingBox, parent.AbsoluteBoundingBox

	var horizontal, vertical string
	if node.Constraints != nil {
		horizontal, vertical = node.Constraints.Horizontal, node.Constraints.Vertical
	}

	switch horizontal {
	case "RIGHT":
		d.add("right", px(pb.X+pb.Width-(nb.X+nb.Width)))
	case "CENTER":
		d.add("left", px((pb.Width-nb.Width)/2))
	default: // LEFT, SCALE, LEFT_RIGHT
		d.add("left", px(nb.X-pb.X))
	}

	switch vertical {
	case "BOTTOM":
		d.add("bottom", px(pb.Y+pb.Height-(nb.Y+nb.Height)))
	case "CENTER":
		d.add("top", px((pb.Height-nb.Height)/2))
	default: // TOP, SCALE, TOP_BOTTOM
		d.add("top", px(nb.Y-pb.Y))
	}
}

var (
	justifyContent = map[string]string{
		"MIN":           "flex-start",
		"CENTER":        "center",
		"MAX":           "flex-end",
		"SPACE_BETWEEN": "space-between",
	}
	alignItems = map[string]string{
		"MIN":           "flex-start",
		"CENTER":        "center",
		"MAX":           "flex-end",
		"BASELINE":      "baseline",
		"SPACE_BETWEEN": "space-between",
	}
)

func isAutoLayout(mode string) bool {
	return mode == "HORIZONTAL" || mode == "VERTICAL"
}

func (r *Resolver) autoLayout(node *figma.Node, d *declarations) {
	if !isAutoLayout(node.LayoutMode) {
		return
	}

	d.add("display", "flex")
	if node.LayoutMode == "VERTICAL" {
		d.add("flex-direction", "column")
	}

	top, okT := numeric(node.PaddingTop)
	right, okR := numeric(node.PaddingRight)
	bottom, okB := numeric(node.PaddingBottom)
	left, okL := numeric(node.PaddingLeft)
	if okT && okR && okB && okL {
		d.add("padding", px(top)+" "+px(right)+" "+px(bottom)+" "+px(left))
	}

	if gap, ok := numeric(node.ItemSpacing); ok {
		d.add("gap", px(gap))
	}
	if node.LayoutWrap == "WRAP" {
		d.add("flex-wrap", "wrap")
	}
	if v, ok := justifyContent[node.PrimaryAxisAlignItems]; ok {
		d.add("justify-content", v)
	}
	if v, ok := alignItems[node.CounterAxisAlignItems]; ok {
		d.add("align-items", v)
	}
}

// sizing maps layoutSizing onto explicit dimensions or flex participation in the parent.
func (r *Resolver) sizing(node *figma.Node, parentLayoutMode string, d *declarations) {
	box := node.AbsoluteBoundingBox

	fixed := func(property string, size func(*figma.Rectangle) float64) {
		if box != nil && finite(size(box)) {
			d.add(property, px(size(box)))
		}
	}
	width := func(b *figma.Rectangle) float64 { return b.Width }
	height := func(b *figma.Rectangle) float64 { return b.Height }

	if !isAutoLayout(parentLayoutMode) {
		if node.LayoutSizingHorizontal == "FIXED" {
			fixed("width", width)
		}
		if node.LayoutSizingVertical == "FIXED" {
			fixed("height", height)
		}
		return
	}

	horizontalMain := parentLayoutMode == "HORIZONTAL"
	fill := func(mainAxis bool) {
		if mainAxis {
			d.add("flex-grow", "1")
			d.add("flex-shrink", "1")
		} else {
			d.add("align-self", "stretch")
		}
	}

	switch node.LayoutSizingHorizontal {
	case "FIXED":
		fixed("width", width)
	case "FILL":
		fill(horizontalMain)
	}
	switch node.LayoutSizingVertical {
	case "FIXED":
		fixed("height", height)
	case "FILL":
		fill(!horizontalMain)
	}
}

func (r *Resolver) aspectRatio(node *figma.Node, d *declarations) {
	if t := node.TargetAspectRatio; t != nil && t.X > 0 && t.Y > 0 && finite(t.X) && finite(t.Y) {
		d.add("aspect-ratio", formatNumber(t.X)+" / "+formatNumber(t.Y))
		return
	}
	if b := node.AbsoluteBoundingBox; node.PreserveRatio && b != nil && b.Width > 0 && b.Height > 0 {
		d.add("aspect-ratio", formatNumber(b.Width)+" / "+formatNumber(b.Height))
	}
}

func (r *Resolver) overflow(node *figma.Node, d *declarations) {
	switch {
	case node.OverflowDirection != "" && node.OverflowDirection != "NONE":
		d.add("overflow", "scroll")
	case node.ClipsContent:
		d.add("overflow", "hidden")
	}
}

var textAlign = map[string]string{
	"LEFT":      "left",
	"RIGHT":     "right",
	"CENTER":    "center",
	"JUSTIFIED": "justify",
	"JUSTIFY":   "justify",
}

func (r *Resolver) text(node *figma.Node, d *declarations) {
	if c, ok := r.textColor(node); ok {
		d.add("color", c)
	}

	style := node.Style
	if style == nil {
		style = &figma.TypeStyle{}
	}

	if v, ok := r.bound(node.BoundVariables, "fontFamily"); ok {
		d.add("font-family", v)
	} else if style.FontFamily != "" {
		d.add("font-family", strconv.Quote(style.FontFamily))
	}

	if v, ok := r.bound(node.BoundVariables, "fontSize"); ok {
		d.add("font-size", v)
	} else if size, ok := numeric(style.FontSize); ok {
		d.add("font-size", px(size))
	}

	if v, ok := r.bound(node.BoundVariables, "fontWeight"); ok {
		d.add("font-weight", v)
	} else if w, ok := fontWeight(style); ok {
		d.add("font-weight", w)
	}

	if strings.Contains(strings.ToLower(style.FontStyle), "italic") {
		d.add("font-style", "italic")
	}

	if v, ok := r.bound(node.BoundVariables, "lineHeight"); ok {
		d.add("line-height", v)
	} else if lh, ok := numeric(style.LineHeightPercentFontSize); ok {
		d.add("line-height", formatNumber(lh)+"%")
	}

	if v, ok := r.bound(node.BoundVariables, "letterSpacing"); ok {
		d.add("letter-spacing", v)
	} else if ls, ok := numeric(style.LetterSpacing); ok {
		d.add("letter-spacing", px(ls))
	}

	if v, ok := textAlign[style.TextAlignHorizontal]; ok {
		d.add("text-align", v)
	}
}

// fontWeights maps fontStyle keywords to numeric weights. Longer keywords are checked first
// so "ExtraBold" does not match "Bold".
var fontWeights = []struct {
	keyword string
	weight  string
}{
	{"extralight", "200"},
	{"ultralight", "200"},
	{"extrabold", "800"},
	{"ultrabold", "800"},
	{"semibold", "600"},
	{"demibold", "600"},
	{"thin", "100"},
	{"hairline", "100"},
	{"light", "300"},
	{"regular", "400"},
	{"normal", "400"},
	{"medium", "500"},
	{"bold", "700"},
	{"black", "900"},
	{"heavy", "900"},
}

func fontWeight(style *figma.TypeStyle) (string, bool) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "-", "").Replace(style.FontStyle))
	if key != "" {
		for _, fw := range fontWeights {
			if strings.Contains(key, fw.keyword) {
				return fw.weight, true
			}
		}
	}
	if w, ok := numeric(style.FontWeight); ok && w > 0 {
		return formatNumber(w), true
	}
	return "", false
}

var imageScale = map[string][]Declaration{
	"FILL": {{"background-size", "cover"}},
	"FIT":  {{"background-size", "contain"}},
	"TILE": {{"background-repeat", "repeat"}},
	"CROP": {{"background-size", "cover"}, {"background-position", "center"}},
}

func (r *Resolver) background(node *figma.Node, d *declarations) {
	fill := firstPaint(node.Fills)
	if fill == nil || fill.IsHidden() {
		return
	}

	if fill.Type == "IMAGE" {
		for _, decl := range imageScale[fill.ScaleMode] {
			d.add(decl.Property, decl.Value)
		}
		return
	}

	if c, ok := r.paintColor(node, fill, "fills"); ok {
		d.add("background-color", c)
	}
}

func (r *Resolver) border(node *figma.Node, d *declarations) {
	stroke := firstPaint(node.Strokes)
	if stroke == nil || stroke.IsHidden() {
		return
	}
	if c, ok := r.paintColor(node, stroke, "strokes"); ok {
		d.add("border", "1px solid "+c)
	}
}

func (r *Resolver) shadows(node *figma.Node, d *declarations) {
	var shadows []*figma.Effect
	for i := range node.Effects {
		e := &node.Effects[i]
		if e.Type == "DROP_SHADOW" && !e.IsHidden() {
			shadows = append(shadows, e)
		}
	}
	if len(shadows) == 0 {
		return
	}

	// One bound color applies to every shadow of the node.
	shared, hasShared := "", false
	for _, e := range shadows {
		if shared, hasShared = r.bound(e.BoundVariables, "color"); hasShared {
			break
		}
	}
	if !hasShared {
		if refs := node.BoundVariables["effects"]; len(refs) > 0 {
			for i := range refs {
				if shared, hasShared = r.refAt(refs, i); hasShared {
					break
				}
			}
		}
	}

	entries := make([]string, 0, len(shadows))
	for _, e := range shadows {
		var x, y float64
		if e.Offset != nil {
			x, y = e.Offset.X, e.Offset.Y
		}
		if !finite(x) || !finite(y) || !finite(e.Radius) || !finite(e.Spread) {
			continue
		}

		tokens := []string{px(x), px(y)}
		if e.Radius != 0 || e.Spread != 0 {
			tokens = append(tokens, px(e.Radius))
		}
		if e.Spread != 0 {
			tokens = append(tokens, px(e.Spread))
		}

		if hasShared {
			tokens = append(tokens, shared)
		} else if e.Color != nil {
			if c, ok := literalColor(e.Color, e.Color.A); ok {
				tokens = append(tokens, c)
			}
		}
		entries = append(entries, strings.Join(tokens, " "))
	}

	if len(entries) > 0 {
		d.add("box-shadow", strings.Join(entries, ", "))
	}
}

// paintColor resolves a paint's color: the paint's own bound variable, then the node-level
// binding for the first entry of key ("fills"/"strokes"), then the literal color.
func (r *Resolver) paintColor(node *figma.Node, paint *figma.Paint, key string) (string, bool) {
	if v, ok := r.bound(paint.BoundVariables, "color"); ok {
		return v, true
	}
	if v, ok := r.refAt(node.BoundVariables[key], 0); ok {
		return v, true
	}
	return literalColor(paint.Color, paint.Alpha())
}

// textColor prefers a bound fill variable unless the first fill is hidden, then falls back
// to the first fill's literal color. A node-level fills binding needs no fills array.
func (r *Resolver) textColor(node *figma.Node) (string, bool) {
	fill := firstPaint(node.Fills)
	if fill == nil || !fill.IsHidden() {
		if fill != nil {
			if v, ok := r.bound(fill.BoundVariables, "color"); ok {
				return v, true
			}
		}
		if v, ok := r.refAt(node.BoundVariables["fills"], 0); ok {
			return v, true
		}
	}
	if fill == nil {
		return "", false
	}
	return literalColor(fill.Color, fill.Alpha())
}

// bound resolves the first variable bound to attr into a symbolic reference.
func (r *Resolver) bound(b figma.VariableBindings, attr string) (string, bool) {
	id, ok := b[attr].First()
	if !ok {
		return "", false
	}
	return r.reference(id)
}

func (r *Resolver) refAt(refs figma.VariableRefs, i int) (string, bool) {
	id, ok := refs.At(i)
	if !ok {
		return "", false
	}
	return r.reference(id)
}

func (r *Resolver) reference(id string) (string, bool) {
	name, ok := r.vars.Lookup(id)
	if !ok {
		return "", false
	}
	if r.variableStyle == VariableStyleCSS {
		return "var(--" + name + ")", true
	}
	return "$" + name, true
}

func firstPaint(paints []figma.Paint) *figma.Paint {
	if len(paints) == 0 {
		return nil
	}
	return &paints[0]
}
