package converter

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/kataras/figma-jsx/pkg/figma"
	"github.com/kataras/figma-jsx/pkg/variables"
)

func f64(v float64) *figma.Number { n := figma.Number(v); return &n }

func hidden() *bool {
	v := false
	return &v
}

func solid(r, g, b float64) figma.Paint {
	return figma.Paint{Type: "SOLID", Color: &figma.Color{R: r, G: g, B: b, A: 1}}
}

func cardWithTitle() *figma.Node {
	return &figma.Node{
		ID:          "1:1",
		Name:        "Card",
		Type:        figma.TypeFrame,
		LayoutMode:  "VERTICAL",
		ItemSpacing: f64(8),
		Children: []figma.Node{
			{
				ID:         "1:2",
				Name:       "Title",
				Type:       figma.TypeText,
				Characters: "Hi",
				Fills:      []figma.Paint{solid(0, 0, 0)},
			},
		},
	}
}

func TestConvertContainerWithText(t *testing.T) {
	res, err := Convert(nil, cardWithTitle(), "", nil)
	require.NoError(t, err)

	require.Equal(t, "card", res.RootClass)
	require.Equal(t, []string{"card", "card_title"}, res.Classes)
	require.Empty(t, res.Collisions)

	require.Equal(t, `<div className="card">
  <span className="card_title">Hi</span>
</div>
`, res.Markup)

	require.Equal(t, `.card { display: flex; flex-direction: column; gap: 8px;
  &_title { color: #000000; }
}
`, res.Stylesheet)
}

func TestConvertInstanceProps(t *testing.T) {
	document := &figma.Node{
		ID:   "0:0",
		Name: "Document",
		Type: figma.TypeDocument,
		Children: []figma.Node{
			{
				ID:   "5:0",
				Name: "Icon",
				Type: figma.TypeComponentSet,
				Children: []figma.Node{
					{ID: "5:1", Name: "Kind=Arrow", Type: figma.TypeComponent},
				},
			},
			{
				ID:   "1:1",
				Name: "Card",
				Type: figma.TypeFrame,
				Children: []figma.Node{
					{
						ID:                     "1:2",
						Name:                   "Button",
						Type:                   figma.TypeInstance,
						LayoutSizingHorizontal: "FIXED",
						AbsoluteBoundingBox:    &figma.Rectangle{Width: 120, Height: 40},
						Fills:                  []figma.Paint{solid(1, 0, 0)},
						LayoutMode:             "HORIZONTAL",
						ComponentProperties: figma.ComponentProperties{
							{Name: "Active#123", Type: "VARIANT", Value: "True"},
						},
					},
					{
						ID:   "1:3",
						Name: "Chip",
						Type: figma.TypeInstance,
						ComponentProperties: figma.ComponentProperties{
							{Name: "Label#1:0", Type: "TEXT", Value: "Some long label text for the button"},
							{Name: "Size", Type: "VARIANT", Value: "Large"},
							{Name: "Disabled#1:2", Type: "BOOLEAN", Value: false},
							{Name: "Leading Icon#1:3", Type: "INSTANCE_SWAP", Value: "5:1"},
							{Name: "Missing#1:4", Type: "INSTANCE_SWAP", Value: "9:9"},
						},
					},
				},
			},
		},
	}
	target := &document.Children[1]

	res, err := Convert(document, target, "", nil)
	require.NoError(t, err)

	require.Equal(t, `<div className="card">
  <Button className="card_button" active={true} />
  <Chip
    className="card_chip"
    label="Some long label text for the button"
    size="Large"
    disabled={false}
    leadingIcon={<Icon />}
  />
</div>
`, res.Markup)

	// instances keep only positioning and sizing
	require.Equal(t, `.card {
  &_button { width: 120px; }
  &_chip {}
}
`, res.Stylesheet)
}

func TestConvertRootOverrideAndPositionedChildren(t *testing.T) {
	root := &figma.Node{
		ID:                  "1:1",
		Name:                "Hero Banner",
		Type:                figma.TypeFrame,
		AbsoluteBoundingBox: &figma.Rectangle{X: 0, Y: 0, Width: 300, Height: 200},
		Children: []figma.Node{
			{
				ID:                  "1:2",
				Name:                "Badge",
				Type:                figma.TypeRectangle,
				LayoutPositioning:   "ABSOLUTE",
				AbsoluteBoundingBox: &figma.Rectangle{X: 20, Y: 10, Width: 40, Height: 40},
			},
			{ID: "1:3", Name: "Ghost", Type: figma.TypeFrame, Visible: hidden()},
			{ID: "1:4", Name: "Hero Photo", Type: figma.TypeImage},
		},
	}

	res, err := Convert(nil, root, "promo", nil)
	require.NoError(t, err)

	require.Equal(t, "promo", res.RootClass)
	require.Equal(t, []string{"promo", "promo_badge", "promo_hero_photo"}, res.Classes)
	require.Equal(t, `<div className="promo">
  <div className="promo_badge" />
  <img className="promo_hero_photo" alt="hero_photo" />
</div>
`, res.Markup)
	require.Equal(t, `.promo { position: relative;
  &_badge { position: absolute; left: 20px; top: 10px; }
  &_hero_photo {}
}
`, res.Stylesheet)
}

func TestConvertCollisions(t *testing.T) {
	root := &figma.Node{
		ID:   "1:1",
		Name: "Card",
		Type: figma.TypeFrame,
		Children: []figma.Node{
			{ID: "1:2", Name: "Icon!", Type: figma.TypeRectangle, Fills: []figma.Paint{solid(1, 0, 0)}},
			{ID: "1:3", Name: "Icon?", Type: figma.TypeRectangle, Fills: []figma.Paint{solid(0, 0, 1)}},
		},
	}

	res, err := Convert(nil, root, "", nil)
	require.NoError(t, err)

	require.Equal(t, []string{"card", "card_icon"}, res.Classes)
	require.Equal(t, []Collision{{Class: "card_icon", First: "1:2", Second: "1:3"}}, res.Collisions)
	require.Contains(t, res.Stylesheet, "&_icon { background-color: #ff0000; }")
	require.NotContains(t, res.Stylesheet, "#0000ff")
	require.Equal(t, 2, strings.Count(res.Markup, `className="card_icon"`))
}

func TestConvertEmptyAndText(t *testing.T) {
	tests := []struct {
		name   string
		node   *figma.Node
		markup string
	}{
		{
			name:   "empty container",
			node:   &figma.Node{ID: "1:1", Name: "Spacer", Type: figma.TypeFrame},
			markup: "<div className=\"spacer\" />\n",
		},
		{
			name:   "text root renders as container",
			node:   &figma.Node{ID: "1:1", Name: "Label", Type: figma.TypeText, Characters: "Hello"},
			markup: "<div className=\"label\">Hello</div>\n",
		},
		{
			name:   "text with markup characters",
			node:   &figma.Node{ID: "1:1", Name: "Label", Type: figma.TypeText, Characters: "a < b"},
			markup: "<div className=\"label\">{\"a < b\"}</div>\n",
		},
		{
			name:   "image root renders as container",
			node:   &figma.Node{ID: "1:1", Name: "Hero", Type: figma.TypeImage},
			markup: "<div className=\"hero\" />\n",
		},
		{
			name:   "unnamed node falls back to type",
			node:   &figma.Node{ID: "1:1", Name: "!!!", Type: figma.TypeRectangle},
			markup: "<div className=\"rectangle\" />\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Convert(nil, tt.node, "", nil)
			require.NoError(t, err)
			require.Equal(t, tt.markup, res.Markup)
		})
	}
}

func TestConvertNilTarget(t *testing.T) {
	_, err := Convert(nil, nil, "", nil)
	require.Error(t, err)
}

func TestConvertVariables(t *testing.T) {
	vars, err := variables.New(variables.Entry{Name: "color-primary", ID: "VariableID:1:2"})
	require.NoError(t, err)

	root := &figma.Node{
		ID:   "1:1",
		Name: "Button",
		Type: figma.TypeFrame,
		Fills: []figma.Paint{{
			Type:           "SOLID",
			Color:          &figma.Color{R: 1, A: 1},
			BoundVariables: figma.VariableBindings{"color": {{Type: "VARIABLE_ALIAS", ID: "VariableID:1:2"}}},
		}},
	}

	res, err := Convert(nil, root, "", vars)
	require.NoError(t, err)
	require.Equal(t, ".button { background-color: $color-primary; }\n", res.Stylesheet)

	res, err = New(Options{Variables: vars, VariableStyle: VariableStyleCSS}).Convert(nil, root, "")
	require.NoError(t, err)
	require.Equal(t, ".button { background-color: var(--color-primary); }\n", res.Stylesheet)
}

// bigTree builds a deterministic tree wide and deep enough to exercise wrapping.
func bigTree() *figma.Node {
	root := &figma.Node{
		ID:                    "1:1",
		Name:                  "Dashboard Layout",
		Type:                  figma.TypeFrame,
		LayoutMode:            "HORIZONTAL",
		LayoutWrap:            "WRAP",
		PaddingTop:            f64(16),
		PaddingRight:          f64(24),
		PaddingBottom:         f64(16),
		PaddingLeft:           f64(24),
		ItemSpacing:           f64(12.5),
		PrimaryAxisAlignItems: "SPACE_BETWEEN",
		CounterAxisAlignItems: "CENTER",
		ClipsContent:          true,
		CornerRadius:          8,
		Fills:                 []figma.Paint{solid(0.95, 0.95, 0.95)},
		Strokes:               []figma.Paint{solid(0.8, 0.8, 0.8)},
		Opacity:               f64(0.9),
	}
	for i := 0; i < 10; i++ {
		child := figma.Node{
			ID:                     "2:" + string(rune('a'+i)),
			Name:                   "Panel " + string(rune('A'+i)),
			Type:                   figma.TypeFrame,
			LayoutMode:             "VERTICAL",
			LayoutSizingHorizontal: "FILL",
			LayoutSizingVertical:   "FIXED",
			AbsoluteBoundingBox:    &figma.Rectangle{Width: 200, Height: 120},
			Effects: []figma.Effect{
				{Type: "DROP_SHADOW", Offset: &figma.Vector{Y: 4}, Radius: 8, Color: &figma.Color{A: 0.25}},
			},
			Children: []figma.Node{
				{
					ID:         "3:" + string(rune('a'+i)),
					Name:       "Heading",
					Type:       figma.TypeText,
					Characters: "Panel",
					Style:      &figma.TypeStyle{FontFamily: "Roboto", FontStyle: "Semi Bold", FontSize: f64(18)},
				},
			},
		}
		root.Children = append(root.Children, child)
	}
	return root
}

var classAttrPattern = regexp.MustCompile(`className="([^"]+)"`)

func TestConvertOutputInvariants(t *testing.T) {
	res, err := Convert(nil, bigTree(), "", nil)
	require.NoError(t, err)

	for _, out := range []string{res.Markup, res.Stylesheet} {
		for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
			require.LessOrEqual(t, len(line), DefaultLineWidth, "line %q", line)
		}
	}

	// Every class used in the markup has a rule and vice versa.
	used := make(map[string]bool)
	for _, m := range classAttrPattern.FindAllStringSubmatch(res.Markup, -1) {
		used[m[1]] = true
	}
	require.Len(t, used, len(res.Classes))
	for _, class := range res.Classes {
		require.True(t, used[class], class)
		selector := nestedSelector(class, res.RootClass)
		if class == res.RootClass {
			selector = "." + class
		}
		require.Contains(t, res.Stylesheet, selector+" {")
	}

	requireBalancedBraces(t, res.Stylesheet)
}

func requireBalancedBraces(t *testing.T, stylesheet string) {
	t.Helper()

	l := css.NewLexer(parse.NewInputString(stylesheet))
	depth := 0
	for {
		tt, _ := l.Next()
		if tt == css.ErrorToken {
			break
		}
		switch tt {
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			require.GreaterOrEqual(t, depth, 0, "unbalanced closing brace")
		}
	}
	require.Equal(t, 0, depth, "unclosed rule")
}

func TestConvertDeterministicAndConcurrent(t *testing.T) {
	c := New(Options{})
	want, err := c.Convert(nil, bigTree(), "")
	require.NoError(t, err)

	const workers = 16
	results := make([]*Result, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Convert(nil, bigTree(), "")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.NotNil(t, got)
		require.Equal(t, want.Markup, got.Markup)
		require.Equal(t, want.Stylesheet, got.Stylesheet)
	}
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debugf(string, ...any) {}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, format)
	l.mu.Unlock()
}

func TestConvertLogsCollisions(t *testing.T) {
	root := &figma.Node{
		ID:   "1:1",
		Name: "Card",
		Type: figma.TypeFrame,
		Children: []figma.Node{
			{ID: "1:2", Name: "Row", Type: figma.TypeFrame},
			{ID: "1:3", Name: "row", Type: figma.TypeFrame},
		},
	}

	log := &recordingLogger{}
	_, err := New(Options{Logger: log}).Convert(nil, root, "")
	require.NoError(t, err)
	require.Len(t, log.warns, 1)
}
