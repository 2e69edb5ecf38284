package variables

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kataras/figma-jsx/pkg/figma"
)

func scaffoldTree() *figma.Node {
	alias := func(id string) figma.VariableRefs {
		return figma.VariableRefs{{Type: "VARIABLE_ALIAS", ID: id}}
	}
	return &figma.Node{
		ID:   "1:1",
		Name: "Card",
		BoundVariables: figma.VariableBindings{
			"itemSpacing": alias("VariableID:1:3"),
			"fills":       alias("VariableID:1:1"),
		},
		Children: []figma.Node{
			{
				ID:   "1:2",
				Name: "Title Text",
				Fills: []figma.Paint{{
					Type:           "SOLID",
					BoundVariables: figma.VariableBindings{"color": alias("VariableID:1:2")},
				}},
				BoundVariables: figma.VariableBindings{"fontSize": alias("VariableID:1:3")},
			},
			{
				ID:      "1:4",
				Name:    "Card",
				Effects: []figma.Effect{{Type: "DROP_SHADOW", BoundVariables: figma.VariableBindings{"color": alias("VariableID:1:4")}}},
				Strokes: []figma.Paint{{Type: "SOLID", BoundVariables: figma.VariableBindings{"color": alias("VariableID:1:5")}}},
			},
		},
	}
}

func TestCollect(t *testing.T) {
	got := Collect(scaffoldTree())

	require.Equal(t, []Usage{
		{ID: "VariableID:1:1", Attributes: []string{"fills"}, FirstNode: "Card", Count: 1},
		{ID: "VariableID:1:3", Attributes: []string{"fontSize", "itemSpacing"}, FirstNode: "Card", Count: 2},
		{ID: "VariableID:1:2", Attributes: []string{"fills"}, FirstNode: "Title Text", Count: 1},
		{ID: "VariableID:1:5", Attributes: []string{"strokes"}, FirstNode: "Card", Count: 1},
		{ID: "VariableID:1:4", Attributes: []string{"effects"}, FirstNode: "Card", Count: 1},
	}, got)
}

func TestScaffold(t *testing.T) {
	existing, err := New(Entry{Name: "brand", ID: "VariableID:1:1"}, Entry{Name: "fills-card", ID: "VariableID:0:0"})
	require.NoError(t, err)

	m, added, err := Scaffold(existing, Collect(scaffoldTree()))
	require.NoError(t, err)

	require.Equal(t, []Entry{
		{"fontsize-card", "VariableID:1:3"},
		{"fills-title-text", "VariableID:1:2"},
		{"strokes-card", "VariableID:1:5"},
		{"effects-card", "VariableID:1:4"},
	}, added)
	require.Equal(t, 6, m.Len())
	require.Equal(t, 2, existing.Len(), "existing map is not modified")

	data, err := m.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, m.Entries(), back.Entries())
}

func TestScaffoldUniqueNames(t *testing.T) {
	usages := []Usage{
		{ID: "a", Attributes: []string{"fills"}, FirstNode: "Icon"},
		{ID: "b", Attributes: []string{"fills"}, FirstNode: "Icon"},
		{ID: "c", FirstNode: "!!!"},
	}
	_, added, err := Scaffold(nil, usages)
	require.NoError(t, err)
	require.Equal(t, []Entry{{"fills-icon", "a"}, {"fills-icon-2", "b"}, {"var", "c"}}, added)
}

func TestMarshalEmpty(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	data, err := m.Marshal()
	require.NoError(t, err)
	require.Equal(t, "{}\n", string(data))
}
