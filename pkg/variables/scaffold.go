package variables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/kataras/figma-jsx/pkg/figma"
)

// Usage is one variable id found in a document and where it is bound.
type Usage struct {
	ID         string
	Attributes []string // bound style attributes, sorted ("fills", "fontSize", ...)
	FirstNode  string   // name of the first node (pre-order) that binds it
	Count      int      // number of bindings
}

// Collect returns every variable id bound under root, in first-seen order.
func Collect(root *figma.Node) []Usage {
	var (
		order []string
		byID  = make(map[string]*Usage)
		attrs = make(map[string]map[string]bool)
	)

	note := func(node *figma.Node, attr string, refs figma.VariableRefs) {
		for _, ref := range refs {
			if ref.ID == "" {
				continue
			}
			u, ok := byID[ref.ID]
			if !ok {
				u = &Usage{ID: ref.ID, FirstNode: node.Name}
				byID[ref.ID] = u
				attrs[ref.ID] = make(map[string]bool)
				order = append(order, ref.ID)
			}
			u.Count++
			attrs[ref.ID][attr] = true
		}
	}

	figma.Walk(root, func(n, _ *figma.Node) bool {
		for _, attr := range sortedKeys(n.BoundVariables) {
			note(n, attr, n.BoundVariables[attr])
		}
		for _, paints := range []struct {
			attr   string
			paints []figma.Paint
		}{{"fills", n.Fills}, {"strokes", n.Strokes}} {
			for i := range paints.paints {
				note(n, paints.attr, paints.paints[i].BoundVariables["color"])
			}
		}
		for i := range n.Effects {
			note(n, "effects", n.Effects[i].BoundVariables["color"])
		}
		return true
	})

	out := make([]Usage, 0, len(order))
	for _, id := range order {
		u := byID[id]
		for a := range attrs[id] {
			u.Attributes = append(u.Attributes, a)
		}
		sort.Strings(u.Attributes)
		out = append(out, *u)
	}
	return out
}

func sortedKeys(b figma.VariableBindings) []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scaffold extends existing (may be nil) with a placeholder name for every id in usages it
// does not know yet. Names are slugs of "<attribute>-<node name>", made unique with a numeric suffix.
func Scaffold(existing *Map, usages []Usage) (*Map, []Entry, error) {
	m, err := New(existing.Entries()...)
	if err != nil {
		return nil, nil, err
	}

	var added []Entry
	for _, u := range usages {
		if _, known := m.Lookup(u.ID); known {
			continue
		}
		base := placeholderName(u)
		name := base
		for i := 2; ; i++ {
			if _, taken := m.ID(name); !taken {
				break
			}
			name = fmt.Sprintf("%s-%d", base, i)
		}
		e := Entry{Name: name, ID: u.ID}
		if err := m.add(e); err != nil {
			return nil, nil, err
		}
		added = append(added, e)
	}
	return m, added, nil
}

func placeholderName(u Usage) string {
	attr := "var"
	if len(u.Attributes) > 0 {
		attr = u.Attributes[0]
	}
	if s := slug.Make(attr + " " + u.FirstNode); s != "" {
		return s
	}
	return "var"
}

// Marshal encodes m as a YAML side file in entry order, readable by Parse.
func (m *Map) Marshal() ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m.Entries() {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.ID, Style: yaml.DoubleQuotedStyle},
		)
	}
	if len(doc.Content) == 0 {
		return []byte("{}\n"), nil
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode variables: %w", err)
	}
	return []byte(sb.String()), nil
}
