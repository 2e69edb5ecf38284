package converter

import "github.com/kataras/figma-jsx/pkg/figma"

// Index answers parent and id lookups over a whole document without re-walking it.
// It is built once per conversion; the first node seen for an id wins.
type Index struct {
	nodes   map[string]*figma.Node
	parents map[string]*figma.Node
}

// BuildIndex indexes every node under roots in one pre-order pass each.
func BuildIndex(roots ...*figma.Node) *Index {
	idx := &Index{
		nodes:   make(map[string]*figma.Node),
		parents: make(map[string]*figma.Node),
	}
	for _, root := range roots {
		figma.Walk(root, func(n, parent *figma.Node) bool {
			if n.ID == "" {
				return true
			}
			if _, seen := idx.nodes[n.ID]; seen {
				return true
			}
			idx.nodes[n.ID] = n
			if parent != nil {
				idx.parents[n.ID] = parent
			}
			return true
		})
	}
	return idx
}

// Node returns the node with the given id.
func (idx *Index) Node(id string) (*figma.Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// Parent returns the parent of the node with the given id.
func (idx *Index) Parent(id string) (*figma.Node, bool) {
	p, ok := idx.parents[id]
	return p, ok
}

// ParentLayoutMode returns the layoutMode of the node's parent, "" when unknown.
func (idx *Index) ParentLayoutMode(id string) string {
	if p, ok := idx.parents[id]; ok {
		return p.LayoutMode
	}
	return ""
}

// Master returns the component definition an instance points at.
func (idx *Index) Master(instance *figma.Node) (*figma.Node, bool) {
	if instance == nil || instance.ComponentID == "" {
		return nil, false
	}
	return idx.Node(instance.ComponentID)
}

// ComponentName is the display name of a component definition: the set name for variants,
// the component's own name otherwise.
func (idx *Index) ComponentName(component *figma.Node) string {
	if p, ok := idx.Parent(component.ID); ok && p.Type == figma.TypeComponentSet {
		return p.Name
	}
	return component.Name
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return len(idx.nodes)
}
