package converter

import "github.com/kataras/figma-jsx/pkg/figma"

// Entry is a registered class and the node that first produced it.
type Entry struct {
	Class        string
	Node         *figma.Node
	Declarations []Declaration
	// Container is set when the node's children were rendered, which makes it the
	// coordinate origin for absolutely positioned children.
	Container bool

	resolved bool
}

// Collision records a second node that mapped onto an already registered class.
type Collision struct {
	Class  string
	First  string // id of the node that owns the class
	Second string // id of the node that reused it
}

// Registry is an ordered class -> entry map. Insertion order is traversal order and the
// first node to claim a class keeps it.
type Registry struct {
	order   []string
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Claim registers node under class. It returns the owning entry and whether node is the owner.
func (r *Registry) Claim(class string, node *figma.Node) (*Entry, bool) {
	if e, ok := r.entries[class]; ok {
		return e, e.Node == node || (node.ID != "" && e.Node.ID == node.ID)
	}
	e := &Entry{Class: class, Node: node}
	r.entries[class] = e
	r.order = append(r.order, class)
	return e, true
}

// Get returns the entry for class.
func (r *Registry) Get(class string) (*Entry, bool) {
	e, ok := r.entries[class]
	return e, ok
}

// Entries returns the entries in first-visit order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, class := range r.order {
		out = append(out, r.entries[class])
	}
	return out
}

// Classes returns the registered class names in first-visit order.
func (r *Registry) Classes() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.order)
}
