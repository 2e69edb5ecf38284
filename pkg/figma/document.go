package figma

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

var (
	// ErrNodeNotFound is returned when no node matches the requested id or name.
	ErrNodeNotFound = errors.New("node not found")
	// ErrVariantNotFound is returned when a component set has no variant matching the request.
	ErrVariantNotFound = errors.New("variant not found")
)

// AmbiguousNodeError is returned when several nodes share the requested name and no index was given.
type AmbiguousNodeError struct {
	Name       string
	Candidates []*Node // natural order of ids
}

func (e *AmbiguousNodeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d nodes named %q, pick one with an index:", len(e.Candidates), e.Name)
	for i, n := range e.Candidates {
		fmt.Fprintf(&sb, "\n  %d) %s [%s] %s", i+1, n.ID, n.Type, n.Name)
	}
	return sb.String()
}

// LoadFile reads a document saved from the file endpoint. A bare node object
// (as produced by a node dump) is accepted too and wrapped as the document.
func LoadFile(path string) (*FileResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes file endpoint JSON, or a single node object.
func ParseFile(data []byte) (*FileResponse, error) {
	var probe struct {
		Document json.RawMessage `json:"document"`
		ID       string          `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	if len(probe.Document) == 0 && probe.ID != "" {
		var node Node
		if err := json.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("parse node: %w", err)
		}
		return &FileResponse{Name: node.Name, Document: node}, nil
	}

	var fileResp FileResponse
	if err := json.Unmarshal(data, &fileResp); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &fileResp, nil
}

// RawNode returns the undecoded JSON of the first node (pre-order) with the given id in data,
// which is file endpoint JSON or a bare node. Attributes the Node model does not declare are kept.
func RawNode(data []byte, id string) (json.RawMessage, error) {
	var probe struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	root := json.RawMessage(data)
	if len(probe.Document) > 0 {
		root = probe.Document
	}

	stack := []json.RawMessage{root}
	for len(stack) > 0 {
		raw := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var node struct {
			ID       string            `json:"id"`
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(raw, &node); err != nil {
			continue
		}
		if node.ID == id {
			return raw, nil
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return nil, fmt.Errorf("%w: id %q", ErrNodeNotFound, id)
}

// Query selects the node to convert.
type Query struct {
	ID      string // wins over Name when set
	Name    string
	Variant string // "Prop=Value, Prop=Value" within a component set
	Index   int    // 1-based pick among same-named matches, 0 = unset
}

// Find resolves q against the tree rooted at root.
func Find(root *Node, q Query) (*Node, error) {
	if q.ID != "" {
		if n := FindByID(root, q.ID); n != nil {
			return selectVariant(n, q.Variant)
		}
		return nil, fmt.Errorf("%w: id %q", ErrNodeNotFound, q.ID)
	}

	matches := FindByName(root, q.Name)
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: name %q", ErrNodeNotFound, q.Name)
	case q.Index > 0:
		if q.Index > len(matches) {
			return nil, fmt.Errorf("%w: index %d of %d nodes named %q", ErrNodeNotFound, q.Index, len(matches), q.Name)
		}
		return selectVariant(matches[q.Index-1], q.Variant)
	case len(matches) > 1:
		return nil, &AmbiguousNodeError{Name: q.Name, Candidates: matches}
	}
	return selectVariant(matches[0], q.Variant)
}

// FindByID returns the node with the given id, or nil.
func FindByID(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n, _ *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByName returns every node named name, ordered naturally by id.
func FindByName(root *Node, name string) []*Node {
	var matches []*Node
	Walk(root, func(n, _ *Node) bool {
		if n.Name == name {
			matches = append(matches, n)
		}
		return true
	})
	sort.SliceStable(matches, func(i, j int) bool {
		return natural.Less(matches[i].ID, matches[j].ID)
	})
	return matches
}

// Walk visits the tree in pre-order with an explicit stack, passing each node and its parent.
// Returning false from fn stops the walk.
func Walk(root *Node, fn func(node, parent *Node) bool) {
	if root == nil {
		return
	}
	type item struct{ node, parent *Node }
	stack := []item{{root, nil}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.parent) {
			return
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{&it.node.Children[i], it.node})
		}
	}
}

func selectVariant(n *Node, variant string) (*Node, error) {
	if variant == "" {
		return n, nil
	}
	want := ParseVariantName(variant)
	if len(want) == 0 {
		return nil, fmt.Errorf("%w: malformed variant %q", ErrVariantNotFound, variant)
	}

	if n.Type != TypeComponentSet {
		return nil, fmt.Errorf("%w: %q is a %s, not a component set", ErrVariantNotFound, n.Name, n.Type)
	}
	for i := range n.Children {
		have := ParseVariantName(n.Children[i].Name)
		if variantMatches(have, want) {
			return &n.Children[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrVariantNotFound, variant, n.Name)
}

// VariantProp is one "Prop=Value" pair of a variant name.
type VariantProp struct {
	Name, Value string
}

// ParseVariantName splits a component variant name such as "State=Active, Size=Large".
// Pairs without '=' are ignored.
func ParseVariantName(name string) []VariantProp {
	var props []VariantProp
	for _, part := range strings.Split(name, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		props = append(props, VariantProp{Name: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	return props
}

func variantMatches(have, want []VariantProp) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h.Name, w.Name) && strings.EqualFold(h.Value, w.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
