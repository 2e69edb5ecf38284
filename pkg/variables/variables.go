// Package variables loads the identifier map that links exported design-variable names
// to the document-wide variable ids used in boundVariables.
//
// The side file is a YAML or JSON object; each value is either the id itself or an
// object carrying an "id" key:
//
//	color-primary: "VariableID:12:34"
//	spacing-md:
//	  id: "VariableID:12:40"
//	  value: 16
package variables

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one name -> id pair.
type Entry struct {
	Name string
	ID   string
}

// Map is an ordered name -> id mapping with an id -> name index built once.
// When the same id appears under several names the first one in file order wins.
// The zero value and nil are empty maps.
type Map struct {
	entries []Entry
	byName  map[string]int
	byID    map[string]string
}

// New builds a Map from entries, rejecting duplicate names.
func New(entries ...Entry) (*Map, error) {
	m := &Map{
		byName: make(map[string]int, len(entries)),
		byID:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if err := m.add(e); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Map) add(e Entry) error {
	if e.Name == "" {
		return errors.New("variable with empty name")
	}
	if _, dup := m.byName[e.Name]; dup {
		return fmt.Errorf("duplicate variable name %q", e.Name)
	}
	m.byName[e.Name] = len(m.entries)
	m.entries = append(m.entries, e)
	if e.ID != "" {
		if _, taken := m.byID[e.ID]; !taken {
			m.byID[e.ID] = e.Name
		}
	}
	return nil
}

// Load reads and parses a variables side file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variables: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a YAML or JSON variables document preserving key order.
func Parse(data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse variables: %w", err)
	}

	m, _ := New()
	if len(doc.Content) == 0 {
		return m, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse variables: line %d: expected a mapping of name to id", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		id, err := entryID(value)
		if err != nil {
			return nil, fmt.Errorf("parse variables: line %d: %q: %w", key.Line, key.Value, err)
		}
		if err := m.add(Entry{Name: key.Value, ID: id}); err != nil {
			return nil, fmt.Errorf("parse variables: line %d: %w", key.Line, err)
		}
	}
	return m, nil
}

func entryID(value *yaml.Node) (string, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Value, nil
	case yaml.MappingNode:
		var obj struct {
			ID string `yaml:"id"`
		}
		if err := value.Decode(&obj); err != nil {
			return "", err
		}
		if obj.ID == "" {
			return "", errors.New("missing id")
		}
		return obj.ID, nil
	default:
		return "", errors.New("value must be an id or an object with an id")
	}
}

// Lookup returns the variable name bound to id.
func (m *Map) Lookup(id string) (string, bool) {
	if m == nil || m.byID == nil || id == "" {
		return "", false
	}
	name, ok := m.byID[id]
	return name, ok
}

// ID returns the id registered for name.
func (m *Map) ID(name string) (string, bool) {
	if m == nil || m.byName == nil {
		return "", false
	}
	i, ok := m.byName[name]
	if !ok {
		return "", false
	}
	return m.entries[i].ID, true
}

// Len returns the number of names.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries in file order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}
