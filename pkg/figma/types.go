package figma

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Node types the converter distinguishes. Figma emits more (SECTION, BOOLEAN_OPERATION, ...);
// those are treated as generic containers.
const (
	TypeDocument     = "DOCUMENT"
	TypeCanvas       = "CANVAS"
	TypeFrame        = "FRAME"
	TypeGroup        = "GROUP"
	TypeText         = "TEXT"
	TypeImage        = "IMAGE"
	TypeRectangle    = "RECTANGLE"
	TypeVector       = "VECTOR"
	TypeEllipse      = "ELLIPSE"
	TypeLine         = "LINE"
	TypePolygon      = "POLYGON"
	TypeStar         = "STAR"
	TypeComponent    = "COMPONENT"
	TypeComponentSet = "COMPONENT_SET"
	TypeInstance     = "INSTANCE"
)

// FileResponse represents the complete response from the Figma file API endpoint.
// It contains the file metadata, document structure, published components and schema version information.
type FileResponse struct {
	Name          string               `json:"name"`
	LastModified  string               `json:"lastModified"`
	ThumbnailURL  string               `json:"thumbnailUrl"`
	Version       string               `json:"version"`
	Document      Node                 `json:"document"`
	Components    map[string]Component `json:"components,omitempty"`
	SchemaVersion int                  `json:"schemaVersion"`
}

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// It contains file metadata and a map of node IDs to their corresponding NodeData.
type NodesResponse struct {
	Name         string              `json:"name"`
	LastModified string              `json:"lastModified"`
	Version      string              `json:"version"`
	Nodes        map[string]NodeData `json:"nodes"`
}

// NodeData wraps a node with its document structure and optional component information.
type NodeData struct {
	Document   Node                 `json:"document"`
	Components map[string]Component `json:"components,omitempty"`
}

// Component represents a Figma component definition with its metadata.
type Component struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ComponentSetID string `json:"componentSetId,omitempty"`
}

// Node represents a single element in the Figma document tree hierarchy.
// Optional scalar attributes are pointers so that "absent" and "zero" stay distinguishable;
// the converter emits nothing for absent data.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Visible  *bool  `json:"visible,omitempty"`
	Children []Node `json:"children,omitempty"`

	AbsoluteBoundingBox *Rectangle        `json:"absoluteBoundingBox,omitempty"`
	Constraints         *LayoutConstraint `json:"constraints,omitempty"`

	// Auto-layout
	LayoutMode             string  `json:"layoutMode,omitempty"`
	LayoutWrap             string  `json:"layoutWrap,omitempty"`
	PrimaryAxisAlignItems  string  `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlignItems  string  `json:"counterAxisAlignItems,omitempty"`
	PaddingLeft            *Number `json:"paddingLeft,omitempty"`
	PaddingRight           *Number `json:"paddingRight,omitempty"`
	PaddingTop             *Number `json:"paddingTop,omitempty"`
	PaddingBottom          *Number `json:"paddingBottom,omitempty"`
	ItemSpacing            *Number `json:"itemSpacing,omitempty"`
	LayoutSizingHorizontal string  `json:"layoutSizingHorizontal,omitempty"`
	LayoutSizingVertical   string  `json:"layoutSizingVertical,omitempty"`
	LayoutPositioning      string  `json:"layoutPositioning,omitempty"`
	IsFixed                bool    `json:"isFixed,omitempty"`
	PreserveRatio          bool    `json:"preserveRatio,omitempty"`
	TargetAspectRatio      *Vector `json:"targetAspectRatio,omitempty"`

	// Visual
	Fills             []Paint  `json:"fills,omitempty"`
	Strokes           []Paint  `json:"strokes,omitempty"`
	StrokeWeight      Number   `json:"strokeWeight,omitempty"`
	Effects           []Effect `json:"effects,omitempty"`
	Opacity           *Number  `json:"opacity,omitempty"`
	CornerRadius      Number   `json:"cornerRadius,omitempty"`
	ClipsContent      bool     `json:"clipsContent,omitempty"`
	OverflowDirection string   `json:"overflowDirection,omitempty"`

	// Text
	Characters string     `json:"characters,omitempty"`
	Style      *TypeStyle `json:"style,omitempty"`

	BoundVariables VariableBindings `json:"boundVariables,omitempty"`

	// Component instances
	ComponentID         string              `json:"componentId,omitempty"`
	ComponentProperties ComponentProperties `json:"componentProperties,omitempty"`
}

// IsVisible reports whether the node is rendered; a missing flag means visible.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Color represents an RGBA color with float values ranging from 0 to 1.
// A missing alpha channel decodes as fully opaque.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// UnmarshalJSON decodes a color, defaulting alpha to 1.
func (c *Color) UnmarshalJSON(data []byte) error {
	type plain Color
	p := plain{A: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Color(p)
	return nil
}

// Paint represents a fill or stroke applied to a Figma node.
type Paint struct {
	Type           string           `json:"type"`
	Visible        *bool            `json:"visible,omitempty"`
	Opacity        *Number          `json:"opacity,omitempty"`
	Color          *Color           `json:"color,omitempty"`
	ScaleMode      string           `json:"scaleMode,omitempty"`
	ImageRef       string           `json:"imageRef,omitempty"`
	BoundVariables VariableBindings `json:"boundVariables,omitempty"`
}

// IsHidden reports whether the paint is explicitly marked not visible.
func (p *Paint) IsHidden() bool {
	return p.Visible != nil && !*p.Visible
}

// Alpha returns the paint opacity, 1 when unset.
func (p *Paint) Alpha() float64 {
	if p.Opacity == nil || !p.Opacity.Valid() {
		return 1
	}
	return float64(*p.Opacity)
}

// Effect represents a visual effect applied to a Figma node such as drop shadows, inner shadows, or blur effects.
type Effect struct {
	Type           string           `json:"type"`
	Visible        *bool            `json:"visible,omitempty"`
	Radius         float64          `json:"radius,omitempty"`
	Color          *Color           `json:"color,omitempty"`
	Offset         *Vector          `json:"offset,omitempty"`
	Spread         float64          `json:"spread,omitempty"`
	BlendMode      string           `json:"blendMode,omitempty"`
	BoundVariables VariableBindings `json:"boundVariables,omitempty"`
}

// IsHidden reports whether the effect is explicitly marked not visible.
func (e *Effect) IsHidden() bool {
	return e.Visible != nil && !*e.Visible
}

// Vector represents a 2D coordinate or offset with X and Y values.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TypeStyle holds the text styling properties of a TEXT node.
type TypeStyle struct {
	FontFamily                string  `json:"fontFamily,omitempty"`
	FontPostScriptName        string  `json:"fontPostScriptName,omitempty"`
	FontStyle                 string  `json:"fontStyle,omitempty"`
	FontWeight                *Number `json:"fontWeight,omitempty"`
	FontSize                  *Number `json:"fontSize,omitempty"`
	LetterSpacing             *Number `json:"letterSpacing,omitempty"`
	LineHeightPx              *Number `json:"lineHeightPx,omitempty"`
	LineHeightPercentFontSize *Number `json:"lineHeightPercentFontSize,omitempty"`
	TextAlignHorizontal       string  `json:"textAlignHorizontal,omitempty"`
	TextAlignVertical         string  `json:"textAlignVertical,omitempty"`
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutConstraint defines how a node's position and size behave when its parent is resized.
type LayoutConstraint struct {
	Vertical   string `json:"vertical"`
	Horizontal string `json:"horizontal"`
}

// Number is a style number that tolerates malformed input. Anything that is not a JSON
// number decodes as NaN, which consumers treat as absent.
type Number float64

// Valid reports whether n holds a finite value.
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UnmarshalJSON decodes a JSON number and turns strings, objects and the like into NaN.
func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = Number(math.NaN())
		return nil
	}
	*n = Number(f)
	return nil
}

// MarshalJSON writes invalid numbers as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

// VariableAlias points at a design variable by its document-wide id.
type VariableAlias struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id"`
}

// VariableRefs is the value of one boundVariables entry. Figma emits either a single alias
// or an array of aliases (per fill, per text range); both decode into a slice.
type VariableRefs []VariableAlias

// UnmarshalJSON accepts a single alias object or an array of aliases.
func (r *VariableRefs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] == '[' {
		var many []VariableAlias
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*r = many
		return nil
	}
	var one VariableAlias
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*r = VariableRefs{one}
	return nil
}

// First returns the id of the first alias with a non-empty id.
func (r VariableRefs) First() (string, bool) {
	for _, a := range r {
		if a.ID != "" {
			return a.ID, true
		}
	}
	return "", false
}

// At returns the id of the alias at index i.
func (r VariableRefs) At(i int) (string, bool) {
	if i < 0 || i >= len(r) || r[i].ID == "" {
		return "", false
	}
	return r[i].ID, true
}

// VariableBindings maps a style attribute name ("fills", "fontSize", "color", ...) to the
// variables bound to it.
type VariableBindings map[string]VariableRefs

// UnmarshalJSON decodes bindings, skipping entries that are not alias-shaped
// (e.g. nested componentProperties bindings) instead of failing the whole document.
func (b *VariableBindings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(VariableBindings, len(raw))
	for key, value := range raw {
		var refs VariableRefs
		if err := json.Unmarshal(value, &refs); err != nil {
			continue
		}
		out[key] = refs
	}
	*b = out
	return nil
}

// ComponentProperty is one entry of an instance's componentProperties.
// Value is a string, float64 or bool as decoded from JSON.
type ComponentProperty struct {
	Name  string `json:"-"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ComponentProperties keeps componentProperties in document order.
type ComponentProperties []ComponentProperty

// UnmarshalJSON decodes the componentProperties object preserving key order.
func (p *ComponentProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("componentProperties: expected object, got %v", tok)
	}

	var props ComponentProperties
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var prop ComponentProperty
		if err := dec.Decode(&prop); err != nil {
			return fmt.Errorf("componentProperties %q: %w", key, err)
		}
		prop.Name = key
		props = append(props, prop)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = props
	return nil
}

// MarshalJSON writes the properties back as an object in the same order.
func (p ComponentProperties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		}{prop.Type, prop.Value})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
