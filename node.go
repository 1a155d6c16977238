package tiledlib

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// Node is one element of a tokenized TMX/TSX document. Attribute and child
// order is preserved, which the layer list depends on.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// ParseNode reads a whole document and returns its root element.
func ParseNode(r io.Reader) (*Node, error) {
	var root Node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}
	return &root, nil
}

func (n *Node) Name() string {
	return n.XMLName.Local
}

// Attr returns the raw attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Local == name {
			return n.Attrs[i].Value, true
		}
	}
	return "", false
}

// Child returns the first child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns every child element with the given name, in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var nodes []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			nodes = append(nodes, &n.Children[i])
		}
	}
	return nodes
}

func (n *Node) missing(name string) error {
	return &AttributeError{Element: n.Name(), Attr: name}
}

func (n *Node) malformed(name, value string, err error) error {
	if numErr, ok := err.(*strconv.NumError); ok {
		err = numErr.Err
	}
	return &AttributeError{Element: n.Name(), Attr: name, Value: value, Err: err}
}

// String returns a required attribute.
func (n *Node) String(name string) (string, error) {
	v, ok := n.Attr(name)
	if !ok {
		return "", n.missing(name)
	}
	return v, nil
}

// StringOr returns an optional attribute, or def when absent.
func (n *Node) StringOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Int returns a required integer attribute.
func (n *Node) Int(name string) (int, error) {
	v, ok := n.Attr(name)
	if !ok {
		return 0, n.missing(name)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, n.malformed(name, v, err)
	}
	return i, nil
}

// IntOr returns an optional integer attribute, or def when absent. A present
// but malformed value is still an error.
func (n *Node) IntOr(name string, def int) (int, error) {
	if _, ok := n.Attr(name); !ok {
		return def, nil
	}
	return n.Int(name)
}

// Uint32 returns a required unsigned 32-bit attribute.
func (n *Node) Uint32(name string) (uint32, error) {
	v, ok := n.Attr(name)
	if !ok {
		return 0, n.missing(name)
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, n.malformed(name, v, err)
	}
	return uint32(u), nil
}

// Uint32Or returns an optional unsigned 32-bit attribute, or def when absent.
func (n *Node) Uint32Or(name string, def uint32) (uint32, error) {
	if _, ok := n.Attr(name); !ok {
		return def, nil
	}
	return n.Uint32(name)
}

// Float32Or returns an optional float attribute, or def when absent.
func (n *Node) Float32Or(name string, def float32) (float32, error) {
	v, ok := n.Attr(name)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, n.malformed(name, v, err)
	}
	return float32(f), nil
}

// ColorOr returns an optional colour attribute written as rrggbb or aarrggbb,
// with or without a leading '#', or def when absent.
func (n *Node) ColorOr(name string, def color.RGBA) (color.RGBA, error) {
	v, ok := n.Attr(name)
	if !ok {
		return def, nil
	}

	b, err := hex.DecodeString(strings.TrimPrefix(v, "#"))
	if err != nil {
		return color.RGBA{}, n.malformed(name, v, err)
	}

	switch len(b) {
	case 3:
		return color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}, nil
	case 4:
		return color.RGBA{R: b[1], G: b[2], B: b[3], A: b[0]}, nil
	}
	return color.RGBA{}, n.malformed(name, v, fmt.Errorf("want 6 or 8 hex digits"))
}
