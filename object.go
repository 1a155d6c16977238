package tiledlib

import (
	"fmt"
	"strconv"
	"strings"
)

type Bounds struct {
	X, Y          float32
	Width, Height float32
}

// Point is a polygon or polyline vertex relative to the object's position.
type Point struct {
	X, Y float32
}

// MapObject is an entry of an object layer.
type MapObject struct {
	Kind       ObjectKind
	Name       string
	Type       string
	Bounds     Bounds
	GID        uint32 // raw id including flip flags, ObjectKindTile only
	Points     []Point
	Properties Properties
}

func (d *decoder) parseObject(node *Node) (MapObject, error) {
	obj := MapObject{
		Kind: ObjectKindPlain,
		Name: node.StringOr("name", ""),
		Type: node.StringOr("type", ""),
	}

	var err error
	if obj.Properties, err = NewProperties(node.Child("properties"), d.diag); err != nil {
		return obj, fmt.Errorf("object %q: %w", obj.Name, err)
	}

	for _, f := range []struct {
		name string
		dst  *float32
	}{
		{"x", &obj.Bounds.X},
		{"y", &obj.Bounds.Y},
		{"width", &obj.Bounds.Width},
		{"height", &obj.Bounds.Height},
	} {
		if *f.dst, err = node.Float32Or(f.name, 0); err != nil {
			return obj, err
		}
	}

	var shape *Node
	switch {
	case hasAttr(node, "gid"):
		obj.Kind = ObjectKindTile
		if obj.GID, err = node.Uint32("gid"); err != nil {
			return obj, err
		}
	case node.Child("polygon") != nil:
		obj.Kind = ObjectKindPolygon
		shape = node.Child("polygon")
	case node.Child("polyline") != nil:
		obj.Kind = ObjectKindPolyline
		shape = node.Child("polyline")
	}

	if shape != nil {
		raw, err := shape.String("points")
		if err != nil {
			return obj, err
		}
		if obj.Points, err = ParsePoints(raw); err != nil {
			return obj, shape.malformed("points", raw, err)
		}
	}

	return obj, nil
}

// ParsePoints parses a points attribute such as "0,0 16,0 16,16".
func ParsePoints(s string) ([]Point, error) {
	var points []Point
	for pair := range strings.FieldsSeq(s) {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("point %q is not x,y", pair)
		}

		x, err := strconv.ParseFloat(xs, 32)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(ys, 32)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", pair, err)
		}

		points = append(points, Point{X: float32(x), Y: float32(y)})
	}
	return points, nil
}

func hasAttr(node *Node, name string) bool {
	_, ok := node.Attr(name)
	return ok
}
