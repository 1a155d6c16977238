package tiledlib

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/adm87/enum"
)

// LayerInfo holds the attributes every layer kind shares.
type LayerInfo struct {
	Name       string
	Type       string // element name the layer was read from
	Width      int
	Height     int
	Opacity    float32
	Visible    bool
	Properties Properties
}

func (li *LayerInfo) Info() *LayerInfo {
	return li
}

// Layer is either a *TileLayer or an *ObjectLayer.
type Layer interface {
	Info() *LayerInfo
	Kind() LayerKind
	isLayer()
}

// TileLayer is a dense grid of raw tile ids, row-major, Width*Height long.
// Ids still carry their flip flags; use Map.Cell or ResolveGID to read them.
type TileLayer struct {
	LayerInfo
	Data []uint32
}

func (*TileLayer) Kind() LayerKind { return LayerKindTile }
func (*TileLayer) isLayer()        {}

// GID returns the raw id at (x, y), or 0 outside the layer.
func (l *TileLayer) GID(x, y int) uint32 {
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return 0
	}
	return l.Data[y*l.Width+x]
}

// ObjectLayer holds free-form map objects.
type ObjectLayer struct {
	LayerInfo
	Color   color.RGBA
	Objects []MapObject
}

func (*ObjectLayer) Kind() LayerKind { return LayerKindObject }
func (*ObjectLayer) isLayer()        {}

var defaultObjectColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func (d *decoder) parseLayer(node *Node, tilesets []Tileset) (Layer, error) {
	kind, err := enum.UnmarshalEnum[LayerKind](node.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownLayerType, node.Name())
	}

	switch kind {
	case LayerKindTile:
		return d.parseTileLayer(node, tilesets)
	case LayerKindObject:
		return d.parseObjectLayer(node)
	}
	return nil, fmt.Errorf("%w: <%s>", ErrUnknownLayerType, node.Name())
}

func (d *decoder) parseLayerInfo(node *Node, sizeRequired bool) (LayerInfo, error) {
	info := LayerInfo{Type: node.Name()}

	var err error
	if info.Name, err = node.String("name"); err != nil {
		return info, err
	}

	if sizeRequired {
		info.Width, err = node.Int("width")
		if err == nil {
			info.Height, err = node.Int("height")
		}
	} else {
		info.Width, err = node.IntOr("width", 0)
		if err == nil {
			info.Height, err = node.IntOr("height", 0)
		}
	}
	if err != nil {
		return info, err
	}
	if info.Width < 0 || info.Height < 0 {
		return info, node.malformed("width", strconv.Itoa(info.Width), fmt.Errorf("negative layer size %dx%d", info.Width, info.Height))
	}
	if _, err := cellCount(info.Width, info.Height); err != nil {
		return info, node.malformed("width", strconv.Itoa(info.Width), err)
	}

	if info.Opacity, err = node.Float32Or("opacity", 1); err != nil {
		return info, err
	}

	visible, err := node.IntOr("visible", 1)
	if err != nil {
		return info, err
	}
	info.Visible = visible == 1

	if info.Properties, err = NewProperties(node.Child("properties"), d.diag); err != nil {
		return info, fmt.Errorf("layer %q: %w", info.Name, err)
	}

	return info, nil
}

func (d *decoder) parseTileLayer(node *Node, tilesets []Tileset) (*TileLayer, error) {
	info, err := d.parseLayerInfo(node, true)
	if err != nil {
		return nil, err
	}

	data := node.Child("data")
	if data == nil {
		return nil, fmt.Errorf("%w: layer %q has no <data>", ErrSizeMismatch, info.Name)
	}

	gids, err := DecodeCellData(data, info.Width, info.Height)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", info.Name, err)
	}

	for i, gid := range gids {
		if _, err := ResolveGID(tilesets, gid); err != nil {
			return nil, fmt.Errorf("layer %q cell (%d,%d): %w", info.Name, i%info.Width, i/info.Width, err)
		}
	}

	return &TileLayer{LayerInfo: info, Data: gids}, nil
}

func (d *decoder) parseObjectLayer(node *Node) (*ObjectLayer, error) {
	info, err := d.parseLayerInfo(node, false)
	if err != nil {
		return nil, err
	}

	layer := &ObjectLayer{LayerInfo: info}
	if layer.Color, err = node.ColorOr("color", defaultObjectColor); err != nil {
		return nil, err
	}

	names := make(map[string]struct{})
	for _, child := range node.ChildrenNamed("object") {
		obj, err := d.parseObject(child)
		if err != nil {
			return nil, fmt.Errorf("object layer %q: %w", info.Name, err)
		}

		if unique, renamed := uniqueName(obj.Name, names); renamed {
			d.diag.Warn(fmt.Sprintf("renaming object %q to %q in layer %q to make a unique name", obj.Name, unique, info.Name))
			obj.Name = unique
		}
		names[obj.Name] = struct{}{}

		layer.Objects = append(layer.Objects, obj)
	}

	return layer, nil
}

// uniqueName appends 2, 3, ... to name until it is not in taken.
func uniqueName(name string, taken map[string]struct{}) (string, bool) {
	if _, ok := taken[name]; !ok {
		return name, false
	}

	for n := 2; ; n++ {
		candidate := name + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate, true
		}
	}
}
