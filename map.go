package tiledlib

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/adm87/enum"
)

// Map is a decoded TMX document. It owns its tilesets and layers; tile
// layers refer to tilesets only by id, through ResolveGID.
type Map struct {
	Filename  string // set by LoadFile
	Directory string // set by LoadFile

	Version     string
	Orientation Orientation
	Width       int
	Height      int
	TileWidth   int
	TileHeight  int
	Properties  Properties

	Tilesets []Tileset
	Layers   []Layer
}

// Cell resolves the tile at (x, y) of a tile layer.
func (m *Map) Cell(layer *TileLayer, x, y int) (Cell, error) {
	return ResolveGID(m.Tilesets, layer.GID(x, y))
}

type decoder struct {
	*options
}

// LoadFile reads and parses a map file. Relative paths inside the map are
// resolved against the map's directory.
//
// Without WithFileSystem the file is read from the OS and filename may be any
// OS path; otherwise it is a slash-separated path inside the file system.
func LoadFile(filename string, opts ...Option) (*Map, error) {
	o := newOptions(opts)
	name := filename
	if o.fsys == nil {
		dir, base := filepath.Split(filename)
		if dir == "" {
			dir = "."
		}
		o.fsys = DirFS(dir)
		o.baseDir = "."
		filename = base
	}
	o.setDefaults()
	d := &decoder{options: o}

	file := path.Join(o.baseDir, filename)
	root, err := d.readDocument(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	d.baseDir = path.Dir(file)
	m, err := d.parseMap(root)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	m.Filename = name
	m.Directory = filepath.Dir(name)
	return m, nil
}

// Decode reads a map document from r.
func Decode(r io.Reader, opts ...Option) (*Map, error) {
	root, err := ParseNode(r)
	if err != nil {
		return nil, err
	}
	return Parse(root, opts...)
}

// Parse builds a Map from an already tokenized document. Any error aborts the
// whole parse; no partial map is returned.
func Parse(root *Node, opts ...Option) (*Map, error) {
	o := newOptions(opts)
	o.setDefaults()
	d := &decoder{options: o}
	return d.parseMap(root)
}

func (d *decoder) readDocument(file string) (*Node, error) {
	f, err := d.fsys.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseNode(f)
}

func (d *decoder) parseMap(root *Node) (*Map, error) {
	if root.Name() != "map" {
		return nil, fmt.Errorf("%w: root element is <%s>, want <map>", ErrUnsupportedFormat, root.Name())
	}

	m := &Map{}
	if err := parseMapAttrs(m, root); err != nil {
		return nil, err
	}

	var err error
	if m.Properties, err = NewProperties(root.Child("properties"), d.diag); err != nil {
		return nil, fmt.Errorf("map properties: %w", err)
	}

	for _, node := range root.ChildrenNamed("tileset") {
		ts, err := d.parseTileset(node)
		if err != nil {
			return nil, err
		}
		m.Tilesets = append(m.Tilesets, ts)
	}

	names := make(map[string]struct{})
	for i := range root.Children {
		node := &root.Children[i]
		switch node.Name() {
		case "properties", "tileset", "editorsettings":
			continue
		}

		layer, err := d.parseLayer(node, m.Tilesets)
		if err != nil {
			return nil, err
		}

		info := layer.Info()
		if unique, renamed := uniqueName(info.Name, names); renamed {
			d.diag.Warn(fmt.Sprintf("renaming layer %q to %q to make a unique name", info.Name, unique))
			info.Name = unique
		}
		names[info.Name] = struct{}{}

		m.Layers = append(m.Layers, layer)
	}

	return m, nil
}

func parseMapAttrs(m *Map, node *Node) error {
	var err error

	if m.Version, err = node.String("version"); err != nil {
		return err
	}

	orientation, err := node.String("orientation")
	if err != nil {
		return err
	}
	if m.Orientation, err = enum.UnmarshalEnum[Orientation](strings.ToLower(orientation)); err != nil {
		return node.malformed("orientation", orientation, err)
	}

	if m.Width, err = node.Int("width"); err != nil {
		return err
	}
	if m.Height, err = node.Int("height"); err != nil {
		return err
	}
	if m.TileWidth, err = positiveInt(node, "tilewidth"); err != nil {
		return err
	}
	if m.TileHeight, err = positiveInt(node, "tileheight"); err != nil {
		return err
	}
	return nil
}
