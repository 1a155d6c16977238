package tiledlib

import (
	"fmt"
	"image/color"
	"path"
	"strings"
)

// Rect is a pixel rectangle inside a tileset image.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Tile is one cell of a tileset image.
type Tile struct {
	Source     Rect
	Properties Properties
}

// Tileset is an image sliced into a grid of tiles. Its tiles occupy the
// global ids FirstGID through FirstGID+len(Tiles)-1.
type Tileset struct {
	FirstGID   uint32
	Name       string
	Source     string // external .tsx path as written in the map, empty when inline
	TileWidth  int
	TileHeight int
	Spacing    int
	Margin     int

	Image       string      // image path as written, relative to the tileset document
	ImageWidth  int         // set from the AssetResolver
	ImageHeight int         // set from the AssetResolver
	ColorKey    *color.RGBA // transparent colour, nil when unset
	Texture     any         // opaque handle from the AssetResolver

	Columns int
	Rows    int
	Tiles   []Tile

	// TileProperties is keyed by FirstGID + local tile id.
	TileProperties map[uint32]Properties
}

// TileCount is the number of tiles derived from the tileset image.
func (ts *Tileset) TileCount() int {
	return len(ts.Tiles)
}

// GridSize returns how many tiles fit across and down a tileset image.
//
// Each counted tile also consumes one spacing from the remaining length,
// including the last one. Assets were authored against this rule, so it is
// kept instead of the closed form n*w + (n-1)*s.
func GridSize(imageWidth, imageHeight, tileWidth, tileHeight, spacing, margin int) (columns, rows int) {
	columns = fitCount(imageWidth-2*margin, tileWidth, spacing)
	rows = fitCount(imageHeight-2*margin, tileHeight, spacing)
	return
}

func fitCount(length, tileSize, spacing int) int {
	if tileSize <= 0 {
		return 0
	}

	count := 0
	for count*tileSize < length {
		count++
		length -= spacing
	}
	return count
}

// GenerateTiles slices an image of the given size into ts.Tiles, numbered
// row by row, and attaches the properties parsed from the tileset's tile
// blocks.
func (ts *Tileset) GenerateTiles(imageWidth, imageHeight int) {
	ts.ImageWidth = imageWidth
	ts.ImageHeight = imageHeight
	ts.Columns, ts.Rows = GridSize(imageWidth, imageHeight, ts.TileWidth, ts.TileHeight, ts.Spacing, ts.Margin)

	ts.Tiles = make([]Tile, 0, ts.Columns*ts.Rows)
	for y := 0; y < ts.Rows; y++ {
		for x := 0; x < ts.Columns; x++ {
			tile := Tile{
				Source: Rect{
					X:      ts.Margin + x*(ts.TileWidth+ts.Spacing),
					Y:      ts.Margin + y*(ts.TileHeight+ts.Spacing),
					Width:  ts.TileWidth,
					Height: ts.TileHeight,
				},
			}

			if props, ok := ts.TileProperties[ts.FirstGID+uint32(y*ts.Columns+x)]; ok {
				tile.Properties = props
			} else {
				tile.Properties = Properties{}
			}

			ts.Tiles = append(ts.Tiles, tile)
		}
	}
}

// Tile returns the tile with the given local id.
func (ts *Tileset) Tile(localID uint32) (*Tile, bool) {
	if int64(localID) >= int64(len(ts.Tiles)) {
		return nil, false
	}
	return &ts.Tiles[localID], true
}

// parseTileset reads a <tileset> element of a map. External tilesets are
// loaded from the file system and parsed with the same code as inline ones.
func (d *decoder) parseTileset(node *Node) (Tileset, error) {
	var ts Tileset

	firstGID, err := node.Uint32("firstgid")
	if err != nil {
		return ts, err
	}
	ts.FirstGID = firstGID

	body, dir := node, d.baseDir
	if source, ok := node.Attr("source"); ok {
		ts.Source = source

		file := path.Join(d.baseDir, source)
		body, err = d.readDocument(file)
		if err != nil {
			return ts, fmt.Errorf("external tileset %s: %w", source, err)
		}
		if body.Name() != "tileset" {
			return ts, fmt.Errorf("external tileset %s: root element is <%s>, want <tileset>", source, body.Name())
		}
		dir = path.Dir(file)
	}

	if err := d.parseTilesetBody(&ts, body); err != nil {
		return ts, err
	}

	info, err := d.assets.ResolveImage(path.Join(dir, ts.Image))
	if err != nil {
		return ts, fmt.Errorf("tileset %q: resolve image %s: %w", ts.Name, ts.Image, err)
	}
	ts.Texture = info.Texture
	ts.GenerateTiles(info.Width, info.Height)

	d.checkDeclaredGrid(&ts, body)

	return ts, nil
}

func (d *decoder) parseTilesetBody(ts *Tileset, node *Node) error {
	var err error

	if ts.Name, err = node.String("name"); err != nil {
		return err
	}
	if ts.TileWidth, err = positiveInt(node, "tilewidth"); err != nil {
		return err
	}
	if ts.TileHeight, err = positiveInt(node, "tileheight"); err != nil {
		return err
	}
	if ts.Spacing, err = nonNegativeInt(node, "spacing"); err != nil {
		return err
	}
	if ts.Margin, err = nonNegativeInt(node, "margin"); err != nil {
		return err
	}

	image := node.Child("image")
	if image == nil {
		return fmt.Errorf("%w: <tileset name=%q> has no <image>", ErrMalformedAttribute, ts.Name)
	}
	if ts.Image, err = image.String("source"); err != nil {
		return err
	}
	// images above the tileset directory are expected next to it
	if strings.HasPrefix(ts.Image, "..") {
		ts.Image = path.Base(ts.Image)
	}

	if _, ok := image.Attr("trans"); ok {
		key, err := image.ColorOr("trans", color.RGBA{})
		if err != nil {
			return err
		}
		ts.ColorKey = &key
	}

	ts.TileProperties = make(map[uint32]Properties)
	for _, tile := range node.ChildrenNamed("tile") {
		id, err := tile.Uint32("id")
		if err != nil {
			return err
		}

		props, err := NewProperties(tile.Child("properties"), d.diag)
		if err != nil {
			return fmt.Errorf("tileset %q tile %d: %w", ts.Name, id, err)
		}
		ts.TileProperties[ts.FirstGID+id] = props
	}

	return nil
}

// checkDeclaredGrid warns when the editor's columns/tilecount disagree with
// the grid derived from the image.
func (d *decoder) checkDeclaredGrid(ts *Tileset, node *Node) {
	if columns, err := node.IntOr("columns", ts.Columns); err == nil && columns != ts.Columns {
		d.diag.Warn(fmt.Sprintf("tileset %q declares %d columns, image fits %d", ts.Name, columns, ts.Columns))
	}
	if count, err := node.IntOr("tilecount", ts.TileCount()); err == nil && count != ts.TileCount() {
		d.diag.Warn(fmt.Sprintf("tileset %q declares %d tiles, image fits %d", ts.Name, count, ts.TileCount()))
	}
}

func positiveInt(node *Node, name string) (int, error) {
	v, err := node.Int(name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, node.malformed(name, fmt.Sprint(v), fmt.Errorf("must be greater than zero"))
	}
	return v, nil
}

func nonNegativeInt(node *Node, name string) (int, error) {
	v, err := node.IntOr(name, 0)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, node.malformed(name, fmt.Sprint(v), fmt.Errorf("must not be negative"))
	}
	return v, nil
}
