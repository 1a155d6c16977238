package tilemap

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/adm87/tiledlib"
)

var (
	ErrNoMapData       = errors.New("no map data set")
	ErrInvalidMapData  = errors.New("invalid map data")
	ErrTilesetNotFound = errors.New("tileset not found")
)

// ====================== Region =====================

// Region represents a rectangular region in tile coordinates.
type Region struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

func (r *Region) Equals(other *Region) bool {
	return r.MinX == other.MinX &&
		r.MinY == other.MinY &&
		r.MaxX == other.MaxX &&
		r.MaxY == other.MaxY
}

// ====================== Data =====================

// Data is the render-ready form of one non-empty cell.
type Data struct {
	X, Y       float32           // World position
	TileID     uint32            // Local tile ID inside the tileset
	TsIdx      int               // Tileset index
	FlipFlag   tiledlib.FlipFlag // Flip flags
	Source     tiledlib.Rect     // Source rectangle in the tileset image
	Properties tiledlib.Properties
}

// ====================== Layer =====================

var layerPool = sync.Pool{
	New: func() any {
		return &Layer{
			tiles: make([]Data, 0),
		}
	},
}

// Layer is a tile layer with every cell already resolved against the map's
// tilesets. Empty cells have a TsIdx of -1.
type Layer struct {
	name    string
	visible bool
	opacity float32
	w, h    int32
	tiles   []Data
}

func (l *Layer) Name() string {
	return l.name
}

func (l *Layer) Visible() bool {
	return l.visible
}

func (l *Layer) Opacity() float32 {
	return l.opacity
}

func (l *Layer) Size() (width, height int32) {
	return l.w, l.h
}

// At returns the tile at (x, y) in tile coordinates.
func (l *Layer) At(x, y int32) (Data, bool) {
	if x < 0 || x >= l.w || y < 0 || y >= l.h {
		return Data{}, false
	}
	tile := l.tiles[y*l.w+x]
	if tile.TsIdx < 0 {
		return Data{}, false
	}
	return tile, true
}

func (l *Layer) Flush() {
	clear(l.tiles)
	l.tiles = l.tiles[:0]
}

// ====================== Iterator =====================

// Iterator provides a way to iterate over tiles in the visible frame of a tilemap.
// Each call to Next() returns the tiles of the next layer; an invisible layer
// yields an empty slice. Next() returns nil once every layer was returned.
type Iterator struct {
	tiles  []Data
	layers []int
	index  int
}

func (it *Iterator) Next() []Data {
	if it.index >= len(it.layers)-1 {
		return nil
	}

	start := it.layers[it.index]
	end := it.layers[it.index+1]
	it.index++

	return it.tiles[start:end]
}

func (it *Iterator) HasNext() bool {
	return it.index < len(it.layers)-1
}

func (it *Iterator) Reset() {
	it.index = 0
}

// ====================== Frame =====================

// Frame represents the visible region of a tilemap in world coordinates.
type Frame struct {
	bounds [4]float32
}

func (f *Frame) Width() float32 {
	return f.bounds[2] - f.bounds[0]
}

func (f *Frame) Height() float32 {
	return f.bounds[3] - f.bounds[1]
}

func (f *Frame) Min() (x, y float32) {
	return f.bounds[0], f.bounds[1]
}

func (f *Frame) Max() (x, y float32) {
	return f.bounds[2], f.bounds[3]
}

func (f *Frame) Bounds() (minX, minY, maxX, maxY float32) {
	return f.bounds[0], f.bounds[1], f.bounds[2], f.bounds[3]
}

func (f *Frame) Set(minX, minY, maxX, maxY float32) {
	f.bounds = [4]float32{minX, minY, maxX, maxY}
}

// ====================== Map =====================

// Map holds the resolved tile layers of a decoded map.
//
// It provides methods to retrieve tile data, look up tilesets, and buffer
// the map for rendering. A Map is not safe for concurrent use.
type Map struct {
	Source *tiledlib.Map
	layers []*Layer

	frame Frame // current frame

	cachedRegion    Region
	cachedData      []Data
	cachedPositions []int
	buffered        bool
}

func NewMap() *Map {
	return &Map{
		Source: nil,
		frame: Frame{
			bounds: [4]float32{0, 0, 0, 0},
		},
		layers: make([]*Layer, 0, 4),
	}
}

// Itr returns an iterator for the map.
// Use this for iterating over tiles in the visible frame.
func (tm *Map) Itr() Iterator {
	return Iterator{
		tiles:  tm.cachedData,
		layers: tm.cachedPositions,
		index:  0,
	}
}

// Frame returns the visible region of the tilemap in world coordinates.
//
// Frame only holds the dimensions of the visible region. It does not update
// or buffer the map for rendering.
func (tm *Map) Frame() *Frame {
	return &tm.frame
}

// Region returns the tile region of the last buffered frame.
func (tm *Map) Region() Region {
	return tm.cachedRegion
}

// Layers returns the resolved tile layers in document order.
func (tm *Map) Layers() []*Layer {
	return tm.layers
}

func (tm *Map) LayerByName(name string) *Layer {
	for _, l := range tm.layers {
		if l.name == name {
			return l
		}
	}
	return nil
}

// Flush clears all layers from the map.
func (tm *Map) Flush() {
	tm.flush()
}

// BufferFrame buffers tile data for the current frame.
func (tm *Map) BufferFrame() error {
	if tm.Source == nil {
		return ErrNoMapData
	}

	if len(tm.layers) == 0 {
		return ErrInvalidMapData
	}

	region := tm.computeTileRegion()
	if tm.buffered && region.Equals(&tm.cachedRegion) {
		return nil
	}

	width := max(region.MaxX-region.MinX, 0)
	height := max(region.MaxY-region.MinY, 0)

	size := int(width*height) * len(tm.layers)
	if tm.cachedData == nil || cap(tm.cachedData) < size {
		tm.cachedData = make([]Data, 0, size)
	}

	tm.updateCache(region)
	return nil
}

// SetMap resolves every tile layer of m and replaces any existing layers.
// The frame is kept.
func (tm *Map) SetMap(m *tiledlib.Map) error {
	if m == nil || m.TileWidth <= 0 || m.TileHeight <= 0 {
		return ErrInvalidMapData
	}

	tm.flush()

	if err := tm.buildLayers(m); err != nil {
		tm.flush()
		return err
	}

	tm.Source = m
	return nil
}

func (tm *Map) GetTileset(index int) (*tiledlib.Tileset, error) {
	if tm.Source == nil || len(tm.Source.Tilesets) == 0 {
		return nil, ErrNoMapData
	}

	if index < 0 || index >= len(tm.Source.Tilesets) {
		return nil, ErrTilesetNotFound
	}

	return &tm.Source.Tilesets[index], nil
}

func (tm *Map) flush() {
	for i := range tm.layers {
		if tm.layers[i] != nil {
			tm.layers[i].Flush()
			layerPool.Put(tm.layers[i])
		}
	}
	tm.Source = nil
	tm.layers = tm.layers[:0]
	tm.cachedData = tm.cachedData[:0]
	tm.cachedPositions = tm.cachedPositions[:0]
	tm.cachedRegion = Region{}
	tm.buffered = false
}

func (tm *Map) buildLayers(m *tiledlib.Map) error {
	for _, l := range m.Layers {
		tl, ok := l.(*tiledlib.TileLayer)
		if !ok {
			continue
		}

		layer, err := resolveLayer(m, tl)
		if err != nil {
			return err
		}
		tm.layers = append(tm.layers, layer)
	}
	return nil
}

func resolveLayer(m *tiledlib.Map, tl *tiledlib.TileLayer) (*Layer, error) {
	layer := layerPool.Get().(*Layer)
	layer.name = tl.Name
	layer.visible = tl.Visible
	layer.opacity = tl.Opacity
	layer.w, layer.h = int32(tl.Width), int32(tl.Height)

	for i, gid := range tl.Data {
		x := i % tl.Width
		y := i / tl.Width

		tile, _, err := GetTileData(gid, m, float32(x*m.TileWidth), float32(y*m.TileHeight))
		if err != nil {
			layer.Flush()
			layerPool.Put(layer)
			return nil, fmt.Errorf("layer %q: %w", tl.Name, err)
		}
		layer.tiles = append(layer.tiles, tile)
	}

	return layer, nil
}

func (tm *Map) updateCache(region Region) {
	tm.cachedRegion = region
	tm.buffered = true

	tm.cachedData = tm.cachedData[:0]
	tm.cachedPositions = tm.cachedPositions[:0]

	for _, layer := range tm.layers {
		tm.cachedPositions = append(tm.cachedPositions, len(tm.cachedData))

		if !layer.visible {
			continue
		}

		sX := max(region.MinX, 0)
		sY := max(region.MinY, 0)
		eX := min(region.MaxX, layer.w)
		eY := min(region.MaxY, layer.h)

		for y := sY; y < eY; y++ {
			for x := sX; x < eX; x++ {
				if tile, ok := layer.At(x, y); ok {
					tm.cachedData = append(tm.cachedData, tile)
				}
			}
		}
	}

	tm.cachedPositions = append(tm.cachedPositions, len(tm.cachedData))
}

func (tm *Map) computeTileRegion() Region {
	minX, minY, maxX, maxY := tm.frame.Bounds()
	return Region{
		MinX: int32(math.Floor(float64(minX) / float64(tm.Source.TileWidth))),
		MinY: int32(math.Floor(float64(minY) / float64(tm.Source.TileHeight))),
		MaxX: int32(math.Ceil(float64(maxX) / float64(tm.Source.TileWidth))),
		MaxY: int32(math.Ceil(float64(maxY) / float64(tm.Source.TileHeight))),
	}
}

// GetTileData resolves a raw tile id placed at world position (x, y).
// The bool is false for an empty cell, in which case Data.TsIdx is -1.
func GetTileData(gid uint32, m *tiledlib.Map, x, y float32) (Data, bool, error) {
	cell, err := tiledlib.ResolveGID(m.Tilesets, gid)
	if err != nil {
		return Data{TsIdx: -1}, false, err
	}
	if cell.IsEmpty() {
		return Data{TsIdx: -1, X: x, Y: y}, false, nil
	}

	tile := &m.Tilesets[cell.TsIdx].Tiles[cell.TileID]
	return Data{
		TsIdx:      cell.TsIdx,
		TileID:     cell.TileID,
		FlipFlag:   cell.FlipFlag,
		Source:     tile.Source,
		Properties: tile.Properties,
		X:          x,
		Y:          y,
	}, true, nil
}
