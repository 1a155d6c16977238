package tiledlib

// Cell is a decoded tile layer entry.
type Cell struct {
	TsIdx    int    // index into Map.Tilesets, -1 for an empty cell
	TileID   uint32 // local id inside the tileset
	FlipFlag FlipFlag
}

// IsEmpty reports whether the cell holds no tile.
func (c Cell) IsEmpty() bool {
	return c.TsIdx < 0
}

// TilesetByGID finds the tileset owning a bare (flag-free) tile id and
// returns it with the local id and its index. The index is -1 when no
// tileset matches.
//
// Tilesets are scanned in document order and the first whose range holds the
// id wins. Overlapping ranges are not rejected; maps that rely on the
// first-match behavior keep working.
func TilesetByGID(tilesets []Tileset, gid uint32) (*Tileset, uint32, int) {
	for i := range tilesets {
		if gid < tilesets[i].FirstGID {
			continue
		}
		local := gid - tilesets[i].FirstGID
		if int64(local) < int64(len(tilesets[i].Tiles)) {
			return &tilesets[i], local, i
		}
	}
	return nil, 0, -1
}

// ResolveGID decodes a raw tile id and finds its tileset. A bare id of 0 is
// an empty cell; any other id that no tileset covers is an error.
func ResolveGID(tilesets []Tileset, gid uint32) (Cell, error) {
	tileID, flags := DecodeGID(gid)
	if tileID == 0 {
		return Cell{TsIdx: -1, FlipFlag: flags}, nil
	}

	_, local, tsIdx := TilesetByGID(tilesets, tileID)
	if tsIdx == -1 {
		return Cell{TsIdx: -1}, &UnresolvedTileError{GID: gid, TileID: tileID}
	}

	return Cell{TsIdx: tsIdx, TileID: local, FlipFlag: flags}, nil
}

func LayerByName(m *Map, name string) Layer {
	for _, l := range m.Layers {
		if l.Info().Name == name {
			return l
		}
	}
	return nil
}

func TileLayerByName(m *Map, name string) *TileLayer {
	if l, ok := LayerByName(m, name).(*TileLayer); ok {
		return l
	}
	return nil
}

func ObjectLayerByName(m *Map, name string) *ObjectLayer {
	if l, ok := LayerByName(m, name).(*ObjectLayer); ok {
		return l
	}
	return nil
}

func ObjectByName(layer *ObjectLayer, name string) *MapObject {
	for i := range layer.Objects {
		if layer.Objects[i].Name == name {
			return &layer.Objects[i]
		}
	}
	return nil
}

func TilesetByName(m *Map, name string) (*Tileset, int) {
	for i := range m.Tilesets {
		if m.Tilesets[i].Name == name {
			return &m.Tilesets[i], i
		}
	}
	return nil, -1
}
