package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/adm87/tiledlib"
	"github.com/adm87/tiledlib/tilemap"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

type TilesetReport struct {
	Name      string `json:"name" yaml:"name"`
	FirstGID  uint32 `json:"firstgid" yaml:"firstgid"`
	Image     string `json:"image" yaml:"image"`
	Texture   string `json:"texture,omitempty" yaml:"texture,omitempty"`
	Columns   int    `json:"columns" yaml:"columns"`
	Rows      int    `json:"rows" yaml:"rows"`
	TileCount int    `json:"tilecount" yaml:"tilecount"`
}

type LayerReport struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    string  `json:"kind" yaml:"kind"`
	Width   int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height  int     `json:"height,omitempty" yaml:"height,omitempty"`
	Visible bool    `json:"visible" yaml:"visible"`
	Opacity float32 `json:"opacity" yaml:"opacity"`
	Tiles   int     `json:"tiles,omitempty" yaml:"tiles,omitempty"`     // non-empty cells
	Objects int     `json:"objects,omitempty" yaml:"objects,omitempty"` // object layers only
}

type FrameReport struct {
	Region tilemap.Region `json:"region" yaml:"region"`
	Tiles  map[string]int `json:"tiles" yaml:"tiles"` // buffered tiles per layer
}

// Report summarises one processed map file.
type Report struct {
	File        string            `json:"file" yaml:"file"`
	Orientation string            `json:"orientation" yaml:"orientation"`
	Width       int               `json:"width" yaml:"width"`
	Height      int               `json:"height" yaml:"height"`
	TileWidth   int               `json:"tilewidth" yaml:"tilewidth"`
	TileHeight  int               `json:"tileheight" yaml:"tileheight"`
	Properties  map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Tilesets    []TilesetReport   `json:"tilesets" yaml:"tilesets"`
	Layers      []LayerReport     `json:"layers" yaml:"layers"`
	Frame       *FrameReport      `json:"frame,omitempty" yaml:"frame,omitempty"`
	Warnings    []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Process loads a map file, resolves its tile layers and, when the config
// has a frame, buffers that frame.
func Process(filename string, cfg Config, diag tiledlib.Diagnostics) (*Report, error) {
	collector := &tiledlib.Collector{}
	sink := tiledlib.DiagnosticsFunc(func(msg string) {
		collector.Warn(msg)
		if diag != nil {
			diag.Warn(msg)
		}
	})

	opts := []tiledlib.Option{tiledlib.WithDiagnostics(sink)}
	if cfg.TextureRoot != "" {
		// image paths stay relative to the map directory, read from under the texture root
		opts = append(opts, tiledlib.WithAssetResolver(tiledlib.FileAssetResolver{
			FS: tiledlib.DirFS(cfg.TextureRoot),
		}))
	}

	m, err := tiledlib.LoadFile(filename, opts...)
	if err != nil {
		return nil, err
	}

	tm := tilemap.NewMap()
	if err := tm.SetMap(m); err != nil {
		return nil, fmt.Errorf("process %s: %w", filename, err)
	}
	defer tm.Flush()

	r := &Report{
		File:        filepath.ToSlash(m.Filename),
		Orientation: m.Orientation.String(),
		Width:       m.Width,
		Height:      m.Height,
		TileWidth:   m.TileWidth,
		TileHeight:  m.TileHeight,
		Properties:  m.Properties,
	}

	for i := range m.Tilesets {
		ts, err := tm.GetTileset(i)
		if err != nil {
			return nil, err
		}

		tr := TilesetReport{
			Name:      ts.Name,
			FirstGID:  ts.FirstGID,
			Image:     ts.Image,
			Columns:   ts.Columns,
			Rows:      ts.Rows,
			TileCount: ts.TileCount(),
		}
		if ref, ok := ts.Texture.(tiledlib.TextureRef); ok {
			tr.Texture = ref.Asset
		}
		r.Tilesets = append(r.Tilesets, tr)
	}

	for _, l := range m.Layers {
		info := l.Info()
		lr := LayerReport{
			Name:    info.Name,
			Kind:    l.Kind().String(),
			Width:   info.Width,
			Height:  info.Height,
			Visible: info.Visible,
			Opacity: info.Opacity,
		}

		switch layer := l.(type) {
		case *tiledlib.TileLayer:
			lr.Tiles = countTiles(tm.LayerByName(layer.Name))
		case *tiledlib.ObjectLayer:
			lr.Objects = len(layer.Objects)
		}
		r.Layers = append(r.Layers, lr)
	}

	if cfg.Frame != nil {
		if r.Frame, err = bufferFrame(tm, cfg.Frame); err != nil {
			return nil, fmt.Errorf("process %s: %w", filename, err)
		}
	}

	r.Warnings = collector.Warnings()
	return r, nil
}

func countTiles(layer *tilemap.Layer) int {
	if layer == nil {
		return 0
	}

	n := 0
	w, h := layer.Size()
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if _, ok := layer.At(x, y); ok {
				n++
			}
		}
	}
	return n
}

func bufferFrame(tm *tilemap.Map, frame *FrameConfig) (*FrameReport, error) {
	tm.Frame().Set(frame.MinX, frame.MinY, frame.MaxX, frame.MaxY)
	if err := tm.BufferFrame(); err != nil {
		return nil, err
	}

	fr := &FrameReport{
		Region: tm.Region(),
		Tiles:  make(map[string]int),
	}

	itr := tm.Itr()
	for _, layer := range tm.Layers() {
		fr.Tiles[layer.Name()] = len(itr.Next())
	}
	return fr, nil
}

// Write encodes reports in the given format.
func Write(w io.Writer, format OutputFormat, reports []*Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case FormatDump:
		spew.Fdump(w, reports)
		return nil
	}
	return fmt.Errorf("unknown output format %s", format)
}
