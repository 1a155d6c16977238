package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const testMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16">
 <properties>
  <property name="music" value="theme.ogg"/>
 </properties>
 <tileset firstgid="1" name="terrain" tilewidth="16" tileheight="16">
  <image source="tiles.png" width="32" height="32"/>
 </tileset>
 <layer name="Ground" width="2" height="2">
  <data encoding="csv">
1,2,
0,3
</data>
 </layer>
 <layer name="Ground" width="2" height="2">
  <data encoding="csv">0,0,0,2147483652</data>
 </layer>
 <objectgroup name="Objects">
  <object name="spawn" x="4" y="4"/>
  <object name="exit" x="20" y="20"/>
 </objectgroup>
</map>`

func writeTestMap(t *testing.T, imageDir string) string {
	t.Helper()
	dir := t.TempDir()

	if imageDir == "" {
		imageDir = dir
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imageDir, "tiles.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	filename := filepath.Join(dir, "level.tmx")
	if err := os.WriteFile(filename, []byte(testMap), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, logs bytes.Buffer
	err = run(args, &out, log.New(&logs, "[tmxprocess] ", 0))
	return out.String(), logs.String(), err
}

func TestRunJSON(t *testing.T) {
	filename := writeTestMap(t, "")

	stdout, stderr, err := runCommand(t, "-frame", "0,0,32,16", filename)
	if err != nil {
		t.Fatalf("run() error = %v\n%s", err, stderr)
	}

	var reports []Report
	if err := json.Unmarshal([]byte(stdout), &reports); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	r := reports[0]

	if r.Orientation != "orthogonal" || r.Width != 2 || r.TileWidth != 16 {
		t.Errorf("map = %+v", r)
	}
	if r.Properties["music"] != "theme.ogg" {
		t.Errorf("properties = %v", r.Properties)
	}

	if len(r.Tilesets) != 1 {
		t.Fatalf("tilesets = %+v", r.Tilesets)
	}
	ts := r.Tilesets[0]
	if ts.Columns != 2 || ts.Rows != 2 || ts.TileCount != 4 || ts.Texture != "tiles" {
		t.Errorf("tileset = %+v", ts)
	}

	want := []LayerReport{
		{Name: "Ground", Kind: "layer", Width: 2, Height: 2, Visible: true, Opacity: 1, Tiles: 3},
		{Name: "Ground2", Kind: "layer", Width: 2, Height: 2, Visible: true, Opacity: 1, Tiles: 1},
		{Name: "Objects", Kind: "objectgroup", Visible: true, Opacity: 1, Objects: 2},
	}
	if len(r.Layers) != len(want) {
		t.Fatalf("layers = %+v", r.Layers)
	}
	for i := range want {
		if r.Layers[i] != want[i] {
			t.Errorf("layer %d = %+v, want %+v", i, r.Layers[i], want[i])
		}
	}

	if r.Frame == nil {
		t.Fatal("frame was not buffered")
	}
	if r.Frame.Region.MaxX != 2 || r.Frame.Region.MaxY != 1 {
		t.Errorf("frame region = %+v", r.Frame.Region)
	}
	// top row only: tiles 1,2 on Ground and nothing on Ground2
	if r.Frame.Tiles["Ground"] != 2 || r.Frame.Tiles["Ground2"] != 0 {
		t.Errorf("frame tiles = %v", r.Frame.Tiles)
	}

	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "Ground2") {
		t.Errorf("warnings = %v", r.Warnings)
	}
	if !strings.Contains(stderr, "[tmxprocess] [tiledlib] warning: renaming layer") {
		t.Errorf("warning was not logged:\n%s", stderr)
	}
}

func TestRunQuiet(t *testing.T) {
	filename := writeTestMap(t, "")

	_, stderr, err := runCommand(t, "-quiet", filename)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stderr != "" {
		t.Errorf("quiet run logged:\n%s", stderr)
	}
}

func TestRunFormats(t *testing.T) {
	filename := writeTestMap(t, "")

	t.Run("yaml", func(t *testing.T) {
		stdout, _, err := runCommand(t, "-quiet", "-format", "yaml", filename)
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}

		var reports []Report
		if err := yaml.Unmarshal([]byte(stdout), &reports); err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, stdout)
		}
		if len(reports) != 1 || len(reports[0].Layers) != 3 || reports[0].Layers[1].Name != "Ground2" {
			t.Errorf("reports = %+v", reports)
		}
	})

	t.Run("dump", func(t *testing.T) {
		stdout, _, err := runCommand(t, "-quiet", "-format", "DUMP", filename)
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if !strings.Contains(stdout, "main.Report") || !strings.Contains(stdout, `"Ground2"`) {
			t.Errorf("dump output:\n%s", stdout)
		}
	})
}

func TestRunConfigFile(t *testing.T) {
	textures := t.TempDir()
	filename := writeTestMap(t, textures)

	config := filepath.Join(t.TempDir(), "tmxprocess.yaml")
	err := os.WriteFile(config, []byte(`texture_root: `+filepath.ToSlash(textures)+`
format: yaml
quiet: true
frame:
  min_x: 0
  min_y: 0
  max_x: 32
  max_y: 32
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	// -format overrides the config file
	stdout, stderr, err := runCommand(t, "-config", config, "-format", "json", filename)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stderr != "" {
		t.Errorf("quiet config still logged:\n%s", stderr)
	}

	var reports []Report
	if err := json.Unmarshal([]byte(stdout), &reports); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if reports[0].Frame == nil || reports[0].Frame.Tiles["Ground"] != 3 {
		t.Errorf("frame = %+v", reports[0].Frame)
	}
}

func TestRunErrors(t *testing.T) {
	filename := writeTestMap(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{"no maps", nil},
		{"unknown format", []string{"-format", "xml", filename}},
		{"bad frame", []string{"-frame", "0,0,10", filename}},
		{"missing map", []string{filepath.Join(t.TempDir(), "missing.tmx")}},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), filename}},
		{"images outside texture root", []string{"-textures", t.TempDir(), filename}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCommand(t, tt.args...); err == nil {
				t.Error("run() should fail")
			}
		})
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		input   string
		want    FrameConfig
		wantErr bool
	}{
		{input: "0,0,320,240", want: FrameConfig{MaxX: 320, MaxY: 240}},
		{input: " -16, 8.5 ,16,32", want: FrameConfig{MinX: -16, MinY: 8.5, MaxX: 16, MaxY: 32}},
		{input: "1,2,3", wantErr: true},
		{input: "a,0,1,1", wantErr: true},
		{input: "10,0,5,5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrame(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && *got != tt.want {
				t.Errorf("ParseFrame() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	f, err := cfg.ParseFormat()
	if err != nil || f != FormatJSON {
		t.Errorf("default format = %v, %v", f, err)
	}
	if cfg.Frame != nil || cfg.Quiet || cfg.TextureRoot != "" {
		t.Errorf("defaults = %+v", cfg)
	}
}
