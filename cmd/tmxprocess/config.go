package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adm87/enum"
	"gopkg.in/yaml.v3"
)

// ======================================================
// OutputFormat
// ======================================================

type OutputFormat uint8

const (
	FormatJSON OutputFormat = iota
	FormatYAML
	FormatDump
)

func (f OutputFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatDump:
		return "dump"
	default:
		return "unknown"
	}
}

func (f OutputFormat) IsValid() bool {
	return f >= FormatJSON && f <= FormatDump
}

// ======================================================
// Config
// ======================================================

// FrameConfig is a world-space region to buffer after loading, in pixels.
type FrameConfig struct {
	MinX float32 `yaml:"min_x"`
	MinY float32 `yaml:"min_y"`
	MaxX float32 `yaml:"max_x"`
	MaxY float32 `yaml:"max_y"`
}

type Config struct {
	TextureRoot string       `yaml:"texture_root"`
	Format      string       `yaml:"format"`
	Frame       *FrameConfig `yaml:"frame"`
	Quiet       bool         `yaml:"quiet"`
}

func DefaultConfig() Config {
	return Config{Format: FormatJSON.String()}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) ParseFormat() (OutputFormat, error) {
	f, err := enum.UnmarshalEnum[OutputFormat](strings.ToLower(c.Format))
	if err != nil {
		return 0, fmt.Errorf("unknown output format %q", c.Format)
	}
	return f, nil
}

// ParseFrame reads a frame written as "minX,minY,maxX,maxY".
func ParseFrame(s string) (*FrameConfig, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("frame %q: want minX,minY,maxX,maxY", s)
	}

	var v [4]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("frame %q: %w", s, err)
		}
		v[i] = float32(f)
	}

	if v[2] < v[0] || v[3] < v[1] {
		return nil, fmt.Errorf("frame %q: max is below min", s)
	}
	return &FrameConfig{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}, nil
}
