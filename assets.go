package tiledlib

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes a tileset image as seen by the asset pipeline.
// Texture is opaque to this package and is stored on the tileset unchanged.
type ImageInfo struct {
	Width   int
	Height  int
	Texture any
}

// AssetResolver turns a tileset image path into its pixel size and a texture
// handle. It is called once per tileset.
type AssetResolver interface {
	ResolveImage(path string) (ImageInfo, error)
}

// AssetResolverFunc adapts a plain function to AssetResolver.
type AssetResolverFunc func(path string) (ImageInfo, error)

func (f AssetResolverFunc) ResolveImage(path string) (ImageInfo, error) {
	return f(path)
}

// TextureRef is the texture handle produced by FileAssetResolver.
type TextureRef struct {
	Path  string // path the image was read from, relative to the file system root
	Asset string // Path without its extension
}

// FileAssetResolver reads image headers from a file system. Only the header
// is decoded, so pixel data is never loaded.
type FileAssetResolver struct {
	FS   fs.FS
	Root string // optional prefix joined in front of every image path
}

func (r FileAssetResolver) ResolveImage(p string) (ImageInfo, error) {
	full := path.Join(r.Root, p)

	f, err := r.FS.Open(full)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode image header %s: %w", full, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, fmt.Errorf("%s image %s has no pixels", format, full)
	}

	return ImageInfo{
		Width:  cfg.Width,
		Height: cfg.Height,
		Texture: TextureRef{
			Path:  full,
			Asset: strings.TrimSuffix(full, path.Ext(full)),
		},
	}, nil
}
