package tiledlib

import (
	"io/fs"
	"os"
	"path/filepath"
)

type options struct {
	fsys    fs.FS
	baseDir string
	assets  AssetResolver
	diag    Diagnostics
}

// Option configures Parse, Decode and LoadFile.
type Option func(*options)

// WithFileSystem reads external tilesets and, unless WithAssetResolver is
// given, tileset images from fsys. The default is the working directory.
func WithFileSystem(fsys fs.FS) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithBaseDir sets the directory, inside the file system, that relative
// tileset and image paths of the document are resolved against.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

func WithAssetResolver(r AssetResolver) Option {
	return func(o *options) {
		o.assets = r
	}
}

func WithDiagnostics(d Diagnostics) Option {
	return func(o *options) {
		o.diag = d
	}
}

type dirFS string

// DirFS is os.DirFS without the fs.ValidPath check, so a map can reference
// tilesets and images above its own directory with "../" the way the editor
// writes them.
func DirFS(dir string) fs.FS {
	return dirFS(dir)
}

func (dir dirFS) Open(name string) (fs.File, error) {
	f, err := os.Open(filepath.Join(string(dir), filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func newOptions(opts []Option) *options {
	o := &options{baseDir: "."}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) setDefaults() {
	if o.fsys == nil {
		o.fsys = DirFS(".")
	}
	if o.assets == nil {
		o.assets = FileAssetResolver{FS: o.fsys}
	}
	if o.diag == nil {
		o.diag = NewLogDiagnostics(nil)
	}
}
