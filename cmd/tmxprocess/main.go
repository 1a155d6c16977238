// Command tmxprocess loads Tiled maps, resolves their tile layers and prints
// a summary of each as JSON, YAML or a Go value dump.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/adm87/tiledlib"
)

func main() {
	logger := log.New(os.Stderr, "[tmxprocess] ", 0)
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(args []string, stdout io.Writer, logger *log.Logger) error {
	fs := flag.NewFlagSet("tmxprocess", flag.ContinueOnError)
	fs.SetOutput(logger.Writer())

	configPath := fs.String("config", "", "YAML config file")
	format := fs.String("format", "", "Output format: json, yaml or dump")
	textures := fs.String("textures", "", "Directory tileset images are read from (default: next to each map)")
	frame := fs.String("frame", "", "World region to buffer, as minX,minY,maxX,maxY")
	quiet := fs.Bool("quiet", false, "Do not log parse warnings")
	out := fs.String("o", "", "Output file (default: stdout)")
	pprofAddr := fs.String("pprof", "", "Serve net/http/pprof on this address while running, e.g. localhost:6060")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: tmxprocess [flags] map.tmx...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no map files given")
	}

	if *pprofAddr != "" {
		go func() {
			logger.Printf("profiling server at http://%s/debug/pprof/", *pprofAddr)
			logger.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	// flags win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "textures":
			cfg.TextureRoot = *textures
		case "quiet":
			cfg.Quiet = *quiet
		}
	})
	if *frame != "" {
		if cfg.Frame, err = ParseFrame(*frame); err != nil {
			return err
		}
	}

	outputFormat, err := cfg.ParseFormat()
	if err != nil {
		return err
	}

	var diag tiledlib.Diagnostics
	if !cfg.Quiet {
		diag = tiledlib.NewLogDiagnostics(logger)
	}

	reports := make([]*Report, 0, fs.NArg())
	for _, filename := range fs.Args() {
		r, err := Process(filename, cfg, diag)
		if err != nil {
			return err
		}
		if !cfg.Quiet {
			logger.Printf("processed %s: %d tilesets, %d layers", filename, len(r.Tilesets), len(r.Layers))
		}
		reports = append(reports, r)
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return Write(w, outputFormat, reports)
}
