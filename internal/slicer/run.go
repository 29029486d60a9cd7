package slicer

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/kiesman99/tilesplit/internal/manifest"
	"github.com/kiesman99/tilesplit/pkg/tile"
)

// Options contains all configuration for a split run. A nil Names uses
// the default table and a nil Prefix uses tile.DefaultPrefix.
type Options struct {
	Input       string
	OutputDir   string
	Names       tile.NameTable
	Prefix      *string
	Strict      bool
	Manifest    bool
	Compression png.CompressionLevel
}

// Summary describes a completed run
type Summary struct {
	Result   *Result
	Files    []string
	Manifest string
}

// Run executes the whole pipeline: create the output directory, decode the
// input, split it and write every tile. Progress is printed to out. The
// directory is created before the input is read, so a bad input still
// leaves an empty directory behind.
func Run(ctx context.Context, opts *Options, out io.Writer) (*Summary, error) {
	if out == nil {
		out = io.Discard
	}

	if opts.Input == "" {
		return nil, fmt.Errorf("input image is required")
	}

	names := opts.Names
	if names == nil {
		names = tile.DefaultNames()
	}
	if err := names.Validate(names.Grid()); err != nil {
		return nil, err
	}

	prefix := tile.DefaultPrefix
	if opts.Prefix != nil {
		prefix = *opts.Prefix
	}
	if err := tile.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOutputDir, outputDir, err)
	}

	s := New()
	s.processor.WithCompression(opts.Compression)

	img, err := s.processor.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, opts.Input, err)
	}

	bounds := img.Bounds()
	grid := names.Grid()
	fmt.Fprintf(out, "Image size: %dx%d\n", bounds.Dx(), bounds.Dy())
	fmt.Fprintf(out, "Tile size: %dx%d\n", bounds.Dx()/grid.Cols, bounds.Dy()/grid.Rows)

	res, err := s.Split(ctx, img, names, opts.Strict)
	if err != nil {
		return nil, err
	}

	files, err := s.WriteTiles(ctx, res, outputDir, prefix, out)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Result: res,
		Files:  files,
	}

	if opts.Manifest {
		m := manifest.New(opts.Input, res.ImageWidth, res.ImageHeight, res.TileWidth, res.TileHeight, res.Grid)
		for i, t := range res.Tiles {
			m.Add(t.Cell, filepath.Base(files[i]), t.Image)
		}

		path := filepath.Join(outputDir, manifest.FileName)
		if err := manifest.Write(path, m); err != nil {
			return nil, err
		}
		summary.Manifest = path
		fmt.Fprintf(out, "Manifest: %s\n", path)
	}

	fmt.Fprintf(out, "\nSuccessfully split tilemap into %d tiles!\n", len(files))

	return summary, nil
}
