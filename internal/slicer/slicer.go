package slicer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/kiesman99/tilesplit/pkg/tile"
)

var (
	ErrDecode    = errors.New("cannot decode input image")
	ErrOutputDir = errors.New("cannot create output directory")
)

// Tile is one cropped cell of a tilemap
type Tile struct {
	tile.Cell
	Image image.Image
}

// Result contains the split tilemap
type Result struct {
	ImageWidth  int
	ImageHeight int
	TileWidth   int
	TileHeight  int
	Grid        tile.Grid
	Tiles       []Tile
}

// WriteError reports the tile that could not be written. Tiles written
// before it stay on disk.
type WriteError struct {
	Path    string
	Written []string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s after %d tiles: %v", e.Path, len(e.Written), e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Slicer cuts tilemaps into named tiles
type Slicer struct {
	processor *tile.Processor
}

// New creates a new slicer instance
func New() *Slicer {
	return &Slicer{
		processor: tile.NewProcessor(),
	}
}

// Processor returns the image codec used by the slicer
func (s *Slicer) Processor() *tile.Processor {
	return s.processor
}

// Split crops img into one tile per entry of names, in row-major order.
// Trailing pixels that do not fill a whole tile are dropped unless strict
// is set, in which case such images are rejected.
func (s *Slicer) Split(ctx context.Context, img image.Image, names tile.NameTable, strict bool) (*Result, error) {
	grid := names.Grid()
	if err := names.Validate(grid); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if strict {
		if err := tile.CheckDivisible(bounds, grid); err != nil {
			return nil, err
		}
	}

	tileWidth, tileHeight, cells := tile.Layout(bounds, names)
	if tileWidth == 0 || tileHeight == 0 {
		return nil, fmt.Errorf("%w: %dx%d image, %s grid", tile.ErrImageTooSmall, bounds.Dx(), bounds.Dy(), grid)
	}

	result := &Result{
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		Grid:        grid,
		Tiles:       make([]Tile, 0, len(cells)),
	}

	for _, cell := range cells {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result.Tiles = append(result.Tiles, Tile{
			Cell:  cell,
			Image: tile.Crop(img, cell.Rect),
		})
	}

	return result, nil
}

// WriteTiles saves every tile of res into dir as <prefix><name>.png and
// prints a "Saved:" line to progress after each one. It stops at the first
// failure and returns a *WriteError.
func (s *Slicer) WriteTiles(ctx context.Context, res *Result, dir, prefix string, progress io.Writer) ([]string, error) {
	if progress == nil {
		progress = io.Discard
	}

	written := make([]string, 0, len(res.Tiles))
	for _, t := range res.Tiles {
		path := filepath.Join(dir, tile.FileName(prefix, t.Name))

		select {
		case <-ctx.Done():
			return written, &WriteError{Path: path, Written: written, Err: ctx.Err()}
		default:
		}

		if err := s.processor.WritePNG(path, t.Image); err != nil {
			return written, &WriteError{Path: path, Written: written, Err: err}
		}

		written = append(written, path)
		fmt.Fprintf(progress, "Saved: %s\n", path)
	}

	return written, nil
}
