package stitch

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/kiesman99/tilesplit/internal/manifest"
	"github.com/kiesman99/tilesplit/pkg/tile"
)

// Stitcher reassembles a directory of split tiles into a single tilemap
type Stitcher struct {
	processor *tile.Processor
	progress  io.Writer
}

// NewStitcher creates a new stitcher instance. Loaded tiles are reported
// on progress when it is not nil.
func NewStitcher(progress io.Writer) *Stitcher {
	if progress == nil {
		progress = io.Discard
	}

	return &Stitcher{
		processor: tile.NewProcessor(),
		progress:  progress,
	}
}

// Join loads <dir>/<prefix><name>.png for every cell of names in row-major
// order and lays the tiles out on one canvas.
func (s *Stitcher) Join(dir string, names tile.NameTable, prefix string) (image.Image, error) {
	grid := names.Grid()
	if err := names.Validate(grid); err != nil {
		return nil, err
	}

	files := make([]string, 0, grid.Cells())
	for _, name := range names.Flatten() {
		files = append(files, tile.FileName(prefix, name))
	}

	return s.join(dir, files, grid)
}

// JoinManifest reassembles the tiles listed in the manifest stored in dir
func (s *Stitcher) JoinManifest(dir string) (image.Image, error) {
	m, err := manifest.Read(filepath.Join(dir, manifest.FileName))
	if err != nil {
		return nil, err
	}

	grid := tile.Grid{Rows: m.Rows, Cols: m.Cols}
	if _, err := m.Names(); err != nil {
		return nil, err
	}

	files := make([]string, grid.Cells())
	for _, e := range m.Tiles {
		files[e.Row*grid.Cols+e.Col] = e.File
	}

	return s.join(dir, files, grid)
}

func (s *Stitcher) join(dir string, files []string, grid tile.Grid) (image.Image, error) {
	tiles := make([]image.Image, 0, len(files))
	for i, f := range files {
		path := filepath.Join(dir, f)

		img, err := s.processor.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load tile %s: %w", path, err)
		}

		fmt.Fprintf(s.progress, "%.2f%%: %s\n", float64(i+1)/float64(len(files))*100, path)
		tiles = append(tiles, img)
	}

	return tile.Assemble(tiles, grid)
}

// Save writes img to filename. The encoder is chosen from the extension;
// PNG is used unless the name ends in .jpg or .jpeg.
func Save(filename string, img image.Image) error {
	encoder := imgio.PNGEncoder()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		encoder = imgio.JPEGEncoder(95)
	}

	if err := imgio.Save(filename, img, encoder); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	return nil
}
