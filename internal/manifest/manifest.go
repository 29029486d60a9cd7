// Package manifest records where every tile of a split came from.
//
// A manifest is written next to the tiles as tiles.yaml. It lists each
// tile's name, file, grid position, source rectangle and average colour,
// and is enough to stitch the tilemap back together without knowing the
// name table that produced it.
package manifest

import (
	"fmt"
	"image"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/kiesman99/tilesplit/pkg/tile"
)

// FileName is the name of the manifest inside an output directory
const FileName = "tiles.yaml"

// Manifest describes one split tilemap
type Manifest struct {
	Source      string  `yaml:"source"`
	ImageWidth  int     `yaml:"image_width"`
	ImageHeight int     `yaml:"image_height"`
	TileWidth   int     `yaml:"tile_width"`
	TileHeight  int     `yaml:"tile_height"`
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	Tiles       []Entry `yaml:"tiles"`
}

// Entry describes a single tile
type Entry struct {
	Name         string `yaml:"name"`
	File         string `yaml:"file"`
	Row          int    `yaml:"row"`
	Col          int    `yaml:"col"`
	X            int    `yaml:"x"`
	Y            int    `yaml:"y"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	AverageColor string `yaml:"average_color"`
}

// New creates an empty manifest for a source image
func New(source string, width, height, tileWidth, tileHeight int, grid tile.Grid) *Manifest {
	return &Manifest{
		Source:      source,
		ImageWidth:  width,
		ImageHeight: height,
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		Rows:        grid.Rows,
		Cols:        grid.Cols,
	}
}

// Add appends the entry for a tile cut from cell and stored as file
func (m *Manifest) Add(cell tile.Cell, file string, img image.Image) {
	m.Tiles = append(m.Tiles, Entry{
		Name:         cell.Name,
		File:         file,
		Row:          cell.Row,
		Col:          cell.Col,
		X:            cell.Rect.Min.X,
		Y:            cell.Rect.Min.Y,
		Width:        cell.Rect.Dx(),
		Height:       cell.Rect.Dy(),
		AverageColor: AverageColor(img),
	})
}

// Names rebuilds the name table from the entries' grid positions
func (m *Manifest) Names() (tile.NameTable, error) {
	grid := tile.Grid{Rows: m.Rows, Cols: m.Cols}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	names := make(tile.NameTable, m.Rows)
	for r := range names {
		names[r] = make([]string, m.Cols)
	}

	for _, e := range m.Tiles {
		if e.Row < 0 || e.Row >= m.Rows || e.Col < 0 || e.Col >= m.Cols {
			return nil, fmt.Errorf("tile %q at row %d, col %d is outside the %s grid", e.Name, e.Row, e.Col, grid)
		}
		names[e.Row][e.Col] = e.Name
	}

	if err := names.Validate(grid); err != nil {
		return nil, err
	}

	return names, nil
}

// AverageColor returns the mean colour of img as "#rrggbb". Fully
// transparent pixels are skipped.
func AverageColor(img image.Image) string {
	b := img.Bounds()

	var r, g, bl, n float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			r += c.R
			g += c.G
			bl += c.B
			n++
		}
	}

	if n == 0 {
		return colorful.Color{}.Hex()
	}

	return colorful.Color{R: r / n, G: g / n, B: bl / n}.Clamped().Hex()
}

// Write stores m at path as YAML
func Write(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// Read loads a manifest written by Write
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	return &m, nil
}
