package tile

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// DefaultPrefix is prepended to every tile name to form its file name
const DefaultPrefix = "tile_"

// Extension of every written tile
const Extension = ".png"

var (
	ErrInvalidGrid    = errors.New("grid must have at least one row and one column")
	ErrNameTableShape = errors.New("name table does not match grid")
	ErrDuplicateName  = errors.New("duplicate tile name")
	ErrInvalidName    = errors.New("invalid tile name")
	ErrInvalidPrefix  = errors.New("invalid file name prefix")
	ErrImageTooSmall  = errors.New("image too small for grid")
	ErrNotDivisible   = errors.New("image dimensions not divisible by grid")
)

// Grid describes how many rows and columns a tilemap is cut into
type Grid struct {
	Rows int
	Cols int
}

// Cells returns the number of tiles in the grid
func (g Grid) Cells() int {
	return g.Rows * g.Cols
}

// Validate checks the grid has a positive size
func (g Grid) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, g.Cols, g.Rows)
	}
	return nil
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// NameTable maps grid cells to tile names, one slice per row
type NameTable [][]string

var defaultNames = NameTable{
	{"brick_wall", "cracked_stone", "bloodstained", "dirt_gravel"},
	{"mossy_stone", "rune_circle", "dark_vortex", "bones"},
	{"lava_cracks", "frozen_ice", "wooden_planks", "metal_grate"},
	{"spike_trap", "toxic_slime", "corrupted_stone", "dark_concrete"},
}

// DefaultNames returns a copy of the built-in 4x4 ground texture table
func DefaultNames() NameTable {
	names := make(NameTable, len(defaultNames))
	for i, row := range defaultNames {
		names[i] = append([]string(nil), row...)
	}
	return names
}

// ParseNames parses a table of the form "a,b;c,d" where rows are separated
// by semicolons and columns by commas.
func ParseNames(s string) (NameTable, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty name table", ErrNameTableShape)
	}

	var names NameTable
	for _, line := range strings.Split(s, ";") {
		var row []string
		for _, name := range strings.Split(line, ",") {
			row = append(row, strings.TrimSpace(name))
		}
		names = append(names, row)
	}

	return names, nil
}

// Grid derives the grid from the table shape. Ragged tables report the
// width of their first row and fail Validate.
func (n NameTable) Grid() Grid {
	if len(n) == 0 {
		return Grid{}
	}
	return Grid{Rows: len(n), Cols: len(n[0])}
}

// Validate checks the table has exactly one usable name per cell of g
func (n NameTable) Validate(g Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if len(n) != g.Rows {
		return fmt.Errorf("%w: %d rows, grid has %d", ErrNameTableShape, len(n), g.Rows)
	}

	seen := make(map[string]struct{}, g.Cells())
	for r, row := range n {
		if len(row) != g.Cols {
			return fmt.Errorf("%w: row %d has %d names, grid has %d columns", ErrNameTableShape, r, len(row), g.Cols)
		}
		for c, name := range row {
			if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
				return fmt.Errorf("%w: %q at row %d, col %d", ErrInvalidName, name, r, c)
			}
			if _, ok := seen[name]; ok {
				return fmt.Errorf("%w: %q", ErrDuplicateName, name)
			}
			seen[name] = struct{}{}
		}
	}

	return nil
}

// Flatten returns the names in row-major order
func (n NameTable) Flatten() []string {
	var out []string
	for _, row := range n {
		out = append(out, row...)
	}
	return out
}

// Cell is one position of the grid and the source region it covers
type Cell struct {
	Row  int
	Col  int
	Name string
	Rect image.Rectangle
}

// FileName returns the file name a tile called name is written to
func FileName(prefix, name string) string {
	return prefix + name + Extension
}

// ValidatePrefix rejects prefixes that would place tiles outside their
// directory. The empty prefix is valid.
func ValidatePrefix(prefix string) error {
	if strings.ContainsAny(prefix, `/\`) {
		return fmt.Errorf("%w %q: must not contain path separators", ErrInvalidPrefix, prefix)
	}
	return nil
}

// PositionalNames builds a table naming every cell after its position,
// e.g. "r0c2" for row 0, column 2.
func PositionalNames(g Grid) NameTable {
	names := make(NameTable, g.Rows)
	for r := range names {
		names[r] = make([]string, g.Cols)
		for c := range names[r] {
			names[r][c] = fmt.Sprintf("r%dc%d", r, c)
		}
	}
	return names
}

// ResolveNames picks the name table for a grid of rows x cols. Zero
// dimensions are taken from names, or from the default table when names
// is nil. Without names, grids other than the default get positional
// names. An explicit table must match any explicit dimension.
func ResolveNames(names NameTable, rows, cols int) (NameTable, error) {
	if names == nil {
		names = DefaultNames()
		g := names.Grid()
		if rows == 0 {
			rows = g.Rows
		}
		if cols == 0 {
			cols = g.Cols
		}
		if want := (Grid{Rows: rows, Cols: cols}); want != g {
			if err := want.Validate(); err != nil {
				return nil, err
			}
			names = PositionalNames(want)
		}
	}

	g := names.Grid()
	if (rows != 0 && rows != g.Rows) || (cols != 0 && cols != g.Cols) {
		return nil, fmt.Errorf("%w: table is %s, grid is %dx%d", ErrNameTableShape, g, cols, rows)
	}

	if err := names.Validate(g); err != nil {
		return nil, err
	}

	return names, nil
}
