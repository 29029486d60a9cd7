package tile

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Layout computes the tile size and the crop rectangle of every cell of
// names over an image with the given bounds. Tile sizes use integer
// division, so trailing pixels on the right and bottom edges are not
// covered by any cell. Cells are returned in row-major order. names must
// already satisfy Validate.
func Layout(bounds image.Rectangle, names NameTable) (int, int, []Cell) {
	g := names.Grid()
	if g.Rows == 0 || g.Cols == 0 {
		return 0, 0, nil
	}

	tileWidth := bounds.Dx() / g.Cols
	tileHeight := bounds.Dy() / g.Rows

	cells := make([]Cell, 0, g.Cells())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			left := bounds.Min.X + col*tileWidth
			top := bounds.Min.Y + row*tileHeight

			cells = append(cells, Cell{
				Row:  row,
				Col:  col,
				Name: names[row][col],
				Rect: image.Rect(left, top, left+tileWidth, top+tileHeight),
			})
		}
	}

	return tileWidth, tileHeight, cells
}

// Remainder returns how many pixel columns and rows a grid leaves uncovered
func Remainder(bounds image.Rectangle, g Grid) (int, int) {
	if g.Rows < 1 || g.Cols < 1 {
		return 0, 0
	}
	return bounds.Dx() % g.Cols, bounds.Dy() % g.Rows
}

// CheckDivisible returns ErrNotDivisible if g does not cut bounds exactly
func CheckDivisible(bounds image.Rectangle, g Grid) error {
	dx, dy := Remainder(bounds, g)
	if dx != 0 || dy != 0 {
		return fmt.Errorf("%w: %dx%d image, %s grid leaves %dx%d pixels",
			ErrNotDivisible, bounds.Dx(), bounds.Dy(), g, dx, dy)
	}
	return nil
}

// Crop copies the region rect of img into a new image anchored at (0,0).
// Images backed by a standard pixel buffer keep their pixel format, so
// alpha and palettes survive untouched; anything else is converted to NRGBA.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	w, h := rect.Dx(), rect.Dy()
	r := image.Rect(0, 0, w, h)
	if rect.Empty() {
		return image.NewNRGBA(r)
	}

	switch src := img.(type) {
	case *image.NRGBA:
		dst := image.NewNRGBA(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w*4, h)
		return dst
	case *image.RGBA:
		dst := image.NewRGBA(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w*4, h)
		return dst
	case *image.NRGBA64:
		dst := image.NewNRGBA64(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w*8, h)
		return dst
	case *image.RGBA64:
		dst := image.NewRGBA64(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w*8, h)
		return dst
	case *image.Gray:
		dst := image.NewGray(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w, h)
		return dst
	case *image.Gray16:
		dst := image.NewGray16(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w*2, h)
		return dst
	case *image.Paletted:
		dst := image.NewPaletted(r, append(color.Palette(nil), src.Palette...))
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y):], src.Stride, w, h)
		return dst
	}

	return imaging.Crop(img, rect)
}

func copyRows(dst []byte, dstStride int, src []byte, srcStride, rowBytes, rows int) {
	if rowBytes <= 0 {
		return
	}
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+rowBytes], src[y*srcStride:y*srcStride+rowBytes])
	}
}

// Assemble lays tiles out in row-major order on a single NRGBA canvas. All
// tiles must have the same size.
func Assemble(tiles []image.Image, g Grid) (*image.NRGBA, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(tiles) != g.Cells() {
		return nil, fmt.Errorf("%w: %d tiles for %s grid", ErrNameTableShape, len(tiles), g)
	}

	size := tiles[0].Bounds().Size()
	canvas := imaging.New(size.X*g.Cols, size.Y*g.Rows, color.Transparent)

	for i, t := range tiles {
		if t.Bounds().Size() != size {
			return nil, fmt.Errorf("tile %d is %dx%d, expected %dx%d",
				i, t.Bounds().Dx(), t.Bounds().Dy(), size.X, size.Y)
		}
		pos := image.Pt((i%g.Cols)*size.X, (i/g.Cols)*size.Y)
		canvas = imaging.Paste(canvas, t, pos)
	}

	return canvas, nil
}
