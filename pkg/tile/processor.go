package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// Processor handles decoding of tilemaps and encoding of tiles
type Processor struct {
	compression png.CompressionLevel
}

// NewProcessor creates a new tile processor
func NewProcessor() *Processor {
	return &Processor{
		compression: png.DefaultCompression,
	}
}

// WithCompression sets the PNG compression level used for written tiles
func (p *Processor) WithCompression(level png.CompressionLevel) *Processor {
	p.compression = level
	return p
}

// Open decodes the image stored at path. PNG, JPEG and GIF are supported.
func (p *Processor) Open(path string) (image.Image, error) {
	return imaging.Open(path)
}

// Decode detects the image format and decodes
func (p *Processor) Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r)
}

// EncodePNG writes img to w as PNG
func (p *Processor) EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(p.compression))
}

// PNGBytes encodes img and returns the PNG data
func (p *Processor) PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to filename, replacing any existing file
func (p *Processor) WritePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := p.EncodePNG(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", filename, err)
	}

	return file.Close()
}
