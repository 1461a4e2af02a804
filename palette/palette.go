// Package palette loads the 256-color lookup tables used to render DC6
// frames.
//
// Palette resources are headerless: 256 consecutive triples stored in
// (blue, green, red) order.
package palette

import (
	"bytes"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dc6/datafiles"
)

const (
	// Colors is the number of entries in a palette.
	Colors = 256
	// Components is the number of bytes stored per entry.
	Components = 3
	// Size is the exact size of a palette resource, in bytes.
	Size = Colors * Components
)

// ErrInvalidSize is returned when a palette resource is not exactly Size bytes long.
var ErrInvalidSize = errors.New("palette: invalid palette size")

// Palette maps a pixel index to an opaque color. It is never modified after
// construction, so a single Palette can be shared by concurrent decodes.
type Palette struct {
	colors [Colors]color.RGBA
}

// New builds a palette from a raw resource, reordering every stored
// (B,G,R) triple into (R,G,B).
func New(b []byte) (*Palette, error) {
	if len(b) != Size {
		return nil, errors.Wrapf(ErrInvalidSize, "got %d bytes, want %d", len(b), Size)
	}
	p := &Palette{}
	for i := range p.colors {
		bgr := b[i*Components : (i+1)*Components]
		p.colors[i] = color.RGBA{R: bgr[2], G: bgr[1], B: bgr[0], A: 0xFF}
	}
	return p, nil
}

// Read reads a palette resource from r.
//
// At most one byte more than Size is consumed, so that an oversized
// resource is reported as such rather than silently truncated.
func Read(r io.Reader) (*Palette, error) {
	buf := bytes.Buffer{}
	if _, err := buf.ReadFrom(io.LimitReader(r, Size+1)); err != nil {
		return nil, errors.Wrap(err, "palette: could not read palette")
	}
	return New(buf.Bytes())
}

var defaultPalette *Palette

// Default returns the palette embedded in the binary.
func Default() *Palette {
	return defaultPalette
}

func init() {
	p, err := New(datafiles.GrayscalePalette)
	if err != nil {
		panic("palette: embedded palette is broken: " + err.Error())
	}
	defaultPalette = p
}

// At returns the color for pixel index i.
func (p *Palette) At(i uint8) color.RGBA {
	return p.colors[i]
}

// ColorPalette returns a copy of the palette as a color.Palette, for use
// with paletted images and quantizers.
func (p *Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, Colors)
	for i, c := range p.colors {
		cp[i] = c
	}
	return cp
}
