// Package encode writes decoded frames out as regular image files.
//
// It only dispatches to existing encoders; the one format it renders on its
// own is SVG, which is a plain list of rectangles.
package encode

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
)

// DefaultFormat is used when the requested format isn't known.
const DefaultFormat = "png"

// Options tune encoding. Quality only applies to lossy formats, in the range
// 1-100; zero or a negative value means the encoder's default.
type Options struct {
	Quality int
	Title   string
}

// Encoder encodes a single image.
type Encoder interface {
	Encode(w io.Writer, img image.Image, o Options) error
	// Ext is the preferred file extension, without a dot.
	Ext() string
	// MIME is the content type of the encoded image.
	MIME() string
}

type pngEncoder struct{}

func (pngEncoder) Encode(w io.Writer, img image.Image, o Options) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}
func (pngEncoder) Ext() string  { return "png" }
func (pngEncoder) MIME() string { return "image/png" }

type jpegEncoder struct{}

func (jpegEncoder) Encode(w io.Writer, img image.Image, o Options) error {
	q := jpeg.DefaultQuality
	if o.Quality > 0 && o.Quality <= 100 {
		q = o.Quality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}
func (jpegEncoder) Ext() string  { return "jpg" }
func (jpegEncoder) MIME() string { return "image/jpeg" }

type gifEncoder struct{}

func (gifEncoder) Encode(w io.Writer, img image.Image, o Options) error {
	return gif.Encode(w, Paletted(img), nil)
}
func (gifEncoder) Ext() string  { return "gif" }
func (gifEncoder) MIME() string { return "image/gif" }

type bmpEncoder struct{}

func (bmpEncoder) Encode(w io.Writer, img image.Image, o Options) error {
	return bmp.Encode(w, img)
}
func (bmpEncoder) Ext() string  { return "bmp" }
func (bmpEncoder) MIME() string { return "image/bmp" }

var encoders = map[string]Encoder{
	"png":  pngEncoder{},
	"jpeg": jpegEncoder{},
	"jpg":  jpegEncoder{},
	"gif":  gifEncoder{},
	"bmp":  bmpEncoder{},
	"svg":  svgEncoder{},
}

// Lookup returns the encoder for a format name (case-insensitive).
func Lookup(format string) (Encoder, bool) {
	e, ok := encoders[strings.ToLower(format)]
	return e, ok
}

// Formats lists the supported format names.
func Formats() []string {
	var names []string
	for n := range encoders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Paletted converts img to a paletted image for GIF output. The first
// palette entry is transparent, so fully transparent pixels stay so; the
// rest of the palette is computed by median cut.
func Paletted(img image.Image) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, 255), img)
	pal = append(color.Palette{color.Transparent}, pal...)

	dst := image.NewPaletted(img.Bounds(), pal)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.At(x, y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue // index 0
			}
			dst.SetColorIndex(x, y, uint8(pal[1:].Index(c)+1))
		}
	}
	return dst
}
