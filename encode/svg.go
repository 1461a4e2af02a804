package encode

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"io"
)

type svgEncoder struct{}

func (svgEncoder) Ext() string  { return "svg" }
func (svgEncoder) MIME() string { return "image/svg+xml" }

// Encode draws every horizontal run of identical visible pixels as one
// rectangle, on a canvas the size of the image.
func (svgEncoder) Encode(w io.Writer, img image.Image, o Options) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`+"\n")
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n",
		b.Dx(), b.Dy(), b.Dx(), b.Dy())
	if o.Title != "" {
		bw.WriteString("<title>")
		if err := xml.EscapeText(bw, []byte(o.Title)); err != nil {
			return err
		}
		bw.WriteString("</title>\n")
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			run := 1
			for x+run < b.Max.X && color.NRGBAModel.Convert(img.At(x+run, y)).(color.NRGBA) == c {
				run++
			}
			if c.A != 0 {
				fmt.Fprintf(bw, `<rect x="%d" y="%d" width="%d" height="1" fill="#%02x%02x%02x"`, x-b.Min.X, y-b.Min.Y, run, c.R, c.G, c.B)
				if c.A != 0xFF {
					fmt.Fprintf(bw, ` fill-opacity="%.3f"`, float64(c.A)/0xFF)
				}
				bw.WriteString("/>\n")
			}
			x += run
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
