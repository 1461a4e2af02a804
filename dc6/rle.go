package dc6

// This file contains the scan-line run-length decoder and the orientation
// fixup applied to its output.

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dc6/palette"
)

const (
	transparentRunBit = 0x80
	runCountMask      = 0x7F
)

// readRun reads exactly n bytes of compressed pixel data.
func readRun(r io.Reader, n uint32) ([]byte, error) {
	buf := bytes.Buffer{}
	got, err := buf.ReadFrom(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, ioFailure(err, "reading pixel data")
	}
	if got != int64(n) {
		return nil, errors.Wrapf(ErrTruncatedRun, "read %d bytes of pixel data, want %d", got, n)
	}
	return buf.Bytes(), nil
}

func fill(img *image.RGBA, c color.RGBA) {
	if c == (color.RGBA{}) {
		return // NewRGBA already zeroed it
	}
	px := []byte{c.R, c.G, c.B, c.A}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], px)
	}
}

// decodeRLE expands data into img, which must be freshly allocated with
// the stride of its width. It returns the final cursor position.
//
// Each control byte with the high bit set either skips its low 7 bits worth
// of pixels or, if they are zero, moves the cursor to the start of the next
// scan line. A control byte without the high bit is followed by that many
// palette indices, written one after another.
func decodeRLE(img *image.RGBA, data []byte, pal *palette.Palette) (int, error) {
	width := img.Rect.Dx()
	total := width * img.Rect.Dy()

	pos := 0
	for consumed := 0; consumed < len(data); {
		b := data[consumed]
		consumed++
		count := int(b & runCountMask)

		if b&transparentRunBit != 0 {
			if count > 0 {
				pos += count
			} else {
				pos = (pos/width + 1) * width
			}
			continue
		}

		if count > len(data)-consumed {
			return pos, errors.Wrapf(ErrTruncatedRun, "literal run of %d at byte %d, only %d bytes left", count, consumed-1, len(data)-consumed)
		}
		if pos+count > total {
			return pos, errors.Wrapf(ErrPixelOverrun, "literal run of %d at pixel %d, frame has %d pixels", count, pos, total)
		}
		for _, idx := range data[consumed : consumed+count] {
			c := pal.At(idx)
			o := pos * 4
			img.Pix[o+0] = c.R
			img.Pix[o+1] = c.G
			img.Pix[o+2] = c.B
			img.Pix[o+3] = c.A
			pos++
		}
		consumed += count

		// A run that ends on a scan line boundary is normally followed by an
		// end-of-line marker, which must still see the cursor on this line.
		if pos > 0 && pos%width == 0 {
			pos--
		}
	}
	return pos, nil
}

// flipVertical reverses the order of img's rows in place.
func flipVertical(img *image.RGBA) {
	rowLen := img.Rect.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := 0, img.Rect.Dy()-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*img.Stride : top*img.Stride+rowLen]
		b := img.Pix[bottom*img.Stride : bottom*img.Stride+rowLen]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
