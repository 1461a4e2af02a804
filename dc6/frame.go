package dc6

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dc6/palette"
)

// MaxFramePixels bounds width*height of a single frame.
const MaxFramePixels = 1 << 24

const frameHeaderSize = 32

// FrameHeader precedes every frame's compressed pixel data.
type FrameHeader struct {
	Flipped        uint32 // nonzero: scan lines are stored top-down
	Width          uint32
	Height         uint32
	OffsetX        uint32
	OffsetY        uint32
	Reserved       uint32
	NextFrameIndex uint32
	Length         uint32 // size of the compressed pixel data, in bytes
}

// Offset returns the frame's positioning offset. The fields are stored as
// unsigned words but hold signed values.
func (h FrameHeader) Offset() image.Point {
	return image.Pt(int(int32(h.OffsetX)), int(int32(h.OffsetY)))
}

// IsFlipped reports whether scan lines are stored top-down.
func (h FrameHeader) IsFlipped() bool {
	return h.Flipped != 0
}

// Options tune frame decoding.
type Options struct {
	// Transparent is the color of pixels not covered by any literal run.
	Transparent color.RGBA
}

// Frame is a single decoded frame.
type Frame struct {
	Index            int // in storage order
	Direction        int
	FrameInDirection int
	Header           FrameHeader
	Image            *image.RGBA
}

// readFrameHeader reads a frame header from r, leaving r positioned at the
// start of the compressed pixel data.
func readFrameHeader(r io.Reader) (FrameHeader, error) {
	var raw [frameHeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return FrameHeader{}, errors.Wrap(ErrTruncatedFrame, err.Error())
		}
		return FrameHeader{}, ioFailure(err, "reading frame header")
	}
	word := func(i int) uint32 { return binary.LittleEndian.Uint32(raw[i*4:]) }
	return FrameHeader{
		Flipped:        word(0),
		Width:          word(1),
		Height:         word(2),
		OffsetX:        word(3),
		OffsetY:        word(4),
		Reserved:       word(5),
		NextFrameIndex: word(6),
		Length:         word(7),
	}, nil
}

// ReadFrameHeader seeks to frame i and reads its header.
func (f *File) ReadFrameHeader(i int) (FrameHeader, error) {
	if err := f.seekFrame(i); err != nil {
		return FrameHeader{}, err
	}
	h, err := readFrameHeader(f.r)
	if err != nil {
		return FrameHeader{}, errors.Wrapf(err, "frame %d", i)
	}
	return h, nil
}

// DecodeFrame decodes frame i (in storage order) using the passed palette.
// A nil Options means a fully transparent black background.
//
// On error no partially decoded image is returned.
func (f *File) DecodeFrame(i int, pal *palette.Palette, o *Options) (*Frame, error) {
	if o == nil {
		o = &Options{}
	}
	h, err := f.ReadFrameHeader(i)
	if err != nil {
		return nil, err
	}
	img, err := decodeFrameData(f.r, h, pal, o.Transparent)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d (%dx%d, %d bytes)", i, h.Width, h.Height, h.Length)
	}
	dir, fr := f.Position(i)
	return &Frame{
		Index:            i,
		Direction:        dir,
		FrameInDirection: fr,
		Header:           h,
		Image:            img,
	}, nil
}

// DecodeUpcoming decodes a single frame (header and pixel data) at the
// current position of r. It's useful for frames extracted from containers
// other than DC6 files.
func DecodeUpcoming(r io.Reader, pal *palette.Palette, o *Options) (FrameHeader, *image.RGBA, error) {
	if o == nil {
		o = &Options{}
	}
	h, err := readFrameHeader(r)
	if err != nil {
		return FrameHeader{}, nil, err
	}
	img, err := decodeFrameData(r, h, pal, o.Transparent)
	if err != nil {
		return h, nil, err
	}
	return h, img, nil
}

func decodeFrameData(r io.Reader, h FrameHeader, pal *palette.Palette, transparent color.RGBA) (*image.RGBA, error) {
	if h.Width == 0 || h.Height == 0 {
		return nil, ErrEmptyFrame
	}
	if uint64(h.Width)*uint64(h.Height) > MaxFramePixels {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%dx%d", h.Width, h.Height)
	}

	data, err := readRun(r, h.Length)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, int(h.Width), int(h.Height)))
	fill(img, transparent)
	if _, err := decodeRLE(img, data, pal); err != nil {
		return nil, err
	}
	if !h.IsFlipped() {
		flipVertical(img)
	}
	return img, nil
}
