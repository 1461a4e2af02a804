package dc6

// This file contains functions related to the image package's decoder
// registry, and to decoding all of the frames at once. It is modeled after
// the public interface of the image/gif package.

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dc6/palette"
)

// magic is the little-endian encoding of Version, Flags, Encoding.
const magic = "\x06\x00\x00\x00\x01\x00\x00\x00\x00\x00\x00\x00"

func init() {
	image.RegisterFormat("dc6", magic, Decode, DecodeConfig)
}

// Sprite is a fully decoded sprite sheet.
type Sprite struct {
	Header Header
	Frames []*Frame
}

// Direction returns the frames of direction d, in animation order.
func (s *Sprite) Direction(d int) []*Frame {
	fpd := int(s.Header.FramesPerDirection)
	if d < 0 || (d+1)*fpd > len(s.Frames) {
		return nil
	}
	return s.Frames[d*fpd : (d+1)*fpd]
}

// asReadSeeker returns r if it can seek, or an in-memory copy of the rest of
// it otherwise. image.Decode hands decoders a bufio.Reader, which can't.
func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, ioFailure(err, "buffering input")
	}
	return bytes.NewReader(b), nil
}

// DecodeAll decodes every frame of the sprite sheet read from r. It stops
// at the first frame that fails to decode.
func DecodeAll(r io.Reader, pal *palette.Palette, o *Options) (*Sprite, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}
	f, err := NewFile(rs)
	if err != nil {
		return nil, err
	}
	s := &Sprite{Header: f.Header, Frames: make([]*Frame, 0, f.FrameCount())}
	for i := 0; i < f.FrameCount(); i++ {
		fr, err := f.DecodeFrame(i, pal, o)
		if err != nil {
			return nil, err
		}
		s.Frames = append(s.Frames, fr)
	}
	return s, nil
}

// Decode returns the first frame of the sprite sheet read from r, rendered
// with the default palette.
func Decode(r io.Reader) (image.Image, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}
	f, err := NewFile(rs)
	if err != nil {
		return nil, err
	}
	if f.FrameCount() == 0 {
		return nil, errors.New("dc6: file has no frames")
	}
	fr, err := f.DecodeFrame(0, palette.Default(), nil)
	if err != nil {
		return nil, err
	}
	return fr.Image, nil
}

// DecodeConfig returns the dimensions of the first frame of the sprite sheet
// read from r.
func DecodeConfig(r io.Reader) (image.Config, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return image.Config{}, err
	}
	f, err := NewFile(rs)
	if err != nil {
		return image.Config{}, err
	}
	if f.FrameCount() == 0 {
		return image.Config{}, errors.New("dc6: file has no frames")
	}
	h, err := f.ReadFrameHeader(0)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
