package dc6

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"testing"

	"badc0de.net/pkg/go-dc6/dc6/dc6test"
	"badc0de.net/pkg/go-dc6/palette"
	"badc0de.net/pkg/go-dc6/ttesting"
)

func twoByTwoSheet() []byte {
	var frames []dc6test.Frame
	for i := 0; i < 6; i++ {
		frames = append(frames, dc6test.Frame{
			Flipped: i%2 == 0,
			Width:   2,
			Height:  2,
			OffsetX: int32(-i),
			OffsetY: int32(i),
			Data:    dc6test.EncodeRows(dc6test.Fill(2, 2, i)),
		})
	}
	return dc6test.Build(dc6test.File{Directions: 3, FramesPerDirection: 2, Frames: frames})
}

func TestNewFile(t *testing.T) {
	f, err := NewFile(bytes.NewReader(twoByTwoSheet()))
	if err != nil {
		t.Fatalf("failed to read dc6 header: %v", err)
	}

	ttesting.AssertEqualUint32(t, "directions", f.Header.Directions, 3)
	ttesting.AssertEqualUint32(t, "frames per direction", f.Header.FramesPerDirection, 2)
	ttesting.AssertEqualInt(t, "frame count is directions times frames", f.FrameCount(), 6)
	ttesting.AssertEqualInt(t, "offset table length", len(f.FrameOffsets()), 6)

	for i := 0; i < f.FrameCount(); i++ {
		h, err := f.ReadFrameHeader(i)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		ttesting.AssertEqualUint32(t, fmt.Sprintf("frame %d width", i), h.Width, 2)
		ttesting.AssertEqualInt(t, fmt.Sprintf("frame %d offset x", i), h.Offset().X, -i)
		ttesting.AssertEqualInt(t, fmt.Sprintf("frame %d offset y", i), h.Offset().Y, i)
	}

	dir, fr := f.Position(5)
	ttesting.AssertEqualInt(t, "direction of frame 5", dir, 2)
	ttesting.AssertEqualInt(t, "frame in direction of frame 5", fr, 1)
	ttesting.AssertEqualInt(t, "index of 2/1", f.Index(2, 1), 5)
}

func TestNewFileInvalidMagic(t *testing.T) {
	for _, m := range [][3]uint32{{5, 1, 0}, {6, 0, 0}, {6, 1, 1}} {
		m := m
		b := dc6test.Build(dc6test.File{Magic: &m, Directions: 1, FramesPerDirection: 1})
		r := bytes.NewReader(b)
		_, err := NewFile(r)
		ttesting.AssertErrorIs(t, fmt.Sprintf("magic %v", m), err, ErrInvalidHeader)
		if pos := r.Size() - int64(r.Len()); pos != 12 {
			t.Errorf("magic %v: reader advanced to %d, want 12", m, pos)
		}
	}
}

func TestNewFileOffsetTableTooLarge(t *testing.T) {
	b := dc6test.Build(dc6test.File{Directions: 2, FramesPerDirection: 2})
	_, err := NewFile(bytes.NewReader(b[:len(b)-4]))
	ttesting.AssertErrorIs(t, "short table", err, ErrInvalidHeader)

	b = dc6test.Build(dc6test.File{})
	copy(b[16:], []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	_, err = NewFile(bytes.NewReader(b))
	ttesting.AssertErrorIs(t, "overflowing frame count", err, ErrInvalidHeader)
}

func TestDecodeFrameOrientation(t *testing.T) {
	pal := testPalette(t)
	// Two rows, one pixel each, stored as index 1 then index 2.
	data := dc6test.EncodeRows([][]int{{1}, {2}})
	b := dc6test.Build(dc6test.File{
		Directions:         1,
		FramesPerDirection: 2,
		Frames: []dc6test.Frame{
			{Flipped: false, Width: 1, Height: 2, Data: data},
			{Flipped: true, Width: 1, Height: 2, Data: data},
		},
	})
	f, err := NewFile(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("failed to read dc6 header: %v", err)
	}

	bottomUp, err := f.DecodeFrame(0, pal, nil)
	if err != nil {
		t.Fatalf("frame 0: %v", err)
	}
	topDown, err := f.DecodeFrame(1, pal, nil)
	if err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	ttesting.AssertEqualRGBA(t, "top-down frame keeps first row on top", topDown.Image.RGBAAt(0, 0), pal.At(1))
	ttesting.AssertEqualRGBA(t, "top-down frame keeps second row at bottom", topDown.Image.RGBAAt(0, 1), pal.At(2))
	ttesting.AssertEqualRGBA(t, "bottom-up frame reverses rows (top)", bottomUp.Image.RGBAAt(0, 0), pal.At(2))
	ttesting.AssertEqualRGBA(t, "bottom-up frame reverses rows (bottom)", bottomUp.Image.RGBAAt(0, 1), pal.At(1))
}

func TestDecodeFrameTransparentColor(t *testing.T) {
	pal := testPalette(t)
	T := dc6test.Transparent
	b := dc6test.Build(dc6test.File{
		Directions:         1,
		FramesPerDirection: 1,
		Frames: []dc6test.Frame{
			{Flipped: true, Width: 3, Height: 1, Data: dc6test.EncodeRows([][]int{{T, 9, T}})},
		},
	})
	f, err := NewFile(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("failed to read dc6 header: %v", err)
	}
	magenta := color.RGBA{R: 255, B: 255, A: 255}
	fr, err := f.DecodeFrame(0, pal, &Options{Transparent: magenta})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	ttesting.AssertEqualRGBA(t, "left", fr.Image.RGBAAt(0, 0), magenta)
	ttesting.AssertEqualRGBA(t, "middle", fr.Image.RGBAAt(1, 0), pal.At(9))
	ttesting.AssertEqualRGBA(t, "right", fr.Image.RGBAAt(2, 0), magenta)
}

func TestDecodeFrameFaults(t *testing.T) {
	pal := testPalette(t)
	full := dc6test.EncodeRows(dc6test.Fill(2, 2, 3))

	tests := []struct {
		name  string
		frame dc6test.Frame
		cut   int
		want  error
	}{
		{
			name:  "stream shorter than declared length",
			frame: dc6test.Frame{Width: 2, Height: 2, Data: full, Length: uint32(len(full) + 5)},
			want:  ErrTruncatedRun,
		},
		{
			name:  "frame header cut short",
			frame: dc6test.Frame{Width: 2, Height: 2, Data: full},
			cut:   len(full) + 10,
			want:  ErrTruncatedFrame,
		},
		{
			name:  "run writes past the frame",
			frame: dc6test.Frame{Width: 2, Height: 2, Data: []byte{0x05, 1, 1, 1, 1, 1}},
			want:  ErrPixelOverrun,
		},
		{
			name:  "zero width",
			frame: dc6test.Frame{Width: 0, Height: 2, Data: full},
			want:  ErrEmptyFrame,
		},
		{
			name:  "huge frame",
			frame: dc6test.Frame{Width: 1 << 16, Height: 1 << 16, Data: full},
			want:  ErrFrameTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := dc6test.Build(dc6test.File{Directions: 1, FramesPerDirection: 1, Frames: []dc6test.Frame{tt.frame}})
			b = b[:len(b)-tt.cut]
			f, err := NewFile(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("failed to read dc6 header: %v", err)
			}
			fr, err := f.DecodeFrame(0, pal, nil)
			if fr != nil {
				t.Errorf("got a frame despite the fault")
			}
			ttesting.AssertErrorIs(t, "fault kind", err, tt.want)
		})
	}
}

func TestKind(t *testing.T) {
	ttesting.AssertEqualString(t, "nil", Kind(nil), "")
	ttesting.AssertEqualString(t, "palette", Kind(palette.ErrInvalidSize), "InvalidPaletteSize")
	ttesting.AssertEqualString(t, "run", Kind(fmt.Errorf("frame 3: %w", ErrTruncatedRun)), "TruncatedRun")
	ttesting.AssertEqualString(t, "io", Kind(ioFailure(fmt.Errorf("disk on fire"), "seeking")), "IoFailure")
	ttesting.AssertEqualString(t, "other", Kind(fmt.Errorf("nope")), "Unknown")
}

func TestDecodeAll(t *testing.T) {
	s, err := DecodeAll(bytes.NewBuffer(twoByTwoSheet()), palette.Default(), nil)
	if err != nil {
		t.Fatalf("failed to decode sheet: %v", err)
	}
	ttesting.AssertEqualInt(t, "frames", len(s.Frames), 6)
	dir := s.Direction(1)
	ttesting.AssertEqualInt(t, "frames in direction 1", len(dir), 2)
	ttesting.AssertEqualInt(t, "first frame of direction 1", dir[0].Index, 2)
	ttesting.AssertEqualRGBA(t, "frame 3 pixel", s.Frames[3].Image.RGBAAt(1, 1), palette.Default().At(3))
	if s.Direction(3) != nil {
		t.Errorf("direction 3 should not exist")
	}
}

func TestImageDecodeRegistered(t *testing.T) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(twoByTwoSheet()))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	ttesting.AssertEqualString(t, "format", format, "dc6")
	ttesting.AssertEqualInt(t, "width", cfg.Width, 2)
	ttesting.AssertEqualInt(t, "height", cfg.Height, 2)

	img, _, err := image.Decode(bytes.NewReader(twoByTwoSheet()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	ttesting.AssertEqualInt(t, "decoded width", img.Bounds().Dx(), 2)
}
