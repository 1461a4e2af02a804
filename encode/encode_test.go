package encode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"badc0de.net/pkg/go-dc6/convert"
	"badc0de.net/pkg/go-dc6/ttesting"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	red := color.RGBA{R: 255, A: 255}
	img.SetRGBA(0, 0, red)
	img.SetRGBA(1, 0, red)
	img.SetRGBA(3, 1, color.RGBA{B: 255, A: 255})
	return img
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"png", "PNG", "jpeg", "jpg", "gif", "bmp", "svg"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("format %q not found", name)
		}
	}
	if _, ok := Lookup("tga"); ok {
		t.Errorf("unexpected tga encoder")
	}
	e, _ := Lookup("jpeg")
	ttesting.AssertEqualString(t, "jpeg extension", e.Ext(), "jpg")
	ttesting.AssertEqualInt(t, "format count", len(Formats()), 6)
}

func TestSVG(t *testing.T) {
	e, _ := Lookup("svg")
	buf := &bytes.Buffer{}
	if err := e.Encode(buf, testImage(), Options{Title: "a<b"}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := buf.String()
	for _, want := range []string{
		`width="4" height="2"`,
		`<title>a&lt;b</title>`,
		`<rect x="0" y="0" width="2" height="1" fill="#ff0000"/>`,
		`<rect x="3" y="1" width="1" height="1" fill="#0000ff"/>`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("svg lacks %q:\n%s", want, s)
		}
	}
	ttesting.AssertEqualInt(t, "rect count", strings.Count(s, "<rect"), 2)
}

func TestGIFKeepsTransparency(t *testing.T) {
	e, _ := Lookup("gif")
	buf := &bytes.Buffer{}
	if err := e.Encode(buf, testImage(), Options{}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img, err := gif.Decode(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, _, _, a := img.At(2, 0).RGBA(); a != 0 {
		t.Errorf("transparent pixel became opaque")
	}
	if r, _, _, a := img.At(0, 0).RGBA(); a == 0 || r < 0xF000 {
		t.Errorf("red pixel lost: %v", img.At(0, 0))
	}
}

func TestBMP(t *testing.T) {
	e, _ := Lookup("bmp")
	buf := &bytes.Buffer{}
	if err := e.Encode(buf, testImage(), Options{}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	cfg, err := bmp.DecodeConfig(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", cfg.Width, 4)
}

func TestJPEGZeroQualityIsDefault(t *testing.T) {
	e, _ := Lookup("jpg")
	encodeAt := func(q int) []byte {
		buf := &bytes.Buffer{}
		if err := e.Encode(buf, testImage(), Options{Quality: q}); err != nil {
			t.Fatalf("encode at quality %d failed: %v", q, err)
		}
		return buf.Bytes()
	}
	def := encodeAt(jpeg.DefaultQuality)
	if !bytes.Equal(encodeAt(0), def) {
		t.Errorf("zero quality differs from the default")
	}
	if !bytes.Equal(encodeAt(-1), def) {
		t.Errorf("negative quality differs from the default")
	}
	if bytes.Equal(encodeAt(1), def) {
		t.Errorf("quality 1 encoded like the default")
	}
}

func TestFileSinkNaming(t *testing.T) {
	e, _ := Lookup("png")
	out := &convert.Output{Path: filepath.Join("in", "hero.dc6"), Base: "hero", Index: 3, Frames: 8}
	single := &convert.Output{Path: filepath.Join("in", "hero.dc6"), Base: "hero", Frames: 1}

	ttesting.AssertEqualString(t, "next to input", (&FileSink{Encoder: e}).Path(out), filepath.Join("in", "hero_3.png"))
	ttesting.AssertEqualString(t, "out dir", (&FileSink{Encoder: e, OutDir: "out"}).Path(out), filepath.Join("out", "hero_3.png"))
	ttesting.AssertEqualString(t, "separate dir", (&FileSink{Encoder: e, OutDir: "out", SeparateDir: true}).Path(out), filepath.Join("out", "hero", "3.png"))
	ttesting.AssertEqualString(t, "single frame", (&FileSink{Encoder: e, SeparateDir: true}).Path(single), filepath.Join("in", "hero.png"))
}

func TestFileSinkEmit(t *testing.T) {
	dir := t.TempDir()
	e, _ := Lookup("png")
	s := &FileSink{OutDir: dir, Encoder: e, Scale: 3, SeparateDir: true}
	img := testImage()
	out := &convert.Output{Path: "x.dc6", Base: "x", Index: 1, Frames: 2, Width: 4, Height: 2, Image: img}

	if err := s.Emit(context.Background(), out); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "x", "1.png"))
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatalf("bad png: %v", err)
	}
	ttesting.AssertEqualInt(t, "scaled width", got.Bounds().Dx(), 12)
	ttesting.AssertEqualInt(t, "scaled height", got.Bounds().Dy(), 6)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"transparent", color.RGBA{}},
		{"magenta", color.RGBA{R: 255, B: 255, A: 255}},
		{"#f00", color.RGBA{R: 255, A: 255}},
		{"#00ff00", color.RGBA{G: 255, A: 255}},
		{"#80ffffff", color.RGBA{R: 128, G: 128, B: 128, A: 128}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		ttesting.AssertEqualRGBA(t, tt.in, got, tt.want)
	}
	for _, bad := range []string{"nocolor", "#12345", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) accepted", bad)
		}
	}
}
