package imageprint

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"badc0de.net/pkg/go-dc6/convert"
	"badc0de.net/pkg/go-dc6/ttesting"
)

func TestPrintNoColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetRGBA(2, 1, color.RGBA{A: 255})

	buf := &bytes.Buffer{}
	p := &Printer{Out: buf, Mode: ModeNoColor}
	if err := p.Print(img); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	ttesting.AssertEqualString(t, "ascii art", buf.String(), "##    \n    ..\n")
}

func TestPrint24Bit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	buf := &bytes.Buffer{}
	p := &Printer{Out: buf, Blanks: true}
	if err := p.Print(img); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[48;2;10;20;30m  ") {
		t.Errorf("missing color escape in %q", buf.String())
	}
}

func TestEmitCaption(t *testing.T) {
	buf := &bytes.Buffer{}
	p := &Printer{Out: buf, Mode: ModeNoColor}
	out := &convert.Output{Path: "a.dc6", Index: 2, Direction: 1, FrameInDirection: 0, Width: 1, Height: 1, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	if err := p.Emit(context.Background(), out); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "a.dc6: frame 2 (direction 1, frame 0), 1x1\n") {
		t.Errorf("unexpected caption in %q", buf.String())
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": Mode24Bit, "256": Mode256Color, "rasterm": ModeRasTerm} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("vga"); err == nil {
		t.Errorf("unknown mode accepted")
	}
}
