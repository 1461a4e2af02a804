// Package imageprint previews decoded frames on a terminal.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"

	"github.com/gookit/color"

	"badc0de.net/pkg/go-dc6/convert"
)

// Mode selects how pixels are drawn.
type Mode int

const (
	Mode24Bit    Mode = iota // 24-bit background color escapes
	Mode256Color             // gookit/color, which degrades to what the terminal supports
	ModeNoColor              // no escapes at all; only makes sense without Blanks
	ModeITerm                // iTerm2 inline PNG
	ModeRasTerm              // kitty, iTerm or sixel, whichever the terminal speaks
)

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "24bit", "":
		return Mode24Bit, nil
	case "256":
		return Mode256Color, nil
	case "none":
		return ModeNoColor, nil
	case "iterm":
		return ModeITerm, nil
	case "rasterm":
		return ModeRasTerm, nil
	}
	return 0, fmt.Errorf("unknown preview mode %q; want 24bit, 256, none, iterm or rasterm", s)
}

// Printer prints images. The zero value prints 24-bit escapes to stdout.
type Printer struct {
	Out    io.Writer
	Mode   Mode
	Blanks bool // colored blanks instead of ascii art shading

	// Resize, if set, is applied before printing; used to fit the terminal.
	Resize func(image.Image) image.Image
}

func (p *Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Emit prints a decoded frame with a caption; it lets a Printer serve as a
// convert.Sink.
func (p *Printer) Emit(ctx context.Context, o *convert.Output) error {
	fmt.Fprintf(p.out(), "%s: frame %d (direction %d, frame %d), %dx%d\n", o.Path, o.Index, o.Direction, o.FrameInDirection, o.Width, o.Height)
	var img image.Image = o.Image
	if p.Resize != nil {
		img = p.Resize(img)
	}
	return p.Print(img)
}

// Print draws img.
func (p *Printer) Print(img image.Image) error {
	switch p.Mode {
	case ModeITerm:
		return p.printITerm(img, "frame.png")
	case ModeRasTerm:
		return printRasTerm(p.out(), img)
	}

	w := p.out()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.shade(w, img.At(x, y))
		}
		if p.Mode != ModeNoColor {
			fmt.Fprint(w, "\x1b[0m")
		}
		fmt.Fprint(w, "\n")
	}
	return nil
}

func (p *Printer) shade(w io.Writer, col ic.Color) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if p.Mode == ModeNoColor {
			fmt.Fprint(w, "  ")
		} else {
			fmt.Fprint(w, "\x1b[0m  ")
		}
		return
	}

	cell := "  "
	if !p.Blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	switch p.Mode {
	case ModeNoColor:
		fmt.Fprint(w, cell)
	case Mode256Color:
		fmt.Fprint(w, color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true).Sprint(cell))
	default:
		fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), cell)
	}
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(p.out(), "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Dx(), i.Bounds().Dy(), b.String())
	return err
}
