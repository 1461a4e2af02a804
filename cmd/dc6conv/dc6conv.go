// Binary dc6conv converts DC6 sprite sheets into regular image files, one
// file per frame.
//
// Usage:
//
//	dc6conv [flags] [directory or dc6 path...]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-dc6/convert"
	"badc0de.net/pkg/go-dc6/encode"
	"badc0de.net/pkg/go-dc6/imageprint"
	"badc0de.net/pkg/go-dc6/palette"
	"badc0de.net/pkg/go-dc6/paths"
)

var (
	format           = flag.String("format", encode.DefaultFormat, "output image format")
	quality          = flag.Int("quality", -1, "output image quality in range 0-100 inclusive; doesn't apply to lossless formats")
	transparentColor = flag.String("transparent_color", "transparent", "color to use as transparent: #rgb, #rrggbb, #aarrggbb, or an SVG color name")
	outDir           = flag.String("out_dir", "", "where to save output files; defaults to each input file's directory")
	separateDir      = flag.Bool("separate_dir", false, "save multiframe images in a directory named after the input file")
	scale            = flag.Uint("scale", 1, "integer factor to upscale output images by")
	workers          = flag.Int("workers", 1, "number of files to convert at once")
	listFormats      = flag.Bool("list_formats", false, "print supported image formats and exit")

	preview     = flag.Bool("preview", false, "print frames on the terminal instead of writing files")
	previewMode = flag.String("preview_mode", "24bit", "terminal preview mode: 24bit, 256, none, iterm or rasterm")
	blanks      = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize    = flag.Bool("downsize", false, "whether to shrink previews to fit the terminal")

	palettePath string
)

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), figure.NewFigure("dc6conv", "", true).String())
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [directory or dc6 path...]\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintln(flag.CommandLine.Output())
	printFormats()
}

func printFormats() {
	fmt.Fprintf(flag.CommandLine.Output(), "Supported image output formats: %s\n", strings.Join(encode.Formats(), ", "))
}

func loadPalette() (*palette.Palette, error) {
	if palettePath == "" {
		glog.Warning("no -palette given, using embedded grayscale palette")
		return palette.Default(), nil
	}
	f, err := os.Open(palettePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return palette.Read(f)
}

func newSink() (convert.Sink, error) {
	if *preview {
		mode, err := imageprint.ParseMode(*previewMode)
		if err != nil {
			return nil, err
		}
		p := &imageprint.Printer{Mode: mode, Blanks: *blanks}
		if *downsize {
			p.Resize = fitTerminal(mode)
		}
		return p, nil
	}

	enc, ok := encode.Lookup(*format)
	if !ok {
		glog.Warningf("can't save using format %q, falling back to %s", *format, encode.DefaultFormat)
		enc, _ = encode.Lookup(encode.DefaultFormat)
	}
	q := *quality
	if q < -1 || q > 100 {
		glog.Warning("image quality exceeds valid range, default setting will be used")
		q = -1
	}
	if q == 0 {
		q = 1 // lowest quality; zero would select the default
	}
	return &encode.FileSink{
		OutDir:      *outDir,
		Encoder:     enc,
		Quality:     q,
		Scale:       *scale,
		SeparateDir: *separateDir,
	}, nil
}

func main() {
	paths.SetupFilePathFlag("units.pal", "palette", &palettePath)
	flag.Usage = usage
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	code := run(flag.Args())
	glog.Flush()
	os.Exit(code)
}

// run converts the files and directories in args and returns the exit
// code. Faulty files and frames are skipped and don't change it.
func run(args []string) int {
	if *listFormats {
		printFormats()
		return 0
	}
	if len(args) == 0 {
		usage()
		return 0
	}

	inputs, err := paths.Expand(args)
	if err != nil {
		glog.Errorf("%v", err)
		return 1
	}
	if len(inputs) == 0 {
		glog.Error("no input files specified")
		return 1
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			glog.Errorf("unable to create output directory at %s: %v", *outDir, err)
			return 1
		}
	}

	pal, err := loadPalette()
	if err != nil {
		glog.Errorf("error loading palette %s: %v", palettePath, err)
		return 1
	}
	transparent, err := encode.ParseColor(*transparentColor)
	if err != nil {
		glog.Warningf("%v; using fully transparent black", err)
	}
	sink, err := newSink()
	if err != nil {
		glog.Errorf("%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := *workers
	if *preview {
		w = 1 // frames of different files must not interleave on the terminal
	}
	c := &convert.Converter{
		Palette:     pal,
		Transparent: transparent,
		Sink:        sink,
		Workers:     w,
	}
	rep, err := c.Convert(ctx, inputs)
	for _, f := range rep.Failures {
		glog.Warningf("skipped %v", f)
	}
	glog.Infof("%d file(s), %d of %d frame(s) converted, %d skipped", rep.Files, rep.Emitted, rep.Frames, len(rep.Failures))
	if err != nil {
		glog.Errorf("conversion interrupted: %v", err)
		return 1
	}
	return 0
}
