// Package convert runs DC6 files through the decoder and hands every
// successfully decoded frame to a Sink.
//
// Faults never stop a batch: a file with a bad header is skipped, a frame
// that fails to decode is skipped, and everything else is still converted.
// Each skipped file or frame is recorded as a Failure.
package convert

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-dc6/dc6"
	"badc0de.net/pkg/go-dc6/palette"
)

// Output is a decoded frame, handed to a Sink.
type Output struct {
	Path string // input file, as passed to the converter
	Base string // input file name without directory and extension

	Index            int // frame index in storage order
	Direction        int
	FrameInDirection int
	Frames           int // total frames in the input file

	Width, Height int
	Header        dc6.FrameHeader
	Image         *image.RGBA
}

// Sink receives decoded frames. With more than one worker, Emit is called
// concurrently for different files.
type Sink interface {
	Emit(ctx context.Context, out *Output) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, out *Output) error

func (f SinkFunc) Emit(ctx context.Context, out *Output) error {
	return f(ctx, out)
}

// FileLevel is the Frame value of failures that concern a whole file.
const FileLevel = -1

// Failure records a skipped file or frame.
type Failure struct {
	Path  string
	Frame int // FileLevel if the whole file was skipped
	Err   error
}

// Kind names the class of the failure.
func (f Failure) Kind() string {
	if errors.Is(f.Err, errEncode) {
		return "EncodeFailure"
	}
	return dc6.Kind(f.Err)
}

func (f Failure) Error() string {
	if f.Frame == FileLevel {
		return fmt.Sprintf("%s: %s: %v", f.Path, f.Kind(), f.Err)
	}
	return fmt.Sprintf("%s: frame %d: %s: %v", f.Path, f.Frame, f.Kind(), f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

var errEncode = errors.New("sink rejected frame")

// Result summarizes the conversion of one file.
type Result struct {
	Path     string
	Frames   int // frames declared by the file
	Emitted  int // frames handed to the sink
	Failures []Failure
}

// Report summarizes a batch.
type Report struct {
	Files    int
	Frames   int
	Emitted  int
	Failures []Failure
}

func (r *Report) add(res Result) {
	r.Files++
	r.Frames += res.Frames
	r.Emitted += res.Emitted
	r.Failures = append(r.Failures, res.Failures...)
}

// Converter decodes files with a shared palette.
type Converter struct {
	Palette     *palette.Palette
	Transparent color.RGBA
	Sink        Sink
	// Workers bounds how many files are converted at once; 0 or 1 converts
	// them one after another.
	Workers int
}

func (c *Converter) pal() *palette.Palette {
	if c.Palette == nil {
		return palette.Default()
	}
	return c.Palette
}

// Convert converts every file in paths. Context cancellation stops the batch
// between frames; the report then covers the work done so far, and the
// context's error is returned.
func (c *Converter) Convert(ctx context.Context, paths []string) (*Report, error) {
	rep := &Report{}

	if c.Workers <= 1 {
		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			rep.add(c.ConvertFile(ctx, p))
		}
		return rep, ctx.Err()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := c.ConvertFile(gctx, p)
			mu.Lock()
			rep.add(res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	sort.SliceStable(rep.Failures, func(i, j int) bool {
		a, b := rep.Failures[i], rep.Failures[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Frame < b.Frame
	})
	if err == nil {
		err = ctx.Err()
	}
	return rep, err
}

// ConvertFile opens and converts a single file.
func (c *Converter) ConvertFile(ctx context.Context, path string) Result {
	f, err := os.Open(path)
	if err != nil {
		glog.Errorf("error opening dc6 file %s: %v", path, err)
		return Result{Path: path, Failures: []Failure{{Path: path, Frame: FileLevel, Err: errors.Wrap(dc6.ErrIO, err.Error())}}}
	}
	defer f.Close()
	return c.ConvertReader(ctx, path, f)
}

// ConvertReader converts the DC6 file read from rs; name is used for
// reporting and output naming.
func (c *Converter) ConvertReader(ctx context.Context, name string, rs io.ReadSeeker) Result {
	res := Result{Path: name}
	glog.V(1).Infof("processing file %s", name)

	file, err := dc6.NewFile(rs)
	if err != nil {
		glog.Errorf("skipping file %s: %v", name, err)
		res.Failures = append(res.Failures, Failure{Path: name, Frame: FileLevel, Err: err})
		return res
	}
	res.Frames = file.FrameCount()
	glog.V(1).Infof("%d direction(s) with %d frame(s) = %d frames total", file.Header.Directions, file.Header.FramesPerDirection, res.Frames)

	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	opts := &dc6.Options{Transparent: c.Transparent}

	for i := 0; i < file.FrameCount(); i++ {
		if ctx.Err() != nil {
			return res
		}
		fr, err := file.DecodeFrame(i, c.pal(), opts)
		if err != nil {
			glog.Errorf("skipping frame %d of %s: %v", i, name, err)
			res.Failures = append(res.Failures, Failure{Path: name, Frame: i, Err: err})
			continue
		}
		glog.V(2).Infof("frame %d: width = %d, height = %d, length = %d", i, fr.Header.Width, fr.Header.Height, fr.Header.Length)

		out := &Output{
			Path:             name,
			Base:             base,
			Index:            i,
			Direction:        fr.Direction,
			FrameInDirection: fr.FrameInDirection,
			Frames:           res.Frames,
			Width:            fr.Image.Rect.Dx(),
			Height:           fr.Image.Rect.Dy(),
			Header:           fr.Header,
			Image:            fr.Image,
		}
		if c.Sink == nil {
			res.Emitted++
			continue
		}
		if err := c.Sink.Emit(ctx, out); err != nil {
			glog.Errorf("error saving frame %d of %s: %v", i, name, err)
			res.Failures = append(res.Failures, Failure{Path: name, Frame: i, Err: errors.Wrap(errEncode, err.Error())})
			continue
		}
		res.Emitted++
	}
	return res
}
