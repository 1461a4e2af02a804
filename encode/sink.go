package encode

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/glog"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dc6/convert"
)

// FileSink writes every frame it receives to its own image file.
//
// Single-frame inputs produce <base>.<ext>. Multi-frame inputs produce
// <base>_<n>.<ext>, or <base>/<n>.<ext> with SeparateDir. Files go to OutDir,
// or next to the input file if OutDir is empty.
type FileSink struct {
	OutDir      string
	Encoder     Encoder
	Quality     int  // see Options; zero is the encoder's default
	Scale       uint // integer upscaling factor; 0 and 1 keep the size
	SeparateDir bool
}

// Path returns the file name out will be written to.
func (s *FileSink) Path(out *convert.Output) string {
	dir := s.OutDir
	if dir == "" {
		dir = filepath.Dir(out.Path)
	}
	ext := "." + s.encoder().Ext()
	if out.Frames <= 1 {
		return filepath.Join(dir, out.Base+ext)
	}
	n := strconv.Itoa(out.Index)
	if s.SeparateDir {
		return filepath.Join(dir, out.Base, n+ext)
	}
	return filepath.Join(dir, out.Base+"_"+n+ext)
}

func (s *FileSink) encoder() Encoder {
	if s.Encoder == nil {
		e, _ := Lookup(DefaultFormat)
		return e
	}
	return s.Encoder
}

// Emit implements convert.Sink.
func (s *FileSink) Emit(ctx context.Context, out *convert.Output) error {
	fn := s.Path(out)
	if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", fn)
	}

	var img image.Image = out.Image
	if s.Scale > 1 {
		img = resize.Resize(uint(out.Width)*s.Scale, uint(out.Height)*s.Scale, img, resize.NearestNeighbor)
	}

	glog.V(1).Infof("save image to %s", fn)
	f, err := os.Create(fn)
	if err != nil {
		return errors.Wrapf(err, "creating %s", fn)
	}
	title := out.Base
	if out.Frames > 1 {
		title += " " + strconv.Itoa(out.Index)
	}
	if err := s.encoder().Encode(f, img, Options{Quality: s.Quality, Title: title}); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", fn)
	}
	return errors.Wrapf(f.Close(), "closing %s", fn)
}
