package dc6

import (
	"fmt"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-dc6/palette"
)

var (
	// ErrInvalidHeader is returned when the magic fields of the file header
	// don't match, or when the frame count can't be addressed.
	ErrInvalidHeader = errors.New("dc6: invalid header")
	// ErrTruncatedFrame is returned when the stream ends inside a frame header.
	ErrTruncatedFrame = errors.New("dc6: truncated frame header")
	// ErrTruncatedRun is returned when the compressed pixel stream is shorter
	// than the frame header declares, or when a literal run reaches past its
	// declared end.
	ErrTruncatedRun = errors.New("dc6: truncated pixel run")
	// ErrPixelOverrun is returned when a run would write outside of the frame.
	ErrPixelOverrun = errors.New("dc6: pixel run overflows frame")
	// ErrEmptyFrame is returned for frames with no pixels.
	ErrEmptyFrame = errors.New("dc6: frame has zero width or height")
	// ErrFrameTooLarge is returned for frames larger than MaxFramePixels.
	ErrFrameTooLarge = errors.New("dc6: frame too large")
	// ErrIO is matched by every failure of the underlying reader or seeker
	// that is not classified as a truncation.
	ErrIO = errors.New("dc6: i/o failure")
)

// ioError keeps the underlying cause while still matching ErrIO.
type ioError struct {
	op  string
	err error
}

func (e *ioError) Error() string {
	return fmt.Sprintf("dc6: %s: %v", e.op, e.err)
}

func (e *ioError) Unwrap() error { return e.err }

func (e *ioError) Is(target error) bool { return target == ErrIO }

func ioFailure(err error, format string, args ...interface{}) error {
	return &ioError{op: fmt.Sprintf(format, args...), err: err}
}

// Kind names the fault class of err, for reports. It returns an empty string
// for nil and "Unknown" for errors that didn't originate in decoding.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, palette.ErrInvalidSize):
		return "InvalidPaletteSize"
	case errors.Is(err, ErrInvalidHeader):
		return "InvalidHeader"
	case errors.Is(err, ErrTruncatedFrame):
		return "TruncatedFrame"
	case errors.Is(err, ErrTruncatedRun):
		return "TruncatedRun"
	case errors.Is(err, ErrPixelOverrun):
		return "PixelOverrun"
	case errors.Is(err, ErrEmptyFrame):
		return "EmptyFrame"
	case errors.Is(err, ErrFrameTooLarge):
		return "FrameTooLarge"
	case errors.Is(err, ErrIO):
		return "IoFailure"
	default:
		return "Unknown"
	}
}
