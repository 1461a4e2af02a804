package dc6

// This file contains the container-level reader: the file header and the
// frame offset table.

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	// Version, Flags and Encoding hold the only values of the leading header
	// fields that this package accepts.
	Version  = 6
	Flags    = 1
	Encoding = 0

	// MaxFrames bounds the number of frames a single file may declare.
	MaxFrames = 1 << 20

	headerSize = 24
)

// Header is the file header of a DC6 sprite sheet.
type Header struct {
	Version            uint32
	Flags              uint32
	Encoding           uint32
	Terminator         uint32 // unused
	Directions         uint32
	FramesPerDirection uint32
}

// File is an opened DC6 sprite sheet. Frames are decoded on demand, by
// seeking to their offsets in the underlying reader.
//
// A File is not safe for concurrent use, as all frames share the reader's
// cursor.
type File struct {
	Header Header

	offsets []uint32
	r       io.ReadSeeker
}

// NewFile reads the header and the frame offset table from r, which must be
// positioned at the start of a DC6 file.
func NewFile(r io.ReadSeeker) (*File, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:12]); err != nil {
		return nil, errors.Wrapf(ErrInvalidHeader, "could not read magic: %v", err)
	}
	h := Header{
		Version:  binary.LittleEndian.Uint32(raw[0:]),
		Flags:    binary.LittleEndian.Uint32(raw[4:]),
		Encoding: binary.LittleEndian.Uint32(raw[8:]),
	}
	if h.Version != Version || h.Flags != Flags || h.Encoding != Encoding {
		return nil, errors.Wrapf(ErrInvalidHeader, "got magic %d/%d/%d, want %d/%d/%d",
			h.Version, h.Flags, h.Encoding, Version, Flags, Encoding)
	}
	if _, err := io.ReadFull(r, raw[12:]); err != nil {
		return nil, errors.Wrapf(ErrInvalidHeader, "could not read frame layout: %v", err)
	}
	h.Terminator = binary.LittleEndian.Uint32(raw[12:])
	h.Directions = binary.LittleEndian.Uint32(raw[16:])
	h.FramesPerDirection = binary.LittleEndian.Uint32(raw[20:])

	total := uint64(h.Directions) * uint64(h.FramesPerDirection)
	if total > MaxFrames {
		return nil, errors.Wrapf(ErrInvalidHeader, "%d directions with %d frames each is too many frames", h.Directions, h.FramesPerDirection)
	}
	if err := checkRemaining(r, int64(total)*4); err != nil {
		return nil, err
	}

	offsets := make([]uint32, total)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrInvalidHeader, "frame offset table cut short: %v", err)
		}
		return nil, ioFailure(err, "reading frame offset table")
	}

	return &File{
		Header:  h,
		offsets: offsets,
		r:       r,
	}, nil
}

// checkRemaining makes sure that the stream still has n bytes after the
// current position, so that a bogus frame count can't make us allocate a
// huge offset table.
func checkRemaining(r io.Seeker, n int64) error {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return ioFailure(err, "locating frame offset table")
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return ioFailure(err, "measuring stream")
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return ioFailure(err, "rewinding to frame offset table")
	}
	if end-cur < n {
		return errors.Wrapf(ErrInvalidHeader, "frame offset table needs %d bytes, only %d left", n, end-cur)
	}
	return nil
}

// FrameCount returns the total number of frames: directions times frames
// per direction.
func (f *File) FrameCount() int {
	return len(f.offsets)
}

// FrameOffsets returns a copy of the frame offset table, in storage order.
func (f *File) FrameOffsets() []uint32 {
	return append([]uint32(nil), f.offsets...)
}

// Position maps a frame index in storage order to its direction and its
// index within that direction.
func (f *File) Position(i int) (direction, frame int) {
	fpd := int(f.Header.FramesPerDirection)
	if fpd == 0 {
		return 0, 0
	}
	return i / fpd, i % fpd
}

// Index is the inverse of Position.
func (f *File) Index(direction, frame int) int {
	return direction*int(f.Header.FramesPerDirection) + frame
}

func (f *File) seekFrame(i int) error {
	if i < 0 || i >= len(f.offsets) {
		return errors.Errorf("dc6: frame %d out of range [0,%d)", i, len(f.offsets))
	}
	if _, err := f.r.Seek(int64(f.offsets[i]), io.SeekStart); err != nil {
		return ioFailure(err, "seeking to frame %d at offset %d", i, f.offsets[i])
	}
	return nil
}
