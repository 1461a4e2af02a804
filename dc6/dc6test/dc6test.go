// Package dc6test builds synthetic DC6 files for tests.
package dc6test

import (
	"bytes"
	"encoding/binary"

	"github.com/bradfitz/iter"
)

// Transparent marks a pixel left out of every literal run in EncodeRows.
const Transparent = -1

// Frame describes one frame to be written by Build.
type Frame struct {
	Flipped          bool
	Width, Height    uint32
	OffsetX, OffsetY int32
	NextFrameIndex   uint32

	// Data is the compressed pixel data.
	Data []byte
	// Length overrides the declared data length when nonzero.
	Length uint32
}

// File describes a whole DC6 file.
type File struct {
	// Magic overrides the first three header words when non-nil.
	Magic              *[3]uint32
	Directions         uint32
	FramesPerDirection uint32
	Frames             []Frame
}

// Build serializes f. Frames are laid out right after the offset table, in
// order; frames beyond Directions*FramesPerDirection are still written but
// not referenced.
func Build(f File) []byte {
	magic := [3]uint32{6, 1, 0}
	if f.Magic != nil {
		magic = *f.Magic
	}

	buf := &bytes.Buffer{}
	w := func(v interface{}) { binary.Write(buf, binary.LittleEndian, v) }
	w(magic)
	w(uint32(0xEEEEEEEE)) // terminator
	w(f.Directions)
	w(f.FramesPerDirection)

	total := int(f.Directions * f.FramesPerDirection)
	offset := uint32(24 + 4*total)
	for i := range iter.N(total) {
		w(offset)
		if i < len(f.Frames) {
			offset += 32 + uint32(len(f.Frames[i].Data))
		}
	}

	for _, fr := range f.Frames {
		var flipped uint32
		if fr.Flipped {
			flipped = 1
		}
		length := fr.Length
		if length == 0 {
			length = uint32(len(fr.Data))
		}
		w([8]uint32{flipped, fr.Width, fr.Height, uint32(fr.OffsetX), uint32(fr.OffsetY), 0, fr.NextFrameIndex, length})
		buf.Write(fr.Data)
	}
	return buf.Bytes()
}

// EncodeRows run-length encodes rows of palette indices, in storage order.
// Pixels set to Transparent are skipped; every row ends with an
// end-of-line marker.
func EncodeRows(rows [][]int) []byte {
	var out []byte
	for _, row := range rows {
		x := 0
		for x < len(row) {
			start := x
			if row[x] == Transparent {
				for x < len(row) && row[x] == Transparent && x-start < 0x7F {
					x++
				}
				if x == len(row) {
					break // the end-of-line marker covers trailing transparency
				}
				out = append(out, 0x80|byte(x-start))
				continue
			}
			for x < len(row) && row[x] != Transparent && x-start < 0x7F {
				x++
			}
			out = append(out, byte(x-start))
			for _, idx := range row[start:x] {
				out = append(out, byte(idx))
			}
		}
		out = append(out, 0x80)
	}
	return out
}

// Reverse returns rows in opposite order; handy for frames stored bottom-up.
func Reverse(rows [][]int) [][]int {
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}

// Fill returns a width x height grid where every pixel is idx.
func Fill(width, height, idx int) [][]int {
	rows := make([][]int, height)
	for y := range iter.N(height) {
		rows[y] = make([]int, width)
		for x := range rows[y] {
			rows[y][x] = idx
		}
	}
	return rows
}
