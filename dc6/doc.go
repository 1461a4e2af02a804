// Package dc6 implements a decoder for DC6 sprite sheets.
//
// A DC6 file starts with a 24-byte header, followed by one 32-bit offset per
// frame. Frames are stored direction-major: all frames of the first
// direction, then all frames of the second, and so on. Each offset points at
// a 32-byte frame header immediately followed by the frame's scan-line
// run-length encoded pixels, which index into an external 256-color palette
// (see package palette). All integers are little-endian.
//
// Scan lines are stored bottom-up unless the frame header says otherwise;
// decoded frames are always returned top-down.
package dc6
