// Package datafiles carries data files compiled into the binaries.
package datafiles

import _ "embed" // at least "import _ "embed"" is required

// GrayscalePalette is a 768-byte palette resource in the same (B,G,R)
// layout as the game's own palettes, mapping index i to gray level i.
//
// It is used when no palette file was passed or found.
//
//go:embed grayscale.pal
var GrayscalePalette []byte
