package dc6_test

import (
	"bytes"
	"fmt"

	"badc0de.net/pkg/go-dc6/dc6"
	"badc0de.net/pkg/go-dc6/dc6/dc6test"
	"badc0de.net/pkg/go-dc6/palette"
)

// ExampleFile_DecodeFrame opens a sprite sheet and decodes each of its frames.
func ExampleFile_DecodeFrame() {
	b := dc6test.Build(dc6test.File{
		Directions:         2,
		FramesPerDirection: 1,
		Frames: []dc6test.Frame{
			{Width: 4, Height: 3, Data: dc6test.EncodeRows(dc6test.Fill(4, 3, 7))},
			{Width: 2, Height: 5, Data: dc6test.EncodeRows(dc6test.Fill(2, 5, 9))},
		},
	})

	f, err := dc6.NewFile(bytes.NewReader(b))
	if err != nil {
		fmt.Printf("failed to open dc6: %s", err)
		return
	}
	for i := 0; i < f.FrameCount(); i++ {
		fr, err := f.DecodeFrame(i, palette.Default(), nil)
		if err != nil {
			fmt.Printf("failed to decode frame %d: %s", i, err)
			return
		}
		fmt.Printf("direction %d frame %d: %dx%d\n", fr.Direction, fr.FrameInDirection, fr.Image.Bounds().Dx(), fr.Image.Bounds().Dy())
	}
	// Output:
	// direction 0 frame 0: 4x3
	// direction 1 frame 0: 2x5
}
