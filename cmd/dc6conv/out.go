package main

import (
	"image"

	"github.com/golang/glog"
	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-dc6/imageprint"
)

// fitTerminal returns a function shrinking images to fit the terminal.
func fitTerminal(mode imageprint.Mode) func(image.Image) image.Image {
	return func(img image.Image) image.Image {
		termSize, err := GetTermSize()
		if err != nil {
			glog.V(1).Infof("not downsizing, no terminal size: %v", err)
			return img
		}
		if termSize.WSXPixel != 0 && termSize.WSYPixel != 0 && (mode == imageprint.ModeRasTerm || mode == imageprint.ModeITerm) {
			// Real images can use the terminal's pixels.
			return resize.Thumbnail(termSize.WSXPixel/2, termSize.WSYPixel/2, img, resize.NearestNeighbor)
		}
		// Every pixel is printed as two character cells; keep a line for the caption.
		rows := termSize.WSRow
		if rows > 2 {
			rows -= 2
		}
		return resize.Thumbnail(termSize.WSCol/2, rows, img, resize.NearestNeighbor)
	}
}
