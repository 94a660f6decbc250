// Package gui hosts the native windows: the overlay surface, the session
// name prompt and the control window. Everything here must run on the
// thread that owns the UI event loop.
package gui

import (
	"errors"
	"image"
	"math"

	"screen-region-capture/src/notification"
)

// ErrUnsupported is returned on platforms without a native implementation.
var ErrUnsupported = errors.New("gui: not implemented for this platform")

// Prompter shows the session name dialog and warning boxes.
type Prompter struct{}

func (Prompter) Warn(title, message string) {
	notification.Notifier{}.Warn(title, message)
}

// pointFromLParam decodes client coordinates from a mouse message. The words
// are signed: positions left of or above the window are negative.
func pointFromLParam(lParam uintptr) image.Point {
	return image.Pt(int(int16(uint16(lParam))), int(int16(uint16(lParam>>16))))
}

// opacityByte maps an opacity in [0, 1] to a constant alpha value.
func opacityByte(opacity float64) byte {
	switch {
	case opacity <= 0:
		return 0
	case opacity >= 1:
		return 255
	}
	return byte(math.Round(opacity * 255))
}

// toBGRA copies src into dst as top-down BGRA rows. image.RGBA is already
// alpha-premultiplied, which is what layered windows expect. Alpha is raised
// to minAlpha so fully transparent pixels still receive mouse input.
func toBGRA(dst []byte, src *image.RGBA, minAlpha uint8) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if len(dst) < w*h*4 {
		return
	}
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst[y*w*4 : (y+1)*w*4]
		for x := 0; x < w*4; x += 4 {
			r, g, bl, a := row[x], row[x+1], row[x+2], row[x+3]
			if a < minAlpha {
				a = minAlpha
			}
			out[x] = bl
			out[x+1] = g
			out[x+2] = r
			out[x+3] = a
		}
	}
}
