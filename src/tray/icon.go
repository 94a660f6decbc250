package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

const iconSize = 32

var (
	frameColor = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	fillColor  = color.RGBA{A: 90}
)

// drawIcon paints a dashed selection rectangle over a translucent wash.
func drawIcon(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	inner := image.Rect(size/8, size/8, size-size/8, size-size/8)
	draw.Draw(img, inner, image.NewUniform(fillColor), image.Point{}, draw.Src)

	const dash = 3
	for i := inner.Min.X; i < inner.Max.X; i++ {
		if (i/dash)%2 == 0 {
			for w := 0; w < 2; w++ {
				img.SetRGBA(i, inner.Min.Y+w, frameColor)
				img.SetRGBA(i, inner.Max.Y-1-w, frameColor)
			}
		}
	}
	for j := inner.Min.Y; j < inner.Max.Y; j++ {
		if (j/dash)%2 == 0 {
			for w := 0; w < 2; w++ {
				img.SetRGBA(inner.Min.X+w, j, frameColor)
				img.SetRGBA(inner.Max.X-1-w, j, frameColor)
			}
		}
	}
	return img
}

// encodeICO wraps PNG data in a single-image ICO container (Vista+ format).
func encodeICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bit count
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns the tray icon as ICO bytes.
func Icon() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawIcon(iconSize)); err != nil {
		return nil, err
	}
	return encodeICO(buf.Bytes(), iconSize), nil
}
