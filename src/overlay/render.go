package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

// BorderWidth of the selection outline, centered on the selection edge.
const BorderWidth = 5

var (
	WashColor    = color.RGBA{A: 51}
	LockedBorder = color.RGBA{G: 255, A: 255}
	ActiveBorder = color.RGBA{R: 255, A: 255}
)

// Render paints the overlay: a translucent black wash, the selection erased
// to full transparency and a border around it (green when locked, red
// otherwise). An empty selection paints the wash only.
func Render(dst *image.RGBA, sel image.Rectangle, locked bool) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(WashColor), image.Point{}, draw.Src)

	sel = sel.Canon()
	if sel.Empty() {
		return
	}
	draw.Draw(dst, sel.Intersect(b), image.Transparent, image.Point{}, draw.Src)

	border := ActiveBorder
	if locked {
		border = LockedBorder
	}
	strokeRect(dst, sel, BorderWidth, border)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	outer := r.Inset(-(width / 2))
	inner := r.Inset(width - width/2)
	src := image.NewUniform(c)

	bands := [...]image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	}
	for _, band := range bands {
		draw.Draw(dst, band.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
