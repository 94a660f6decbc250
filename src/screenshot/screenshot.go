package screenshot

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Region represents a screen region in global virtual-desktop coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RegionFromRect converts a normalized rectangle into a Region.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Region) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.X, r.Y, r.Width, r.Height)
}

// Grabber is the opaque "capture region -> image" primitive.
type Grabber interface {
	Grab(region Region) (*image.RGBA, error)
}

// GrabberFunc adapts a function to Grabber.
type GrabberFunc func(region Region) (*image.RGBA, error)

func (f GrabberFunc) Grab(region Region) (*image.RGBA, error) { return f(region) }

// Screen grabs pixels from the live desktop.
type Screen struct{}

func (Screen) Grab(region Region) (*image.RGBA, error) {
	return Grab(region)
}

// Grab captures a specific region of the screen.
func Grab(region Region) (*image.RGBA, error) {
	if region.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %s: %w", region, err)
	}
	return img, nil
}

// Displays returns the bounds of every active display.
func Displays() ([]image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	displays := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		displays = append(displays, screenshot.GetDisplayBounds(i))
	}
	return displays, nil
}

// VirtualDesktop returns the smallest rectangle containing every display.
func VirtualDesktop() (image.Rectangle, error) {
	displays, err := Displays()
	if err != nil {
		return image.Rectangle{}, err
	}
	return Union(displays), nil
}

// Union returns the bounding box of the given rectangles: min of all lefts and
// tops, max of all rights and bottoms. Empty rectangles are ignored.
func Union(rects []image.Rectangle) image.Rectangle {
	var u image.Rectangle
	for _, r := range rects {
		u = u.Union(r.Canon())
	}
	return u
}
