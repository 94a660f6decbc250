//go:build !windows

package gui

import (
	"image"

	"screen-region-capture/src/control"
	"screen-region-capture/src/overlay"
)

// NewSurface is a stub for non-Windows platforms.
func NewSurface(bounds image.Rectangle, h overlay.Handler) (overlay.Surface, error) {
	return nil, ErrUnsupported
}

// AskText is a stub for non-Windows platforms; it always cancels.
func (Prompter) AskText(title, label string) (string, bool) {
	return "", false
}

type ControlWindow struct{}

// NewControlWindow is a stub for non-Windows platforms.
func NewControlWindow(dispatch func(control.Action)) (*ControlWindow, error) {
	return nil, ErrUnsupported
}

func (*ControlWindow) Activate() {}

func (*ControlWindow) Close() error { return nil }

func Pump() bool { return true }

func EnableDPIAwareness() {}

func VirtualScreen() image.Rectangle { return image.Rectangle{} }
