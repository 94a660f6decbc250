package overlay

import (
	"errors"
	"fmt"
	"image"
	"log"

	"screen-region-capture/src/capture"
	"screen-region-capture/src/screenshot"
)

const (
	DefaultOpacity       = 0.3
	DefaultLockedOpacity = 0.4
)

// ErrNotFinalized is returned by CaptureScreen when no completed selection exists.
var ErrNotFinalized = errors.New("no valid selection finalized")

// Handler receives pointer and paint callbacks from a Surface. All calls are
// made on the UI event loop.
type Handler interface {
	Press(p image.Point)
	Move(p image.Point)
	Release(p image.Point)
	Paint(dst *image.RGBA)
}

// Surface is the platform window backing the overlay: frameless, always on
// top, translucent and spanning the given bounds. Each platform configures its
// own translucency when the surface is created.
type Surface interface {
	Show()
	Hide()
	Visible() bool
	SetOpacity(opacity float64)
	// SetInputMask makes the window click-through outside m.Hole. A nil mask
	// restores normal input handling over the whole window.
	SetInputMask(m *Mask)
	// Activate raises the window and gives it keyboard focus.
	Activate()
	// ReleaseFocus drops pointer capture and keyboard focus.
	ReleaseFocus()
	// Invalidate schedules a repaint through Handler.Paint.
	Invalidate()
	MapToGlobal(p image.Point) image.Point
	Close() error
}

// SurfaceFactory creates the platform surface covering bounds (global coordinates).
type SurfaceFactory func(bounds image.Rectangle, h Handler) (Surface, error)

// Prompter shows modal dialogs on the UI thread.
type Prompter interface {
	AskText(title, label string) (text string, ok bool)
	Warn(title, message string)
}

// FocusTarget is the control window; only courtesy focus calls are made on it.
type FocusTarget interface {
	Activate()
}

// Capturer runs the capture pipeline for a finalized selection.
type Capturer interface {
	PerformCapture(t capture.Target) error
}

// State is the selection state machine.
type State struct {
	// Active is true only while a drag is in progress.
	Active bool
	Locked bool
	// Finalized is true after a completed drag until the next press or unlock.
	Finalized bool
}

type Options struct {
	// Displays are the bounds of every connected monitor.
	Displays      []image.Rectangle
	NewSurface    SurfaceFactory
	Prompter      Prompter
	Capturer      Capturer
	Focus         FocusTarget
	Opacity       float64
	LockedOpacity float64
}

// Overlay is the transparent selection window spanning every monitor. It is
// not safe for concurrent use; drive it from the UI event loop only.
type Overlay struct {
	surface       Surface
	prompter      Prompter
	capturer      Capturer
	focus         FocusTarget
	bounds        image.Rectangle
	lockedOpacity float64

	state       State
	begin, end  image.Point
	captureArea image.Rectangle
	sessionName string
	named       bool
	// prompting is set while the session prompt (or its warning) is open.
	prompting bool
}

// New builds the overlay over the union of all displays. The surface starts
// hidden; call Show to map it.
func New(opts Options) (*Overlay, error) {
	if opts.NewSurface == nil {
		return nil, errors.New("overlay: surface factory is required")
	}
	if opts.Prompter == nil {
		return nil, errors.New("overlay: prompter is required")
	}
	if opts.Capturer == nil {
		return nil, errors.New("overlay: capturer is required")
	}

	bounds := screenshot.Union(opts.Displays)
	if bounds.Empty() {
		return nil, fmt.Errorf("overlay: no display geometry available")
	}

	o := &Overlay{
		prompter:      opts.Prompter,
		capturer:      opts.Capturer,
		focus:         opts.Focus,
		bounds:        bounds,
		lockedOpacity: opts.LockedOpacity,
	}
	if o.lockedOpacity <= 0 {
		o.lockedOpacity = DefaultLockedOpacity
	}
	opacity := opts.Opacity
	if opacity <= 0 {
		opacity = DefaultOpacity
	}

	surface, err := opts.NewSurface(bounds, o)
	if err != nil {
		return nil, fmt.Errorf("overlay: failed to create surface: %w", err)
	}
	o.surface = surface
	o.surface.SetInputMask(nil)
	o.surface.SetOpacity(opacity)

	log.Printf("OVERLAY: Initialized with geometry %v", bounds)
	log.Printf("OVERLAY: Number of screens detected: %d", len(opts.Displays))
	for i, d := range opts.Displays {
		log.Printf("OVERLAY: Screen %d geometry: %v", i, d)
	}
	return o, nil
}

// Bounds returns the virtual desktop rectangle in global coordinates.
func (o *Overlay) Bounds() image.Rectangle { return o.bounds }

// State returns a copy of the current selection state.
func (o *Overlay) State() State { return o.state }

// Selection returns the raw begin and end points in overlay-local coordinates.
func (o *Overlay) Selection() (image.Point, image.Point) { return o.begin, o.end }

// SelectionRect returns the normalized selection rectangle.
func (o *Overlay) SelectionRect() image.Rectangle {
	return image.Rectangle{Min: o.begin, Max: o.end}.Canon()
}

// CaptureArea is the rectangle snapshotted at the last completed drag.
func (o *Overlay) CaptureArea() image.Rectangle { return o.captureArea }

func (o *Overlay) SessionName() (string, bool) { return o.sessionName, o.named }

func (o *Overlay) MapToGlobal(p image.Point) image.Point { return o.surface.MapToGlobal(p) }

func (o *Overlay) Show() { o.surface.Show() }

func (o *Overlay) Hide() { o.surface.Hide() }

func (o *Overlay) Visible() bool { return o.surface.Visible() }

// Close destroys the platform surface.
func (o *Overlay) Close() error { return o.surface.Close() }

// CaptureScreen is the entry point of the control layer. Without a finalized
// selection it only logs.
func (o *Overlay) CaptureScreen() error {
	if !o.state.Finalized {
		log.Printf("OVERLAY: No valid selection finalized, cannot capture.")
		return ErrNotFinalized
	}
	log.Printf("OVERLAY: Attempting to capture...")
	return o.capturer.PerformCapture(o)
}

func (o *Overlay) localBounds() image.Rectangle {
	return image.Rect(0, 0, o.bounds.Dx(), o.bounds.Dy())
}

func (o *Overlay) focusControl() {
	if o.focus != nil {
		o.focus.Activate()
	}
}

func (o *Overlay) clearSession() {
	o.sessionName = ""
	o.named = false
}
