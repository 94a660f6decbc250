package control

import (
	"errors"
	"log"
)

var errNoOverlay = errors.New("overlay not created")

const (
	Version = "0.25"
	Title   = "Screen Capture Tool v" + Version
)

// Action is one of the user-facing commands, shared by the control window,
// the tray menu and the global hotkeys.
type Action int

const (
	ActionShow Action = iota
	ActionCapture
	ActionLock
	ActionQuit
)

// Actions lists every action in display order.
var Actions = []Action{ActionShow, ActionCapture, ActionLock, ActionQuit}

var labels = map[Action]string{
	ActionShow:    "Activate Selection (Ctrl + Shift + S)",
	ActionCapture: "Capture Screen (Pause/Ctrl + P)",
	ActionLock:    "Lock/Unlock Selection (Ctrl + L)",
	ActionQuit:    "Quit (Ctrl + Q)",
}

func (a Action) Label() string { return labels[a] }

func (a Action) String() string {
	switch a {
	case ActionShow:
		return "show"
	case ActionCapture:
		return "capture"
	case ActionLock:
		return "lock"
	case ActionQuit:
		return "quit"
	}
	return "unknown"
}

// Overlay is the part of the selection overlay the controller drives.
type Overlay interface {
	Show()
	ToggleLock()
	CaptureScreen() error
	Close() error
}

// Factory creates the overlay on first use.
type Factory func() (Overlay, error)

// Controller owns the lazily created overlay. It must only be used from the
// UI event loop.
type Controller struct {
	newOverlay Factory
	overlay    Overlay
	quit       func()
}

// New returns a controller; quit is called once after the overlay is closed.
func New(factory Factory, quit func()) *Controller {
	return &Controller{newOverlay: factory, quit: quit}
}

// Overlay returns the overlay, or nil before the first ShowOverlay.
func (c *Controller) Overlay() Overlay { return c.overlay }

// ShowOverlay creates the overlay on first use and shows it. Calling it
// again only re-shows the existing overlay.
func (c *Controller) ShowOverlay() error {
	if c.overlay == nil {
		o, err := c.newOverlay()
		if err != nil {
			return err
		}
		c.overlay = o
		c.overlay.Show()
		log.Printf("CONTROL: Overlay initialized to span all monitors")
		return nil
	}
	c.overlay.Show()
	return nil
}

func (c *Controller) ToggleLock() {
	if c.overlay == nil {
		log.Printf("CONTROL: No overlay to lock")
		return
	}
	c.overlay.ToggleLock()
}

func (c *Controller) TriggerCapture() error {
	if c.overlay == nil {
		log.Printf("CONTROL: No valid selection or overlay not created")
		return errNoOverlay
	}
	return c.overlay.CaptureScreen()
}

// Quit closes the overlay and stops the application.
func (c *Controller) Quit() {
	if c.overlay != nil {
		if err := c.overlay.Close(); err != nil {
			log.Printf("CONTROL: Failed to close overlay: %v", err)
		}
		c.overlay = nil
	}
	if c.quit != nil {
		c.quit()
		c.quit = nil
	}
}

// Do dispatches a user action. Errors are logged; the refusal dialogs are
// shown by the overlay and the capture coordinator themselves.
func (c *Controller) Do(a Action) {
	var err error
	switch a {
	case ActionShow:
		err = c.ShowOverlay()
	case ActionCapture:
		err = c.TriggerCapture()
	case ActionLock:
		c.ToggleLock()
	case ActionQuit:
		c.Quit()
	default:
		log.Printf("CONTROL: Unknown action %d", a)
		return
	}
	if err != nil {
		log.Printf("CONTROL: %s failed: %v", a, err)
	}
}
