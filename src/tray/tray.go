package tray

import (
	"log"
	"runtime"

	"github.com/getlantern/systray"

	"screen-region-capture/src/control"
)

// Tray mirrors the control window buttons in a notification area menu.
// Clicks are handed to dispatch, which must forward them to the UI loop.
type Tray struct {
	tooltip  string
	dispatch func(control.Action)
	onExit   func()
}

func New(tooltip string, dispatch func(control.Action), onExit func()) *Tray {
	return &Tray{tooltip: tooltip, dispatch: dispatch, onExit: onExit}
}

// Run blocks running the tray message loop on its own OS thread.
func (t *Tray) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	systray.Run(t.onReady, t.exit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() { systray.Quit() }

func (t *Tray) onReady() {
	if icon, err := Icon(); err == nil {
		systray.SetIcon(icon)
	} else {
		log.Printf("TRAY: Failed to build icon: %v", err)
	}
	systray.SetTitle(control.Title)
	systray.SetTooltip(t.tooltip)

	for _, a := range control.Actions {
		if a == control.ActionQuit {
			systray.AddSeparator()
		}
		item := systray.AddMenuItem(a.Label(), a.Label())
		go t.forward(item.ClickedCh, a)
	}
}

func (t *Tray) forward(clicked <-chan struct{}, a control.Action) {
	for range clicked {
		t.dispatch(a)
	}
}

func (t *Tray) exit() {
	if t.onExit != nil {
		t.onExit()
	}
}
