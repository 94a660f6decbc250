package overlay

import (
	"image"
	"log"

	"screen-region-capture/src/logutil"
	"screen-region-capture/src/session"
)

const (
	promptTitle        = "Session Name"
	promptLabel        = "Enter a session name (letters, numbers, dash, dot only):"
	invalidNameTitle   = "Invalid Name"
	invalidNameMessage = "Please use only letters, numbers, dash (-) and dot (.). Name cannot be empty or just dots."
)

// Press starts a new selection at p.
func (o *Overlay) Press(p image.Point) {
	if o.state.Locked || o.prompting {
		return
	}
	o.state.Active = true
	o.state.Finalized = false
	o.begin = p
	o.end = p
	o.surface.Activate()
	o.surface.Invalidate()
}

// Move extends the selection in progress.
func (o *Overlay) Move(p image.Point) {
	if o.state.Locked || o.prompting || !o.state.Active {
		return
	}
	o.end = p
	o.surface.Invalidate()
}

// Release completes the drag. While unlocked it also asks for a session name
// (unless one is already bound) and hands focus back to the control window.
func (o *Overlay) Release(p image.Point) {
	if o.prompting || !o.state.Active {
		return
	}
	o.state.Active = false
	o.state.Finalized = true
	o.captureArea = o.SelectionRect()

	if !o.state.Locked {
		o.promptSessionName()
		o.focusControl()
	}

	o.surface.ReleaseFocus()
	o.surface.Invalidate()
	log.Printf("OVERLAY: Mouse released at %v, capture area set to %v", p, o.captureArea)
}

// Paint renders the overlay into dst (overlay-local coordinates).
func (o *Overlay) Paint(dst *image.RGBA) {
	Render(dst, o.SelectionRect(), o.state.Locked)
}

// promptSessionName loops until a valid name is bound or the user cancels.
// Cancelling un-finalizes the selection. Pointer input and lock toggles
// arriving from nested message loops are ignored until it returns.
func (o *Overlay) promptSessionName() bool {
	o.prompting = true
	defer func() { o.prompting = false }()

	for !o.named {
		text, ok := o.prompter.AskText(promptTitle, promptLabel)
		if !ok {
			o.state.Finalized = false
			log.Printf("OVERLAY: Selection cancelled - no session name provided")
			return false
		}

		name, valid := session.Sanitize(text)
		if !valid {
			log.Printf("OVERLAY: Rejected session name %q", logutil.SanitizeForLog(text))
			o.prompter.Warn(invalidNameTitle, invalidNameMessage)
			continue
		}
		o.sessionName = name
		o.named = true
		log.Printf("OVERLAY: Session name set to %q", name)
	}
	return true
}
