package overlay

import (
	"image"
	"log"
)

// Mask describes the input region of a locked overlay: the window stays
// present over Bounds except for Hole, the selection rectangle.
type Mask struct {
	Bounds image.Rectangle
	Hole   image.Rectangle
}

// LockMask computes the mask for a locked selection in overlay-local coordinates.
func LockMask(bounds, sel image.Rectangle) Mask {
	return Mask{Bounds: bounds, Hole: sel.Canon().Intersect(bounds)}
}

// Covers reports whether p lies in the masked window region.
func (m Mask) Covers(p image.Point) bool {
	return p.In(m.Bounds) && !p.In(m.Hole)
}

// ToggleLock freezes or releases the selection. Unlocking always drops the
// session name and the finalized flag, so the next capture needs a fresh
// drag and name.
func (o *Overlay) ToggleLock() {
	if o.prompting {
		log.Printf("OVERLAY: Lock toggle ignored while session prompt is open")
		return
	}
	o.state.Locked = !o.state.Locked

	if o.state.Locked && o.state.Active {
		o.state.Active = false
		o.surface.ReleaseFocus()
		log.Printf("OVERLAY: Drag in progress abandoned by lock")
	}
	if !o.state.Locked {
		o.clearSession()
		o.state.Finalized = false
	}

	o.applyLockState()

	if !o.state.Locked {
		o.focusControl()
	}
	if o.state.Locked {
		log.Printf("OVERLAY: Selection locked.")
	} else {
		log.Printf("OVERLAY: Selection unlocked.")
	}
}

func (o *Overlay) applyLockState() {
	if o.state.Locked {
		m := LockMask(o.localBounds(), o.SelectionRect())
		o.surface.SetInputMask(&m)
	} else {
		o.surface.SetInputMask(nil)
	}
	o.surface.SetOpacity(o.lockedOpacity)
	o.surface.Show()
	o.surface.Invalidate()
}
