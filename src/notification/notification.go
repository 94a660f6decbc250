package notification

import "log"

// Notifier shows modal warnings. It satisfies the warning hooks of the
// overlay and the capture coordinator.
type Notifier struct{}

// Warn shows a modal warning dialog and returns after the user dismisses it.
// Must be called on the UI thread.
func (Notifier) Warn(title, message string) {
	log.Printf("WARNING: %s: %s", title, message)
	showWarning(title, message)
}
