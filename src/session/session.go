package session

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the capture-moment suffix of every output file.
const TimestampLayout = "2006-01-02_15-04-05"

// Extension is appended to every output file name.
const Extension = ".png"

// ErrInvalidName is returned when a proposed name sanitizes to nothing usable.
var ErrInvalidName = errors.New("session name must contain letters, numbers, dash or dot")

var (
	invalidRun = regexp.MustCompile(`[^A-Za-z0-9.\-]+`)
	dashRun    = regexp.MustCompile(`-+`)
)

// Sanitize makes a user-typed session name safe for use as a filename prefix.
// Runs of characters outside [A-Za-z0-9.-] become a single dash, repeated dashes
// collapse, and leading/trailing dashes and dots are trimmed. ok is false when
// nothing but dots (or nothing at all) survives.
func Sanitize(name string) (sanitized string, ok bool) {
	if name == "" {
		return "", false
	}
	s := invalidRun.ReplaceAllString(name, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if s == "" || strings.Trim(s, ".") == "" {
		return "", false
	}
	return s, true
}

// Validate is Sanitize with an error instead of a flag.
func Validate(name string) (string, error) {
	s, ok := Sanitize(name)
	if !ok {
		return "", ErrInvalidName
	}
	return s, nil
}

// Filename builds "<name>-<YYYY-MM-DD_HH-MM-SS>.png" for a capture taken at t.
func Filename(name string, t time.Time) string {
	return name + "-" + t.Format(TimestampLayout) + Extension
}
