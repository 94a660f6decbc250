package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"time"

	"screen-region-capture/src/screenshot"
	"screen-region-capture/src/session"
)

// DefaultDelay gives the window manager time to take the hidden overlay off screen.
const DefaultDelay = 100 * time.Millisecond

const warningTitle = "Capture Error"

var (
	ErrInvalidSelection   = errors.New("no valid capture area selected")
	ErrMissingSessionName = errors.New("no session name set")
	ErrCaptureInFlight    = errors.New("capture already in progress")
)

// BackendError reports a failure of the grab, encode or save step.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *BackendError) Unwrap() error { return e.Err }

// Target is the overlay being captured from.
type Target interface {
	// Selection returns the raw begin/end points in overlay-local coordinates.
	Selection() (begin, end image.Point)
	MapToGlobal(p image.Point) image.Point
	SessionName() (string, bool)
	Hide()
	Show()
}

// Scheduler runs fn once on the UI event loop after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// Warner surfaces a non-fatal, user-facing warning.
type Warner interface {
	Warn(title, message string)
}

// Sink is notified after every successfully saved capture.
type Sink interface {
	Saved(rec Record) error
}

// Record describes one saved capture.
type Record struct {
	Path    string
	Session string
	Region  screenshot.Region
	TakenAt time.Time
	PNG     []byte
}

// Job is the immutable snapshot bound when a capture is scheduled.
type Job struct {
	Region  screenshot.Region
	Session string
}

type Options struct {
	Grabber   screenshot.Grabber
	Store     Store
	Scheduler Scheduler
	Warner    Warner
	Delay     time.Duration
	Now       func() time.Time
	Sinks     []Sink
}

// Coordinator validates a finalized selection, hides the overlay, grabs the
// region after a short delay and persists the PNG. It must only be used from
// the UI event loop.
type Coordinator struct {
	grabber   screenshot.Grabber
	store     Store
	scheduler Scheduler
	warner    Warner
	delay     time.Duration
	now       func() time.Time
	sinks     []Sink
	inFlight  bool
}

func New(opts Options) *Coordinator {
	c := &Coordinator{
		grabber:   opts.Grabber,
		store:     opts.Store,
		scheduler: opts.Scheduler,
		warner:    opts.Warner,
		delay:     opts.Delay,
		now:       opts.Now,
		sinks:     opts.Sinks,
	}
	if c.grabber == nil {
		c.grabber = screenshot.Screen{}
	}
	if c.store == nil {
		c.store = FileStore{Dir: "."}
	}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// InFlight reports whether a scheduled capture has not completed yet.
func (c *Coordinator) InFlight() bool { return c.inFlight }

// PerformCapture maps the target's selection to global coordinates, validates
// it and schedules the grab. On refusal the target is left untouched.
func (c *Coordinator) PerformCapture(t Target) error {
	log.Printf("CAPTURE: Starting capture process...")
	if c.inFlight {
		log.Printf("CAPTURE: Previous capture still pending, ignoring request")
		return ErrCaptureInFlight
	}

	begin, end := t.Selection()
	gb, ge := t.MapToGlobal(begin), t.MapToGlobal(end)
	region := screenshot.RegionFromRect(image.Rectangle{Min: gb, Max: ge})
	log.Printf("CAPTURE: Selection begin=%v end=%v, region %s", gb, ge, region)

	name, ok := t.SessionName()
	if err := validate(region, name, ok); err != nil {
		log.Printf("CAPTURE: Invalid capture parameters: %v", err)
		c.warn(warningTitle, refusalMessage(err))
		return err
	}

	job := Job{Region: region, Session: name}
	c.inFlight = true
	t.Hide()
	c.scheduler.AfterFunc(c.delay, func() {
		_ = c.DoCapture(t, job)
	})
	return nil
}

// DoCapture grabs and saves job.Region. The target is shown again whatever
// the outcome.
func (c *Coordinator) DoCapture(t Target, job Job) (err error) {
	defer func() {
		c.inFlight = false
		t.Show()
	}()
	defer func() {
		if r := recover(); r != nil {
			err = &BackendError{Op: "capture", Err: fmt.Errorf("unexpected panic: %v", r)}
		}
		if err != nil {
			log.Printf("CAPTURE: Error during capture: %v", err)
			c.warn(warningTitle, fmt.Sprintf("Failed to capture screenshot: %v", err))
		}
	}()

	log.Printf("CAPTURE: Grabbing region %s for session %q", job.Region, job.Session)
	rec, err := c.capture(job)
	if err != nil {
		return err
	}
	log.Printf("CAPTURE: Captured at %s - Saved as %s", rec.TakenAt.Format(session.TimestampLayout), rec.Path)

	for _, s := range c.sinks {
		if serr := s.Saved(rec); serr != nil {
			log.Printf("CAPTURE: Sink %T failed: %v", s, serr)
		}
	}
	return nil
}

func (c *Coordinator) capture(job Job) (Record, error) {
	img, err := c.grabber.Grab(job.Region)
	if err != nil {
		return Record{}, &BackendError{Op: "grab", Err: err}
	}
	if img == nil {
		return Record{}, &BackendError{Op: "grab", Err: errors.New("no image returned")}
	}
	takenAt := c.now()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Record{}, &BackendError{Op: "encode", Err: err}
	}

	path, err := c.store.Write(session.Filename(job.Session, takenAt), buf.Bytes())
	if err != nil {
		return Record{}, &BackendError{Op: "save", Err: err}
	}

	return Record{
		Path:    path,
		Session: job.Session,
		Region:  job.Region,
		TakenAt: takenAt,
		PNG:     buf.Bytes(),
	}, nil
}

func (c *Coordinator) warn(title, message string) {
	if c.warner != nil {
		c.warner.Warn(title, message)
	}
}

func validate(region screenshot.Region, name string, named bool) error {
	if !named || name == "" {
		return ErrMissingSessionName
	}
	if region.Empty() {
		return ErrInvalidSelection
	}
	return nil
}

func refusalMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingSessionName):
		return "No session name set. Please unlock and create a new selection."
	case errors.Is(err, ErrInvalidSelection):
		return "No valid capture area selected. Please make a selection before capturing."
	default:
		return err.Error()
	}
}
