package clipboard

import (
	"errors"
	"log"
	"sync"

	"golang.design/x/clipboard"

	"screen-region-capture/src/capture"
)

var (
	writeMu sync.Mutex
)

func Init() error {
	return clipboard.Init()
}

// WriteImage performs a mutex-guarded clipboard write of PNG data.
func WriteImage(png []byte) error {
	if len(png) == 0 {
		return errors.New("clipboard: empty image")
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// Sink copies every saved capture to the clipboard.
type Sink struct {
	write func(png []byte) error
}

// NewSink initializes the system clipboard and returns a sink writing to it.
func NewSink() (*Sink, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return &Sink{write: WriteImage}, nil
}

func (s *Sink) Saved(rec capture.Record) error {
	if err := s.write(rec.PNG); err != nil {
		return err
	}
	log.Printf("CLIPBOARD: Copied %s (%d bytes)", rec.Path, len(rec.PNG))
	return nil
}
