package capture

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Store persists encoded captures under a file name and returns the final path.
type Store interface {
	Write(name string, data []byte) (string, error)
}

// FileStore writes captures into Dir ("." is the process working directory).
// A capture file is either fully written or not written at all. A name that
// already exists (two captures in the same second) is replaced.
type FileStore struct {
	Dir string
}

func (s FileStore) Write(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		log.Printf("CAPTURE: Replacing existing file %s", path)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return path, nil
}
