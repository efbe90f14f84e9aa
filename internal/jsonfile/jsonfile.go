// Package jsonfile persists a JSON-encoded value in a single text file.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrMissing means the file has never been written.
	ErrMissing = errors.New("jsonfile: file does not exist")
	// ErrMalformed means the file exists but does not decode.
	ErrMalformed = errors.New("jsonfile: malformed content")
)

// Collection reads and writes a value of type T at Path.
type Collection[T any] struct {
	Path string
}

// New returns a Collection stored at path.
func New[T any](path string) *Collection[T] {
	return &Collection[T]{Path: path}
}

// Load decodes the file. It returns ErrMissing when the file does not exist
// and ErrMalformed when the content cannot be decoded.
func (c *Collection[T]) Load() (T, error) {
	var v T
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return v, ErrMissing
		}
		return v, fmt.Errorf("reading %s: %w", c.Path, err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrMalformed, c.Path, err)
	}
	return v, nil
}

// Save encodes v and replaces the file atomically.
func (c *Collection[T]) Save(v T) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", c.Path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.Path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.Path), filepath.Base(c.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.Path, err)
	}
	return nil
}
