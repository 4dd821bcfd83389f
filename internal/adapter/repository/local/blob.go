package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Blob holds the whole serialized booking collection under one key.
type Blob interface {
	// Load returns nil data when nothing was stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Update runs a read-modify-write of the blob. fn receives the current
	// bytes (nil if empty) and returns the replacement.
	Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error
	Name() string
}

// ChangeFeed is implemented by blobs shared between processes. onChange
// fires when another process rewrote the blob.
type ChangeFeed interface {
	Watch(ctx context.Context, onChange func()) (stop func(), err error)
}

// FileBlob keeps the collection in a single JSON file on local disk.
type FileBlob struct {
	path string
}

func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path}
}

func (f *FileBlob) Name() string {
	return "file"
}

func (f *FileBlob) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return data, nil
}

// Update is not safe across processes; the repository serializes callers
// within one process.
func (f *FileBlob) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	current, err := f.Load(ctx)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(next); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}

	return nil
}
