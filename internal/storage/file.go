// ABOUTME: File-backed KV writing one JSON file per key
// ABOUTME: Uses renameio so every write is atomic and durable

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// FileKV stores each key as <dir>/<key><ext>
type FileKV struct {
	dir string
	ext string
}

// NewFileKV creates the directory if needed and returns a KV of .json files rooted there
func NewFileKV(dir string) (*FileKV, error) {
	return newFileKV(dir, ".json")
}

func newFileKV(dir, ext string) (*FileKV, error) {
	if dir == "" {
		return nil, errors.New("storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &FileKV{dir: dir, ext: ext}, nil
}

// Dir returns the root directory
func (f *FileKV) Dir() string {
	return f.dir
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+f.ext)
}

// Get reads the value stored under key
func (f *FileKV) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the value stored under key
func (f *FileKV) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	// temp file + fsync + rename; a crash leaves either the old or the new value
	if err := renameio.WriteFile(f.path(key), value, 0600); err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (f *FileKV) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
