// ABOUTME: Key/value abstraction used by the local state store
// ABOUTME: Values are JSON text; helpers encode and decode them

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNotFound is returned by Get when the key has never been set or was deleted
var ErrNotFound = errors.New("storage: key not found")

// KV is a flat key/value store
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// keyPattern restricts keys to safe file names
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}

// GetJSON reads key and decodes it into v.
// Returns ErrNotFound when the key is absent.
func GetJSON(kv KV, key string, v any) error {
	data, err := kv.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key
func SetJSON(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return kv.Set(key, data)
}

// DefaultDir returns the default data directory following XDG_CONFIG_HOME
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "learnctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "learnctl")
}

// DefaultKeyDir returns the directory for the master key following XDG_STATE_HOME,
// kept apart from DefaultDir so a copy of the data dir does not carry the key
func DefaultKeyDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "learnctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "learnctl")
}
