// ABOUTME: Encrypting KV wrapper used as the protected tier for tokens
// ABOUTME: XChaCha20-Poly1305 with an HKDF-derived key from a local master key file

package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	masterKeyFile = "master.key"
	masterKeySize = 32
	secureKeyInfo = "learnctl-secure-tier-v1"
)

// ErrCorrupt is returned when a stored value fails authentication
var ErrCorrupt = errors.New("storage: encrypted value is corrupt")

// SecureKV encrypts values before handing them to the underlying KV.
// The key is bound to the master key; a different master key cannot read old values.
//
// Protection is only as good as the separation of the master key from the sealed
// files. With both in one directory, anyone who can read it can decrypt the tokens,
// so OpenSecureDir keeps the key in its own directory when given one.
type SecureKV struct {
	inner KV
	key   []byte
}

// NewSecureKV wraps inner with the given 32-byte master key
func NewSecureKV(inner KV, master []byte) (*SecureKV, error) {
	if len(master) != masterKeySize {
		return nil, fmt.Errorf("storage: master key must be %d bytes, got %d", masterKeySize, len(master))
	}
	key, err := deriveKey(master)
	if err != nil {
		return nil, err
	}
	return &SecureKV{inner: inner, key: key}, nil
}

// OpenSecureDir opens the protected tier under dir with the master key kept in keyDir,
// creating the key on first use. An empty keyDir stores the key beside the sealed files.
func OpenSecureDir(dir, keyDir string) (*SecureKV, error) {
	inner, err := newFileKV(dir, ".sealed")
	if err != nil {
		return nil, err
	}
	if keyDir == "" {
		keyDir = dir
	}
	master, err := LoadOrCreateMasterKey(keyDir)
	if err != nil {
		return nil, err
	}
	return NewSecureKV(inner, master)
}

// LoadOrCreateMasterKey reads dir/master.key or writes a new random one (mode 0600)
func LoadOrCreateMasterKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, masterKeyFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != masterKeySize {
			return nil, fmt.Errorf("storage: %s has wrong size %d", path, len(data))
		}
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: read master key: %w", err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	master := make([]byte, masterKeySize)
	if _, err := io.ReadFull(rand.Reader, master); err != nil {
		return nil, fmt.Errorf("storage: generate master key: %w", err)
	}
	if err := renameio.WriteFile(path, master, 0600); err != nil {
		return nil, fmt.Errorf("storage: write master key: %w", err)
	}
	return master, nil
}

func deriveKey(master []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, master, nil, []byte(secureKeyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("storage: derive key: %w", err)
	}
	return key, nil
}

// Get decrypts the value stored under key
func (s *SecureKV) Get(key string) ([]byte, error) {
	sealed, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, ErrCorrupt
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	// key name is authenticated so a value cannot be swapped between keys
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, ErrCorrupt
	}
	return plain, nil
}

// Set encrypts value with a fresh nonce and stores it under key
func (s *SecureKV) Set(key string, value []byte) error {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("storage: generate nonce: %w", err)
	}
	return s.inner.Set(key, aead.Seal(nonce, nonce, value, []byte(key)))
}

// Delete removes key from the underlying KV
func (s *SecureKV) Delete(key string) error {
	return s.inner.Delete(key)
}
