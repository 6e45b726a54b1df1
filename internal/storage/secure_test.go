// ABOUTME: Tests for the encrypting KV wrapper
// ABOUTME: Verifies ciphertext at rest, master key persistence, and tamper detection

package storage

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureKV_Roundtrip(t *testing.T) {
	inner := NewMemoryKV()
	kv, err := NewSecureKV(inner, bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	require.NoError(t, kv.Set("auth_token", []byte("A1")))

	got, err := kv.Get("auth_token")
	require.NoError(t, err)
	assert.Equal(t, "A1", string(got))

	raw, err := inner.Get("auth_token")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "A1")
}

func TestSecureKV_FreshNoncePerWrite(t *testing.T) {
	inner := NewMemoryKV()
	kv, err := NewSecureKV(inner, bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)

	require.NoError(t, kv.Set("refresh_token", []byte("R1")))
	first, _ := inner.Get("refresh_token")
	require.NoError(t, kv.Set("refresh_token", []byte("R1")))
	second, _ := inner.Get("refresh_token")

	assert.NotEqual(t, first, second)
}

func TestSecureKV_WrongMasterKey(t *testing.T) {
	inner := NewMemoryKV()
	a, err := NewSecureKV(inner, bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	b, err := NewSecureKV(inner, bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)

	require.NoError(t, a.Set("auth_token", []byte("A1")))
	_, err = b.Get("auth_token")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSecureKV_ValueBoundToKey(t *testing.T) {
	inner := NewMemoryKV()
	kv, err := NewSecureKV(inner, bytes.Repeat([]byte{3}, 32))
	require.NoError(t, err)

	require.NoError(t, kv.Set("auth_token", []byte("A1")))
	raw, _ := inner.Get("auth_token")
	require.NoError(t, inner.Set("refresh_token", raw))

	_, err = kv.Get("refresh_token")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSecureKV_Truncated(t *testing.T) {
	inner := NewMemoryKV()
	kv, err := NewSecureKV(inner, bytes.Repeat([]byte{4}, 32))
	require.NoError(t, err)
	require.NoError(t, inner.Set("auth_token", []byte("short")))

	_, err = kv.Get("auth_token")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSecureKV_MissingPassesThrough(t *testing.T) {
	kv, err := NewSecureKV(NewMemoryKV(), bytes.Repeat([]byte{5}, 32))
	require.NoError(t, err)

	_, err = kv.Get("auth_token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewSecureKV_RejectsShortKey(t *testing.T) {
	_, err := NewSecureKV(NewMemoryKV(), []byte("too-short"))
	assert.Error(t, err)
}

func TestOpenSecureDir_ReusesMasterKey(t *testing.T) {
	dir := t.TempDir()

	kv, err := OpenSecureDir(dir, "")
	require.NoError(t, err)
	require.NoError(t, kv.Set("auth_token", []byte("A1")))

	info, err := os.Stat(filepath.Join(dir, masterKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := OpenSecureDir(dir, "")
	require.NoError(t, err)
	got, err := reopened.Get("auth_token")
	require.NoError(t, err)
	assert.Equal(t, "A1", string(got))
}

func TestOpenSecureDir_KeyKeptApart(t *testing.T) {
	dir, keyDir := t.TempDir(), t.TempDir()

	kv, err := OpenSecureDir(dir, keyDir)
	require.NoError(t, err)
	require.NoError(t, kv.Set("auth_token", []byte("A1")))

	_, err = os.Stat(filepath.Join(dir, masterKeyFile))
	assert.ErrorIs(t, err, fs.ErrNotExist, "sealed files must not sit beside their key")
	_, err = os.Stat(filepath.Join(keyDir, masterKeyFile))
	require.NoError(t, err)

	// a copy of the data dir alone cannot be opened with the original key
	other, err := OpenSecureDir(dir, t.TempDir())
	require.NoError(t, err)
	_, err = other.Get("auth_token")
	assert.ErrorIs(t, err, ErrCorrupt)

	reopened, err := OpenSecureDir(dir, keyDir)
	require.NoError(t, err)
	got, err := reopened.Get("auth_token")
	require.NoError(t, err)
	assert.Equal(t, "A1", string(got))
}

func TestLoadOrCreateMasterKey_WrongSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, masterKeyFile), []byte("abc"), 0600))

	_, err := LoadOrCreateMasterKey(dir)
	assert.Error(t, err)
}
