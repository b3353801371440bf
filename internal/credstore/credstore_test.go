// ABOUTME: Tests for credential persistence
// ABOUTME: Validates both-or-neither storage, file permissions and memory fallback

package credstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPair = Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}

func TestFileStoreLoadEmpty(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	_, ok, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	require.NoError(t, fs.Save(testPair))

	got, ok, err := fs.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testPair, got)

	info, err := os.Stat(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreSaveReplaces(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	require.NoError(t, fs.Save(testPair))

	next := Pair{AccessToken: "access-2", RefreshToken: "refresh-2"}
	require.NoError(t, fs.Save(next))

	got, _, _ := fs.Load()
	assert.Equal(t, next, got)
}

func TestFileStoreRejectsHalfPair(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	err := fs.Save(Pair{AccessToken: "only-access"})
	assert.ErrorIs(t, err, ErrIncompletePair)

	_, ok, _ := fs.Load()
	assert.False(t, ok)
}

func TestFileStoreIgnoresHalfPairOnDisk(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte(`{"access_token":"a"}`), 0600))

	_, ok, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("not json"), 0600))

	_, ok, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreClear(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	require.NoError(t, fs.Save(testPair))

	require.NoError(t, fs.Clear())
	_, ok, _ := fs.Load()
	assert.False(t, ok)

	// Clearing twice is fine
	assert.NoError(t, fs.Clear())
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "mycask"), DefaultConfigDir())
}

type failingStore struct {
	saveErr  error
	clearErr error
	pair     Pair
}

func (f *failingStore) Save(p Pair) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.pair = p
	return nil
}

func (f *failingStore) Load() (Pair, bool, error) {
	return f.pair, !f.pair.Empty(), nil
}

func (f *failingStore) Clear() error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.pair = Pair{}
	return nil
}

func TestLayeredDegradesToMemory(t *testing.T) {
	backing := &failingStore{saveErr: errors.New("quota exceeded")}
	l := NewLayered(backing)

	err := l.Save(testPair)
	require.Error(t, err)
	assert.True(t, l.Degraded())

	got, ok, err := l.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testPair, got)
	assert.Equal(t, "access-1", l.AccessToken())
}

func TestLayeredLoadsFromPersistent(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	require.NoError(t, fs.Save(testPair))

	l := NewLayered(fs)
	got, ok, err := l.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testPair, got)
}

func TestLayeredClearEmptiesBothLayers(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	l := NewLayered(fs)
	require.NoError(t, l.Save(testPair))

	require.NoError(t, l.Clear())

	_, ok, _ := l.Load()
	assert.False(t, ok)
	_, ok, _ = fs.Load()
	assert.False(t, ok)
	assert.Empty(t, l.AccessToken())
}

func TestLayeredClearFailureDoesNotResurrectPair(t *testing.T) {
	backing := &failingStore{pair: testPair, clearErr: errors.New("read-only filesystem")}
	l := NewLayered(backing)

	assert.Error(t, l.Clear())

	_, ok, _ := l.Load()
	assert.False(t, ok)
}
