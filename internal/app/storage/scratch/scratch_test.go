package scratch

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apperrors "hy-whisper/internal/app/errors"
)

type fakeFileInfo struct {
	name string
	size int64
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return f.size }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0o600 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() interface{}   { return nil }

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func newTestManager(t *testing.T, maxSize int64, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "uploads"), maxSize, zap.NewNop(), opts...)
	require.NoError(t, err)
	return m
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStoreAndRelease(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	m := newTestManager(t, 1024, WithClock(func() time.Time { return fixed }))

	h, err := m.Store(strings.NewReader("RIFF....WAVE"), "greeting.wav")
	require.NoError(t, err)

	assert.Equal(t, "greeting.wav", h.OriginalName)
	assert.Equal(t, int64(12), h.Size)
	assert.Equal(t, m.Dir(), filepath.Dir(h.Path))
	assert.True(t, strings.HasPrefix(h.Name(), "audio-1700000000123-"), h.Name())
	assert.True(t, strings.HasSuffix(h.Name(), ".wav"), h.Name())
	assert.Equal(t, int64(1), m.LiveFiles())

	content, err := os.ReadFile(h.Path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF....WAVE", string(content))

	size, err := m.Size(h)
	require.NoError(t, err)
	assert.Equal(t, int64(12), size)

	m.Release(h)
	assert.True(t, h.Released())
	assert.NoFileExists(t, h.Path)
	assert.Equal(t, int64(0), m.LiveFiles())
	assert.Empty(t, listDir(t, m.Dir()))
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := newTestManager(t, 1024)

	h, err := m.Store(strings.NewReader("data"), "a.mp3")
	require.NoError(t, err)

	m.Release(h)
	m.Release(h)
	m.Release(nil)

	assert.Equal(t, int64(0), m.LiveFiles())
	assert.NoFileExists(t, h.Path)
}

func TestReleaseToleratesMissingFile(t *testing.T) {
	m := newTestManager(t, 1024)

	h, err := m.Store(strings.NewReader("data"), "a.mp3")
	require.NoError(t, err)
	require.NoError(t, os.Remove(h.Path))

	assert.NotPanics(t, func() { m.Release(h) })
	assert.True(t, h.Released())
}

func TestStoreRejectsOversizedUpload(t *testing.T) {
	m := newTestManager(t, 8)

	h, err := m.Store(bytes.NewReader(make([]byte, 9)), "big.mp3")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	assert.Empty(t, listDir(t, m.Dir()))
	assert.Equal(t, int64(0), m.LiveFiles())

	// exactly at the limit is fine
	h, err = m.Store(bytes.NewReader(make([]byte, 8)), "edge.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(8), h.Size)
	m.Release(h)
}

func TestStoreRemovesPartialFileOnReadError(t *testing.T) {
	m := newTestManager(t, 1024)
	readErr := errors.New("client went away")

	h, err := m.Store(failingReader{err: readErr}, "a.ogg")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Equal(t, apperrors.KindStorageError, apperrors.KindOf(err))
	assert.ErrorIs(t, err, readErr)
	assert.Empty(t, listDir(t, m.Dir()))
}

func TestStoreDropsOverlongExtension(t *testing.T) {
	m := newTestManager(t, 1024)

	h, err := m.Store(strings.NewReader("x"), "clip."+strings.Repeat("a", 40))
	require.NoError(t, err)
	defer m.Release(h)

	assert.Empty(t, filepath.Ext(h.Name()))
}

func TestSizeUsesInjectedStat(t *testing.T) {
	m := newTestManager(t, 1024, WithStatFunc(func(path string) (os.FileInfo, error) {
		return fakeFileInfo{name: filepath.Base(path), size: 30 * 1024 * 1024}, nil
	}))

	h, err := m.Store(strings.NewReader("tiny"), "a.mp3")
	require.NoError(t, err)
	defer m.Release(h)

	size, err := m.Size(h)
	require.NoError(t, err)
	assert.Equal(t, int64(30*1024*1024), size)
}

func TestSizeOfMissingFile(t *testing.T) {
	m := newTestManager(t, 1024)

	h, err := m.Store(strings.NewReader("tiny"), "a.mp3")
	require.NoError(t, err)
	require.NoError(t, os.Remove(h.Path))

	_, err = m.Size(h)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindStorageError, apperrors.KindOf(err))
	assert.Equal(t, apperrors.ReasonNotFound, apperrors.ReasonOf(err))
	m.Release(h)
}

func TestConcurrentStoresGetUniqueNames(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	m := newTestManager(t, 1024, WithClock(func() time.Time { return fixed }))

	const n = 50
	handles := make([]*Handle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := m.Store(strings.NewReader("payload"), "same-name.mp3")
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, h := range handles {
		require.NotNil(t, h)
		assert.False(t, seen[h.Path], "duplicate scratch path %s", h.Path)
		seen[h.Path] = true
	}
	assert.Len(t, listDir(t, m.Dir()), n)
	assert.Equal(t, int64(n), m.LiveFiles())

	for _, h := range handles {
		m.Release(h)
	}
	assert.Empty(t, listDir(t, m.Dir()))
}

func TestSweep(t *testing.T) {
	m := newTestManager(t, 1024)

	for _, name := range []string{"a.mp3", "b.wav", "c.ogg"} {
		_, err := m.Store(strings.NewReader(name), name)
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(m.Dir(), "nested"), 0o755))

	assert.Equal(t, 3, m.Sweep())
	assert.Equal(t, []string{"nested"}, listDir(t, m.Dir()))
	assert.Equal(t, 0, m.Sweep())
}

func TestSweepMissingDirectory(t *testing.T) {
	m := newTestManager(t, 1024)
	require.NoError(t, os.RemoveAll(m.Dir()))

	assert.Equal(t, 0, m.Sweep())
}
