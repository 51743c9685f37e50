// Package scratch keeps uploaded audio on local disk for the lifetime of a
// single request.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	apperrors "hy-whisper/internal/app/errors"
)

// maxExtLen bounds the extension copied from the client filename.
const maxExtLen = 16

// Handle refers to one stored upload. It must not be copied.
type Handle struct {
	Path         string
	OriginalName string
	Size         int64

	released atomic.Bool
}

// Name returns the scratch filename
func (h *Handle) Name() string {
	return filepath.Base(h.Path)
}

// Released reports whether Release has run for this handle
func (h *Handle) Released() bool {
	return h.released.Load()
}

// Manager writes uploads into a scratch directory under unique names and
// removes them again.
type Manager struct {
	dir     string
	maxSize int64
	logger  *zap.Logger
	stat    func(string) (os.FileInfo, error)
	now     func() time.Time
	live    atomic.Int64
}

// Option configures a Manager
type Option func(*Manager)

// WithStatFunc replaces os.Stat for Size lookups.
func WithStatFunc(stat func(string) (os.FileInfo, error)) Option {
	return func(m *Manager) {
		m.stat = stat
	}
}

// WithClock replaces time.Now when generating names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates the scratch directory if needed and returns a manager
// that refuses files larger than maxSize bytes.
func NewManager(dir string, maxSize int64, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %s: %w", dir, err)
	}

	m := &Manager{
		dir:     dir,
		maxSize: maxSize,
		logger:  logger.Named("scratch"),
		stat:    os.Stat,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir returns the scratch directory
func (m *Manager) Dir() string {
	return m.dir
}

// MaxSize returns the per-file ceiling in bytes
func (m *Manager) MaxSize() int64 {
	return m.maxSize
}

// LiveFiles returns the number of stored files not yet released.
func (m *Manager) LiveFiles() int64 {
	return m.live.Load()
}

// Store streams r into a new scratch file. If more than MaxSize bytes arrive
// the file is removed and a FileTooLarge error is returned; any file system
// failure also removes the partial file.
func (m *Manager) Store(r io.Reader, originalName string) (*Handle, error) {
	path := filepath.Join(m.dir, m.newName(originalName))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, apperrors.ClassifyStorage(err, "failed to create scratch file")
	}
	m.live.Add(1)

	h := &Handle{Path: path, OriginalName: originalName}

	written, copyErr := io.Copy(f, io.LimitReader(r, m.maxSize+1))
	closeErr := f.Close()

	if copyErr != nil {
		m.Release(h)
		return nil, apperrors.ClassifyStorage(copyErr, "failed to write scratch file")
	}
	if closeErr != nil {
		m.Release(h)
		return nil, apperrors.ClassifyStorage(closeErr, "failed to close scratch file")
	}
	if written > m.maxSize {
		m.Release(h)
		m.logger.Warn("Upload exceeds size limit",
			zap.String("filename", originalName),
			zap.Int64("max_bytes", m.maxSize))
		return nil, apperrors.Newf(apperrors.KindFileTooLarge, "file exceeds %d bytes", m.maxSize)
	}

	h.Size = written
	m.logger.Debug("Stored upload",
		zap.String("filename", originalName),
		zap.String("path", path),
		zap.Int64("size", written))
	return h, nil
}

// Size stats the stored file and returns its size on disk.
func (m *Manager) Size(h *Handle) (int64, error) {
	info, err := m.stat(h.Path)
	if err != nil {
		return 0, apperrors.ClassifyStorage(err, "failed to stat scratch file")
	}
	return info.Size(), nil
}

// Release deletes the file behind h. Only the first call for a handle does
// anything; a nil handle or an already missing file is fine. Failures are
// logged, never returned.
func (m *Manager) Release(h *Handle) {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	m.live.Add(-1)

	if err := os.Remove(h.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		m.logger.Warn("Failed to remove temporary file",
			zap.String("path", h.Path),
			zap.Error(err))
		return
	}
	m.logger.Debug("Temporary file removed", zap.String("file", h.Name()))
}

// Sweep deletes every regular file left in the scratch directory and returns
// how many were removed. Errors are logged and skipped.
func (m *Manager) Sweep() int {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Error("Failed to read scratch directory", zap.String("dir", m.dir), zap.Error(err))
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Error("Failed to remove temporary file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
		m.logger.Info("Removed temporary file", zap.String("file", entry.Name()))
	}
	return removed
}

// newName builds "audio-<unix millis>-<random><ext>".
func (m *Manager) newName(originalName string) string {
	ext := filepath.Ext(originalName)
	if len(ext) > maxExtLen {
		ext = ""
	}
	return fmt.Sprintf("audio-%d-%s%s", m.now().UnixMilli(), uuid.New().String()[:8], ext)
}
