// Package fsblob stores artifacts as plain files under a root directory.
// It backs both the local backend and the git working copy.
package fsblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/ctxutil"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/storage"
)

// Store is a filesystem blob store rooted at a directory.
type Store struct {
	root string
}

// New returns a Store rooted at root. The directory is created lazily by writers.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// Path resolves a backend-relative path to a file under the root.
func (s *Store) Path(p string) (string, error) {
	local := filepath.FromSlash(p)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", tcerrors.ErrPathTraversal, p)
	}
	return filepath.Join(s.root, local), nil
}

// Exists reports whether a regular file is stored at p.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	full, err := s.Path(p)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(full)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
}

// NewReader returns a reader that opens the file on first Read.
func (s *Store) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	full, err := s.Path(p)
	if err != nil {
		return nil, err
	}

	return storage.LazyReader(func() (io.ReadCloser, error) {
		f, openErr := os.Open(full) //#nosec G304 -- path validated as local to the store root
		if errors.Is(openErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", tcerrors.ErrArtifactNotFound, p)
		}
		return f, openErr
	}), nil
}

// NewWriter returns a writer that stages bytes in a temp file beside the
// destination and renames it into place on Close.
func (s *Store) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	full, err := s.Path(p)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, constants.CacheDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", p, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", p, err)
	}

	return &fileWriter{tmp: tmp, dest: full}, nil
}

// fileWriter implements io.WriteCloser and storage.Aborter.
type fileWriter struct {
	mu      sync.Mutex
	tmp     *os.File
	dest    string
	done    bool
	aborted bool
}

func (w *fileWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done {
		return 0, os.ErrClosed
	}
	return w.tmp.Write(b)
}

// Close publishes the file. It is a no-op after a successful Close, and
// reports errors.ErrWriteAborted after Abort.
func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done {
		if w.aborted {
			return tcerrors.ErrWriteAborted
		}
		return nil
	}
	w.done = true

	tmpPath := w.tmp.Name()

	if err := w.tmp.Sync(); err != nil {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Chmod(tmpPath, constants.ArtifactFilePerm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpPath, w.dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Abort discards the staged bytes.
func (w *fileWriter) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done {
		return nil
	}
	w.done = true
	w.aborted = true

	_ = w.tmp.Close()
	if err := os.Remove(w.tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}
