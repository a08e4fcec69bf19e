// Package local stores artifacts on the local filesystem.
package local

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/storage/fsblob"
)

// Options configures the local backend.
type Options struct {
	// Path is the storage root. Relative paths are resolved against the temp
	// directory when UseTmp is set, and against the working directory otherwise.
	Path string
	// UseTmp places Path under os.TempDir().
	UseTmp bool
}

// New returns a filesystem store for opts.
func New(opts Options) *fsblob.Store {
	return fsblob.New(Root(opts))
}

// Root resolves the storage root for opts.
func Root(opts Options) string {
	p := opts.Path
	if p == "" {
		p = constants.DefaultCacheFolderName
	}
	if opts.UseTmp {
		return filepath.Join(os.TempDir(), p)
	}
	return p
}
