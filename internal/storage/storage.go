// Package storage defines the capability contract shared by every artifact
// backend and the Location facade that addresses artifacts by team and id.
//
// Import rules:
//   - CAN import: internal/errors, internal/ctxutil, std lib
//   - MUST NOT import: backend packages (they import this one)
package storage

import (
	"context"
	"io"
	"sync"
)

// Provider is the capability set every storage backend implements.
// Paths are slash-separated and relative to the backend root.
type Provider interface {
	// Exists reports whether an artifact is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// NewReader returns a stream of the artifact at path. Implementations may
	// defer opening the object until the first Read, so a missing object can
	// surface there instead of here.
	NewReader(ctx context.Context, path string) (io.ReadCloser, error)

	// NewWriter returns a sink for the artifact at path. The bytes are durable
	// in the backend once Close returns nil.
	NewWriter(ctx context.Context, path string) (io.WriteCloser, error)
}

// PostWriteHook is implemented by backends that need a synchronization step
// after a writer has been closed successfully.
type PostWriteHook interface {
	AfterWrite(ctx context.Context, path string) error
}

// Aborter is implemented by writers that can discard a partial upload.
// After Abort, Close must not publish the artifact.
type Aborter interface {
	Abort() error
}

// lazyReader defers opening the underlying stream until the first Read.
type lazyReader struct {
	open func() (io.ReadCloser, error)

	once sync.Once
	rc   io.ReadCloser
	err  error
}

// LazyReader returns a ReadCloser that calls open on first Read.
// Closing it before any Read does not call open.
func LazyReader(open func() (io.ReadCloser, error)) io.ReadCloser {
	return &lazyReader{open: open}
}

func (l *lazyReader) init() {
	l.once.Do(func() {
		l.rc, l.err = l.open()
	})
}

func (l *lazyReader) Read(p []byte) (int, error) {
	l.init()
	if l.err != nil {
		return 0, l.err
	}
	return l.rc.Read(p)
}

func (l *lazyReader) Close() error {
	// Consume the once so a later Read cannot open the stream.
	l.once.Do(func() { l.err = io.ErrClosedPipe })
	if l.rc == nil {
		return nil
	}
	return l.rc.Close()
}
