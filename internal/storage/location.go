package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/turbocache/internal/ctxutil"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// Operation names reported to an OpObserver.
const (
	OpGet    = "get"
	OpExists = "exists"
	OpCreate = "create"
)

// OpObserver receives the name, duration and result of each facade operation.
type OpObserver func(op string, elapsed time.Duration, err error)

// Location addresses artifacts by (team, artifact) on a single Provider.
type Location struct {
	provider Provider
	logger   zerolog.Logger
	observer OpObserver
}

// LocationOption configures a Location.
type LocationOption func(*Location)

// WithLocationLogger sets the logger.
func WithLocationLogger(logger zerolog.Logger) LocationOption {
	return func(l *Location) {
		l.logger = logger
	}
}

// WithOpObserver registers a callback invoked after every operation.
func WithOpObserver(fn OpObserver) LocationOption {
	return func(l *Location) {
		l.observer = fn
	}
}

// NewLocation wraps provider.
func NewLocation(provider Provider, opts ...LocationOption) *Location {
	l := &Location{
		provider: provider,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Provider returns the wrapped backend.
func (l *Location) Provider() Provider {
	return l.provider
}

// GetCachedArtifact returns a reader for the artifact, or an error matching
// errors.ErrArtifactNotFound when the backend does not hold it.
func (l *Location) GetCachedArtifact(ctx context.Context, artifactID, teamID string) (rc io.ReadCloser, err error) {
	defer l.observe(OpGet, time.Now(), &err)

	p, err := l.lookup(ctx, artifactID, teamID)
	if err != nil {
		return nil, err
	}

	rc, err = l.provider.NewReader(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", p, err)
	}
	return rc, nil
}

// ExistsCachedArtifact returns nil when the artifact is present, and an error
// matching errors.ErrArtifactNotFound otherwise.
func (l *Location) ExistsCachedArtifact(ctx context.Context, artifactID, teamID string) (err error) {
	defer l.observe(OpExists, time.Now(), &err)

	_, err = l.lookup(ctx, artifactID, teamID)
	return err
}

// CreateCachedArtifact streams body into the backend. The post-write hook, if
// the backend has one, runs only after the writer closed successfully and
// its error is returned as the result of the whole operation.
func (l *Location) CreateCachedArtifact(ctx context.Context, artifactID, teamID string, body io.Reader) (err error) {
	defer l.observe(OpCreate, time.Now(), &err)

	if err = ctxutil.Canceled(ctx); err != nil {
		return err
	}

	p, err := ArtifactPath(teamID, artifactID)
	if err != nil {
		return err
	}

	w, err := l.provider.NewWriter(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to open writer for %s: %w", p, err)
	}

	if _, copyErr := io.Copy(w, body); copyErr != nil {
		abortWriter(w)
		_ = w.Close()
		return fmt.Errorf("failed to write artifact %s: %w", p, copyErr)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", p, err)
	}

	hook, ok := l.provider.(PostWriteHook)
	if !ok {
		return nil
	}
	if err = hook.AfterWrite(ctx, p); err != nil {
		return fmt.Errorf("failed to publish artifact %s: %w", p, err)
	}
	return nil
}

// Close releases the provider when it holds resources.
func (l *Location) Close() error {
	if c, ok := l.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (l *Location) lookup(ctx context.Context, artifactID, teamID string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	p, err := ArtifactPath(teamID, artifactID)
	if err != nil {
		return "", err
	}

	ok, err := l.provider.Exists(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to check artifact %s: %w", p, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", tcerrors.ErrArtifactNotFound, p)
	}
	return p, nil
}

func (l *Location) observe(op string, start time.Time, errp *error) {
	elapsed := time.Since(start)
	err := *errp

	if l.observer != nil {
		l.observer(op, elapsed, err)
	}

	switch {
	case err == nil:
		l.logger.Debug().Str("op", op).Dur("duration", elapsed).Msg("artifact operation completed")
	case errors.Is(err, tcerrors.ErrArtifactNotFound):
		l.logger.Debug().Str("op", op).Err(err).Msg("artifact not found")
	default:
		l.logger.Warn().Str("op", op).Dur("duration", elapsed).Err(err).Msg("artifact operation failed")
	}
}

func abortWriter(w io.Writer) {
	if a, ok := w.(Aborter); ok {
		_ = a.Abort()
	}
}
