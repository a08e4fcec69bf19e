// Package gcsblob stores artifacts in a Google Cloud Storage bucket.
package gcsblob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mrz1836/turbocache/internal/ctxutil"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	tcstorage "github.com/mrz1836/turbocache/internal/storage"
)

const tokenURI = "https://oauth2.googleapis.com/token"

// bucketHandle abstracts a GCS bucket handle for testability.
type bucketHandle interface {
	Object(name string) objectHandle
}

// objectHandle abstracts a GCS object handle.
type objectHandle interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
	NewWriter(ctx context.Context) io.WriteCloser
	Attrs(ctx context.Context) (*storage.ObjectAttrs, error)
}

type realBucketHandle struct{ bh *storage.BucketHandle }

func (r *realBucketHandle) Object(name string) objectHandle {
	return &realObjectHandle{r.bh.Object(name)}
}

type realObjectHandle struct{ oh *storage.ObjectHandle }

func (r *realObjectHandle) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return r.oh.NewReader(ctx)
}

func (r *realObjectHandle) NewWriter(ctx context.Context) io.WriteCloser {
	w := r.oh.NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	return w
}

func (r *realObjectHandle) Attrs(ctx context.Context) (*storage.ObjectAttrs, error) {
	return r.oh.Attrs(ctx)
}

// Options configures the GCS backend.
type Options struct {
	// Bucket holds the artifacts; it is the configured storage path.
	Bucket      string
	ProjectID   string
	ClientEmail string
	// PrivateKey is the PEM service-account key with real newlines.
	PrivateKey string
}

// Store implements storage.Provider on GCS.
type Store struct {
	client *storage.Client
	bucket bucketHandle
}

// New creates a GCS client. A service-account identity is used when both
// ClientEmail and PrivateKey are set, Application Default Credentials otherwise.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: gcs bucket is required", tcerrors.ErrConfigInvalidStorage)
	}

	clientOpts := []option.ClientOption{}
	if opts.ClientEmail != "" && opts.PrivateKey != "" {
		creds, err := serviceAccountJSON(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, option.WithAuthCredentialsJSON(option.ServiceAccount, creds))
	}
	if opts.ProjectID != "" {
		clientOpts = append(clientOpts, option.WithQuotaProject(opts.ProjectID))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &Store{
		client: client,
		bucket: &realBucketHandle{client.Bucket(opts.Bucket)},
	}, nil
}

func newWithBucket(bh bucketHandle) *Store {
	return &Store{bucket: bh}
}

// Close releases the GCS client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close GCS client: %w", err)
	}
	s.client = nil
	return nil
}

// Exists reads the object attributes.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	_, err := s.bucket.Object(p).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat object %q: %w", p, err)
	}
}

// NewReader opens the object on first Read.
func (s *Store) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	return tcstorage.LazyReader(func() (io.ReadCloser, error) {
		r, err := s.bucket.Object(p).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", tcerrors.ErrArtifactNotFound, p)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get object %q: %w", p, err)
		}
		return r, nil
	}), nil
}

// NewWriter streams the upload; the object becomes visible on Close.
func (s *Store) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	return &objectWriter{
		w:      s.bucket.Object(p).NewWriter(uploadCtx),
		cancel: cancel,
	}, nil
}

// objectWriter implements io.WriteCloser and storage.Aborter. Canceling the
// upload context before Close discards the object.
type objectWriter struct {
	w      io.WriteCloser
	cancel context.CancelFunc

	mu      sync.Mutex
	aborted bool
}

func (o *objectWriter) Write(b []byte) (int, error) {
	return o.w.Write(b)
}

func (o *objectWriter) Close() error {
	o.mu.Lock()
	aborted := o.aborted
	o.mu.Unlock()

	err := o.w.Close()
	o.cancel()
	if aborted {
		return tcerrors.ErrWriteAborted
	}
	return err
}

func (o *objectWriter) Abort() error {
	o.mu.Lock()
	o.aborted = true
	o.mu.Unlock()

	o.cancel()
	return nil
}

func serviceAccountJSON(opts Options) ([]byte, error) {
	b, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   opts.ProjectID,
		"client_email": opts.ClientEmail,
		"private_key":  opts.PrivateKey,
		"token_uri":    tokenURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account credentials: %w", err)
	}
	return b, nil
}
