// Package azureblob stores artifacts in an Azure Blob Storage container.
package azureblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/turbocache/internal/ctxutil"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/storage"
)

// blobAPI is the container-scoped subset of the SDK used by Store.
type blobAPI interface {
	Exists(ctx context.Context, name string) (bool, error)
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Upload(ctx context.Context, name string, r io.Reader) error
}

// sdkContainer adapts *azblob.Client to blobAPI for one container.
type sdkContainer struct {
	client    *azblob.Client
	container string
}

func (c *sdkContainer) Exists(ctx context.Context, name string) (bool, error) {
	blob := c.client.ServiceClient().NewContainerClient(c.container).NewBlobClient(name)
	_, err := blob.GetProperties(ctx, nil)
	switch {
	case err == nil:
		return true, nil
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (c *sdkContainer) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := c.client.DownloadStream(ctx, c.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", tcerrors.ErrArtifactNotFound, name)
		}
		return nil, err
	}
	return resp.Body, nil
}

func (c *sdkContainer) Upload(ctx context.Context, name string, r io.Reader) error {
	_, err := c.client.UploadStream(ctx, c.container, name, r, nil)
	return err
}

// Options configures the Azure backend.
type Options struct {
	// Container holds the artifacts; it is the configured storage path.
	Container        string
	ConnectionString string
}

// Store implements storage.Provider on Azure Blob Storage.
type Store struct {
	api       blobAPI
	container string
}

// New connects with a storage account connection string.
func New(opts Options) (*Store, error) {
	if opts.Container == "" {
		return nil, fmt.Errorf("%w: azure container is required", tcerrors.ErrConfigInvalidStorage)
	}
	if opts.ConnectionString == "" {
		return nil, fmt.Errorf("%w: azure connection string is required", tcerrors.ErrConfigInvalidStorage)
	}

	client, err := azblob.NewClientFromConnectionString(opts.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: azure connection string: %w", tcerrors.ErrConfigInvalidStorage, err)
	}

	return &Store{
		api:       &sdkContainer{client: client, container: opts.Container},
		container: opts.Container,
	}, nil
}

// Exists reads the blob properties.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	ok, err := s.api.Exists(ctx, p)
	if err != nil {
		return false, fmt.Errorf("failed to stat blob %s/%s: %w", s.container, p, err)
	}
	return ok, nil
}

// NewReader downloads the blob on first Read.
func (s *Store) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	return storage.LazyReader(func() (io.ReadCloser, error) {
		rc, err := s.api.Download(ctx, p)
		if err != nil {
			if errors.Is(err, tcerrors.ErrArtifactNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to download blob %s/%s: %w", s.container, p, err)
		}
		return rc, nil
	}), nil
}

// NewWriter pipes written bytes into a concurrent block upload.
func (s *Store) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(uploadCtx)

	g.Go(func() error {
		err := s.api.Upload(gctx, p, pr)
		// Unblock any pending Write if the upload stopped early.
		_ = pr.CloseWithError(err)
		return err
	})

	return &pipeWriter{pw: pw, group: g, cancel: cancel, name: p}, nil
}

// pipeWriter implements io.WriteCloser and storage.Aborter.
type pipeWriter struct {
	pw     *io.PipeWriter
	group  *errgroup.Group
	cancel context.CancelFunc
	name   string

	mu      sync.Mutex
	aborted bool
}

func (w *pipeWriter) Write(b []byte) (int, error) {
	return w.pw.Write(b)
}

func (w *pipeWriter) Close() error {
	_ = w.pw.Close()
	err := w.group.Wait()
	w.cancel()

	w.mu.Lock()
	aborted := w.aborted
	w.mu.Unlock()

	if aborted {
		return tcerrors.ErrWriteAborted
	}
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", w.name, err)
	}
	return nil
}

func (w *pipeWriter) Abort() error {
	w.mu.Lock()
	w.aborted = true
	w.mu.Unlock()

	w.cancel()
	_ = w.pw.CloseWithError(tcerrors.ErrWriteAborted)
	return nil
}
