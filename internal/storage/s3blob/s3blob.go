// Package s3blob stores artifacts in an S3-compatible bucket.
package s3blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/ctxutil"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/storage"
)

// API is the subset of the S3 client used by Store. Uploads go through
// manager.Uploader, which needs the multipart calls as well.
type API interface {
	manager.UploadAPIClient
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures the S3 backend.
type Options struct {
	// Bucket holds the artifacts; it is the configured storage path.
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint targets an S3-compatible service (MinIO, R2). Path-style
	// addressing is used when set.
	Endpoint string
}

// Store implements storage.Provider on S3.
type Store struct {
	client   API
	uploader *manager.Uploader
	bucket   string
}

// New builds an S3 client from opts. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", tcerrors.ErrConfigInvalidStorage)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(client, opts.Bucket), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, bucket string) *Store {
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}
}

// Exists issues a HeadObject for p.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to head s3://%s/%s: %w", s.bucket, p, err)
}

// NewReader returns a reader that issues GetObject on first Read.
func (s *Store) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	return storage.LazyReader(func() (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(p),
		})
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: %s", tcerrors.ErrArtifactNotFound, p)
			}
			return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, p, err)
		}
		return out.Body, nil
	}), nil
}

// NewWriter pipes written bytes into a managed upload. Artifacts larger
// than one part are sent as a concurrent multipart upload.
func (s *Store) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(uploadCtx)

	g.Go(func() error {
		_, err := s.uploader.Upload(gctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(p),
			Body:        pr,
			ContentType: aws.String(constants.ArtifactContentType),
		})
		// Unblock any pending Write if the upload stopped early.
		_ = pr.CloseWithError(err)
		return err
	})

	return &pipeWriter{pw: pw, group: g, cancel: cancel, store: s, key: p}, nil
}

// pipeWriter implements io.WriteCloser and storage.Aborter.
type pipeWriter struct {
	pw     *io.PipeWriter
	group  *errgroup.Group
	cancel context.CancelFunc
	store  *Store
	key    string

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
		return fmt.Errorf("failed to upload s3://%s/%s: %w", w.store.bucket, w.key, err)
	}
	return nil
}

func (w *pipeWriter) Abort() error {
	w.mu.Lock()
	w.aborted = true
	w.mu.Unlock()

	_ = w.pw.CloseWithError(tcerrors.ErrWriteAborted)
	w.cancel()
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
