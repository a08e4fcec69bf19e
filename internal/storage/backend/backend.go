// Package backend selects and constructs the configured storage provider.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/storage"
	"github.com/mrz1836/turbocache/internal/storage/azureblob"
	"github.com/mrz1836/turbocache/internal/storage/gcsblob"
	"github.com/mrz1836/turbocache/internal/storage/gitrepo"
	"github.com/mrz1836/turbocache/internal/storage/local"
	"github.com/mrz1836/turbocache/internal/storage/s3blob"
)

// Kind identifies a storage provider.
type Kind string

// Supported storage providers.
const (
	KindLocal         Kind = "local"
	KindS3            Kind = "s3"
	KindGCS           Kind = "google-cloud-storage"
	KindAzureBlob     Kind = "azure-blob-storage"
	KindGitRepository Kind = "git-repository"
)

// ValidKinds lists the accepted provider names in display order.
func ValidKinds() []Kind {
	return []Kind{KindLocal, KindS3, KindGCS, KindAzureBlob, KindGitRepository}
}

// ParseKind maps a configured provider name to a Kind. "S3" is accepted as
// an alias of "s3".
func ParseKind(s string) (Kind, error) {
	if s == "S3" {
		return KindS3, nil
	}
	for _, k := range ValidKinds() {
		if string(k) == s {
			return k, nil
		}
	}

	names := make([]string, 0, len(ValidKinds()))
	for _, k := range ValidKinds() {
		names = append(names, string(k))
	}
	return "", fmt.Errorf("%w %q, select one of: %s", tcerrors.ErrUnknownStorageProvider, s, strings.Join(names, ", "))
}

// Options carries one configuration record per provider. Only the record of
// the selected Kind is read.
type Options struct {
	Local local.Options
	S3    s3blob.Options
	GCS   gcsblob.Options
	Azure azureblob.Options
	Git   gitrepo.Options

	// GitOptions are passed to gitrepo.New.
	GitOptions []gitrepo.Option
	Logger     zerolog.Logger
}

// New constructs the provider for kind.
func New(ctx context.Context, kind Kind, opts Options) (storage.Provider, error) {
	opts.Logger.Info().Str("provider", string(kind)).Msg("initializing storage provider")

	switch kind {
	case KindLocal:
		return local.New(opts.Local), nil
	case KindS3:
		p, err := s3blob.New(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindGCS:
		p, err := gcsblob.New(ctx, opts.GCS)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindAzureBlob:
		p, err := azureblob.New(opts.Azure)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindGitRepository:
		gitOpts := append([]gitrepo.Option{gitrepo.WithLogger(opts.Logger)}, opts.GitOptions...)
		p, err := gitrepo.New(ctx, opts.Git, gitOpts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		_, err := ParseKind(string(kind))
		return nil, err
	}
}
