package cli

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/turbocache/internal/config"
	"github.com/mrz1836/turbocache/internal/metrics"
	"github.com/mrz1836/turbocache/internal/server"
	"github.com/mrz1836/turbocache/internal/signal"
	"github.com/mrz1836/turbocache/internal/storage"
	"github.com/mrz1836/turbocache/internal/storage/azureblob"
	"github.com/mrz1836/turbocache/internal/storage/backend"
	"github.com/mrz1836/turbocache/internal/storage/gcsblob"
	"github.com/mrz1836/turbocache/internal/storage/gitrepo"
	"github.com/mrz1836/turbocache/internal/storage/local"
	"github.com/mrz1836/turbocache/internal/storage/s3blob"
)

// ServeFlags holds flags specific to the serve command.
type ServeFlags struct {
	Port            int
	StorageProvider string
	StoragePath     string
}

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &ServeFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the remote cache server",
		Long: `Start the remote cache HTTP server.

The storage provider is constructed before the listener opens; for the
git-repository provider this clones or refreshes the cache working copy.
SIGINT or SIGTERM drains in-flight requests; a second signal exits at once.

Examples:
  TURBO_TOKEN=secret turbocache serve
  TURBO_TOKEN=secret STORAGE_PROVIDER=s3 STORAGE_PATH=bucket turbocache serve --port 8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.LoadWithOverrides(ctx, global.ConfigFile, flags.overrides())
			if err != nil {
				return err
			}

			h := signal.NewHandler(ctx)
			defer h.Stop()
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-h.Forced():
					logger := GetLogger()
					logger.Warn().Msg("second signal received, exiting immediately")
					CloseLogFile()
					os.Exit(ExitError)
				case <-done:
				}
			}()

			return runServe(h.Context(), cfg, GetLogger(), func() (net.Listener, error) {
				return net.Listen("tcp", server.Addr(cfg.Server.Port))
			})
		},
	}

	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&flags.StorageProvider, "storage-provider", "", "storage provider (overrides STORAGE_PROVIDER)")
	cmd.Flags().StringVar(&flags.StoragePath, "storage-path", "", "storage path, bucket or container (overrides STORAGE_PATH)")

	root.AddCommand(cmd)
}

func (f *ServeFlags) overrides() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: f.Port},
		Storage: config.StorageConfig{Provider: f.StorageProvider, Path: f.StoragePath},
	}
}

// runServe builds the storage stack for cfg and serves until ctx is done.
func runServe(ctx context.Context, cfg *config.Config, logger zerolog.Logger, listen func() (net.Listener, error)) error {
	kind, err := backend.ParseKind(cfg.Storage.Provider)
	if err != nil {
		return err
	}

	m := metrics.New()
	opts := backendOptions(cfg, logger)
	opts.GitOptions = append(opts.GitOptions, gitrepo.WithCommandObserver(m.ObserveGitCommand))

	provider, err := backend.New(ctx, kind, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", kind, err)
	}

	loc := storage.NewLocation(provider,
		storage.WithLocationLogger(logger.With().Str("component", "location").Logger()),
		storage.WithOpObserver(m.ObserveArtifactOp),
	)
	defer func() {
		if err := loc.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close storage provider")
		}
	}()

	srv := server.New(loc, server.Options{
		APIVersion: cfg.Server.APIVersion,
		Tokens:     cfg.Server.Tokens,
		BodyLimit:  cfg.Server.BodyLimit,
		Metrics:    m,
		Logger:     logger,
	})

	ln, err := listen()
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return srv.Serve(ctx, ln)
}

// backendOptions maps the configuration records onto provider options.
// The shared storage path is the directory or bucket of every provider.
func backendOptions(cfg *config.Config, logger zerolog.Logger) backend.Options {
	st := cfg.Storage
	return backend.Options{
		Local: local.Options{
			Path:   st.Path,
			UseTmp: st.UseTmpFolder,
		},
		S3: s3blob.Options{
			Bucket:    st.Path,
			AccessKey: st.S3.AccessKey,
			SecretKey: st.S3.SecretKey,
			Region:    st.S3.Region,
			Endpoint:  st.S3.Endpoint,
		},
		GCS: gcsblob.Options{
			Bucket:      st.Path,
			ProjectID:   st.GCS.ProjectID,
			ClientEmail: st.GCS.ClientEmail,
			PrivateKey:  st.GCS.PrivateKey,
		},
		Azure: azureblob.Options{
			Container:        st.Path,
			ConnectionString: st.Azure.ConnectionString,
		},
		Git: gitrepo.Options{
			Repository:     st.Git.Repository,
			Branch:         st.Git.Branch,
			Remote:         st.Git.Remote,
			Path:           st.Path,
			UserName:       st.Git.UserName,
			UserEmail:      st.Git.UserEmail,
			UserPassword:   st.Git.UserPassword,
			Host:           st.Git.Host,
			CloneDepth:     st.Git.CloneDepth,
			UseLocalCache:  st.Git.UseLocalCache,
			Executable:     st.Git.Executable,
			CommandTimeout: st.Git.CommandTimeout,
		},
		Logger: logger.With().Str("component", "storage").Logger(),
	}
}
