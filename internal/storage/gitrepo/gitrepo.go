// Package gitrepo stores artifacts in a branch of a git repository.
//
// A single working copy under the temp root is cloned (or reused) at startup.
// Reads stat files in that working copy after a fast-forward pull; writes land
// in the working copy and are then published with add, commit and push.
//
// All synchronization steps on one working copy are serialized, within the
// process by a mutex and across processes by a lock file next to the working
// copy. Concurrent existence checks share one pull.
package gitrepo

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/moby/sys/atomicwriter"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/flock"
	"github.com/mrz1836/turbocache/internal/git"
	"github.com/mrz1836/turbocache/internal/logging"
	"github.com/mrz1836/turbocache/internal/process"
	"github.com/mrz1836/turbocache/internal/storage/fsblob"
)

// Provider implements storage.Provider and storage.PostWriteHook.
type Provider struct {
	opts     Options
	cacheDir string
	credPath string
	lockPath string

	git    *git.Client
	blobs  *fsblob.Store
	logger zerolog.Logger

	lockTimeout time.Duration
	mu          sync.Mutex
	pulls       singleflight.Group
}

// Option configures a Provider.
type Option func(*config)

type config struct {
	logger      zerolog.Logger
	executor    process.Executor
	observer    git.CommandObserver
	lockTimeout time.Duration
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithExecutor replaces the process executor used for git commands.
func WithExecutor(exec process.Executor) Option {
	return func(c *config) {
		c.executor = exec
	}
}

// WithCommandObserver is called after every git command.
func WithCommandObserver(fn git.CommandObserver) Option {
	return func(c *config) {
		c.observer = fn
	}
}

// WithLockTimeout bounds how long a synchronization step waits for the
// working copy lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *config) {
		c.lockTimeout = d
	}
}

// New validates opts, prepares the working copy and returns a ready Provider.
func New(ctx context.Context, opts Options, options ...Option) (*Provider, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cfg := config{
		logger:      zerolog.Nop(),
		executor:    process.OSExecutor{},
		lockTimeout: constants.DefaultLockTimeout,
	}
	for _, o := range options {
		o(&cfg)
	}

	root := filepath.Join(opts.TempRoot, constants.GitRepositoryDir)
	cacheDir := filepath.Join(root, opts.Path)
	logger := cfg.logger.With().
		Str("component", "gitrepo").
		Str("cache_dir", cacheDir).
		Logger()

	p := &Provider{
		opts:     opts,
		cacheDir: cacheDir,
		credPath: filepath.Join(root, constants.CredentialFileName),
		lockPath: cacheDir + constants.LockFileSuffix,
		git: git.NewClient(cacheDir,
			git.WithExecutable(opts.Executable),
			git.WithExecutor(cfg.executor),
			git.WithTimeout(opts.CommandTimeout),
			git.WithLogger(logger),
			git.WithObserver(cfg.observer),
		),
		blobs:       fsblob.New(cacheDir),
		logger:      logger,
		lockTimeout: cfg.lockTimeout,
	}

	if err := p.withLock(ctx, p.initialize); err != nil {
		return nil, err
	}
	return p, nil
}

// CacheDir returns the working copy directory.
func (p *Provider) CacheDir() string {
	return p.cacheDir
}

// CredentialPath returns the credential store file.
func (p *Provider) CredentialPath() string {
	return p.credPath
}

// Exists pulls the cache branch and then checks the working copy for path.
// A pull that is not a fast-forward fails the check.
//
// Concurrent callers share one pull. The pull is detached from the caller
// that started it, so a caller going away only ends its own wait; the git
// command timeout still bounds the pull.
func (p *Provider) Exists(ctx context.Context, path string) (bool, error) {
	pullCtx := context.WithoutCancel(ctx)
	ch := p.pulls.DoChan("pull", func() (any, error) {
		return nil, p.withLock(pullCtx, p.pull)
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		if res.Shared {
			p.logger.Debug().Str("artifact", path).Msg("joined in-flight pull")
		}
	}

	ok, err := p.blobs.Exists(ctx, path)
	p.logger.Debug().Str("artifact", path).Bool("exists", ok).Msg("checked working copy")
	return ok, err
}

// NewReader reads path from the working copy without synchronizing.
func (p *Provider) NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	return p.blobs.NewReader(ctx, path)
}

// NewWriter writes path into the working copy without synchronizing.
// AfterWrite publishes it.
func (p *Provider) NewWriter(ctx context.Context, path string) (io.WriteCloser, error) {
	return p.blobs.NewWriter(ctx, path)
}

// AfterWrite pulls, then adds, commits and pushes path. On failure the bytes
// stay in the working copy but are not shared.
func (p *Provider) AfterWrite(ctx context.Context, path string) error {
	err := p.withLock(ctx, func(ctx context.Context) error {
		if err := p.pull(ctx); err != nil {
			return err
		}
		return p.commitAndPush(ctx, path)
	})
	if err != nil {
		p.logger.Error().Err(err).Str("artifact", path).Msg("failed to publish artifact")
		return err
	}
	return nil
}

// initialize runs ensureCacheDir, clone, checkout and configGit in order.
func (p *Provider) initialize(ctx context.Context) error {
	skipClone, err := p.ensureCacheDir(ctx)
	if err != nil {
		return err
	}
	if err := p.clone(ctx, skipClone); err != nil {
		return err
	}
	if err := p.checkout(ctx, skipClone); err != nil {
		return err
	}
	if err := p.configGit(ctx); err != nil {
		return err
	}
	p.logger.Info().
		Str("repository", logging.RedactURL(p.opts.Repository)).
		Str("branch", p.opts.Branch).
		Msg("git storage is ready")
	return nil
}

func (p *Provider) ensureCacheDir(ctx context.Context) (bool, error) {
	state, err := p.State(ctx)
	if err != nil {
		return false, err
	}
	p.logger.Debug().Stringer("state", state).Msg("inspected cache directory")

	switch state {
	case StateValid:
		if p.opts.UseLocalCache {
			return true, nil
		}
		p.logger.Debug().Msg("local cache disabled, emptying cache directory")
		return false, emptyDir(p.cacheDir)
	case StateStale:
		p.logger.Debug().Msg("emptying stale cache directory")
		return false, emptyDir(p.cacheDir)
	default:
		if err := os.MkdirAll(p.cacheDir, constants.CacheDirPerm); err != nil {
			return false, fmt.Errorf("failed to create cache directory: %w", err)
		}
		return false, nil
	}
}

func (p *Provider) clone(ctx context.Context, skip bool) error {
	if skip {
		p.logger.Debug().Msg("skipping clone")
		return nil
	}
	p.logger.Debug().Str("repository", logging.RedactURL(p.opts.Repository)).Msg("cloning")
	return p.git.Clone(ctx, p.opts.Repository, p.cacheDir, git.CloneOptions{
		Branch: p.opts.Branch,
		Remote: p.opts.Remote,
		Depth:  p.opts.CloneDepth,
	})
}

// checkout moves the working copy onto the tracking ref, dropping local
// drift. A reused working copy is fetched first.
func (p *Provider) checkout(ctx context.Context, fetch bool) error {
	ref := p.opts.RemoteRef()
	p.logger.Debug().Str("ref", ref).Msg("checking out")

	if fetch {
		if err := p.git.Fetch(ctx, p.opts.Remote, p.opts.Branch); err != nil {
			return err
		}
	}
	if err := p.git.VerifyRef(ctx, ref); err != nil {
		return err
	}
	if err := p.git.Checkout(ctx, p.opts.Branch); err != nil {
		return err
	}
	return p.git.ResetHard(ctx, ref)
}

func (p *Provider) configGit(ctx context.Context) error {
	p.logger.Debug().
		Str("user", p.opts.UserName).
		Str("email", p.opts.UserEmail).
		Msg("configuring git")

	settings := [][2]string{
		{"user.email", p.opts.UserEmail},
		{"user.name", p.opts.UserName},
		{"commit.gpgsign", "false"},
		{"credential.helper", "store --file=" + p.credPath},
	}
	for _, kv := range settings {
		if err := p.git.ConfigSet(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}

	if _, err := os.Stat(p.credPath); err == nil {
		return nil
	}
	if err := atomicwriter.WriteFile(p.credPath, []byte(p.credentialLine()+"\n"), constants.CredentialFilePerm); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// credentialLine is the git-credential-store entry for the configured host.
func (p *Provider) credentialLine() string {
	u := url.URL{
		Scheme: "https",
		User:   url.UserPassword(p.opts.UserName, p.opts.UserPassword),
		Host:   p.opts.Host,
	}
	return u.String()
}

// pull fetches the cache branch and fast-forwards onto it.
func (p *Provider) pull(ctx context.Context) error {
	ref := p.opts.RemoteRef()
	p.logger.Debug().Str("ref", ref).Msg("pulling fast-forward only")

	if err := p.git.Fetch(ctx, p.opts.Remote, p.opts.Branch); err != nil {
		return err
	}
	return p.git.MergeFastForward(ctx, ref)
}

func (p *Provider) commitAndPush(ctx context.Context, path string) error {
	p.logger.Debug().Str("artifact", path).Msg("adding")
	if err := p.git.Add(ctx, path); err != nil {
		return err
	}

	if err := p.git.Commit(ctx, constants.CommitMessagePrefix+path); err != nil {
		return err
	}

	p.logger.Debug().Str("remote", p.opts.Remote).Str("branch", p.opts.Branch).Msg("pushing")
	return p.git.Push(ctx, p.opts.Remote, p.opts.Branch)
}

// withLock runs fn holding the in-process mutex and the working copy file lock.
func (p *Provider) withLock(ctx context.Context, fn func(context.Context) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, err := flock.Acquire(ctx, p.lockPath, p.lockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil {
			p.logger.Warn().Err(relErr).Msg("failed to release working copy lock")
		}
	}()

	return fn(ctx)
}
