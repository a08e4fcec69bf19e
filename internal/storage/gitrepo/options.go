package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/turbocache/internal/constants"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// Options configures the git repository backend.
type Options struct {
	// Repository is the remote URL cloned into the working copy.
	Repository string
	// Branch holds the artifacts. Default "main".
	Branch string
	// Remote is the name given to Repository in the working copy. Default "origin".
	Remote string
	// Path names the working copy directory under TempRoot/git-repository.
	Path string

	UserName     string
	UserEmail    string
	UserPassword string
	// Host is written into the credential store. Default "github.com".
	Host string

	// CloneDepth creates a shallow clone when positive.
	CloneDepth int
	// UseLocalCache reuses a working copy that already points at Repository
	// instead of cloning it again.
	UseLocalCache bool

	// TempRoot is the parent of the git-repository directory. Default os.TempDir().
	TempRoot string
	// Executable is the git binary. Default "git".
	Executable string
	// CommandTimeout bounds each git invocation. Zero disables the bound.
	CommandTimeout time.Duration
}

// WithDefaults returns a copy of o with empty fields set to their defaults.
// UseLocalCache and CommandTimeout are left as given.
func (o Options) WithDefaults() Options {
	if o.Branch == "" {
		o.Branch = constants.DefaultGitBranch
	}
	if o.Remote == "" {
		o.Remote = constants.DefaultGitRemote
	}
	if o.Host == "" {
		o.Host = constants.DefaultGitHost
	}
	if o.Path == "" {
		o.Path = constants.DefaultCacheFolderName
	}
	if o.TempRoot == "" {
		o.TempRoot = os.TempDir()
	}
	if o.Executable == "" {
		o.Executable = constants.DefaultGitExecutable
	}
	return o
}

// Validate checks the options after defaults were applied.
func (o Options) Validate() error {
	switch {
	case o.Repository == "":
		return fmt.Errorf("%w: git repository url is required", tcerrors.ErrConfigInvalidStorage)
	case o.UserName == "":
		return fmt.Errorf("%w: git user name is required", tcerrors.ErrConfigInvalidStorage)
	case o.UserEmail == "":
		return fmt.Errorf("%w: git user email is required", tcerrors.ErrConfigInvalidStorage)
	case o.Branch == "" || o.Remote == "":
		return fmt.Errorf("%w: git branch and remote are required", tcerrors.ErrConfigInvalidStorage)
	case o.CloneDepth < 0:
		return fmt.Errorf("%w: git clone depth must not be negative", tcerrors.ErrConfigInvalidStorage)
	case !filepath.IsLocal(o.Path):
		return fmt.Errorf("%w: git cache path %q must be a relative path inside the temp root", tcerrors.ErrConfigInvalidStorage, o.Path)
	case o.Path == constants.CredentialFileName:
		return fmt.Errorf("%w: git cache path %q collides with the credential file", tcerrors.ErrConfigInvalidStorage, o.Path)
	}
	return nil
}

// RemoteRef is the tracking ref of the cache branch, e.g. "origin/main".
func (o Options) RemoteRef() string {
	return o.Remote + "/" + o.Branch
}
