package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mrz1836/turbocache/internal/git"
	"github.com/mrz1836/turbocache/internal/logging"
)

// State of the working copy directory.
type State int

const (
	// StateAbsent means the directory does not exist.
	StateAbsent State = iota
	// StateStale means the directory exists but is not a clone of the
	// configured repository.
	StateStale
	// StateValid means the directory is a clone whose remote URL matches.
	StateValid
)

// String returns a lowercase name for the state.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateStale:
		return "stale"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// State inspects the working copy directory.
// A remote URL that cannot be read counts as stale.
func (p *Provider) State(ctx context.Context) (State, error) {
	info, err := os.Stat(p.cacheDir)
	if errors.Is(err, fs.ErrNotExist) {
		return StateAbsent, nil
	}
	if err != nil {
		return StateAbsent, fmt.Errorf("failed to stat cache directory: %w", err)
	}
	if !info.IsDir() {
		return StateAbsent, fmt.Errorf("cache path %s is not a directory: %w", p.cacheDir, fs.ErrExist)
	}

	if _, err := os.Stat(filepath.Join(p.cacheDir, ".git")); err != nil {
		return StateStale, nil
	}

	url, err := p.git.ConfigGet(ctx, "remote."+p.opts.Remote+".url")
	if err != nil {
		if ctx.Err() != nil {
			return StateStale, ctx.Err()
		}
		if errors.Is(err, git.ErrNotGitRepo) {
			p.logger.Debug().Err(err).Msg("cache directory holds a broken repository, treating it as stale")
			return StateStale, nil
		}
		p.logger.Debug().Err(err).Msg("cannot read remote url, treating cache directory as stale")
		return StateStale, nil
	}
	if url != p.opts.Repository {
		p.logger.Debug().
			Str("got", logging.RedactURL(url)).
			Str("expected", logging.RedactURL(p.opts.Repository)).
			Msg("remote url mismatch")
		return StateStale, nil
	}
	return StateValid, nil
}

// emptyDir removes everything inside dir but keeps dir itself.
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	return nil
}
