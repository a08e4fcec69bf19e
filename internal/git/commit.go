package git

import (
	"context"
	"errors"
	"fmt"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/process"
)

// Add stages one or more paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return fmt.Errorf("paths to add: %w", tcerrors.ErrEmptyValue)
	}

	args := append([]string{"add", "--"}, paths...)
	if _, err := c.Execute(ctx, args...); err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// Commit records staged changes with message, but only when the tree
// differs from HEAD.
//
// The dirtiness probe is `git diff-index --quiet HEAD`: it exits 0 on a clean
// tree, in which case Commit returns nil without creating a commit. Any
// non-zero exit of the probe means there is something to commit.
func (c *Client) Commit(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("commit message: %w", tcerrors.ErrEmptyValue)
	}

	_, probeErr := c.Execute(ctx, "diff-index", "--quiet", "HEAD")
	if probeErr == nil {
		c.logger.Debug().Str("dir", c.workDir).Msg("working tree clean, skipping commit")
		return nil
	}

	var perr *process.Error
	if !errors.As(probeErr, &perr) {
		// Not an exit status (canceled, binary missing): nothing was probed.
		return fmt.Errorf("failed to check working tree: %w", probeErr)
	}

	if _, err := c.Execute(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
