package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/turbocache/internal/process"
)

// CloneOptions configures Clone.
type CloneOptions struct {
	// Branch is checked out and is the only branch fetched.
	Branch string
	// Remote names the cloned remote.
	Remote string
	// Depth creates a shallow clone when positive.
	Depth int
}

// Clone clones url into dir. The command runs from the parent of dir so dir
// itself may be empty or absent.
func (c *Client) Clone(ctx context.Context, url, dir string, opts CloneOptions) error {
	args := []string{"clone", url, dir, "--single-branch"}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	if opts.Remote != "" {
		args = append(args, "--origin", opts.Remote)
	}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}

	if _, err := c.run(ctx, "", args...); err != nil {
		return fmt.Errorf("failed to clone into %s: %w", dir, remoteError(err))
	}
	return nil
}

// ConfigGet returns the trimmed value of a local config key.
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	out, err := c.Execute(ctx, "config", "--get", key)
	if err != nil {
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return strings.TrimSpace(out), nil
}

// ConfigSet writes a local config key.
func (c *Client) ConfigSet(ctx context.Context, key, value string) error {
	if _, err := c.Execute(ctx, "config", key, value); err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// VerifyRef checks that ref resolves in the local repository.
func (c *Client) VerifyRef(ctx context.Context, ref string) error {
	_, err := c.Execute(ctx, "ls-remote", "--exit-code", ".", ref)
	if err == nil {
		return nil
	}

	var perr *process.Error
	if errors.As(err, &perr) && perr.Code == 2 {
		return fmt.Errorf("%w: %s", ErrRefNotFound, ref)
	}
	return fmt.Errorf("failed to verify ref %s: %w", ref, err)
}

// Checkout switches to branch.
func (c *Client) Checkout(ctx context.Context, branch string) error {
	if _, err := c.Execute(ctx, "checkout", branch); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// ResetHard resets index and working tree to ref.
func (c *Client) ResetHard(ctx context.Context, ref string) error {
	if _, err := c.Execute(ctx, "reset", "--hard", ref); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", ref, err)
	}
	return nil
}

// Fetch updates the tracking ref of branch from remote.
func (c *Client) Fetch(ctx context.Context, remote, branch string) error {
	if _, err := c.Execute(ctx, "fetch", remote, branch); err != nil {
		return fmt.Errorf("failed to fetch %s %s: %w", remote, branch, remoteError(err))
	}
	return nil
}

// MergeFastForward merges ref into the current branch only if the result is
// a fast-forward. Any refusal matches ErrSyncFailed.
func (c *Client) MergeFastForward(ctx context.Context, ref string) error {
	_, err := c.Execute(ctx, "merge", "--ff-only", ref)
	if err == nil {
		return nil
	}

	var perr *process.Error
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: merge --ff-only %s: %w", ErrSyncFailed, ref, err)
	}
	return fmt.Errorf("failed to merge %s: %w", ref, err)
}
