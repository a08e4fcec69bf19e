package git

import (
	"context"
	"fmt"
)

// Push pushes branch and all tags to remote.
// A rejection classified as non-fast-forward also matches ErrSyncFailed.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	if _, err := c.Execute(ctx, "push", "--tags", remote, branch); err != nil {
		return fmt.Errorf("failed to push %s %s: %w", remote, branch, remoteError(err))
	}
	return nil
}
