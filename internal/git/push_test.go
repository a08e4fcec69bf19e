package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

func TestClient_Push(t *testing.T) {
	t.Run("pushes branch to remote", func(t *testing.T) {
		bare := setupBareRemote(t)
		clone := cloneRemote(t, bare)
		writeFile(t, clone, "team/a", "1")

		c := NewClient(clone)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, "team/a"))
		require.NoError(t, c.Commit(ctx, "add a"))
		require.NoError(t, c.Push(ctx, "origin", "main"))

		head := runGit(t, clone, "rev-parse", "HEAD")
		assert.Equal(t, head, runGit(t, bare, "rev-parse", "main"))
	})

	t.Run("diverged history is a sync failure", func(t *testing.T) {
		bare := setupBareRemote(t)
		first := cloneRemote(t, bare)
		second := cloneRemote(t, bare)
		ctx := context.Background()

		writeFile(t, first, "one", "1")
		c1 := NewClient(first)
		require.NoError(t, c1.Add(ctx, "one"))
		require.NoError(t, c1.Commit(ctx, "one"))
		require.NoError(t, c1.Push(ctx, "origin", "main"))

		writeFile(t, second, "two", "2")
		c2 := NewClient(second)
		require.NoError(t, c2.Add(ctx, "two"))
		require.NoError(t, c2.Commit(ctx, "two"))

		err := c2.Push(ctx, "origin", "main")
		require.Error(t, err)
		require.ErrorIs(t, err, tcerrors.ErrSyncFailed)
		require.ErrorIs(t, err, tcerrors.ErrProcessFailed)
	})

	t.Run("hook rejection surfaces as a sync failure", func(t *testing.T) {
		bare := setupBareRemote(t)
		hook := filepath.Join(bare, "hooks", "pre-receive")
		require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\necho denied by policy\nexit 1\n"), 0o700)) //#nosec G306 -- hook must be executable

		clone := cloneRemote(t, bare)
		writeFile(t, clone, "x", "1")
		c := NewClient(clone)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, "x"))
		require.NoError(t, c.Commit(ctx, "x"))

		err := c.Push(ctx, "origin", "main")
		require.ErrorIs(t, err, tcerrors.ErrSyncFailed)
		assert.Contains(t, err.Error(), "denied by policy")
	})
}
