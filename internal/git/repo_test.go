package git

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

func TestClient_Clone(t *testing.T) {
	bare := setupBareRemote(t)
	dir := filepath.Join(t.TempDir(), "cache")

	c := NewClient(dir)
	require.NoError(t, c.Clone(context.Background(), bare, dir, CloneOptions{
		Branch: "main",
		Remote: "upstream",
		Depth:  1,
	}))

	url, err := c.ConfigGet(context.Background(), "remote.upstream.url")
	require.NoError(t, err)
	assert.Equal(t, bare, url)
	assert.Equal(t, "1", commitCount(t, dir))
}

func TestClient_Config(t *testing.T) {
	repo := setupTestRepo(t)
	c := NewClient(repo)
	ctx := context.Background()

	require.NoError(t, c.ConfigSet(ctx, "user.name", "Cache Bot"))
	got, err := c.ConfigGet(ctx, "user.name")
	require.NoError(t, err)
	assert.Equal(t, "Cache Bot", got)

	_, err = c.ConfigGet(ctx, "remote.origin.url")
	require.ErrorIs(t, err, tcerrors.ErrGitOperation)
}

func TestClient_VerifyCheckoutReset(t *testing.T) {
	bare := setupBareRemote(t)
	clone := cloneRemote(t, bare)
	c := NewClient(clone)
	ctx := context.Background()

	require.NoError(t, c.VerifyRef(ctx, "origin/main"))
	require.ErrorIs(t, c.VerifyRef(ctx, "origin/missing"), tcerrors.ErrRefNotFound)

	writeFile(t, clone, "README.md", "local drift\n")
	require.NoError(t, c.Checkout(ctx, "main"))
	require.NoError(t, c.ResetHard(ctx, "origin/main"))
	assert.Empty(t, runGit(t, clone, "status", "--porcelain"))
}

func TestClient_FetchAndMergeFastForward(t *testing.T) {
	ctx := context.Background()

	t.Run("fast-forward applies remote commits", func(t *testing.T) {
		bare := setupBareRemote(t)
		writer := cloneRemote(t, bare)
		reader := cloneRemote(t, bare)

		writeFile(t, writer, "team/a", "1")
		w := NewClient(writer)
		require.NoError(t, w.Add(ctx, "team/a"))
		require.NoError(t, w.Commit(ctx, "a"))
		require.NoError(t, w.Push(ctx, "origin", "main"))

		r := NewClient(reader)
		require.NoError(t, r.Fetch(ctx, "origin", "main"))
		require.NoError(t, r.MergeFastForward(ctx, "origin/main"))
		assert.FileExists(t, filepath.Join(reader, "team", "a"))

		assert.Equal(t, runGit(t, writer, "rev-parse", "HEAD"), runGit(t, reader, "rev-parse", "HEAD"))
	})

	t.Run("diverged history is refused", func(t *testing.T) {
		bare := setupBareRemote(t)
		writer := cloneRemote(t, bare)
		reader := cloneRemote(t, bare)

		writeFile(t, writer, "w", "1")
		w := NewClient(writer)
		require.NoError(t, w.Add(ctx, "w"))
		require.NoError(t, w.Commit(ctx, "w"))
		require.NoError(t, w.Push(ctx, "origin", "main"))

		writeFile(t, reader, "r", "1")
		r := NewClient(reader)
		require.NoError(t, r.Add(ctx, "r"))
		require.NoError(t, r.Commit(ctx, "r"))

		require.NoError(t, r.Fetch(ctx, "origin", "main"))
		err := r.MergeFastForward(ctx, "origin/main")
		require.ErrorIs(t, err, tcerrors.ErrSyncFailed)
	})
}
