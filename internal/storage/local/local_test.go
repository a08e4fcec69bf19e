package local_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/turbocache/internal/storage"
	"github.com/mrz1836/turbocache/internal/storage/local"
)

func TestRoot(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), "turborepocache"), local.Root(local.Options{UseTmp: true}))
	assert.Equal(t, filepath.Join(os.TempDir(), "cache"), local.Root(local.Options{Path: "cache", UseTmp: true}))
	assert.Equal(t, "/srv/cache", local.Root(local.Options{Path: "/srv/cache"}))
	assert.Equal(t, "turborepocache", local.Root(local.Options{}))
}

func TestLocalBackend_RoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	loc := storage.NewLocation(local.New(local.Options{Path: root}))
	ctx := context.Background()

	require.NoError(t, loc.CreateCachedArtifact(ctx, "artifact_123.tar.zst", "team_abc", bytes.NewReader([]byte{1, 2, 3})))
	require.NoError(t, loc.ExistsCachedArtifact(ctx, "artifact_123.tar.zst", "team_abc"))
	assert.FileExists(t, filepath.Join(root, "team_abc", "artifact_123.tar.zst"))

	r, err := loc.GetCachedArtifact(ctx, "artifact_123.tar.zst", "team_abc")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}
