package azureblob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/storage"
	"github.com/mrz1836/turbocache/internal/testutil"
)

// fakeContainer is an in-memory blob container.
type fakeContainer struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	statErr error
}

func newFakeContainer() *fakeContainer {
	return &fakeContainer{blobs: map[string][]byte{}}
}

func (f *fakeContainer) Exists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statErr != nil {
		return false, f.statErr
	}
	_, ok := f.blobs[name]
	return ok, nil
}

func (f *fakeContainer) Download(_ context.Context, name string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tcerrors.ErrArtifactNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeContainer) Upload(ctx context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[name] = data
	return nil
}

func newTestStore(api blobAPI) *Store {
	return &Store{api: api, container: "turborepocache"}
}

func TestStore_RoundTripThroughLocation(t *testing.T) {
	fake := newFakeContainer()
	loc := storage.NewLocation(newTestStore(fake))
	ctx := context.Background()

	require.ErrorIs(t, loc.ExistsCachedArtifact(ctx, "artifact_123.tar.zst", "team_abc"), tcerrors.ErrArtifactNotFound)
	require.NoError(t, loc.CreateCachedArtifact(ctx, "artifact_123.tar.zst", "team_abc", bytes.NewReader([]byte{1, 2, 3})))
	assert.Equal(t, []byte{1, 2, 3}, fake.blobs["team_abc/artifact_123.tar.zst"])

	r, err := loc.GetCachedArtifact(ctx, "artifact_123.tar.zst", "team_abc")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestStore_Reader_MissingBlob(t *testing.T) {
	r, err := newTestStore(newFakeContainer()).NewReader(context.Background(), "team/missing")
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, tcerrors.ErrArtifactNotFound)
}

func TestStore_Writer_Abort(t *testing.T) {
	fake := newFakeContainer()
	w, err := newTestStore(fake).NewWriter(context.Background(), "team/a")
	require.NoError(t, err)

	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.(storage.Aborter).Abort())
	require.ErrorIs(t, w.Close(), tcerrors.ErrWriteAborted)
	assert.Empty(t, fake.blobs)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{ConnectionString: "x"})
	require.ErrorIs(t, err, tcerrors.ErrConfigInvalidStorage)

	_, err = New(Options{Container: "c"})
	require.ErrorIs(t, err, tcerrors.ErrConfigInvalidStorage)

	_, err = New(Options{Container: "c", ConnectionString: "not a connection string"})
	require.ErrorIs(t, err, tcerrors.ErrConfigInvalidStorage)
}

func TestStore_Exists_PropagatesErrors(t *testing.T) {
	api := newFakeContainer()
	api.statErr = testutil.ErrMockAPIError

	_, err := newTestStore(api).Exists(context.Background(), "team/a")
	require.ErrorIs(t, err, testutil.ErrMockAPIError)
	assert.Contains(t, err.Error(), "turborepocache/team/a")
}
