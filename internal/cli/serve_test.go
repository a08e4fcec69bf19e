package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/turbocache/internal/config"
	"github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/testutil"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Tokens = []string{"serve-token"}
	cfg.Storage.Path = t.TempDir()
	cfg.Storage.UseTmpFolder = false
	return cfg
}

func TestRunServe_LocalRoundTrip(t *testing.T) {
	cfg := localConfig(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cfg, zerolog.Nop(), func() (net.Listener, error) { return ln, nil })
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/v8/artifacts/status") //nolint:noctx // test helper
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	send := func(method string, body io.Reader) *http.Response {
		req, err := http.NewRequestWithContext(context.Background(), method, base+"/v8/artifacts/deadbeef?teamId=acme", body)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer serve-token")
		req.Header.Set("Content-Type", "application/octet-stream")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := send(http.MethodPut, bytes.NewReader([]byte("artifact")))
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(http.MethodGet, nil)
	got, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "artifact", string(got))

	resp, err = http.Get(base + "/metrics") //nolint:noctx // test helper
	require.NoError(t, err)
	metricsBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(metricsBody), `turbocache_artifact_operations_total{op="create",result="ok"} 1`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunServe_UnknownProvider(t *testing.T) {
	cfg := localConfig(t)
	cfg.Storage.Provider = "ftp"

	err := runServe(context.Background(), cfg, zerolog.Nop(), func() (net.Listener, error) {
		t.Fatal("listener must not be opened")
		return nil, nil
	})
	require.ErrorIs(t, err, errors.ErrUnknownStorageProvider)
}

func TestRunServe_ProviderInitFails(t *testing.T) {
	cfg := localConfig(t)
	cfg.Storage.Provider = config.ProviderGit
	cfg.Storage.Git.Repository = "https://example.invalid/cache.git"

	// Missing user name fails option validation before any git command runs.
	err := runServe(context.Background(), cfg, zerolog.Nop(), func() (net.Listener, error) {
		t.Fatal("listener must not be opened")
		return nil, nil
	})
	require.ErrorIs(t, err, errors.ErrConfigInvalidStorage)
}

func TestBackendOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Path = "artifacts"
	cfg.Storage.S3 = config.S3Config{AccessKey: "ak", SecretKey: "sk", Region: "us-east-1", Endpoint: "http://minio:9000"}
	cfg.Storage.GCS = config.GCSConfig{ProjectID: "p", ClientEmail: "e", PrivateKey: "k"}
	cfg.Storage.Azure.ConnectionString = "cs"
	cfg.Storage.Git.Repository = "https://github.com/acme/cache.git"
	cfg.Storage.Git.UserName = "bot"
	cfg.Storage.Git.CloneDepth = 1
	cfg.Storage.Git.UseLocalCache = false

	opts := backendOptions(cfg, zerolog.Nop())

	assert.Equal(t, "artifacts", opts.Local.Path)
	assert.True(t, opts.Local.UseTmp)
	assert.Equal(t, "artifacts", opts.S3.Bucket)
	assert.Equal(t, "http://minio:9000", opts.S3.Endpoint)
	assert.Equal(t, "sk", opts.S3.SecretKey)
	assert.Equal(t, "artifacts", opts.GCS.Bucket)
	assert.Equal(t, "e", opts.GCS.ClientEmail)
	assert.Equal(t, "artifacts", opts.Azure.Container)
	assert.Equal(t, "cs", opts.Azure.ConnectionString)
	assert.Equal(t, "artifacts", opts.Git.Path)
	assert.Equal(t, "https://github.com/acme/cache.git", opts.Git.Repository)
	assert.Equal(t, "main", opts.Git.Branch)
	assert.Equal(t, 1, opts.Git.CloneDepth)
	assert.False(t, opts.Git.UseLocalCache)
	assert.Equal(t, cfg.Storage.Git.CommandTimeout, opts.Git.CommandTimeout)
}

// startServe runs runServe on a loopback listener and waits for the status
// route. The returned stop func cancels the server and waits for it.
func startServe(t *testing.T, cfg *config.Config) (string, func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cfg, zerolog.Nop(), func() (net.Listener, error) { return ln, nil })
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/v8/artifacts/status") //nolint:noctx // test helper
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 20*time.Millisecond)

	return base, func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

func TestRunServe_GitRepositoryRoundTrip(t *testing.T) {
	bare := testutil.NewBareRemote(t)
	t.Setenv("TMPDIR", t.TempDir())

	cfg := config.DefaultConfig()
	cfg.Server.Tokens = []string{"serve-token"}
	cfg.Storage.Provider = config.ProviderGit
	cfg.Storage.Path = "cache"
	cfg.Storage.Git.Repository = bare
	cfg.Storage.Git.UserName = testutil.GitUser
	cfg.Storage.Git.UserEmail = testutil.GitEmail
	cfg.Storage.Git.UserPassword = "not-a-real-password"

	base, stop := startServe(t, cfg)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPut,
		base+"/v8/artifacts/cafe?slug=acme", bytes.NewReader([]byte("from git")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer serve-token")
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stop()

	assert.Equal(t, "from git", testutil.RunGit(t, bare, "show", "main:acme/cafe"))
	assert.Equal(t, "chore: update cache acme/cafe", testutil.RunGit(t, bare, "log", "-1", "--format=%s", "main"))
}
