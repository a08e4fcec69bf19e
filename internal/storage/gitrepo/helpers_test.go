package gitrepo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/turbocache/internal/process"
	"github.com/mrz1836/turbocache/internal/testutil"
)

const (
	testUser  = testutil.GitUser
	testEmail = testutil.GitEmail
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	return testutil.RunGit(t, dir, args...)
}

// setupBareRemote creates a bare repository whose main branch has one commit.
func setupBareRemote(t *testing.T) string {
	t.Helper()
	return testutil.NewBareRemote(t)
}

// pushFromClone commits one file from a separate clone and pushes it.
func pushFromClone(t *testing.T, bare, name, content string) {
	t.Helper()
	testutil.PushFile(t, bare, name, content)
}

func testOptions(bare, tempRoot string) Options {
	return Options{
		Repository:    bare,
		UserName:      testUser,
		UserEmail:     testEmail,
		UserPassword:  "not-a-real-password",
		UseLocalCache: true,
		TempRoot:      tempRoot,
	}
}

func newTestProvider(t *testing.T, opts Options, options ...Option) *Provider {
	t.Helper()

	p, err := New(context.Background(), opts, options...)
	require.NoError(t, err)
	return p
}

// recordingExecutor records git subcommands and delegates to the real executor.
type recordingExecutor struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingExecutor) Run(ctx context.Context, exe string, args []string, dir string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	r.mu.Unlock()
	return process.Run(ctx, exe, args, dir)
}

func (r *recordingExecutor) subcommands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		subs = append(subs, c[0])
	}
	return subs
}

func (r *recordingExecutor) hasCall(prefix ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.calls {
		if len(c) < len(prefix) {
			continue
		}
		match := true
		for i := range prefix {
			if c[i] != prefix[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// gatedExecutor holds fetch commands until release is closed, once armed.
// A held fetch still ends when its own context does.
type gatedExecutor struct {
	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedExecutor() *gatedExecutor {
	return &gatedExecutor{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedExecutor) Run(ctx context.Context, exe string, args []string, dir string) (string, error) {
	if g.armed.Load() && len(args) > 0 && args[0] == "fetch" {
		g.once.Do(func() { close(g.entered) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return process.Run(ctx, exe, args, dir)
}
