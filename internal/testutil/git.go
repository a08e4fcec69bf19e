package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Identity used for fixture commits.
const (
	GitUser  = "cache-bot"
	GitEmail = "cache-bot@turbocache.local"
)

// RequireGit skips the test when no git binary is on PATH.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
}

// RunGit runs git in dir with the fixture identity and returns its trimmed
// output. An empty dir runs in the current directory.
func RunGit(t testing.TB, dir string, args ...string) string {
	t.Helper()

	full := append([]string{
		"-c", "user.name=" + GitUser,
		"-c", "user.email=" + GitEmail,
		"-c", "commit.gpgsign=false",
	}, args...)
	cmd := exec.CommandContext(context.Background(), "git", full...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// ConfigureIdentity writes the fixture identity into the repository config,
// for code under test that runs git without -c overrides.
func ConfigureIdentity(t testing.TB, dir string) {
	t.Helper()
	RunGit(t, dir, "config", "user.name", GitUser)
	RunGit(t, dir, "config", "user.email", GitEmail)
	RunGit(t, dir, "config", "commit.gpgsign", "false")
}

// NewRepo creates a repository on branch main with one commit of README.md.
func NewRepo(t testing.TB) string {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	RunGit(t, dir, "init", "-b", "main")
	ConfigureIdentity(t, dir)
	WriteFile(t, dir, "README.md", "turbo cache\n")
	RunGit(t, dir, "add", "README.md")
	RunGit(t, dir, "commit", "-m", "initial commit")
	return dir
}

// NewBareRemote creates a bare repository whose main branch has one commit.
func NewBareRemote(t testing.TB) string {
	t.Helper()
	RequireGit(t)

	bare := filepath.Join(t.TempDir(), "cache.git")
	RunGit(t, "", "init", "--bare", "-b", "main", bare)

	seed := NewRepo(t)
	RunGit(t, seed, "remote", "add", "origin", bare)
	RunGit(t, seed, "push", "origin", "main")
	return bare
}

// Clone clones the main branch of bare into a fresh directory with the
// fixture identity configured.
func Clone(t testing.TB, bare string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "clone")
	RunGit(t, "", "clone", "--branch", "main", bare, dir)
	ConfigureIdentity(t, dir)
	return dir
}

// PushFile commits name with content from a fresh clone of bare and pushes it.
func PushFile(t testing.TB, bare, name, content string) {
	t.Helper()

	dir := Clone(t, bare)
	WriteFile(t, dir, name, content)
	RunGit(t, dir, "add", name)
	RunGit(t, dir, "commit", "-m", "external "+name)
	RunGit(t, dir, "push", "origin", "main")
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t testing.TB, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// CommitCount returns the number of commits reachable from ref in dir.
func CommitCount(t testing.TB, dir, ref string) string {
	t.Helper()
	return RunGit(t, dir, "rev-list", "--count", ref)
}
