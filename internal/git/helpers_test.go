package git

import (
	"testing"

	"github.com/mrz1836/turbocache/internal/testutil"
)

// runGit runs a git command for test setup and returns its trimmed output.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	return testutil.RunGit(t, dir, args...)
}

// setupTestRepo creates a git repository on branch main with an identity
// configured and one initial commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	return testutil.NewRepo(t)
}

func setupBareRemote(t *testing.T) string {
	t.Helper()
	return testutil.NewBareRemote(t)
}

func cloneRemote(t *testing.T, bare string) string {
	t.Helper()
	return testutil.Clone(t, bare)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	testutil.WriteFile(t, dir, name, content)
}

func commitCount(t *testing.T, dir string) string {
	t.Helper()
	return testutil.CommitCount(t, dir, "HEAD")
}
