package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// testError is a custom error type used to exercise the fallback branch
// in UserMessage and Actionable.
type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrProcessFailed", tcerrors.ErrProcessFailed, "process failed"},
		{"ErrGitOperation", tcerrors.ErrGitOperation, "git operation failed"},
		{"ErrSyncFailed", tcerrors.ErrSyncFailed, "synchronization with remote failed"},
		{"ErrArtifactNotFound", tcerrors.ErrArtifactNotFound, "artifact not found"},
		{"ErrPathTraversal", tcerrors.ErrPathTraversal, "path traversal detected"},
		{"ErrConfigInvalidStorage", tcerrors.ErrConfigInvalidStorage, "invalid storage configuration"},
		{"ErrUnknownStorageProvider", tcerrors.ErrUnknownStorageProvider, "unsupported storage provider"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	allErrors := []error{
		tcerrors.ErrProcessFailed,
		tcerrors.ErrGitOperation,
		tcerrors.ErrSyncFailed,
		tcerrors.ErrNotGitRepo,
		tcerrors.ErrGitAuth,
		tcerrors.ErrRemoteUnreachable,
		tcerrors.ErrRemoteNotFound,
		tcerrors.ErrRefNotFound,
		tcerrors.ErrArtifactNotFound,
		tcerrors.ErrPathTraversal,
		tcerrors.ErrInvalidArtifactPath,
		tcerrors.ErrWriteAborted,
		tcerrors.ErrConfigInvalidStorage,
		tcerrors.ErrUnknownStorageProvider,
		tcerrors.ErrLockTimeout,
	}

	for i, a := range allErrors {
		for j, b := range allErrors {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b, "%q should not match %q", a, b)
		}
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		require.NoError(t, tcerrors.Wrap(nil, "context"))
		require.NoError(t, tcerrors.Wrapf(nil, "context %d", 1))
	})

	t.Run("preserves the chain", func(t *testing.T) {
		err := tcerrors.Wrapf(tcerrors.ErrArtifactNotFound, "artifact %s", "team/abc")
		require.ErrorIs(t, err, tcerrors.ErrArtifactNotFound)
		assert.Equal(t, "artifact team/abc: artifact not found", err.Error())
	})
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, tcerrors.UserMessage(nil))
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("push failed: %w", tcerrors.ErrSyncFailed)
		assert.Contains(t, tcerrors.UserMessage(err), "could not be synchronized")
	})

	t.Run("sync failure wins over process failure when both are in the chain", func(t *testing.T) {
		err := errors.Join(tcerrors.ErrProcessFailed, tcerrors.ErrSyncFailed)
		msg, action := tcerrors.Actionable(err)
		assert.Contains(t, msg, "synchronized")
		assert.NotEmpty(t, action)
	})

	t.Run("credential failure points at the git settings", func(t *testing.T) {
		err := fmt.Errorf("clone: %w", errors.Join(tcerrors.ErrGitAuth, tcerrors.ErrGitOperation))
		msg, action := tcerrors.Actionable(err)
		assert.Contains(t, msg, "credentials")
		assert.Contains(t, action, "GIT_USER_PASSWORD")
	})

	t.Run("unknown error falls back to its message", func(t *testing.T) {
		err := testError{msg: "something odd"}
		msg, action := tcerrors.Actionable(err)
		assert.Equal(t, "something odd", msg)
		assert.Empty(t, action)
	})
}
