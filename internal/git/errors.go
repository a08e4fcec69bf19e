// Package git provides Git operations for turbocache.
// This file provides error sentinel re-exports from internal/errors.
package git

import (
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// ErrGitOperation is re-exported from internal/errors for convenience.
// Use errors.Is(err, ErrGitOperation) to check for git operation failures.
var ErrGitOperation = tcerrors.ErrGitOperation

// ErrSyncFailed is re-exported from internal/errors for convenience.
// Returned when a fast-forward merge is refused or a push is rejected.
var ErrSyncFailed = tcerrors.ErrSyncFailed

// ErrGitAuth is re-exported from internal/errors for convenience.
// Returned when the remote rejects the configured credentials.
var ErrGitAuth = tcerrors.ErrGitAuth

// ErrRemoteUnreachable is re-exported from internal/errors for convenience.
var ErrRemoteUnreachable = tcerrors.ErrRemoteUnreachable

// ErrRemoteNotFound is re-exported from internal/errors for convenience.
var ErrRemoteNotFound = tcerrors.ErrRemoteNotFound

// ErrNotGitRepo is re-exported from internal/errors for convenience.
// Returned when a command runs in a directory git does not recognize.
var ErrNotGitRepo = tcerrors.ErrNotGitRepo

// ErrRefNotFound is re-exported from internal/errors for convenience.
// Returned when ls-remote cannot resolve the expected tracking ref.
var ErrRefNotFound = tcerrors.ErrRefNotFound
