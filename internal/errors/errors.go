// Package errors provides centralized error handling for turbocache.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrProcessFailed indicates that an external command exited with a
	// non-zero status or could not be started.
	ErrProcessFailed = errors.New("process failed")

	// ErrGitOperation indicates that a git command (clone, checkout, commit, etc.)
	// failed during execution.
	ErrGitOperation = errors.New("git operation failed")

	// ErrSyncFailed indicates that the cache working copy could not be
	// synchronized with its remote: a fast-forward-only merge was refused or
	// a push was rejected.
	ErrSyncFailed = errors.New("synchronization with remote failed")

	// ErrGitAuth indicates the git remote rejected the configured credentials.
	ErrGitAuth = errors.New("git authentication failed")

	// ErrRemoteUnreachable indicates the git remote could not be reached.
	ErrRemoteUnreachable = errors.New("git remote unreachable")

	// ErrRemoteNotFound indicates the remote repository or branch does not exist.
	ErrRemoteNotFound = errors.New("remote repository or branch not found")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrRefNotFound indicates an expected remote tracking ref is missing.
	ErrRefNotFound = errors.New("ref not found")

	// ErrArtifactNotFound indicates the requested artifact does not exist in the backend.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrPathTraversal indicates an artifact path would escape the backend root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrInvalidArtifactPath indicates a team or artifact identifier that cannot
	// be used as a path element.
	ErrInvalidArtifactPath = errors.New("invalid artifact path")

	// ErrWriteAborted indicates an artifact write was discarded before completion.
	ErrWriteAborted = errors.New("artifact write aborted")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidServer indicates an invalid HTTP server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidStorage indicates invalid or missing storage backend options.
	ErrConfigInvalidStorage = errors.New("invalid storage configuration")

	// ErrUnknownStorageProvider indicates a storage provider kind outside the supported set.
	ErrUnknownStorageProvider = errors.New("unsupported storage provider")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrMissingAuthorization indicates a request without an Authorization header.
	ErrMissingAuthorization = errors.New("missing authorization header")

	// ErrUnauthorized indicates a request carrying an unknown bearer token.
	ErrUnauthorized = errors.New("invalid authorization token")

	// ErrMissingTeam indicates a request that names neither teamId nor slug.
	ErrMissingTeam = errors.New("missing team identifier")

	// ErrUnsupportedMediaType indicates an upload with a content type other than
	// application/octet-stream.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)
