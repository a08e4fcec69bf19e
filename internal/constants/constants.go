// Package constants provides centralized constant values used throughout turbocache.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// HTTP server defaults.
const (
	// DefaultPort is the TCP port the cache server listens on.
	DefaultPort = 3000

	// DefaultBodyLimit is the maximum accepted artifact upload size in bytes (100 MiB).
	DefaultBodyLimit = 104857600

	// DefaultAPIVersion is the path prefix of the remote cache API.
	DefaultAPIVersion = "v8"

	// ArtifactContentType is the only content type accepted for uploads.
	ArtifactContentType = "application/octet-stream"

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slowloris clients.
	ReadHeaderTimeout = 10 * time.Second
)

// Storage defaults.
const (
	// DefaultCacheFolderName is the storage path used when none is configured.
	DefaultCacheFolderName = "turborepocache"

	// DefaultUseTmpFolder places local storage under the OS temp directory.
	DefaultUseTmpFolder = true

	// CacheDirPerm is the permission used for directories created under a storage root.
	CacheDirPerm = 0o750

	// ArtifactFilePerm is the permission of finished artifact files.
	ArtifactFilePerm = 0o644

	// CredentialFilePerm is the permission of the git credential store file.
	CredentialFilePerm = 0o600
)

// Git repository backend defaults.
const (
	// DefaultGitBranch is the branch holding cached artifacts.
	DefaultGitBranch = "main"

	// DefaultGitRemote is the remote name given to the cloned repository.
	DefaultGitRemote = "origin"

	// DefaultGitHost is the host written into the credential store.
	DefaultGitHost = "github.com"

	// DefaultGitExecutable is the git binary resolved through PATH.
	DefaultGitExecutable = "git"

	// DefaultGitUseLocalCache reuses a valid working copy across restarts.
	DefaultGitUseLocalCache = true

	// DefaultGitCloneDepth of zero means a full clone.
	DefaultGitCloneDepth = 0

	// GitRepositoryDir is the directory under the temp root that holds working copies.
	GitRepositoryDir = "git-repository"

	// CredentialFileName is the git credential store file, shared by all working copies.
	CredentialFileName = ".git-credentials"

	// LockFileSuffix is appended to the working copy path to name its file lock.
	LockFileSuffix = ".lock"

	// CommitMessagePrefix precedes the artifact path in cache commit messages.
	CommitMessagePrefix = "chore: update cache "

	// GitNoPromptEnv keeps git from asking for credentials on a terminal.
	GitNoPromptEnv = "GIT_TERMINAL_PROMPT=0"

	// DefaultGitCommandTimeout bounds a single git invocation.
	DefaultGitCommandTimeout = 5 * time.Minute
)

// Lock acquisition tuning.
const (
	// DefaultLockTimeout is how long a git write waits for the working copy lock.
	DefaultLockTimeout = 2 * time.Minute

	// LockPollInterval is the delay between non-blocking flock attempts.
	LockPollInterval = 50 * time.Millisecond
)

// Log file rotation defaults for LOG_FILE output.
const (
	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated files are retained.
	LogMaxAgeDays = 7

	// LogCompress gzips rotated files.
	LogCompress = true
)
