package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to operator-facing messages.
// A slice (not a map) because errors.Is() needs chain traversal, and the
// more specific sentinels must come first.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Remote synchronization
	// ===================
	{
		err: ErrSyncFailed,
		info: ErrorInfo{
			Message: "The cache repository could not be synchronized with its remote.",
			Action:  "Check for diverging history or concurrent writers on the cache branch and retry.",
		},
	},
	{
		err: ErrRefNotFound,
		info: ErrorInfo{
			Message: "The configured remote branch was not found in the cache repository.",
			Action:  "Verify GIT_REMOTE and GIT_BRANCH, and that the branch exists on the remote.",
		},
	},
	{
		err: ErrGitAuth,
		info: ErrorInfo{
			Message: "The git remote rejected the configured credentials.",
			Action:  "Check GIT_USER_NAME, GIT_USER_PASSWORD and GIT_HOST. GIT_HOST must match the host in GIT_REPOSITORY.",
		},
	},
	{
		err: ErrRemoteUnreachable,
		info: ErrorInfo{
			Message: "The git remote could not be reached.",
			Action:  "Check GIT_REPOSITORY and network access to the remote host.",
		},
	},
	{
		err: ErrRemoteNotFound,
		info: ErrorInfo{
			Message: "The git remote repository or branch does not exist.",
			Action:  "Verify GIT_REPOSITORY and GIT_BRANCH.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "The cache directory is not a git repository.",
			Action:  "Remove the cache directory so it can be cloned again.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "Git operation failed. Check the command output for details.",
			Action:  "Verify GIT_REPOSITORY, credentials and network access to the remote.",
		},
	},
	{
		err: ErrProcessFailed,
		info: ErrorInfo{
			Message: "An external command failed.",
			Action:  "Review the captured command output above.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire the cache lock. Another process may be using the cache directory.",
			Action:  "Wait and try again, or check for other servers sharing the same temp directory.",
		},
	},

	// ===================
	// Artifacts
	// ===================
	{
		err: ErrArtifactNotFound,
		info: ErrorInfo{
			Message: "The requested artifact does not exist.",
			Action:  "",
		},
	},
	{
		err: ErrPathTraversal,
		info: ErrorInfo{
			Message: "The artifact path escapes the storage root.",
			Action:  "Use plain team and artifact identifiers without '..' or absolute paths.",
		},
	},
	{
		err: ErrInvalidArtifactPath,
		info: ErrorInfo{
			Message: "The team or artifact identifier is not a valid path element.",
			Action:  "Use identifiers without path separators or a leading dot.",
		},
	},
	{
		err: ErrWriteAborted,
		info: ErrorInfo{
			Message: "The artifact upload was aborted before completion.",
			Action:  "Retry the upload.",
		},
	},

	// ===================
	// HTTP boundary
	// ===================
	{
		err: ErrMissingAuthorization,
		info: ErrorInfo{
			Message: "Missing Authorization header",
			Action:  "Send 'Authorization: Bearer <token>' with every request.",
		},
	},
	{
		err: ErrUnauthorized,
		info: ErrorInfo{
			Message: "Invalid authorization token",
			Action:  "Use one of the tokens configured in TURBO_TOKEN.",
		},
	},
	{
		err: ErrMissingTeam,
		info: ErrorInfo{
			Message: "querystring should have required property 'teamId'",
			Action:  "Pass ?teamId=<team> or ?slug=<team>.",
		},
	},
	{
		err: ErrUnsupportedMediaType,
		info: ErrorInfo{
			Message: "Unsupported Media Type",
			Action:  "Upload artifacts as application/octet-stream.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrUnknownStorageProvider,
		info: ErrorInfo{
			Message: "Unsupported storage provider.",
			Action:  "Set STORAGE_PROVIDER to one of: local, s3, google-cloud-storage, azure-blob-storage, git-repository.",
		},
	},
	{
		err: ErrConfigInvalidStorage,
		info: ErrorInfo{
			Message: "Invalid storage configuration.",
			Action:  "Check the environment variables for the selected storage provider.",
		},
	},
	{
		err: ErrConfigInvalidServer,
		info: ErrorInfo{
			Message: "Invalid server configuration.",
			Action:  "Check PORT, BODY_LIMIT and TURBO_TOKEN.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "",
		},
	},
	{
		err: ErrValueOutOfRange,
		info: ErrorInfo{
			Message: "Value is outside the allowed range.",
			Action:  "Check the documentation for valid value ranges.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the operator can take to resolve the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}

// getErrorInfo returns the first entry whose sentinel is in err's chain.
// Falls back to the original error message if none match.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}
