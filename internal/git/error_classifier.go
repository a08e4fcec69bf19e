package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/turbocache/internal/process"
)

// ErrorType represents the classification of a git failure.
type ErrorType int

const (
	// ErrorTypeUnknown indicates the error could not be classified.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuth indicates the remote refused our credentials.
	ErrorTypeAuth
	// ErrorTypeNetwork indicates the remote could not be reached.
	ErrorTypeNetwork
	// ErrorTypeNotFound indicates a missing repository, branch or ref.
	ErrorTypeNotFound
	// ErrorTypeNonFastForward indicates diverged history on push or merge.
	ErrorTypeNonFastForward
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeUnknown:
		return "unknown"
	case ErrorTypeAuth:
		return "authentication"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeNonFastForward:
		return "non_fast_forward"
	default:
		return "unknown"
	}
}

// PatternMatcher checks if a string contains any of a list of lowercase patterns.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with the given patterns.
// All patterns should be lowercase.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// Matches lowercases s and reports whether it contains any pattern.
func (m *PatternMatcher) Matches(s string) bool {
	return m.MatchesLower(strings.ToLower(s))
}

// MatchesLower is Matches for input that is already lowercase.
func (m *PatternMatcher) MatchesLower(lower string) bool {
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

//nolint:gochecknoglobals // Package-level immutable pattern matchers
var (
	authPatterns = NewPatternMatcher(
		"authentication failed",
		"could not read username",
		"could not read password",
		"invalid username or password",
		"access denied",
		"authentication required",
		"bad credentials",
		"terminal prompts disabled",
	)

	networkPatterns = NewPatternMatcher(
		"could not resolve host",
		"connection refused",
		"network is unreachable",
		"connection timed out",
		"operation timed out",
		"unable to access",
		"no route to host",
		"failed to connect",
		"the remote end hung up unexpectedly",
	)

	notFoundPatterns = NewPatternMatcher(
		"repository not found",
		"not found",
		"does not appear to be a git repository",
		"does not exist",
		"couldn't find remote ref",
	)

	notRepoPatterns = NewPatternMatcher(
		"not a git repository",
	)

	nonFastForwardPatterns = NewPatternMatcher(
		"non-fast-forward",
		"rejected",
		"failed to push some refs",
		"fetch first",
		"not possible to fast-forward",
		"diverging branches",
		"tip of your current branch is behind",
	)
)

// ErrorClassifier groups the pattern matchers used to classify git output.
type ErrorClassifier struct {
	auth           *PatternMatcher
	network        *PatternMatcher
	notFound       *PatternMatcher
	nonFastForward *PatternMatcher
}

//nolint:gochecknoglobals // Singleton classifier for package use
var defaultClassifier = &ErrorClassifier{
	auth:           authPatterns,
	network:        networkPatterns,
	notFound:       notFoundPatterns,
	nonFastForward: nonFastForwardPatterns,
}

// ClassifyError determines the error type from git output or an error string.
//
// Classification priority (first match wins):
// 1. Authentication
// 2. Network
// 3. Non-fast-forward
// 4. Not found
func ClassifyError(errStr string) ErrorType {
	return defaultClassifier.Classify(errStr)
}

// Classify determines the error type from an error string.
func (c *ErrorClassifier) Classify(errStr string) ErrorType {
	lower := strings.ToLower(errStr)
	switch {
	case c.auth.MatchesLower(lower):
		return ErrorTypeAuth
	case c.network.MatchesLower(lower):
		return ErrorTypeNetwork
	case c.nonFastForward.MatchesLower(lower):
		return ErrorTypeNonFastForward
	case c.notFound.MatchesLower(lower):
		return ErrorTypeNotFound
	default:
		return ErrorTypeUnknown
	}
}

// remoteError tags a failed clone, fetch or push with the sentinel matching
// its output so operators get a credential, network or missing-ref hint.
// Errors without process output are returned unchanged.
func remoteError(err error) error {
	var perr *process.Error
	if !errors.As(err, &perr) {
		return err
	}

	switch ClassifyError(perr.Output) {
	case ErrorTypeAuth:
		return fmt.Errorf("%w: %w", ErrGitAuth, err)
	case ErrorTypeNetwork:
		return fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	case ErrorTypeNonFastForward:
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	case ErrorTypeNotFound:
		return fmt.Errorf("%w: %w", ErrRemoteNotFound, err)
	default:
		return err
	}
}

// localError tags a failure caused by a directory git does not recognize
// as a repository.
func localError(err error) error {
	var perr *process.Error
	if errors.As(err, &perr) && notRepoPatterns.Matches(perr.Output) {
		return fmt.Errorf("%w: %w", ErrNotGitRepo, err)
	}
	return err
}
