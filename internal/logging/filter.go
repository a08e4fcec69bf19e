// Package logging provides logging utilities including sensitive data filtering.
// This package contains hooks and utilities for zerolog that keep credentials
// (repository passwords, cloud keys, bearer tokens) out of log output.
package logging

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// credentialURLPattern matches the password part of user:password@host URLs.
var credentialURLPattern = regexp.MustCompile(`(://[^:/@\s]+):[^@\s]+@`) //nolint:gochecknoglobals // Package-level pattern for reuse

// sensitivePatterns contains compiled regular expressions for detecting sensitive values.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_) and fine-grained PATs
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{20,}`),

	// AWS access key ids
	regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`),

	// Azure storage connection string keys
	regexp.MustCompile(`(?i)(AccountKey|SharedAccessSignature)=[^;\s]+`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]{8,}`),

	// Generic secret patterns (secret, password, credential, token with values)
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// PEM private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// sensitiveFieldNames contains field names that should always have their values redacted.
// Case-insensitive substring matching is performed.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"password",
	"passwd",
	"secret",
	"credential",
	"private_key",
	"privatekey",
	"access_key",
	"accesskey",
	"connection_string",
	"connectionstring",
	"token",
	"authorization",
}

// SensitiveDataHook is a zerolog hook that flags log entries whose message
// contains sensitive data. zerolog cannot rewrite a message from a hook, so
// the actual redaction happens in FilteringWriter and at call sites.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook for filtering sensitive data.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	if credentialURLPattern.MatchString(s) {
		return true
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces sensitive substrings of value with [REDACTED].
// Passwords embedded in URLs keep the user name.
func FilterSensitiveValue(value string) string {
	result := credentialURLPattern.ReplaceAllString(value, "$1:"+RedactedValue+"@")
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// RedactURL hides the password of a URL with embedded credentials.
// Values that do not parse as URLs go through FilterSensitiveValue.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return FilterSensitiveValue(raw)
	}
	return u.Redacted()
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns [REDACTED] for sensitive field names and a filtered value otherwise.
//
// Usage:
//
//	log.Info().Str("repository", logging.SafeValue("repository", repo)).Msg("cloning")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// Log file writers are wrapped with it so secrets never reach disk.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It reports the original length so callers do not see a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
