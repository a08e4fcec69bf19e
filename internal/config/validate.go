package config

import (
	"strings"

	"github.com/mrz1836/turbocache/internal/errors"
)

// Provider names accepted by storage.provider. "S3" is kept as an alias of "s3".
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
	ProviderGCS   = "google-cloud-storage"
	ProviderAzure = "azure-blob-storage"
	ProviderGit   = "git-repository"
)

//nolint:gochecknoglobals // Fixed set of accepted log levels
var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - server.port must be between 1 and 65535
//   - server.body_limit must be positive
//   - at least one token must be configured
//   - log.level must be a known level
//   - the record of the selected storage provider must be complete
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateServerConfig(&cfg.Server); err != nil {
		return err
	}

	if err := validateLogConfig(&cfg.Log); err != nil {
		return err
	}

	return validateStorageConfig(&cfg.Storage)
}

// validateServerConfig checks listener and authentication settings.
func validateServerConfig(cfg *ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.BodyLimit <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.body_limit must be positive, got %d", cfg.BodyLimit)
	}

	if cfg.APIVersion == "" || strings.Contains(cfg.APIVersion, "/") {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.api_version must be a single path segment, got %q", cfg.APIVersion)
	}

	if len(cfg.Tokens) == 0 {
		return errors.Wrap(errors.ErrConfigInvalidServer,
			"TURBO_TOKEN must contain at least one token")
	}

	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	for _, l := range logLevels {
		if cfg.Level == l {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrValueOutOfRange,
		"log.level must be one of %s, got %q", strings.Join(logLevels, ", "), cfg.Level)
}

// validateStorageConfig checks the record of the selected provider only.
func validateStorageConfig(cfg *StorageConfig) error {
	switch cfg.Provider {
	case ProviderLocal:
		return nil
	case ProviderS3, "S3":
		return requireField(cfg.Path, "STORAGE_PATH (s3 bucket)")
	case ProviderGCS:
		if err := requireField(cfg.Path, "STORAGE_PATH (gcs bucket)"); err != nil {
			return err
		}
		if (cfg.GCS.ClientEmail == "") != (cfg.GCS.PrivateKey == "") {
			return errors.Wrap(errors.ErrConfigInvalidStorage,
				"GCS_CLIENT_EMAIL and GCS_PRIVATE_KEY must be set together")
		}
		return nil
	case ProviderAzure:
		if err := requireField(cfg.Path, "STORAGE_PATH (azure container)"); err != nil {
			return err
		}
		return requireField(cfg.Azure.ConnectionString, "ABS_CONNECTION_STRING")
	case ProviderGit:
		return validateGitConfig(&cfg.Git)
	default:
		return errors.Wrapf(errors.ErrUnknownStorageProvider,
			"%q, select one of: %s", cfg.Provider,
			strings.Join([]string{ProviderLocal, ProviderS3, ProviderGCS, ProviderAzure, ProviderGit}, ", "))
	}
}

func validateGitConfig(cfg *GitConfig) error {
	for _, f := range []struct{ value, name string }{
		{cfg.Repository, "GIT_REPOSITORY"},
		{cfg.UserName, "GIT_USER_NAME"},
		{cfg.UserEmail, "GIT_USER_EMAIL"},
		{cfg.Branch, "GIT_BRANCH"},
		{cfg.Remote, "GIT_REMOTE"},
	} {
		if err := requireField(f.value, f.name); err != nil {
			return err
		}
	}

	if cfg.CloneDepth < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidStorage,
			"GIT_CLONE_DEPTH cannot be negative, got %d", cfg.CloneDepth)
	}

	if cfg.CommandTimeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidStorage,
			"GIT_COMMAND_TIMEOUT cannot be negative, got %s", cfg.CommandTimeout)
	}

	return nil
}

func requireField(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Wrapf(errors.ErrConfigInvalidStorage, "%s is required", name)
	}
	return nil
}
