package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/turbocache/internal/errors"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Server.Tokens = []string{"token"}
	return cfg
}

func TestValidate_Nil(t *testing.T) {
	require.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidate_Server(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"body limit zero", func(c *Config) { c.Server.BodyLimit = 0 }},
		{"api version empty", func(c *Config) { c.Server.APIVersion = "" }},
		{"api version with slash", func(c *Config) { c.Server.APIVersion = "v8/x" }},
		{"no tokens", func(c *Config) { c.Server.Tokens = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			require.ErrorIs(t, Validate(cfg), errors.ErrConfigInvalidServer)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	require.ErrorIs(t, Validate(cfg), errors.ErrValueOutOfRange)
}

func TestValidate_Storage(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"local needs nothing", func(c *Config) { c.Storage.Path = "" }, nil},
		{"s3 alias", func(c *Config) { c.Storage.Provider = "S3" }, nil},
		{"s3 without bucket", func(c *Config) {
			c.Storage.Provider = ProviderS3
			c.Storage.Path = ""
		}, errors.ErrConfigInvalidStorage},
		{"gcs with half credentials", func(c *Config) {
			c.Storage.Provider = ProviderGCS
			c.Storage.GCS.ClientEmail = "svc@example.com"
		}, errors.ErrConfigInvalidStorage},
		{"azure without connection string", func(c *Config) {
			c.Storage.Provider = ProviderAzure
		}, errors.ErrConfigInvalidStorage},
		{"git without repository", func(c *Config) {
			c.Storage.Provider = ProviderGit
			c.Storage.Git.UserName = "bot"
			c.Storage.Git.UserEmail = "bot@example.com"
		}, errors.ErrConfigInvalidStorage},
		{"git with negative depth", func(c *Config) {
			c.Storage.Provider = ProviderGit
			c.Storage.Git.Repository = "https://example.com/cache.git"
			c.Storage.Git.UserName = "bot"
			c.Storage.Git.UserEmail = "bot@example.com"
			c.Storage.Git.CloneDepth = -1
		}, errors.ErrConfigInvalidStorage},
		{"git complete", func(c *Config) {
			c.Storage.Provider = ProviderGit
			c.Storage.Git.Repository = "https://example.com/cache.git"
			c.Storage.Git.UserName = "bot"
			c.Storage.Git.UserEmail = "bot@example.com"
		}, nil},
		{"unknown provider", func(c *Config) { c.Storage.Provider = "ftp" }, errors.ErrUnknownStorageProvider},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidate_UnknownProviderListsChoices(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Provider = "ftp"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git-repository")
	assert.Contains(t, err.Error(), `"ftp"`)
}
