// Package config loads the cache server configuration with layered precedence.
//
// Configuration sources, highest precedence first:
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (PORT, TURBO_TOKEN, STORAGE_PROVIDER, ...)
//  3. An optional YAML config file
//  4. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import the storage or server packages.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Server contains HTTP listener and authentication settings.
	Server ServerConfig `yaml:"server" json:"server" mapstructure:"server"`

	// Log contains log level and log file settings.
	Log LogConfig `yaml:"log" json:"log" mapstructure:"log"`

	// Storage selects the storage provider and holds one record per provider.
	Storage StorageConfig `yaml:"storage" json:"storage" mapstructure:"storage"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the TCP listen port. Default: 3000
	Port int `yaml:"port" json:"port" mapstructure:"port"`

	// BodyLimit is the maximum upload size in bytes. Default: 104857600
	BodyLimit int64 `yaml:"body_limit" json:"body_limit" mapstructure:"body_limit"`

	// APIVersion is the route prefix. Default: "v8"
	APIVersion string `yaml:"api_version" json:"api_version" mapstructure:"api_version"`

	// Tokens are the accepted bearer tokens. TURBO_TOKEN is comma separated.
	Tokens []string `yaml:"tokens" json:"tokens" mapstructure:"tokens"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error. Default: "info"
	Level string `yaml:"level" json:"level" mapstructure:"level"`

	// File enables a rotating log file in addition to stderr.
	File string `yaml:"file" json:"file" mapstructure:"file"`
}

// StorageConfig selects a provider. Path is shared: it is the directory for
// local and git storage and the bucket or container name for cloud storage.
type StorageConfig struct {
	Provider     string `yaml:"provider" json:"provider" mapstructure:"provider"`
	Path         string `yaml:"path" json:"path" mapstructure:"path"`
	UseTmpFolder bool   `yaml:"use_tmp_folder" json:"use_tmp_folder" mapstructure:"use_tmp_folder"`

	S3    S3Config    `yaml:"s3" json:"s3" mapstructure:"s3"`
	GCS   GCSConfig   `yaml:"gcs" json:"gcs" mapstructure:"gcs"`
	Azure AzureConfig `yaml:"azure" json:"azure" mapstructure:"azure"`
	Git   GitConfig   `yaml:"git" json:"git" mapstructure:"git"`
}

// S3Config holds S3-compatible object storage credentials.
type S3Config struct {
	AccessKey string `yaml:"access_key" json:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key" mapstructure:"secret_key"`
	Region    string `yaml:"region" json:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
}

// GCSConfig holds Google Cloud Storage service account fields.
type GCSConfig struct {
	ProjectID   string `yaml:"project_id" json:"project_id" mapstructure:"project_id"`
	ClientEmail string `yaml:"client_email" json:"client_email" mapstructure:"client_email"`
	// PrivateKey may contain literal "\n" sequences; Load replaces them with newlines.
	PrivateKey string `yaml:"private_key" json:"private_key" mapstructure:"private_key"`
}

// AzureConfig holds the Azure Blob Storage connection string.
type AzureConfig struct {
	ConnectionString string `yaml:"connection_string" json:"connection_string" mapstructure:"connection_string"`
}

// GitConfig holds git repository backend settings.
type GitConfig struct {
	Repository   string `yaml:"repository" json:"repository" mapstructure:"repository"`
	Branch       string `yaml:"branch" json:"branch" mapstructure:"branch"`
	Remote       string `yaml:"remote" json:"remote" mapstructure:"remote"`
	UserName     string `yaml:"user_name" json:"user_name" mapstructure:"user_name"`
	UserEmail    string `yaml:"user_email" json:"user_email" mapstructure:"user_email"`
	UserPassword string `yaml:"user_password" json:"user_password" mapstructure:"user_password"`
	Host         string `yaml:"host" json:"host" mapstructure:"host"`

	// CloneDepth of zero clones the full history.
	CloneDepth int `yaml:"clone_depth" json:"clone_depth" mapstructure:"clone_depth"`

	// UseLocalCache reuses an existing working copy across restarts. Default: true
	UseLocalCache bool `yaml:"use_local_cache" json:"use_local_cache" mapstructure:"use_local_cache"`

	Executable string `yaml:"executable" json:"executable" mapstructure:"executable"`

	// CommandTimeout bounds each git invocation. Default: 5m
	CommandTimeout time.Duration `yaml:"command_timeout" json:"command_timeout" mapstructure:"command_timeout"`
}
