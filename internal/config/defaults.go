package config

import "github.com/mrz1836/turbocache/internal/constants"

// DefaultConfig returns a Config holding the built-in defaults. Tokens are
// left empty; at least one must be configured.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       constants.DefaultPort,
			BodyLimit:  constants.DefaultBodyLimit,
			APIVersion: constants.DefaultAPIVersion,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Provider:     "local",
			Path:         constants.DefaultCacheFolderName,
			UseTmpFolder: constants.DefaultUseTmpFolder,
			Git: GitConfig{
				Branch:         constants.DefaultGitBranch,
				Remote:         constants.DefaultGitRemote,
				Host:           constants.DefaultGitHost,
				CloneDepth:     constants.DefaultGitCloneDepth,
				UseLocalCache:  constants.DefaultGitUseLocalCache,
				Executable:     constants.DefaultGitExecutable,
				CommandTimeout: constants.DefaultGitCommandTimeout,
			},
		},
	}
}
