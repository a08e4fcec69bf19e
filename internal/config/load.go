package config

import (
	"context"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/turbocache/internal/errors"
)

// envBindings maps config keys to the environment variables that set them.
// When several names are listed the first one present wins.
//
//nolint:gochecknoglobals // Static binding table
var envBindings = map[string][]string{
	"server.port":        {"PORT"},
	"server.body_limit":  {"BODY_LIMIT"},
	"server.api_version": {"API_VERSION"},
	"server.tokens":      {"TURBO_TOKEN"},

	"log.level": {"LOG_LEVEL"},
	"log.file":  {"LOG_FILE"},

	"storage.provider":       {"STORAGE_PROVIDER"},
	"storage.path":           {"STORAGE_PATH"},
	"storage.use_tmp_folder": {"STORAGE_PATH_USE_TMP_FOLDER"},

	"storage.s3.access_key": {"S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID"},
	"storage.s3.secret_key": {"S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY"},
	"storage.s3.region":     {"S3_REGION", "AWS_REGION"},
	"storage.s3.endpoint":   {"S3_ENDPOINT"},

	"storage.gcs.project_id":   {"GCS_PROJECT_ID"},
	"storage.gcs.client_email": {"GCS_CLIENT_EMAIL"},
	"storage.gcs.private_key":  {"GCS_PRIVATE_KEY"},

	"storage.azure.connection_string": {"ABS_CONNECTION_STRING"},

	"storage.git.repository":      {"GIT_REPOSITORY"},
	"storage.git.branch":          {"GIT_BRANCH"},
	"storage.git.remote":          {"GIT_REMOTE"},
	"storage.git.user_name":       {"GIT_USER_NAME"},
	"storage.git.user_email":      {"GIT_USER_EMAIL"},
	"storage.git.user_password":   {"GIT_USER_PASSWORD"},
	"storage.git.host":            {"GIT_HOST"},
	"storage.git.clone_depth":     {"GIT_CLONE_DEPTH"},
	"storage.git.use_local_cache": {"GIT_USE_LOCAL_CACHE"},
	"storage.git.executable":      {"GIT_EXECUTABLE"},
	"storage.git.command_timeout": {"GIT_COMMAND_TIMEOUT"},
}

// newViperInstance creates a Viper instance with defaults and environment bindings.
func newViperInstance() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", key)
		}
	}
	return v, nil
}

// setDefaults mirrors DefaultConfig on the Viper instance.
// IMPORTANT: Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("server.api_version", d.Server.APIVersion)
	v.SetDefault("server.tokens", []string{})

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")

	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.use_tmp_folder", d.Storage.UseTmpFolder)

	v.SetDefault("storage.git.branch", d.Storage.Git.Branch)
	v.SetDefault("storage.git.remote", d.Storage.Git.Remote)
	v.SetDefault("storage.git.host", d.Storage.Git.Host)
	v.SetDefault("storage.git.clone_depth", d.Storage.Git.CloneDepth)
	v.SetDefault("storage.git.use_local_cache", d.Storage.Git.UseLocalCache)
	v.SetDefault("storage.git.executable", d.Storage.Git.Executable)
	v.SetDefault("storage.git.command_timeout", d.Storage.Git.CommandTimeout.String())
}

// Load reads configuration from the environment and, when configFile is not
// empty, from that YAML file. Environment variables take precedence over the
// file. A missing configFile is an error since it was asked for explicitly.
func Load(ctx context.Context, configFile string) (*Config, error) {
	return LoadWithOverrides(ctx, configFile, nil)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides
// before validating.
//
// Only non-zero values in overrides are applied. Boolean fields cannot be
// overridden to false this way; the CLI does not expose any.
func LoadWithOverrides(ctx context.Context, configFile string, overrides *Config) (*Config, error) {
	cfg, err := read(configFile)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("config_file", configFile).
		Str("storage.provider", cfg.Storage.Provider).
		Int("server.port", cfg.Server.Port).
		Int("server.tokens", len(cfg.Server.Tokens)).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// read merges defaults, the optional config file and the environment.
func read(configFile string) (*Config, error) {
	v, err := newViperInstance()
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	normalize(&cfg)
	return &cfg, nil
}

// applyOverrides merges non-zero override values into cfg.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Server.Port != 0 {
		cfg.Server.Port = overrides.Server.Port
	}
	if overrides.Server.BodyLimit != 0 {
		cfg.Server.BodyLimit = overrides.Server.BodyLimit
	}
	if overrides.Server.APIVersion != "" {
		cfg.Server.APIVersion = overrides.Server.APIVersion
	}
	if len(overrides.Server.Tokens) > 0 {
		cfg.Server.Tokens = overrides.Server.Tokens
	}
	if overrides.Log.Level != "" {
		cfg.Log.Level = overrides.Log.Level
	}
	if overrides.Log.File != "" {
		cfg.Log.File = overrides.Log.File
	}
	if overrides.Storage.Provider != "" {
		cfg.Storage.Provider = overrides.Storage.Provider
	}
	if overrides.Storage.Path != "" {
		cfg.Storage.Path = overrides.Storage.Path
	}
}

// normalize trims token lists and un-escapes the GCS private key, which is
// usually passed through the environment on a single line.
func normalize(cfg *Config) {
	tokens := cfg.Server.Tokens[:0]
	for _, t := range cfg.Server.Tokens {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	cfg.Server.Tokens = tokens

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Storage.GCS.PrivateKey = strings.ReplaceAll(cfg.Storage.GCS.PrivateKey, `\n`, "\n")
}

// viperDecoderOption configures mapstructure to decode durations and
// comma-separated lists from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
