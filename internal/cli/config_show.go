package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/turbocache/internal/config"
	"github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/logging"
)

// Output formats of config show.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// ConfigShowFlags holds flags specific to the config show command.
type ConfigShowFlags struct {
	// OutputFormat specifies the output format (yaml or json).
	OutputFormat string
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, global *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	flags := &ConfigShowFlags{}
	show := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration after defaults, the config file and
environment variables were merged and validated.

Tokens, keys, passwords and connection strings are masked in the output.

Examples:
  turbocache config show
  turbocache config show --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), global.ConfigFile, flags)
		},
	}
	show.Flags().StringVarP(&flags.OutputFormat, "output", "o", OutputYAML, "output format (yaml or json)")

	cmd.AddCommand(show)
	root.AddCommand(cmd)
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, w io.Writer, configFile string, flags *ConfigShowFlags) error {
	format := strings.ToLower(flags.OutputFormat)
	if format != OutputYAML && format != OutputJSON {
		return fmt.Errorf("%w: %q must be one of yaml, json", errors.ErrInvalidOutputFormat, flags.OutputFormat)
	}

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	redacted := redactConfig(*cfg)

	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(redacted)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(redacted); err != nil {
		return err
	}
	return enc.Close()
}

// redactConfig returns a copy of cfg with every secret masked. Empty values
// stay empty so unset credentials remain visible.
func redactConfig(cfg config.Config) config.Config {
	mask := func(field, value string) string {
		if value == "" {
			return ""
		}
		return logging.SafeValue(field, value)
	}

	tokens := make([]string, len(cfg.Server.Tokens))
	for i := range tokens {
		tokens[i] = logging.RedactedValue
	}
	cfg.Server.Tokens = tokens

	st := &cfg.Storage
	st.S3.AccessKey = mask("access_key", st.S3.AccessKey)
	st.S3.SecretKey = mask("secret_key", st.S3.SecretKey)
	st.GCS.PrivateKey = mask("private_key", st.GCS.PrivateKey)
	st.Azure.ConnectionString = mask("connection_string", st.Azure.ConnectionString)
	st.Git.UserPassword = mask("user_password", st.Git.UserPassword)
	st.Git.Repository = logging.RedactURL(st.Git.Repository)
	return cfg
}
