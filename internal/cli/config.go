package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-audiosplit/config.toml.
Settings can also be overridden via environment variables.

Supported settings:
  output-dir    Default directory for segment files (env: AUDIOSPLIT_OUTPUT_DIR)
  cache-dir     Conversion cache directory (env: AUDIOSPLIT_CACHE_DIR)
  max-duration  Default per-segment budget (env: AUDIOSPLIT_MAX_DURATION)`,
		Example: `  audiosplit config set output-dir ~/Music/segments
  audiosplit config set max-duration 20m
  audiosplit config get output-dir
  audiosplit config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys:
  output-dir    Default directory for segment files
  cache-dir     Conversion cache directory
  max-duration  Default per-segment budget (e.g. 15m, 1h)

Directories are created if they don't exist.`,
		Example: `  audiosplit config set output-dir ~/Music/segments
  audiosplit config set max-duration 20m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  audiosplit config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  audiosplit config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(cmd, env)
		},
	}
}

// envVarFor maps a config key to its environment variable fallback.
func envVarFor(key string) string {
	switch key {
	case config.KeyOutputDir:
		return config.EnvOutputDir
	case config.KeyCacheDir:
		return config.EnvCacheDir
	case config.KeyMaxDuration:
		return config.EnvMaxDuration
	}
	return ""
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys())
	}

	// Key-specific validation.
	switch key {
	case config.KeyOutputDir, config.KeyCacheDir:
		if err := config.ValidOutputDir(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	case config.KeyMaxDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q (use forms like 90s, 15m, 1h30m)", ErrInvalidDuration, value)
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(cmd *cobra.Command, env *Env, key string) error {
	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys())
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		value = env.Getenv(envVarFor(key))
	}

	if value != "" {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(cmd *cobra.Command, env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Add environment variable values for completeness.
	for _, key := range config.Keys() {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(envVarFor(key)); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	out := cmd.OutOrStdout()
	if len(data) == 0 {
		fmt.Fprintln(out, "No configuration set.")
		fmt.Fprintln(out, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	}

	for _, key := range config.Keys() {
		if value, ok := data[key]; ok {
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
	}
	return nil
}
