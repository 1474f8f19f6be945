package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/config"
)

// CacheCmd creates the cache command with subcommands.
// The env parameter provides injectable dependencies for testing.
func CacheCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the conversion cache",
		Long: `Manage the on-disk cache of audio conversions.

Splitting converts the source to a canonical WAV once and reuses it across
runs. The cache lives in ~/.cache/go-audiosplit (or cache-dir from config).`,
		Example: `  audiosplit cache path
  audiosplit cache clear`,
	}

	cmd.AddCommand(cachePathCmd(env))
	cmd.AddCommand(cacheClearCmd(env))

	return cmd
}

// cachePathCmd creates the "cache path" subcommand.
func cachePathCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "path",
		Short:   "Print the cache directory",
		Example: `  audiosplit cache path`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir(env)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheClearCmd creates the "cache clear" subcommand.
func cacheClearCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Remove all cached conversions",
		Example: `  audiosplit cache clear`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir(env)
			if err != nil {
				return err
			}
			if err := env.RemoveAll(dir); err != nil {
				return fmt.Errorf("cannot clear cache: %w", err)
			}
			fmt.Fprintf(env.Stderr, "Cleared cache at %s\n", dir)
			return nil
		},
	}
}

// resolveCacheDir picks the cache directory with config > default precedence.
func resolveCacheDir(env *Env) (string, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return "", err
	}
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	return config.DefaultCacheDir()
}
