package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config keys.
const (
	KeyOutputDir   = "output-dir"
	KeyCacheDir    = "cache-dir"
	KeyMaxDuration = "max-duration"
)

// Environment variable fallbacks.
const (
	EnvOutputDir   = "AUDIOSPLIT_OUTPUT_DIR"
	EnvCacheDir    = "AUDIOSPLIT_CACHE_DIR"
	EnvMaxDuration = "AUDIOSPLIT_MAX_DURATION"
)

// knownKeys lists the keys Set accepts.
var knownKeys = map[string]bool{
	KeyOutputDir:   true,
	KeyCacheDir:    true,
	KeyMaxDuration: true,
}

// Config holds user configuration loaded from
// ~/.config/go-audiosplit/config.toml.
type Config struct {
	OutputDir   string `toml:"output-dir"`
	CacheDir    string `toml:"cache-dir"`
	MaxDuration string `toml:"max-duration"`
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-audiosplit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-audiosplit"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-audiosplit"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.toml"), nil
}

// DefaultCacheDir returns the conversion cache directory.
// Uses XDG_CACHE_HOME if set, otherwise ~/.cache/go-audiosplit.
func DefaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-audiosplit"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "go-audiosplit"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.OutputDir = data[KeyOutputDir]
	cfg.CacheDir = data[KeyCacheDir]
	cfg.MaxDuration = data[KeyMaxDuration]

	// Environment variable fallbacks (only if not set in config).
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv(EnvOutputDir)
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv(EnvCacheDir)
	}
	if cfg.MaxDuration == "" {
		cfg.MaxDuration = os.Getenv(EnvMaxDuration)
	}

	return cfg, nil
}

// parseFile reads a TOML config file into a flat key-value map.
func parseFile(p string) (map[string]string, error) {
	raw, err := os.ReadFile(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}

	data := make(map[string]string)
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid TOML in %s: %w", p, err)
	}
	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing keys but discards comments.
func Save(key, value string) error {
	if !knownKeys[key] {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}

	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	out, err := toml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// #nosec G306 -- config file with standard permissions
	if err := os.WriteFile(p, out, 0644); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return data, nil
}

// Keys returns the known config keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolveOutputDir resolves the output directory using the following
// precedence: flag value, config/env value, current directory.
// Paths are cleaned to normalize separators and redundant elements.
func ResolveOutputDir(flagDir, cfgDir string) string {
	switch {
	case flagDir != "":
		return filepath.Clean(flagDir)
	case cfgDir != "":
		return filepath.Clean(cfgDir)
	default:
		return "."
	}
}

// ValidOutputDir checks if a directory path is valid for use as output-dir.
// Returns nil if valid, or an error describing the problem.
func ValidOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}

	// Expand ~ to home directory.
	if strings.HasPrefix(d, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot expand ~: %w", err)
		}
		d = filepath.Join(home, d[2:])
	}

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist - try to create it.
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", d)
	}

	return nil
}
