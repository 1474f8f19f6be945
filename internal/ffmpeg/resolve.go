package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Environment variable for a custom ffmpeg path.
const envFFmpegPath = "FFMPEG_PATH"

// minMajorVersion is the minimum supported ffmpeg version. Older builds lack
// codec and trim behavior this tool relies on.
const minMajorVersion = 4

// envProvider abstracts environment lookups for testing.
type envProvider interface {
	Getenv(key string) string
	LookPath(file string) (string, error)
}

// osEnvProvider implements envProvider with the os and exec packages.
type osEnvProvider struct{}

func (osEnvProvider) Getenv(key string) string            { return os.Getenv(key) }
func (osEnvProvider) LookPath(file string) (string, error) { return exec.LookPath(file) }

// statFn abstracts os.Stat for testing.
type statFn func(name string) (os.FileInfo, error)

// Resolver locates the FFmpeg binary.
type Resolver struct {
	env  envProvider
	stat statFn
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithStat sets the stat implementation.
func WithStat(fn statFn) ResolverOption {
	return func(r *Resolver) { r.stat = fn }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:  osEnvProvider{},
		stat: os.Stat,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. System PATH
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: install it or set %s (see https://ffmpeg.org/download.html)",
		ErrNotFound, envFFmpegPath)
}

// VersionChecker verifies FFmpeg version requirements.
type VersionChecker struct {
	executor *Executor
	stderr   io.Writer
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running FFmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionStderr sets the writer for warning messages.
func WithVersionStderr(w io.Writer) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.stderr = w }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check verifies that ffmpeg meets minimum version requirements.
// Prints a warning to stderr if the version is below minimum but doesn't
// fail. Returns true if the version was successfully parsed.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) bool {
	output, err := vc.executor.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return false // Can't check version, proceed anyway
	}

	// Parse version from output like "ffmpeg version 6.1.1 Copyright..."
	lines := strings.Split(output, "\n")
	if len(lines) == 0 || lines[0] == "" {
		return false
	}

	var major int
	_, err = fmt.Sscanf(lines[0], "ffmpeg version %d", &major)
	if err != nil {
		// Try alternative format "ffmpeg version n6.1.1..."
		_, err = fmt.Sscanf(lines[0], "ffmpeg version n%d", &major)
		if err != nil {
			return false
		}
	}

	if major < minMajorVersion {
		fmt.Fprintf(vc.stderr, "Warning: ffmpeg version %d detected, version %d+ recommended\n",
			major, minMajorVersion)
	}
	return true
}
