package cli

import (
	"context"
	"io"
	"os"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/ffmpeg"
	"github.com/alnah/go-audiosplit/internal/media"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stderr    io.Writer
	Getenv    func(string) string
	RemoveAll func(string) error

	// Factories for domain objects
	FFmpegResolver  FFmpegResolver
	ConfigLoader    ConfigLoader
	SplitterFactory SplitterFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Splitter runs one full splitting pass.
type Splitter interface {
	Split(ctx context.Context, req media.Request) ([]media.SegmentFile, error)
}

// SplitterFactory creates splitters wired to FFmpeg and the conversion cache.
type SplitterFactory interface {
	NewSplitter(ffmpegPath, cacheDir string, opts ...media.SplitterOption) (Splitter, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithRemoveAll sets the recursive remove function.
func WithRemoveAll(fn func(string) error) EnvOption {
	return func(e *Env) {
		e.RemoveAll = fn
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithSplitterFactory sets the splitter factory.
func WithSplitterFactory(f SplitterFactory) EnvOption {
	return func(e *Env) {
		e.SplitterFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		RemoveAll:       os.RemoveAll,
		FFmpegResolver:  &defaultFFmpegResolver{},
		ConfigLoader:    &defaultConfigLoader{},
		SplitterFactory: &defaultSplitterFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.NewResolver().Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.NewVersionChecker().Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultSplitterFactory implements SplitterFactory using the media package.
type defaultSplitterFactory struct{}

func (defaultSplitterFactory) NewSplitter(ffmpegPath, cacheDir string, opts ...media.SplitterOption) (Splitter, error) {
	enc, err := media.NewFFmpegEncoder(ffmpegPath)
	if err != nil {
		return nil, err
	}
	cache, err := media.NewConvertCache(cacheDir, enc)
	if err != nil {
		return nil, err
	}
	prober, err := media.NewWAVProber(cache)
	if err != nil {
		return nil, err
	}
	cutter, err := media.NewCutter(enc)
	if err != nil {
		return nil, err
	}
	return media.NewSplitter(prober, cutter, opts...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver  = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ SplitterFactory = (*defaultSplitterFactory)(nil)
	_ Splitter        = (*media.Splitter)(nil)
)
