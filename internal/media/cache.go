package media

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// downmixer converts an audio file to canonical mono 16kHz WAV.
type downmixer interface {
	Downmix(ctx context.Context, src, dst string) error
}

// ConvertCache stores canonical WAV conversions on disk, keyed by the source
// file's identity (path, size, modification time). Converting a long
// recording is expensive; repeat runs against the same source reuse the
// cached conversion, and a source edit invalidates the key naturally.
type ConvertCache struct {
	dir  string
	conv downmixer

	// flight collapses concurrent conversions of the same source.
	flight singleflight.Group

	// Injectable dependencies (defaults to OS implementations).
	stat  fileStatter
	mkdir dirMaker
	files fileRemover
}

// ConvertCacheOption configures a ConvertCache.
type ConvertCacheOption func(*ConvertCache)

// WithCacheStatter sets the file statter for ConvertCache.
func WithCacheStatter(s fileStatter) ConvertCacheOption {
	return func(c *ConvertCache) {
		c.stat = s
	}
}

// WithCacheDirMaker sets the directory creator for ConvertCache.
func WithCacheDirMaker(m dirMaker) ConvertCacheOption {
	return func(c *ConvertCache) {
		c.mkdir = m
	}
}

// WithCacheFileRemover sets the file remover for ConvertCache.
func WithCacheFileRemover(f fileRemover) ConvertCacheOption {
	return func(c *ConvertCache) {
		c.files = f
	}
}

// NewConvertCache creates a ConvertCache rooted at dir.
func NewConvertCache(dir string, conv downmixer, opts ...ConvertCacheOption) (*ConvertCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache dir cannot be empty")
	}
	if conv == nil {
		return nil, fmt.Errorf("cache converter cannot be nil")
	}

	c := &ConvertCache{
		dir:   dir,
		conv:  conv,
		stat:  osFileStatter{},
		mkdir: osDirMaker{},
		files: osFileRemover{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WavPath returns the path of the canonical WAV for src, converting and
// caching it on a miss. Concurrent calls for the same source share one
// conversion.
func (c *ConvertCache) WavPath(ctx context.Context, src string) (string, error) {
	key, err := c.key(src)
	if err != nil {
		return "", err
	}
	target := filepath.Join(c.dir, key+".wav")

	if _, err := c.stat.Stat(target); err == nil {
		return target, nil
	}

	_, err, _ = c.flight.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have just finished.
		if _, err := c.stat.Stat(target); err == nil {
			return nil, nil
		}
		if err := c.mkdir.MkdirAll(c.dir, 0o750); err != nil {
			return nil, fmt.Errorf("cannot create cache dir: %w", err)
		}
		if err := c.conv.Downmix(ctx, src, target); err != nil {
			_ = c.files.Remove(target) // best-effort: never leave a partial conversion
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	return target, nil
}

// key derives the cache key from the source file's identity. Size and mtime
// are part of the key so an edited source never hits a stale conversion.
func (c *ConvertCache) key(src string) (string, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("cannot resolve source path: %w", err)
	}
	info, err := c.stat.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()))
	return fmt.Sprintf("%x", sum[:16]), nil
}
