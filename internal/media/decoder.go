package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Compile-time interface implementation checks.
var _ DurationProber = (*WAVProber)(nil)

// DurationProber reports the total duration of an audio file.
type DurationProber interface {
	Duration(ctx context.Context, src string) (time.Duration, error)
}

// WAVProber measures duration by decoding the canonical WAV conversion of
// the source. Reading the container header is exact, unlike parsing duration
// estimates out of FFmpeg's stderr.
type WAVProber struct {
	cache *ConvertCache
}

// NewWAVProber creates a WAVProber backed by the given conversion cache.
func NewWAVProber(cache *ConvertCache) (*WAVProber, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	return &WAVProber{cache: cache}, nil
}

// Duration returns the total duration of src.
func (p *WAVProber) Duration(ctx context.Context, src string) (time.Duration, error) {
	wavPath, err := p.cache.WavPath(ctx, src)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return 0, err
		}
		// The conversion runs the encoder binary, but a failure here means
		// the source could not be read into a decodable form.
		return 0, fmt.Errorf("%w: converting source: %v", ErrDecodeFailed, err)
	}

	f, err := os.Open(wavPath) // #nosec G304 -- path is produced by the cache, not user input
	if err != nil {
		return 0, fmt.Errorf("%w: cannot open conversion: %v", ErrDecodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%w: %s is not a valid WAV file", ErrDecodeFailed, wavPath)
	}

	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s has no audio frames", ErrDecodeFailed, wavPath)
	}
	return d, nil
}
