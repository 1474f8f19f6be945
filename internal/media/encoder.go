package media

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-audiosplit/internal/ffmpeg"
	"github.com/alnah/go-audiosplit/internal/format"
)

// Compile-time interface implementation checks.
var _ Encoder = (*FFmpegEncoder)(nil)

// Trim restricts an encode to a sub-range of the source.
type Trim struct {
	Start  time.Duration // Offset into the source.
	Length time.Duration // Duration to keep from Start.
}

// Encoder produces an output audio file from a source file, optionally
// trimmed to a sub-range.
type Encoder interface {
	// Encode writes dst from src. A nil trim encodes the whole source.
	Encode(ctx context.Context, src, dst string, trim *Trim) error
}

// FFmpegEncoder implements Encoder by shelling out to FFmpeg.
// The output codec follows from the dst extension, so segments keep the
// source container format.
type FFmpegEncoder struct {
	ffmpegPath string

	// Injectable dependencies (defaults to OS implementations).
	cmd commandRunner
}

// FFmpegEncoderOption configures an FFmpegEncoder.
type FFmpegEncoderOption func(*FFmpegEncoder)

// WithEncoderCommandRunner sets the command runner for FFmpegEncoder.
func WithEncoderCommandRunner(r commandRunner) FFmpegEncoderOption {
	return func(e *FFmpegEncoder) {
		e.cmd = r
	}
}

// NewFFmpegEncoder creates an FFmpegEncoder using the given binary path.
func NewFFmpegEncoder(ffmpegPath string, opts ...FFmpegEncoderOption) (*FFmpegEncoder, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	e := &FFmpegEncoder{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Encode writes dst from src, re-encoding so output is valid even when a cut
// lands mid-frame in the source container.
func (e *FFmpegEncoder) Encode(ctx context.Context, src, dst string, trim *Trim) error {
	args := []string{"-y", "-i", src}
	if trim != nil {
		args = append(args,
			"-ss", format.Seconds(trim.Start),
			"-t", format.Seconds(trim.Length),
		)
	}
	args = append(args, dst)

	output, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrEncodingFailed, dst, err, string(output))
	}
	return nil
}

// Downmix converts src to mono 16kHz PCM WAV at dst, the canonical form the
// decoder reads.
func (e *FFmpegEncoder) Downmix(ctx context.Context, src, dst string) error {
	args := []string{
		"-y",
		"-i", src,
		"-ac", "1",
		"-ar", "16000",
		dst,
	}

	output, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrEncodingFailed, dst, err, string(output))
	}
	return nil
}
