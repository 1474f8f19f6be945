package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-audiosplit/internal/backoff"
	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/split"
)

// Default cut retry parameters: 3 attempts with 2s then 4s between them,
// which rides out transient encoder failures (busy disk, OOM-killed child)
// without stalling a genuinely broken run.
var defaultCutRetry = backoff.Config{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

// SegmentFile describes one output file written by a cut.
type SegmentFile struct {
	Path      string        // Absolute or outDir-relative path of the output file.
	Index     int           // Zero-based index for ordering.
	StartTime time.Duration // Start timestamp in the source audio.
	EndTime   time.Duration // End timestamp in the source audio.
}

// Duration returns the length of this segment file.
func (sf SegmentFile) Duration() time.Duration {
	return sf.EndTime - sf.StartTime
}

// String returns a human-readable representation for logging.
func (sf SegmentFile) String() string {
	return fmt.Sprintf("%s: %s-%s",
		filepath.Base(sf.Path),
		format.Duration(sf.StartTime),
		format.Duration(sf.EndTime))
}

// Cutter materializes planned segments as audio files, retrying each encode
// with exponential backoff.
type Cutter struct {
	enc   Encoder
	retry backoff.Config
}

// CutterOption configures a Cutter.
type CutterOption func(*Cutter)

// WithCutRetry sets the retry configuration for encode attempts.
func WithCutRetry(cfg backoff.Config) CutterOption {
	return func(c *Cutter) {
		c.retry = cfg
	}
}

// NewCutter creates a Cutter using the given encoder.
func NewCutter(enc Encoder, opts ...CutterOption) (*Cutter, error) {
	if enc == nil {
		return nil, fmt.Errorf("encoder cannot be nil")
	}

	c := &Cutter{
		enc:   enc,
		retry: defaultCutRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cut writes one output file per segment into outDir, sequentially and in
// order. A single segment means the whole recording fit the budget; its
// output is named "<base>_full<ext>" so callers can tell it apart from the
// numbered "<base>_segment_<i><ext>" series.
//
// Each encode is retried; if one segment still fails after the retry budget,
// the run fails without returning a partial list. Files already written for
// earlier segments are left on disk — re-running overwrites them.
func (c *Cutter) Cut(ctx context.Context, srcPath, outDir string, segments []split.Segment) ([]SegmentFile, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to cut")
	}

	ext := filepath.Ext(srcPath)
	base := strings.TrimSuffix(filepath.Base(srcPath), ext)

	written := make([]SegmentFile, 0, len(segments))
	for i, seg := range segments {
		name := fmt.Sprintf("%s_segment_%d%s", base, i, ext)
		if len(segments) == 1 {
			name = base + "_full" + ext
		}
		dst := filepath.Join(outDir, name)

		trim := Trim{Start: seg.Start, Length: seg.Duration()}
		_, err := backoff.Retry(ctx, c.retry, func() (struct{}, error) {
			return struct{}{}, c.enc.Encode(ctx, srcPath, dst, &trim)
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("cut %d of %d: %w", i+1, len(segments), err)
		}

		written = append(written, SegmentFile{
			Path:      dst,
			Index:     i,
			StartTime: seg.Start,
			EndTime:   seg.End,
		})
	}

	return written, nil
}
