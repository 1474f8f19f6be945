package timeline

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/alnah/go-audiosplit/internal/format"
)

// Interval is a half-open-ish time range [Start, End] in the source recording.
// Used both for diarized speech intervals and for derived silence gaps.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of this interval.
func (iv Interval) Duration() time.Duration {
	return iv.End - iv.Start
}

// String returns a human-readable representation for logging.
func (iv Interval) String() string {
	return fmt.Sprintf("%s-%s", format.Duration(iv.Start), format.Duration(iv.End))
}

// Timeline is an ordered sequence of speech intervals produced by a speaker
// diarization pass. Intervals are sorted ascending by start and do not
// overlap; the producer guarantees both, so they are only sanity-checked at
// load time and never re-verified afterwards. A Timeline is read-only input
// to the splitting algorithm.
type Timeline []Interval

// jsonInterval is the wire form of one speech interval: seconds as floats,
// the common export format of diarization tools.
type jsonInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// LoadJSON reads a diarization timeline from r.
// The expected format is a JSON array of {"start": 1.25, "end": 3.5} objects
// with timestamps in seconds.
func LoadJSON(r io.Reader) (Timeline, error) {
	var raw []jsonInterval
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeline, err)
	}

	tl := make(Timeline, 0, len(raw))
	for i, in := range raw {
		iv := Interval{
			Start: secondsToDuration(in.Start),
			End:   secondsToDuration(in.End),
		}
		if iv.Start < 0 || iv.End < iv.Start {
			return nil, fmt.Errorf("%w: interval %d has start=%.3fs end=%.3fs",
				ErrInvalidTimeline, i, in.Start, in.End)
		}
		if i > 0 && iv.Start < tl[i-1].Start {
			return nil, fmt.Errorf("%w: interval %d starts before interval %d",
				ErrInvalidTimeline, i, i-1)
		}
		tl = append(tl, iv)
	}

	return tl, nil
}

// LoadFile reads a diarization timeline from a JSON file.
func LoadFile(path string) (Timeline, error) {
	f, err := os.Open(path) // #nosec G304 -- timeline path is user-provided CLI input
	if err != nil {
		return nil, fmt.Errorf("cannot open timeline file: %w", err)
	}
	defer func() { _ = f.Close() }()

	tl, err := LoadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

// secondsToDuration converts fractional seconds to a Duration, rounding to
// the nearest nanosecond so values like 81.3 survive the float conversion.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
