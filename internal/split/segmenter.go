package split

import (
	"fmt"
	"time"

	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/timeline"
)

// Default segmentation parameters.
const (
	// DefaultLongSilence is the preferred minimum silence length for a cut.
	// A 5s pause almost always separates complete utterances.
	DefaultLongSilence = 5 * time.Second

	// DefaultShortSilence is the fallback minimum silence length when no
	// long silence exists in a window. 0.5s still avoids mid-word cuts.
	DefaultShortSilence = 500 * time.Millisecond
)

// Segment describes one contiguous chunk of the source recording chosen for
// independent output. Consecutive segments share a boundary: each segment
// ends exactly where the next one starts.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the length of this segment.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("segment %s-%s", format.Duration(s.Start), format.Duration(s.End))
}

// ProgressFunc reports fractional completion in [0, 1] after each committed
// segment. Values are monotonically non-decreasing.
type ProgressFunc func(fraction float64)

// Planner computes cut points for a recording so that no segment exceeds the
// duration budget and every cut falls inside a diarization silence gap.
type Planner struct {
	maxDuration  time.Duration
	longSilence  time.Duration
	shortSilence time.Duration
	progress     ProgressFunc
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithLongSilence sets the preferred minimum silence length for a cut.
// Default: 5s.
func WithLongSilence(d time.Duration) PlannerOption {
	return func(p *Planner) {
		if d > 0 {
			p.longSilence = d
		}
	}
}

// WithShortSilence sets the fallback minimum silence length.
// Default: 500ms.
func WithShortSilence(d time.Duration) PlannerOption {
	return func(p *Planner) {
		if d > 0 {
			p.shortSilence = d
		}
	}
}

// WithProgress sets a callback for fractional progress reporting.
// Default: no reporting.
func WithProgress(fn ProgressFunc) PlannerOption {
	return func(p *Planner) {
		p.progress = fn
	}
}

// NewPlanner creates a Planner with the given duration budget.
func NewPlanner(maxDuration time.Duration, opts ...PlannerOption) (*Planner, error) {
	if maxDuration <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMaxDuration, maxDuration)
	}

	p := &Planner{
		maxDuration:  maxDuration,
		longSilence:  DefaultLongSilence,
		shortSilence: DefaultShortSilence,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Plan splits [0, total] into contiguous segments cut only at silence gaps
// of tl. Every segment except possibly the last is at most maxDuration long.
//
// A recording that already fits the budget yields exactly one segment
// covering the whole file; callers use the segment count to distinguish the
// "full file" output from numbered segments.
//
// Returns ErrNoSplitPoint if some window contains no silence of even the
// fallback length; a missing cut point means the audio has no usable
// structure there, so no partial result is returned.
func (p *Planner) Plan(tl timeline.Timeline, total time.Duration) ([]Segment, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, total)
	}

	// Whole file fits the budget: single segment, no searching.
	if total <= p.maxDuration {
		p.report(1)
		return []Segment{{Start: 0, End: total}}, nil
	}

	var segments []Segment
	cursor := time.Duration(0)
	for cursor < total {
		windowEnd := cursor + p.maxDuration
		if windowEnd >= total {
			// The remainder fits the budget; close out the plan.
			segments = append(segments, Segment{Start: cursor, End: total})
			cursor = total
			p.report(1)
			break
		}

		// Prefer a long silence; fall back to a short one.
		found := searchSilences(tl, cursor, windowEnd, p.longSilence)
		if len(found) == 0 {
			found = searchSilences(tl, cursor, windowEnd, p.shortSilence)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: no silence of at least %v in %s-%s",
				ErrNoSplitPoint, p.shortSilence,
				format.Duration(cursor), format.Duration(windowEnd))
		}

		cut := p.pickCut(found)
		segments = append(segments, Segment{Start: cursor, End: cut})
		cursor = cut
		p.report(float64(cursor) / float64(total))
	}

	return segments, nil
}

// pickCut selects the cut point from a set of candidate silences: prefer
// silences at least longSilence long, then the one ending latest, so the
// segment stays as close to the duration budget as possible. The cut point
// is the chosen silence's end.
func (p *Planner) pickCut(silences []timeline.Interval) time.Duration {
	best := silences[0]
	bestLong := best.Duration() >= p.longSilence
	for _, s := range silences[1:] {
		long := s.Duration() >= p.longSilence
		switch {
		case long && !bestLong:
			best, bestLong = s, true
		case long == bestLong && s.End > best.End:
			best = s
		}
	}
	return best.End
}

// report invokes the progress callback, if any.
func (p *Planner) report(fraction float64) {
	if p.progress != nil {
		p.progress(fraction)
	}
}
