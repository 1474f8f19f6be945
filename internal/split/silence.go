package split

import (
	"time"

	"github.com/alnah/go-audiosplit/internal/timeline"
)

// searchWindowFactor sizes the trailing search window relative to the minimum
// silence length. A window of 20x the minimum silence is wide enough to
// usually contain a natural pause without scanning the whole interval.
const searchWindowFactor = 20

// deriveSilences computes the silence gaps of tl inside [start, end] that are
// at least minSilence long, ascending by start.
//
// The walk tracks a cursor from start: each speech interval overlapping the
// window is clipped to it, closes the gap before it, and moves the cursor to
// its clipped end; a final gap is emitted if the cursor never reached end.
// Clipping matters: an interval straddling a window edge must not leave a
// phantom gap over speech. Intervals are sorted, so scanning stops at the
// first interval starting past the window.
func deriveSilences(tl timeline.Timeline, start, end, minSilence time.Duration) []timeline.Interval {
	if end <= start {
		return nil
	}

	var silences []timeline.Interval
	cursor := start
	for _, iv := range tl {
		if iv.Start > end {
			break
		}
		if iv.End <= start {
			continue
		}
		s, e := iv.Start, iv.End
		if s < start {
			s = start
		}
		if e > end {
			e = end
		}
		if s > cursor && s-cursor >= minSilence {
			silences = append(silences, timeline.Interval{Start: cursor, End: s})
		}
		if e > cursor {
			cursor = e
		}
	}
	if cursor < end && end-cursor >= minSilence {
		silences = append(silences, timeline.Interval{Start: cursor, End: end})
	}

	return silences
}

// searchSilences looks for silences of at least minSilence inside [start, end],
// preferring ones near the end of the interval.
//
// Deriving silences over the whole interval is wasteful when a late cut point
// is wanted, so the search queries a trailing sub-window first and widens
// backward only while nothing qualifies. It returns the silences of the first
// (trailing-most) window that has any, or nil if the interval is exhausted.
// The iteration count is bounded so the loop terminates even if rounding
// keeps the window edge from landing exactly on start.
func searchSilences(tl timeline.Timeline, start, end, minSilence time.Duration) []timeline.Interval {
	if end <= start || minSilence <= 0 {
		return nil
	}

	span := end - start
	section := minSilence * searchWindowFactor
	if section > span {
		section = span
	}
	maxIterations := int((span + section - 1) / section)

	currentEnd := end
	for i := 0; i < maxIterations && currentEnd > start; i++ {
		currentStart := currentEnd - section
		if currentStart < start {
			currentStart = start
		}
		if found := deriveSilences(tl, currentStart, currentEnd, minSilence); len(found) > 0 {
			return found
		}
		currentEnd = currentStart
	}

	return nil
}
