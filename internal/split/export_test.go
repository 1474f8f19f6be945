package split

import (
	"time"

	"github.com/alnah/go-audiosplit/internal/timeline"
)

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// DeriveSilences exports deriveSilences for testing.
var DeriveSilences = deriveSilences

// SearchSilences exports searchSilences for testing.
var SearchSilences = searchSilences

// PickCut exports pickCut for testing.
// Note: requires a Planner instance, so we create a minimal one.
func PickCut(silences []timeline.Interval, longSilence time.Duration) time.Duration {
	p := &Planner{longSilence: longSilence}
	return p.pickCut(silences)
}

// SearchWindowFactor exports searchWindowFactor for testing.
const SearchWindowFactor = searchWindowFactor
