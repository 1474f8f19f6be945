package split

import "errors"

// ErrNoSplitPoint indicates no qualifying silence exists inside a window that
// must be cut. The input audio has no usable structure in that region, so the
// whole run aborts.
var ErrNoSplitPoint = errors.New("no split point found")

// ErrInvalidMaxDuration indicates the segment duration budget is not positive.
var ErrInvalidMaxDuration = errors.New("max segment duration must be positive")

// ErrInvalidDuration indicates the total recording duration is not positive.
var ErrInvalidDuration = errors.New("recording duration must be positive")
