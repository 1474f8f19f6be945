package timeline

import "errors"

// ErrInvalidTimeline indicates the timeline input could not be parsed or
// violates basic interval ordering.
var ErrInvalidTimeline = errors.New("invalid diarization timeline")
