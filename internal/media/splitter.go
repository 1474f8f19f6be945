package media

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-audiosplit/internal/split"
	"github.com/alnah/go-audiosplit/internal/timeline"
)

// StageSplit is the progress stage label for the segmentation pass.
const StageSplit = "split"

// ProgressFunc reports completion as a percentage in [0, 100] for a named
// stage. Values are monotonically non-decreasing within a stage.
type ProgressFunc func(pct float64, stage string)

// Request describes one splitting run.
type Request struct {
	SourcePath  string            // Audio file to split.
	OutputDir   string            // Directory for the output files.
	Timeline    timeline.Timeline // Diarized speech intervals of the source.
	MaxDuration time.Duration     // Duration budget per output file.
}

// Splitter ties probing, planning and cutting together: measure the source,
// plan cut points inside silence gaps, then materialize the segment files.
type Splitter struct {
	prober DurationProber
	cutter *Cutter

	longSilence  time.Duration
	shortSilence time.Duration
	progress     ProgressFunc

	// Injectable dependencies (defaults to OS implementations).
	mkdir dirMaker
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithSplitterLongSilence sets the preferred minimum silence length for cuts.
func WithSplitterLongSilence(d time.Duration) SplitterOption {
	return func(s *Splitter) {
		s.longSilence = d
	}
}

// WithSplitterShortSilence sets the fallback minimum silence length for cuts.
func WithSplitterShortSilence(d time.Duration) SplitterOption {
	return func(s *Splitter) {
		s.shortSilence = d
	}
}

// WithSplitterProgress sets a callback for staged progress reporting.
func WithSplitterProgress(fn ProgressFunc) SplitterOption {
	return func(s *Splitter) {
		s.progress = fn
	}
}

// WithSplitterDirMaker sets the directory creator for Splitter.
func WithSplitterDirMaker(m dirMaker) SplitterOption {
	return func(s *Splitter) {
		s.mkdir = m
	}
}

// NewSplitter creates a Splitter from its collaborators.
func NewSplitter(prober DurationProber, cutter *Cutter, opts ...SplitterOption) (*Splitter, error) {
	if prober == nil {
		return nil, fmt.Errorf("prober cannot be nil")
	}
	if cutter == nil {
		return nil, fmt.Errorf("cutter cannot be nil")
	}

	s := &Splitter{
		prober: prober,
		cutter: cutter,
		mkdir:  osDirMaker{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split runs one full splitting pass and returns the written segment files
// in source order.
func (s *Splitter) Split(ctx context.Context, req Request) ([]SegmentFile, error) {
	total, err := s.prober.Duration(ctx, req.SourcePath)
	if err != nil {
		return nil, err
	}

	opts := []split.PlannerOption{
		split.WithLongSilence(s.longSilence),
		split.WithShortSilence(s.shortSilence),
	}
	if s.progress != nil {
		opts = append(opts, split.WithProgress(func(fraction float64) {
			s.progress(fraction*100, StageSplit)
		}))
	}
	planner, err := split.NewPlanner(req.MaxDuration, opts...)
	if err != nil {
		return nil, err
	}

	segments, err := planner.Plan(req.Timeline, total)
	if err != nil {
		return nil, err
	}

	if err := s.mkdir.MkdirAll(req.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("cannot create output dir: %w", err)
	}

	return s.cutter.Cut(ctx, req.SourcePath, req.OutputDir, segments)
}
