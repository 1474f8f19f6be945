package media_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-audiosplit/internal/backoff"
	"github.com/alnah/go-audiosplit/internal/media"
	"github.com/alnah/go-audiosplit/internal/split"
)

// encodeCall records one Encode invocation.
type encodeCall struct {
	dst  string
	trim media.Trim
}

// stubEncoder fails the first failures invocations, then succeeds.
type stubEncoder struct {
	calls    []encodeCall
	failures int
}

func (s *stubEncoder) Encode(ctx context.Context, src, dst string, trim *media.Trim) error {
	s.calls = append(s.calls, encodeCall{dst: dst, trim: *trim})
	if len(s.calls) <= s.failures {
		return fmt.Errorf("%w: disk busy", media.ErrEncodingFailed)
	}
	return nil
}

// testRetry returns the default schedule with a delay recorder instead of a
// real sleep.
func testRetry(delays *[]time.Duration) backoff.Config {
	return backoff.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return ctx.Err()
		},
	}
}

func seg(start, end float64) split.Segment {
	return split.Segment{
		Start: time.Duration(start * float64(time.Second)),
		End:   time.Duration(end * float64(time.Second)),
	}
}

func TestCutter_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	// Encoder fails twice, then succeeds: exactly 3 invocations with delays
	// of 2s then 4s between them, and the cut succeeds.
	enc := &stubEncoder{failures: 2}
	var delays []time.Duration
	cutter, err := media.NewCutter(enc, media.WithCutRetry(testRetry(&delays)))
	if err != nil {
		t.Fatalf("NewCutter() error = %v", err)
	}

	files, err := cutter.Cut(context.Background(), "/audio/talk.mp3", "/out",
		[]split.Segment{seg(0, 100)})
	if err != nil {
		t.Fatalf("Cut() error = %v", err)
	}
	if len(enc.calls) != 3 {
		t.Errorf("Encode called %d times, want 3", len(enc.calls))
	}
	wantDelays := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(delays) != len(wantDelays) {
		t.Fatalf("delays = %v, want %v", delays, wantDelays)
	}
	for i := range wantDelays {
		if delays[i] != wantDelays[i] {
			t.Errorf("delay %d = %v, want %v", i, delays[i], wantDelays[i])
		}
	}
	if len(files) != 1 {
		t.Fatalf("Cut() returned %d files, want 1", len(files))
	}
}

func TestCutter_ExhaustedRetriesFailRun(t *testing.T) {
	t.Parallel()

	// Encoder always fails: exactly MaxAttempts invocations, then the run
	// fails with ErrEncodingFailed.
	enc := &stubEncoder{failures: 1 << 30}
	var delays []time.Duration
	cutter, err := media.NewCutter(enc, media.WithCutRetry(testRetry(&delays)))
	if err != nil {
		t.Fatalf("NewCutter() error = %v", err)
	}

	_, err = cutter.Cut(context.Background(), "/audio/talk.mp3", "/out",
		[]split.Segment{seg(0, 100)})
	if !errors.Is(err, media.ErrEncodingFailed) {
		t.Errorf("Cut() error = %v, want %v", err, media.ErrEncodingFailed)
	}
	if len(enc.calls) != 3 {
		t.Errorf("Encode called %d times, want 3", len(enc.calls))
	}
}

func TestCutter_MidRunFailureKeepsPriorFiles(t *testing.T) {
	t.Parallel()

	// First segment succeeds, second exhausts the retry budget: the run
	// fails with no partial result, but the file already written for the
	// first segment stays on disk.
	outDir := t.TempDir()
	calls := 0
	failing := encodeFunc(func(ctx context.Context, src, dst string, trim *media.Trim) error {
		calls++
		if calls == 1 {
			return os.WriteFile(dst, []byte("audio"), 0o600)
		}
		return fmt.Errorf("%w: broken", media.ErrEncodingFailed)
	})
	var delays []time.Duration
	cutter, err := media.NewCutter(failing, media.WithCutRetry(testRetry(&delays)))
	if err != nil {
		t.Fatalf("NewCutter() error = %v", err)
	}

	files, err := cutter.Cut(context.Background(), "/audio/talk.mp3", outDir,
		[]split.Segment{seg(0, 100), seg(100, 200)})
	if !errors.Is(err, media.ErrEncodingFailed) {
		t.Fatalf("Cut() error = %v, want %v", err, media.ErrEncodingFailed)
	}
	if files != nil {
		t.Errorf("Cut() = %v, want nil on failure", files)
	}
	prior := filepath.Join(outDir, "talk_segment_0.mp3")
	if _, err := os.Stat(prior); err != nil {
		t.Errorf("prior segment file missing after failure: %v", err)
	}
}

// encodeFunc adapts a function to the Encoder interface.
type encodeFunc func(ctx context.Context, src, dst string, trim *media.Trim) error

func (f encodeFunc) Encode(ctx context.Context, src, dst string, trim *media.Trim) error {
	return f(ctx, src, dst, trim)
}

func TestCutter_Naming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		segments  []split.Segment
		wantNames []string
	}{
		{
			name:      "single segment keeps full suffix",
			segments:  []split.Segment{seg(0, 300)},
			wantNames: []string{"talk_full.mp3"},
		},
		{
			name:      "multiple segments are numbered from zero",
			segments:  []split.Segment{seg(0, 100), seg(100, 200), seg(200, 300)},
			wantNames: []string{"talk_segment_0.mp3", "talk_segment_1.mp3", "talk_segment_2.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc := &stubEncoder{}
			cutter, err := media.NewCutter(enc)
			if err != nil {
				t.Fatalf("NewCutter() error = %v", err)
			}

			files, err := cutter.Cut(context.Background(), "/audio/talk.mp3", "/out", tt.segments)
			if err != nil {
				t.Fatalf("Cut() error = %v", err)
			}
			if len(files) != len(tt.wantNames) {
				t.Fatalf("Cut() returned %d files, want %d", len(files), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if got := filepath.Base(files[i].Path); got != want {
					t.Errorf("file %d = %q, want %q", i, got, want)
				}
				if files[i].Index != i {
					t.Errorf("file %d index = %d, want %d", i, files[i].Index, i)
				}
			}
		})
	}
}

func TestCutter_TrimsMatchSegments(t *testing.T) {
	t.Parallel()

	enc := &stubEncoder{}
	cutter, err := media.NewCutter(enc)
	if err != nil {
		t.Fatalf("NewCutter() error = %v", err)
	}

	segments := []split.Segment{seg(0, 90), seg(90, 250)}
	if _, err := cutter.Cut(context.Background(), "/audio/talk.mp3", "/out", segments); err != nil {
		t.Fatalf("Cut() error = %v", err)
	}
	if len(enc.calls) != 2 {
		t.Fatalf("Encode called %d times, want 2", len(enc.calls))
	}
	for i, s := range segments {
		got := enc.calls[i].trim
		if got.Start != s.Start || got.Length != s.Duration() {
			t.Errorf("trim %d = {%v %v}, want {%v %v}", i, got.Start, got.Length, s.Start, s.Duration())
		}
	}
}

func TestCutter_NoSegments(t *testing.T) {
	t.Parallel()

	cutter, err := media.NewCutter(&stubEncoder{})
	if err != nil {
		t.Fatalf("NewCutter() error = %v", err)
	}

	_, err = cutter.Cut(context.Background(), "/audio/talk.mp3", "/out", nil)
	if err == nil {
		t.Fatal("Cut() error = nil, want error for empty segment list")
	}
	// A caller bug, not an encode failure: the sentinel stays out of it.
	if errors.Is(err, media.ErrEncodingFailed) {
		t.Errorf("Cut() error = %v, must not wrap %v", err, media.ErrEncodingFailed)
	}
}
