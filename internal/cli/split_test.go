package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/media"
	"github.com/alnah/go-audiosplit/internal/timeline"
)

// writeTestAudio creates a dummy audio file and returns its path.
func writeTestAudio(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeTestTimeline creates a timeline JSON file and returns its path.
func writeTestTimeline(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "timeline.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execSplit runs the split command with the given args against a mocked Env.
func execSplit(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	cmd := SplitCmd(env)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return stdout.String(), err
}

func newSplitTestEnv() (*Env, *mockSplitter, *mockSplitterFactory) {
	splitter := &mockSplitter{}
	factory := &mockSplitterFactory{splitter: splitter}
	env := NewEnv(
		WithStderr(&bytes.Buffer{}),
		WithGetenv(func(string) string { return "" }),
		WithFFmpegResolver(&mockFFmpegResolver{}),
		WithConfigLoader(&mockConfigLoader{}),
		WithSplitterFactory(factory),
	)
	return env, splitter, factory
}

const validTimeline = `[{"start": 0, "end": 80}, {"start": 90, "end": 170}]`

func TestSplitCmd_Success(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	tl := writeTestTimeline(t, dir, validTimeline)
	env, splitter, factory := newSplitTestEnv()

	splitter.SplitFunc = func(ctx context.Context, req media.Request) ([]media.SegmentFile, error) {
		return []media.SegmentFile{
			{Path: filepath.Join(req.OutputDir, "talk_segment_0.mp3"), Index: 0, StartTime: 0},
			{Path: filepath.Join(req.OutputDir, "talk_segment_1.mp3"), Index: 1, StartTime: 90 * time.Second},
		}, nil
	}

	out, err := execSplit(t, env, audio,
		"--timeline", tl,
		"--max-duration", "100s",
		"--output-dir", dir)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("stdout lines = %d, want 2:\n%s", len(lines), out)
	}
	if !strings.HasSuffix(lines[0], "\t0.000") {
		t.Errorf("line 0 = %q, want tab-separated start 0.000", lines[0])
	}
	if !strings.HasSuffix(lines[1], "\t90.000") {
		t.Errorf("line 1 = %q, want tab-separated start 90.000", lines[1])
	}

	reqs := splitter.Requests()
	if len(reqs) != 1 {
		t.Fatalf("splitter called %d times, want 1", len(reqs))
	}
	req := reqs[0]
	if req.SourcePath != audio {
		t.Errorf("SourcePath = %q, want %q", req.SourcePath, audio)
	}
	if req.MaxDuration != 100*time.Second {
		t.Errorf("MaxDuration = %v, want 100s", req.MaxDuration)
	}
	if len(req.Timeline) != 2 {
		t.Errorf("timeline intervals = %d, want 2", len(req.Timeline))
	}
	if factory.ffmpegPath != "/usr/bin/ffmpeg" {
		t.Errorf("factory ffmpegPath = %q", factory.ffmpegPath)
	}
	if factory.cacheDir == "" {
		t.Error("factory cacheDir is empty")
	}
}

func TestSplitCmd_SummaryReportsCoverage(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	tl := writeTestTimeline(t, dir, validTimeline)
	env, splitter, _ := newSplitTestEnv()

	var stderr bytes.Buffer
	env.Stderr = &stderr
	splitter.SplitFunc = func(ctx context.Context, req media.Request) ([]media.SegmentFile, error) {
		return []media.SegmentFile{
			{Path: filepath.Join(req.OutputDir, "talk_segment_0.mp3"), Index: 0, EndTime: 15 * time.Minute},
			{Path: filepath.Join(req.OutputDir, "talk_segment_1.mp3"), Index: 1, StartTime: 15 * time.Minute, EndTime: 30 * time.Minute},
		}, nil
	}

	if _, err := execSplit(t, env, audio, "--timeline", tl, "-o", dir); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stderr.String(), "Wrote 2 file(s) covering 30m") {
		t.Errorf("stderr = %q, want coverage summary", stderr.String())
	}
}

func TestSplitCmd_DefaultMaxDuration(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	tl := writeTestTimeline(t, dir, validTimeline)
	env, splitter, _ := newSplitTestEnv()

	if _, err := execSplit(t, env, audio, "--timeline", tl, "-o", dir); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	reqs := splitter.Requests()
	if len(reqs) != 1 || reqs[0].MaxDuration != defaultMaxDuration {
		t.Errorf("MaxDuration = %v, want %v", reqs[0].MaxDuration, defaultMaxDuration)
	}
}

func TestSplitCmd_ConfigMaxDuration(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	tl := writeTestTimeline(t, dir, validTimeline)
	env, splitter, _ := newSplitTestEnv()
	env.ConfigLoader = &mockConfigLoader{LoadFunc: func() (cfg config.Config, err error) {
		cfg.MaxDuration = "20m"
		return cfg, nil
	}}

	if _, err := execSplit(t, env, audio, "--timeline", tl, "-o", dir); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	reqs := splitter.Requests()
	if len(reqs) != 1 || reqs[0].MaxDuration != 20*time.Minute {
		t.Errorf("MaxDuration = %v, want 20m", reqs[0].MaxDuration)
	}
}

func TestSplitCmd_Validation(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	textFile := writeTestAudio(t, dir, "notes.txt")
	tl := writeTestTimeline(t, dir, validTimeline)
	badTL := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badTL, []byte(`[{"start": 5, "end": 2}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "missing input file",
			args:    []string{filepath.Join(dir, "nope.mp3"), "--timeline", tl},
			wantErr: ErrFileNotFound,
		},
		{
			name:    "unsupported format",
			args:    []string{textFile, "--timeline", tl},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "invalid timeline",
			args:    []string{audio, "--timeline", badTL},
			wantErr: timeline.ErrInvalidTimeline,
		},
		{
			name:    "unparseable max duration",
			args:    []string{audio, "--timeline", tl, "--max-duration", "soon"},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "negative max duration",
			args:    []string{audio, "--timeline", tl, "--max-duration", "-5m"},
			wantErr: ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, splitter, _ := newSplitTestEnv()

			_, err := execSplit(t, env, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if calls := len(splitter.Requests()); calls != 0 {
				t.Errorf("splitter called %d times despite validation failure", calls)
			}
		})
	}
}

func TestSplitCmd_TimelineFlagRequired(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	env, _, _ := newSplitTestEnv()

	if _, err := execSplit(t, env, audio); err == nil {
		t.Error("Execute() error = nil, want required-flag error")
	}
}

func TestSplitCmd_SplitErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	tl := writeTestTimeline(t, dir, validTimeline)
	env, splitter, _ := newSplitTestEnv()

	boom := errors.New("no usable silence")
	splitter.SplitFunc = func(ctx context.Context, req media.Request) ([]media.SegmentFile, error) {
		return nil, boom
	}

	_, err := execSplit(t, env, audio, "--timeline", tl, "-o", dir)
	if !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want %v", err, boom)
	}
}

func TestSplitCmd_FFmpegResolveFailure(t *testing.T) {
	dir := t.TempDir()
	audio := writeTestAudio(t, dir, "talk.mp3")
	tl := writeTestTimeline(t, dir, validTimeline)
	env, splitter, _ := newSplitTestEnv()

	resolveErr := errors.New("ffmpeg not found")
	env.FFmpegResolver = &mockFFmpegResolver{
		ResolveFunc: func(ctx context.Context) (string, error) { return "", resolveErr },
	}

	_, err := execSplit(t, env, audio, "--timeline", tl, "-o", dir)
	if !errors.Is(err, resolveErr) {
		t.Errorf("Execute() error = %v, want %v", err, resolveErr)
	}
	if calls := len(splitter.Requests()); calls != 0 {
		t.Errorf("splitter called %d times despite resolve failure", calls)
	}
}

func TestResolveMaxDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flag    string
		cfg     string
		want    time.Duration
		wantErr bool
	}{
		{"flag wins", "10m", "20m", 10 * time.Minute, false},
		{"config fallback", "", "20m", 20 * time.Minute, false},
		{"default", "", "", defaultMaxDuration, false},
		{"compound form", "1h30m", "", 90 * time.Minute, false},
		{"garbage", "soon", "", 0, true},
		{"zero", "0s", "", 0, true},
		{"bad config value", "", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveMaxDuration(tt.flag, tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Errorf("resolveMaxDuration() error = %v, want %v", err, ErrInvalidDuration)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveMaxDuration() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveMaxDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
