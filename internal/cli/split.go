package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/media"
	"github.com/alnah/go-audiosplit/internal/timeline"
)

// defaultMaxDuration is the per-segment budget when neither the flag nor the
// config sets one.
const defaultMaxDuration = 15 * time.Minute

// supportedFormats lists audio container formats FFmpeg re-encodes reliably.
var supportedFormats = map[string]bool{
	".aac":  true,
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".webm": true,
}

// supportedFormatsList returns a sorted, comma-separated list for error messages.
// The list is sorted for deterministic output in tests and user-facing messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(formats)
	return strings.Join(formats, ", ")
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var (
		timelinePath string
		maxDuration  string
		outputDir    string
		longSilence  time.Duration
		shortSilence time.Duration
	)

	cmd := &cobra.Command{
		Use:   "split <audio-file>",
		Short: "Split a recording into segments at silence gaps",
		Long: `Split a long recording into files no longer than the duration budget,
cutting only inside silence gaps of a diarization timeline.

The timeline is a JSON array of speech intervals with timestamps in seconds:
  [{"start": 0.0, "end": 81.3}, {"start": 86.1, "end": 190.7}]

Cuts prefer silences of at least 5s and fall back to 0.5s pauses. A recording
that already fits the budget is copied whole to <name>_full.<ext>; otherwise
segments are written as <name>_segment_<i>.<ext>, numbered from zero.

Each written file is reported on stdout as "path<TAB>start-seconds".

Supported formats: aac, flac, m4a, mp3, mp4, ogg, opus, wav, webm`,
		Example: `  audiosplit split lecture.mp3 --timeline lecture.json
  audiosplit split hearing.m4a -t hearing.json -m 20m -o ./parts
  audiosplit split interview.wav -t turns.json --max-duration 10m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, env, args[0], timelinePath, maxDuration, outputDir, longSilence, shortSilence)
		},
	}

	cmd.Flags().StringVarP(&timelinePath, "timeline", "t", "", "Diarization timeline JSON file (required)")
	cmd.Flags().StringVarP(&maxDuration, "max-duration", "m", "", "Duration budget per segment, e.g. 15m, 1h (default: 15m)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for segment files (default: config output-dir or cwd)")
	cmd.Flags().DurationVar(&longSilence, "long-silence", 0, "Preferred minimum silence for a cut (default: 5s)")
	cmd.Flags().DurationVar(&shortSilence, "short-silence", 0, "Fallback minimum silence for a cut (default: 500ms)")
	_ = cmd.MarkFlagRequired("timeline")

	return cmd
}

// runSplit executes the splitting pipeline.
// Validation order: file exists -> format -> timeline -> budget -> output dir.
func runSplit(cmd *cobra.Command, env *Env, inputPath, timelinePath, maxDuration, outputDir string, longSilence, shortSilence time.Duration) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	// 3. Timeline loads and validates
	tl, err := timeline.LoadFile(timelinePath)
	if err != nil {
		return err
	}

	// 4. Load config for output-dir / cache-dir / max-duration defaults
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	// 5. Duration budget: flag > config > default
	budget, err := resolveMaxDuration(maxDuration, cfg.MaxDuration)
	if err != nil {
		return err
	}

	// 6. Output directory
	outDir := config.ResolveOutputDir(outputDir, cfg.OutputDir)
	if err := config.ValidOutputDir(outDir); err != nil {
		return err
	}

	// === SETUP ===

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		if cacheDir, err = config.DefaultCacheDir(); err != nil {
			return err
		}
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	opts := []media.SplitterOption{
		media.WithSplitterLongSilence(longSilence),
		media.WithSplitterShortSilence(shortSilence),
		media.WithSplitterProgress(func(pct float64, stage string) {
			fmt.Fprintf(env.Stderr, "\r[%s] %3.0f%%", stage, pct)
		}),
	}
	splitter, err := env.SplitterFactory.NewSplitter(ffmpegPath, cacheDir, opts...)
	if err != nil {
		return err
	}

	// === SPLIT ===

	files, err := splitter.Split(ctx, media.Request{
		SourcePath:  inputPath,
		OutputDir:   outDir,
		Timeline:    tl,
		MaxDuration: budget,
	})
	fmt.Fprintln(env.Stderr) // end the progress line
	if err != nil {
		return err
	}

	for _, sf := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sf.Path, format.Seconds(sf.StartTime))
	}
	var covered time.Duration
	if n := len(files); n > 0 {
		covered = files[n-1].EndTime
	}
	fmt.Fprintf(env.Stderr, "Wrote %d file(s) covering %s to %s\n",
		len(files), format.DurationHuman(covered), outDir)

	return nil
}

// resolveMaxDuration picks the per-segment budget with flag > config > default
// precedence and parses it.
func resolveMaxDuration(flagVal, cfgVal string) (time.Duration, error) {
	raw := flagVal
	if raw == "" {
		raw = cfgVal
	}
	if raw == "" {
		return defaultMaxDuration, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (use forms like 90s, 15m, 1h30m)", ErrInvalidDuration, raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidDuration, raw)
	}
	return d, nil
}
