package cli

import (
	"context"
	"sync"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/media"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc func(ctx context.Context) (string, error)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

// ---------------------------------------------------------------------------
// Mock Splitter / SplitterFactory
// ---------------------------------------------------------------------------

type mockSplitter struct {
	SplitFunc func(ctx context.Context, req media.Request) ([]media.SegmentFile, error)

	mu       sync.Mutex
	requests []media.Request
}

func (m *mockSplitter) Split(ctx context.Context, req media.Request) ([]media.SegmentFile, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, req)
	}
	return []media.SegmentFile{{Path: "out/full.mp3"}}, nil
}

func (m *mockSplitter) Requests() []media.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]media.Request(nil), m.requests...)
}

type mockSplitterFactory struct {
	splitter *mockSplitter

	mu         sync.Mutex
	ffmpegPath string
	cacheDir   string
}

func (m *mockSplitterFactory) NewSplitter(ffmpegPath, cacheDir string, opts ...media.SplitterOption) (Splitter, error) {
	m.mu.Lock()
	m.ffmpegPath = ffmpegPath
	m.cacheDir = cacheDir
	m.mu.Unlock()
	return m.splitter, nil
}

// Compile-time interface verification.
var (
	_ FFmpegResolver  = (*mockFFmpegResolver)(nil)
	_ ConfigLoader    = (*mockConfigLoader)(nil)
	_ Splitter        = (*mockSplitter)(nil)
	_ SplitterFactory = (*mockSplitterFactory)(nil)
)
