package mosaic

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/frameextract"
)

type mockExtractor struct {
	opens  int32
	closes int32
	fail   bool
}

func (m *mockExtractor) Open(ctx context.Context, url string) (frameextract.Session, error) {
	atomic.AddInt32(&m.opens, 1)
	return &mockSession{parent: m, fail: m.fail}, nil
}

type mockSession struct {
	parent *mockExtractor
	fail   bool
}

func (s *mockSession) Duration(ctx context.Context) (float64, error) { return 60, nil }

func (s *mockSession) ExtractAt(ctx context.Context, timestamp float64, tol frameextract.Tolerance, maxSize int) (frameextract.Frame, error) {
	if s.fail {
		return frameextract.Frame{}, context.DeadlineExceeded
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.White)
		}
	}
	return frameextract.Frame{Image: img, Timestamp: timestamp}, nil
}

func (s *mockSession) Close() error {
	atomic.AddInt32(&s.parent.closes, 1)
	return nil
}

func newTestVideo(duration float64) *catalog.Video {
	v := catalog.NewVideo("/library/clip.mp4")
	v.Duration = duration
	return v
}

func TestGenerate_WritesArtifactAndUpdatesVideo(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(42)
	cfg := config.DefaultMosaicConfiguration()
	cfg.Output.Overwrite = true

	e := NewEngine(&mockExtractor{})

	var events []ProgressEvent
	path, err := e.Generate(context.Background(), video, cfg, dir, func(ev ProgressEvent) {
		events = append(events, ev)
	}, nil)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, path, video.MosaicURL)
	require.Equal(t, StateCompleted, e.State(video.ID))

	require.Len(t, events, 4)
	require.Equal(t, ProgressQueued, events[0].Fraction)
	require.Equal(t, ProgressFrames, events[1].Fraction)
	require.Equal(t, ProgressWrite, events[len(events)-1].Fraction)
}

func TestGenerate_RefusesOverwriteByDefault(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(42)
	cfg := config.DefaultMosaicConfiguration()
	cfg.Output.Overwrite = true

	e := NewEngine(&mockExtractor{})
	path, err := e.Generate(context.Background(), video, cfg, dir, nil, nil)
	require.NoError(t, err)

	cfg.Output.Overwrite = false
	video2 := newTestVideo(42)
	video2.URL = video.URL
	_, err = e.Generate(context.Background(), video2, cfg, dir, nil, nil)
	require.ErrorIs(t, err, ErrFileExists)
	require.FileExists(t, path)
}

func TestGenerate_AllFramesFailingIsGenerationError(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(42)
	cfg := config.DefaultMosaicConfiguration()
	cfg.Output.Overwrite = true

	e := NewEngine(&mockExtractor{fail: true})
	_, err := e.Generate(context.Background(), video, cfg, dir, nil, nil)
	require.Error(t, err)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	require.Equal(t, StateFailed, e.State(video.ID))
}

func TestGenerate_CancelledBeforeStartReturnsErrCancelled(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(42)
	cfg := config.DefaultMosaicConfiguration()
	cfg.Output.Overwrite = true

	cancel := make(chan struct{})
	close(cancel)

	e := NewEngine(&mockExtractor{})
	_, err := e.Generate(context.Background(), video, cfg, dir, nil, cancel)
	require.ErrorIs(t, err, ErrCancelled)
	require.Equal(t, StateCancelled, e.State(video.ID))
}

func TestGenerate_DeduplicatesConcurrentCallsForSameVideo(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(42)
	cfg := config.DefaultMosaicConfiguration()
	cfg.Output.Overwrite = true

	extractor := &mockExtractor{}
	e := NewEngine(extractor)

	var wg sync.WaitGroup
	paths := make([]string, 4)
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = e.Generate(context.Background(), video, cfg, dir, nil, nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, paths[0], paths[i])
	}
}

func TestGenerate_UnknownState(t *testing.T) {
	e := NewEngine(&mockExtractor{})
	require.Equal(t, State(""), e.State(catalog.NewVideo("/x.mp4").ID))
}

func TestWriteArtifact_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sub", "out.jpg")
	err := writeArtifact(path, []byte("data"), true)
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestIsCancelled_NilChannelNeverCancels(t *testing.T) {
	require.False(t, isCancelled(nil))
}

func TestIsCancelled_ClosedChannelCancels(t *testing.T) {
	ch := make(chan struct{})
	require.False(t, isCancelled(ch))
	close(ch)
	require.True(t, isCancelled(ch))
	_ = time.Millisecond
	_ = os.DevNull
}
