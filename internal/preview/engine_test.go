package preview

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/config"
)

type mockAssembler struct {
	calls int32
	mu    sync.Mutex
	fail  error
}

func (m *mockAssembler) Assemble(ctx context.Context, sourceURL string, starts []float64, plan SegmentPlan, destPath string, progress func(float64), cancel <-chan struct{}) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}
	progress(0.70)
	if err := os.WriteFile(destPath, []byte("fake-mp4"), 0o644); err != nil {
		return err
	}
	progress(1.0)
	return nil
}

func newTestVideo(duration float64) *catalog.Video {
	v := catalog.NewVideo("/library/clip.mp4")
	v.Duration = duration
	return v
}

func TestEngine_GenerateWritesDestinationAndUpdatesVideo(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(300)
	cfg := config.DefaultPreviewConfiguration()

	e := NewEngine(&mockAssembler{}, nil, dir)
	var progressValues []float64
	dest, err := e.Generate(context.Background(), video, config.DensityXS, cfg, func(f float64) {
		progressValues = append(progressValues, f)
	}, nil)

	require.NoError(t, err)
	require.FileExists(t, dest)
	require.Equal(t, dest, video.PreviewURL)
	require.Equal(t, []float64{0.70, 1.0}, progressValues)
}

func TestEngine_GeneratePropagatesAssemblerFailure(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(300)
	cfg := config.DefaultPreviewConfiguration()

	e := NewEngine(&mockAssembler{fail: ErrUnableToCreateExportSession}, nil, dir)
	_, err := e.Generate(context.Background(), video, config.DensityXS, cfg, nil, nil)
	require.ErrorIs(t, err, ErrUnableToCreateExportSession)
}

func TestEngine_GenerateRejectsZeroDurationWithoutProbe(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(0)
	cfg := config.DefaultPreviewConfiguration()

	e := NewEngine(&mockAssembler{}, nil, dir)
	_, err := e.Generate(context.Background(), video, config.DensityM, cfg, nil, nil)
	require.ErrorIs(t, err, ErrUnableToCreateCompositionTracks)
}

func TestEngine_GenerateDeduplicatesConcurrentCalls(t *testing.T) {
	dir := t.TempDir()
	video := newTestVideo(300)
	cfg := config.DefaultPreviewConfiguration()

	assembler := &mockAssembler{}
	e := NewEngine(assembler, nil, dir)

	var wg sync.WaitGroup
	dests := make([]string, 4)
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dests[i], errs[i] = e.Generate(context.Background(), video, config.DensityM, cfg, nil, nil)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, dests[0], dests[i])
	}
	require.Equal(t, int32(1), assembler.calls)
}

func TestEngine_GenerateUsesCustomLocationWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	customDir := t.TempDir()
	video := newTestVideo(300)
	cfg := config.DefaultPreviewConfiguration()
	cfg.SaveInCustomLocation = true
	cfg.CustomSaveLocation = customDir

	e := NewEngine(&mockAssembler{}, nil, dir)
	dest, err := e.Generate(context.Background(), video, config.DensityM, cfg, nil, nil)
	require.NoError(t, err)
	require.Contains(t, dest, customDir)
}
