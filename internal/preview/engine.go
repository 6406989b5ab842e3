package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/metrics"
)

type inflight struct {
	done chan struct{}
	url  string
	err  error
}

// DurationProbe reports a source's duration, the one fact the segment plan
// needs beyond the catalog record (the catalog's own Video.Duration is
// trusted when already populated).
type DurationProbe interface {
	Duration(ctx context.Context, url string) (float64, error)
}

// Engine generates previews, deduplicating concurrent requests for the same
// video.
type Engine struct {
	assembler Assembler
	probe     DurationProbe
	cacheDir  string

	mu       sync.Mutex
	inflight map[uuid.UUID]*inflight
}

// NewEngine builds an Engine. cacheDir is used for the default (non-custom)
// destination.
func NewEngine(assembler Assembler, probe DurationProbe, cacheDir string) *Engine {
	return &Engine{
		assembler: assembler,
		probe:     probe,
		cacheDir:  cacheDir,
		inflight:  make(map[uuid.UUID]*inflight),
	}
}

// Generate produces a preview for video per cfg and density, writing it to
// the resolved destination and updating video.PreviewURL on success.
func (e *Engine) Generate(ctx context.Context, video *catalog.Video, density config.Density, cfg config.PreviewConfiguration, progress func(float64), cancel <-chan struct{}) (string, error) {
	e.mu.Lock()
	if existing, ok := e.inflight[video.ID]; ok {
		e.mu.Unlock()
		<-existing.done
		return existing.url, existing.err
	}
	task := &inflight{done: make(chan struct{})}
	e.inflight[video.ID] = task
	e.mu.Unlock()

	url, err := e.generate(ctx, video, density, cfg, progress, cancel)

	task.url, task.err = url, err
	close(task.done)

	e.mu.Lock()
	delete(e.inflight, video.ID)
	e.mu.Unlock()

	status := "success"
	if err != nil {
		status = "error"
	} else {
		video.PreviewURL = url
	}
	metrics.PreviewGenerationsTotal.WithLabelValues(status).Inc()

	return url, err
}

func (e *Engine) generate(ctx context.Context, video *catalog.Video, density config.Density, cfg config.PreviewConfiguration, progress func(float64), cancel <-chan struct{}) (string, error) {
	duration := video.Duration
	if duration <= 0 && e.probe != nil {
		d, err := e.probe.Duration(ctx, video.URL)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnableToCreateCompositionTracks, err)
		}
		duration = d
	}

	plan, err := Plan(duration, density, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnableToCreateCompositionTracks, err)
	}
	starts := SegmentStarts(duration, plan)

	dest := ResolveDestination(video.ID, video.URL, cfg, e.cacheDir)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnableToCreateExportSession, err)
	}

	pending, err := renameio.NewPendingFile(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnableToCreateExportSession, err)
	}
	defer pending.Cleanup()

	if err := e.assembler.Assemble(ctx, video.URL, starts, plan, pending.Name(), emit(progress), cancel); err != nil {
		return "", err
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnableToCreateExportSession, err)
	}

	return dest, nil
}

func emit(progress func(float64)) func(float64) {
	if progress == nil {
		return func(float64) {}
	}
	return progress
}
