// Package mosaic orchestrates the layout solver, frame extractor and
// thumbnail compositor into a single generate(video, config) -> artifact
// operation, with in-flight deduplication per video and atomic artifact
// writes.
package mosaic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/compositor"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/frameextract"
	"github.com/fdenis75/hypermovie/internal/layout"
	"github.com/fdenis75/hypermovie/internal/logging"
	"github.com/fdenis75/hypermovie/internal/metrics"
)

type inflight struct {
	done chan struct{}
	url  string
	err  error
}

// Engine generates mosaics, deduplicating concurrent requests for the same
// video and tracking per-video lifecycle state.
type Engine struct {
	extractor frameextract.Extractor
	sem       *semaphore.Weighted

	mu       sync.Mutex
	inflight map[uuid.UUID]*inflight
	states   map[uuid.UUID]State
}

// NewEngine builds an Engine backed by extractor, which may be a software
// or hardware-accelerated implementation selected by the caller.
func NewEngine(extractor frameextract.Extractor) *Engine {
	return &Engine{
		extractor: extractor,
		inflight:  make(map[uuid.UUID]*inflight),
		states:    make(map[uuid.UUID]State),
	}
}

// State returns the last known lifecycle state for a video, or "" if no
// generation has ever been started for it.
func (e *Engine) State(videoID uuid.UUID) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[videoID]
}

func (e *Engine) setState(id uuid.UUID, s State) {
	e.mu.Lock()
	e.states[id] = s
	e.mu.Unlock()
}

// Generate produces a mosaic for video per cfg, writing it under
// libraryRoot and updating video.MosaicURL on success. Concurrent calls for
// the same video.ID share a single in-flight generation.
func (e *Engine) Generate(ctx context.Context, video *catalog.Video, cfg config.MosaicConfiguration, libraryRoot string, progress func(ProgressEvent), cancel <-chan struct{}) (string, error) {
	e.mu.Lock()
	if existing, ok := e.inflight[video.ID]; ok {
		e.mu.Unlock()
		metrics.MosaicDedupedTotal.Inc()
		<-existing.done
		return existing.url, existing.err
	}
	task := &inflight{done: make(chan struct{})}
	e.inflight[video.ID] = task
	e.mu.Unlock()

	e.setState(video.ID, StateQueued)
	emit(progress, "queued", ProgressQueued)

	url, err := e.generate(ctx, video, cfg, libraryRoot, progress, cancel)

	task.url, task.err = url, err
	close(task.done)

	e.mu.Lock()
	delete(e.inflight, video.ID)
	e.mu.Unlock()

	status := "success"
	if err != nil {
		status = "error"
		if err == ErrCancelled {
			e.setState(video.ID, StateCancelled)
		} else {
			e.setState(video.ID, StateFailed)
		}
	} else {
		e.setState(video.ID, StateCompleted)
		video.MosaicURL = url
	}
	metrics.MosaicGenerationsTotal.WithLabelValues(status).Inc()

	return url, err
}

func (e *Engine) generate(ctx context.Context, video *catalog.Video, cfg config.MosaicConfiguration, libraryRoot string, progress func(ProgressEvent), cancel <-chan struct{}) (string, error) {
	e.setState(video.ID, StateInProgress)

	if isCancelled(cancel) {
		return "", ErrCancelled
	}

	baseCount, err := layout.ThumbnailCount(video.Duration, cfg.Density)
	if err != nil {
		return "", &GenerationError{Underlying: err}
	}
	l, err := layout.Solve(cfg.Layout.AspectRatio, baseCount, cfg.Width, cfg.Layout.Spacing, cfg.Layout.Custom, cfg.Layout.Auto)
	if err != nil {
		return "", &GenerationError{Underlying: err}
	}

	timestamps := frameextract.MosaicTimestamps(video.Duration, len(l.Positions))

	tol := frameextract.FastTolerance()
	if cfg.UseAccurateTimestamps {
		tol = frameextract.AccurateTolerance()
	}

	tiles, err := e.extractFrames(ctx, video.URL, timestamps, tol, cancel)
	if err != nil {
		return "", err
	}
	emit(progress, "frames", ProgressFrames)

	var meta *compositor.Metadata
	if cfg.IncludeMetadata {
		meta = &compositor.Metadata{
			CodecTag:     video.CodecTag,
			CustomFields: video.CustomMetadata,
		}
		if video.Bitrate != nil {
			meta.BitrateBPS = *video.Bitrate
		}
	}

	if isCancelled(cancel) {
		return "", ErrCancelled
	}

	img, err := compositor.Compose(l, tiles, cfg.Layout, meta)
	if err != nil {
		return "", &GenerationError{Underlying: err}
	}
	emit(progress, "compose", ProgressCompose)

	data, _, err := compositor.Encode(img, cfg.Format, cfg.CompressionQuality)
	if err != nil {
		return "", &GenerationError{Underlying: err}
	}

	if isCancelled(cancel) {
		return "", ErrCancelled
	}

	path := ArtifactPath(video.URL, libraryRoot, cfg)
	if err := writeArtifact(path, data, cfg.Output.Overwrite); err != nil {
		return "", err
	}
	emit(progress, "write", ProgressWrite)

	return path, nil
}

func (e *Engine) extractFrames(ctx context.Context, url string, timestamps []float64, tol frameextract.Tolerance, cancel <-chan struct{}) ([]compositor.Tile, error) {
	session, err := e.extractor.Open(ctx, url)
	if err != nil {
		return nil, &GenerationError{Underlying: err}
	}
	defer session.Close()

	results := frameextract.Extract(ctx, session, timestamps, tol, 0, e.semaphore(), cancel)

	tiles := make([]compositor.Tile, 0, len(timestamps))
	failures := 0
	for r := range results {
		if r.Err != nil {
			failures++
			logging.Debug("mosaic: frame extraction failed at %.3fs for %s: %v", r.RequestedTime, url, r.Err)
			tiles = append(tiles, compositor.Tile{Timestamp: r.RequestedTime})
			continue
		}
		tiles = append(tiles, compositor.Tile{Image: r.Frame.Image, Timestamp: r.Frame.Timestamp})
	}

	if len(timestamps) > 0 && failures == len(timestamps) {
		return nil, &GenerationError{Underlying: frameextract.ErrExtractionFailed}
	}

	return tiles, nil
}

func (e *Engine) semaphore() *semaphore.Weighted {
	if e.sem == nil {
		e.sem = frameextract.NewSemaphore(0)
	}
	return e.sem
}

// writeArtifact writes data to path with fsync-before-rename durability:
// temp file creation, fsync and atomic rename, with automatic temp-file
// cleanup if the write is abandoned before commit.
func writeArtifact(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return ErrFileExists
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

func isCancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}
	select {
	case <-cancel:
		return true
	default:
		return false
	}
}

func emit(progress func(ProgressEvent), stage string, fraction float64) {
	if progress != nil {
		progress(ProgressEvent{Stage: stage, Fraction: fraction})
	}
}
