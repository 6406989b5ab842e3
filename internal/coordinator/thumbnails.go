package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/logging"
	"github.com/fdenis75/hypermovie/internal/metrics"
)

// CheckThumbnails returns every catalogued video under root whose cover
// thumbnail has not completed successfully (spec.md §4.9: "[Video] needing
// regeneration").
func (c *Coordinator) CheckThumbnails(ctx context.Context, root string) ([]*catalog.Video, error) {
	videos, err := c.adapter.FetchVideos(ctx, func(v *catalog.Video) bool {
		return strings.HasPrefix(v.URL, root) && v.ThumbnailStatus != catalog.ThumbnailCompleted
	})
	if err != nil {
		return nil, fmt.Errorf("coordinator: check thumbnails: %w", err)
	}
	return videos, nil
}

// RegenerateThumbnails (re)generates the cover thumbnail for each video,
// bounded by the coordinator's default concurrency, reporting progress as
// each completes.
func (c *Coordinator) RegenerateThumbnails(ctx context.Context, videos []*catalog.Video, listener Listener) error {
	if c.thumbs == nil {
		return fmt.Errorf("coordinator: no thumbnail generator configured")
	}

	ctx, err := c.beginRun(ctx)
	if err != nil {
		return err
	}
	defer c.endRun()

	concurrency := clamp(c.processing.ConcurrentOperations, 1, 12)
	sem := semaphore.NewWeighted(int64(clamp(concurrency, 2, 16)))

	var wg sync.WaitGroup
	var mu sync.Mutex
	processed := 0

	for _, video := range videos {
		if c.isCancelled(ctx) {
			break
		}
		c.waitForResourceHeadroom(ctx)
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(video *catalog.Video) {
			defer wg.Done()
			defer sem.Release(1)

			video.ThumbnailStatus = catalog.ThumbnailInProgress
			path, genErr := c.thumbs.GenerateCover(ctx, video, c.mosaicCfg)

			mu.Lock()
			defer mu.Unlock()

			if genErr != nil {
				video.ThumbnailStatus = catalog.ThumbnailError
				metrics.ProcessorThumbnailStatus.WithLabelValues("error").Inc()
			} else {
				video.ThumbnailURL = path
				video.ThumbnailStatus = catalog.ThumbnailCompleted
				metrics.ProcessorThumbnailStatus.WithLabelValues("success").Inc()
			}

			if err := c.adapter.UpsertVideo(ctx, video); err != nil {
				logging.Debug("coordinator: upsert video after thumbnail regeneration %s: %v", video.URL, err)
			}

			processed++
			notify(listener, ProgressEvent{
				Kind:            EventProgress,
				TotalVideos:     len(videos),
				ProcessedVideos: processed,
				CurrentVideo:    video.Title,
			})
		}(video)
	}

	wg.Wait()
	return nil
}
