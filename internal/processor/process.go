package processor

import (
	"context"
	"sort"
	"sync"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/logging"
	"github.com/fdenis75/hypermovie/internal/metrics"
	"github.com/fdenis75/hypermovie/internal/workers"
)

type inflight struct {
	done  chan struct{}
	video *catalog.Video
	err   error
}

// ThumbnailGenerator produces a single cover thumbnail for a video. Only the
// behavior processor.Process needs is exposed; the real implementation
// lives in this package (thumbnail.go), keeping the dependency internal
// rather than importing the heavier mosaic/compositor stack for a one-frame
// job.
type ThumbnailGenerator interface {
	GenerateCover(ctx context.Context, video *catalog.Video, cfg config.MosaicConfiguration) (string, error)
}

// Processor loads per-video metadata (and, optionally, a cover thumbnail),
// deduplicating concurrent calls for the same URL the way the teacher's
// ThumbnailGenerator deduplicates concurrent generation of the same path —
// generalized here from a per-path mutex to a per-URL shared future, since
// the processor's contract is "return its future" rather than "wait your
// turn and regenerate".
type Processor struct {
	prober    Prober
	thumbs    ThumbnailGenerator
	genThumbs bool

	mu       sync.Mutex
	inflight map[string]*inflight
}

// NewProcessor builds a Processor. If thumbs is nil, Process never attempts
// cover thumbnail generation regardless of genThumbs.
func NewProcessor(prober Prober, thumbs ThumbnailGenerator, genThumbs bool) *Processor {
	return &Processor{
		prober:    prober,
		thumbs:    thumbs,
		genThumbs: genThumbs && thumbs != nil,
		inflight:  make(map[string]*inflight),
	}
}

// Process loads metadata for url into a new Video, or returns the
// in-progress Video if url is already being processed.
func (p *Processor) Process(ctx context.Context, url string, mosaicCfg config.MosaicConfiguration) (*catalog.Video, error) {
	p.mu.Lock()
	if existing, ok := p.inflight[url]; ok {
		p.mu.Unlock()
		metrics.ProcessorDedupedTotal.Inc()
		<-existing.done
		return existing.video, existing.err
	}
	task := &inflight{done: make(chan struct{})}
	p.inflight[url] = task
	p.mu.Unlock()

	video, err := p.process(ctx, url, mosaicCfg)

	task.video, task.err = video, err
	close(task.done)

	p.mu.Lock()
	delete(p.inflight, url)
	p.mu.Unlock()

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ProcessorRunsTotal.WithLabelValues(status).Inc()

	return video, err
}

func (p *Processor) process(ctx context.Context, url string, mosaicCfg config.MosaicConfiguration) (*catalog.Video, error) {
	video := catalog.NewVideo(url)

	var wg sync.WaitGroup
	var meta ProbedMetadata
	var metaErr error
	var fileSize *int64

	wg.Add(2)
	go func() {
		defer wg.Done()
		meta, metaErr = p.prober.Probe(ctx, url)
	}()
	go func() {
		defer wg.Done()
		if size, err := statFileSize(url); err == nil {
			fileSize = size
		}
	}()
	wg.Wait()

	if metaErr != nil {
		logging.Debug("processor: metadata probe failed for %s: %v", url, metaErr)
	} else {
		video.Duration = meta.Duration
		video.Width = meta.Width
		video.Height = meta.Height
		video.FrameRate = meta.FrameRate
		video.CodecTag = meta.CodecTag
		video.Bitrate = meta.Bitrate
	}
	video.FileSize = fileSize

	if p.genThumbs {
		video.ThumbnailStatus = catalog.ThumbnailPending
		p.generateThumbnail(ctx, video, mosaicCfg)
	}

	return video, nil
}

func (p *Processor) generateThumbnail(ctx context.Context, video *catalog.Video, mosaicCfg config.MosaicConfiguration) {
	video.ThumbnailStatus = catalog.ThumbnailInProgress
	path, err := p.thumbs.GenerateCover(ctx, video, mosaicCfg)
	if err != nil {
		logging.Debug("processor: cover thumbnail failed for %s: %v", video.URL, err)
		video.ThumbnailStatus = catalog.ThumbnailError
		metrics.ProcessorThumbnailStatus.WithLabelValues("error").Inc()
		return
	}
	video.ThumbnailURL = path
	video.ThumbnailStatus = catalog.ThumbnailCompleted
	metrics.ProcessorThumbnailStatus.WithLabelValues("success").Inc()
}

// ProcessMany processes urls under a bounded worker pool, reporting
// (completed_count, current_title) as each video finishes.
func (p *Processor) ProcessMany(ctx context.Context, urls []string, minConcurrent, maxConcurrent int, mosaicCfg config.MosaicConfiguration, progress func(completed int, currentTitle string)) ([]*catalog.Video, []error) {
	limit := workers.ForIO(maxConcurrent)
	if limit < minConcurrent {
		limit = minConcurrent
	}
	if limit < 1 {
		limit = 1
	}

	videos := make([]*catalog.Video, len(urls))
	errs := make([]error, len(urls))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i, url := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, url string) {
			defer wg.Done()
			defer func() { <-sem }()

			v, err := p.Process(ctx, url, mosaicCfg)
			videos[i] = v
			errs[i] = err

			mu.Lock()
			completed++
			title := url
			if v != nil {
				title = v.Title
			}
			if progress != nil {
				progress(completed, title)
			}
			mu.Unlock()
		}(i, url)
	}
	wg.Wait()

	// §5 requires the returned slice sorted by title ascending for
	// determinism; videos/errs were built in dispatch order, which races
	// across goroutines.
	order := make([]int, len(urls))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return titleOf(videos[order[a]], urls[order[a]]) < titleOf(videos[order[b]], urls[order[b]])
	})

	sortedVideos := make([]*catalog.Video, len(urls))
	sortedErrs := make([]error, len(urls))
	for i, idx := range order {
		sortedVideos[i] = videos[idx]
		sortedErrs[i] = errs[idx]
	}

	return sortedVideos, sortedErrs
}

func titleOf(v *catalog.Video, fallbackURL string) string {
	if v != nil && v.Title != "" {
		return v.Title
	}
	return fallbackURL
}
