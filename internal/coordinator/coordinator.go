// Package coordinator drives the discovery/processing pipeline end to end:
// scan a root or evaluate a smart folder, process videos under bounded
// concurrency, upsert results into the catalog in batches, and report
// progress — adapted from the teacher's internal/indexer batch-walk loop
// (walkAndIndex/processBatch/updateProgress), generalized from a single
// hardcoded media-file indexer into a pipeline over pluggable scanner,
// processor and smart-folder components.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/logging"
	"github.com/fdenis75/hypermovie/internal/memory"
	"github.com/fdenis75/hypermovie/internal/metrics"
	"github.com/fdenis75/hypermovie/internal/processor"
	"github.com/fdenis75/hypermovie/internal/resource"
	"github.com/fdenis75/hypermovie/internal/scanner"
	"github.com/fdenis75/hypermovie/internal/smartfolder"
)

const resourcePauseInterval = 200 * time.Millisecond

// Coordinator is the top-level engine: it owns no domain logic of its own,
// only the wiring and bounded-concurrency/backpressure/cancellation
// machinery around the Scanner, Processor and Smart-Folder Evaluator.
type Coordinator struct {
	adapter   catalog.Adapter
	prober    processor.Prober
	thumbs    processor.ThumbnailGenerator
	evaluator *smartfolder.Evaluator
	monitor   *resource.Monitor
	heap      *memory.Monitor

	processing config.ProcessingConfig
	mosaicCfg  config.MosaicConfiguration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New builds a Coordinator. monitor and evaluator may be nil; thumbs may be
// nil (cover-thumbnail generation is then unavailable regardless of
// opts.GenerateThumbnails).
func New(
	adapter catalog.Adapter,
	prober processor.Prober,
	thumbs processor.ThumbnailGenerator,
	evaluator *smartfolder.Evaluator,
	monitor *resource.Monitor,
	processing config.ProcessingConfig,
	mosaicCfg config.MosaicConfiguration,
) *Coordinator {
	return &Coordinator{
		adapter:    adapter,
		prober:     prober,
		thumbs:     thumbs,
		evaluator:  evaluator,
		monitor:    monitor,
		processing: processing,
		mosaicCfg:  mosaicCfg,
	}
}

// WithHeapMonitor attaches a GOMEMLIMIT-based heap monitor as a second,
// process-local backpressure signal alongside the system-wide resource
// Monitor. Returns c for chaining.
func (c *Coordinator) WithHeapMonitor(heap *memory.Monitor) *Coordinator {
	c.heap = heap
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DiscoverFolder scans root and processes every discovered video not
// already in the catalog (or every one, when opts.IsUpdate), per spec.md
// §4.9.
func (c *Coordinator) DiscoverFolder(ctx context.Context, root string, opts Options, listener Listener) (*DiscoveryResult, error) {
	ctx, err := c.beginRun(ctx)
	if err != nil {
		return nil, err
	}
	defer c.endRun()

	scanResult, err := c.scanRoot(ctx, root, opts, listener)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			metrics.CoordinatorCancellations.Inc()
			notify(listener, ProgressEvent{Kind: EventCancelled})
			return &DiscoveryResult{Cancelled: true}, nil
		}
		return nil, fmt.Errorf("coordinator: scan %s: %w", root, err)
	}

	result, err := c.run(ctx, scanResult.URLs, root, opts, listener)
	if err != nil || result.Cancelled {
		return result, err
	}

	if opts.IsUpdate {
		if rmErr := c.reconcileRemovals(ctx, root, result); rmErr != nil {
			logging.Warn("coordinator: reconcile removals under %s: %v", root, rmErr)
		}
	}

	return result, nil
}

// reconcileRemovals implements spec.md §4.9 step 7: on an update run, any
// catalogued video under root no longer present on disk is deleted from the
// catalog and recorded in result.Removed.
func (c *Coordinator) reconcileRemovals(ctx context.Context, root string, result *DiscoveryResult) error {
	catalogued, err := c.adapter.FetchVideos(ctx, func(v *catalog.Video) bool {
		return strings.HasPrefix(v.URL, root)
	})
	if err != nil {
		return fmt.Errorf("fetch catalogued videos: %w", err)
	}

	_, orphaned, err := scanner.Compare(ctx, catalogued, root)
	if err != nil {
		return fmt.Errorf("compare against disk: %w", err)
	}

	for _, v := range orphaned {
		if err := c.adapter.DeleteVideoByURL(ctx, v.URL); err != nil {
			logging.Warn("coordinator: delete removed video %s: %v", v.URL, err)
			continue
		}
		result.Removed = append(result.Removed, v.URL)
	}
	sort.Strings(result.Removed)

	return nil
}

// DiscoverSmartFolder evaluates criteria and processes every matching video
// not already in the catalog (or every one, when opts.IsUpdate). Smart
// folders have no single filesystem root, so no folder-chain bookkeeping is
// performed; matched videos are expected to already live under catalogued
// folders from a prior DiscoverFolder run.
func (c *Coordinator) DiscoverSmartFolder(ctx context.Context, criteria catalog.SmartCriteria, opts Options, listener Listener) (*DiscoveryResult, error) {
	if c.evaluator == nil {
		return nil, fmt.Errorf("coordinator: smart folder evaluation requires an Evaluator")
	}

	ctx, err := c.beginRun(ctx)
	if err != nil {
		return nil, err
	}
	defer c.endRun()

	found, err := c.evaluator.Find(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("coordinator: evaluate smart folder: %w", err)
	}

	urls := make([]string, len(found.Matched))
	for i, v := range found.Matched {
		urls[i] = v.URL
	}

	return c.run(ctx, urls, "", opts, listener)
}

func (c *Coordinator) scanRoot(ctx context.Context, root string, opts Options, listener Listener) (scanner.Result, error) {
	scanOpts := scanner.Options{Root: root, Recursive: opts.Recursive}
	return scanner.Scan(ctx, scanOpts, func(currentPath string) {
		notify(listener, ProgressEvent{Kind: EventProgress, CurrentFolder: filepath.Dir(currentPath)})
	})
}

// run implements discover_folder/discover_smart_folder steps 3-7: filter
// against the catalog, group by parent directory, process in batches of
// ProcessingConfig.BatchSize, and assemble the DiscoveryResult.
func (c *Coordinator) run(ctx context.Context, urls []string, rootURL string, opts Options, listener Listener) (*DiscoveryResult, error) {
	start := time.Now()
	result := &DiscoveryResult{}

	urlSet := make(map[string]bool, len(urls))
	for _, u := range urls {
		urlSet[u] = true
	}

	existing, err := c.adapter.FetchVideos(ctx, func(v *catalog.Video) bool {
		return urlSet[v.URL]
	})
	if err != nil {
		metrics.CoordinatorRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("coordinator: fetch existing videos: %w", err)
	}
	existingByURL := make(map[string]bool, len(existing))
	for _, v := range existing {
		existingByURL[v.URL] = true
	}

	var toProcess []string
	for _, u := range urls {
		if existingByURL[u] && !opts.IsUpdate {
			result.Statistics.SkippedFiles++
			continue
		}
		toProcess = append(toProcess, u)
	}

	proc := processor.NewProcessor(c.prober, c.thumbs, opts.GenerateThumbnails)
	concurrency := clamp(opts.ConcurrentOperations, 1, 12)
	sem := semaphore.NewWeighted(int64(clamp(concurrency, 2, 16)))

	batchSize := c.processing.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	createdFolders := make(map[string]bool)
	totalVideos := len(toProcess)
	processedVideos := 0
	batchesCommitted := 0

	for batchStart := 0; batchStart < len(toProcess); batchStart += batchSize {
		if c.isCancelled(ctx) {
			result.Cancelled = true
			metrics.CoordinatorCancellations.Inc()
			notify(listener, ProgressEvent{Kind: EventCancelled})
			break
		}

		batchEnd := batchStart + batchSize
		if batchEnd > len(toProcess) {
			batchEnd = len(toProcess)
		}
		batch := toProcess[batchStart:batchEnd]

		c.processBatch(ctx, batch, rootURL, proc, sem, createdFolders, existingByURL, result, &processedVideos, totalVideos, listener)

		batchesCommitted++
		metrics.CoordinatorBatchesTotal.Inc()
		if rootURL != "" {
			result.CreatedFolders = appendSortedUnique(result.CreatedFolders, keysOf(createdFolders)...)
		}

		// Drop the processor's in-flight dedup map every 5 batches so it never
		// accumulates entries for URLs long finished, per spec.md §4.9 step 5.
		if batchesCommitted%5 == 0 {
			proc = processor.NewProcessor(c.prober, c.thumbs, opts.GenerateThumbnails)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Updated)

	result.Statistics.TotalVideosProcessed = processedVideos
	result.Statistics.ErrorFiles = len(result.Errors)
	result.Statistics.Duration = time.Since(start)

	status := "success"
	if result.Cancelled {
		status = "cancelled"
	} else if len(result.Errors) > 0 {
		status = "partial"
	}
	metrics.CoordinatorRunsTotal.WithLabelValues(status).Inc()
	metrics.CoordinatorVideosProcessed.Add(float64(processedVideos))

	if !result.Cancelled {
		notify(listener, ProgressEvent{Kind: EventCompleted, TotalVideos: totalVideos, ProcessedVideos: processedVideos})
	}

	return result, nil
}

func (c *Coordinator) processBatch(
	ctx context.Context,
	batch []string,
	rootURL string,
	proc *processor.Processor,
	sem *semaphore.Weighted,
	createdFolders map[string]bool,
	existingByURL map[string]bool,
	result *DiscoveryResult,
	processedVideos *int,
	totalVideos int,
	listener Listener,
) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	var processed []*catalog.Video
	rateStart := time.Now()
	rateBase := *processedVideos

	// Folder-chain creation runs serially, once per unique directory, before
	// any video in that directory is dispatched for concurrent processing:
	// createdFolders is otherwise mutated by every in-flight goroutine at
	// once, and spec.md §5 requires the chain to exist before any of that
	// directory's videos are upserted.
	if rootURL != "" {
		dirsSeen := make(map[string]bool)
		for _, url := range batch {
			dir := filepath.Dir(url)
			if dirsSeen[dir] {
				continue
			}
			dirsSeen[dir] = true
			c.ensureFolderChain(ctx, dir, rootURL, createdFolders)
		}
	}

	for _, url := range batch {
		if c.isCancelled(ctx) {
			break
		}

		c.waitForResourceHeadroom(ctx)

		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		metrics.CoordinatorInflight.Inc()
		go func(url string) {
			defer wg.Done()
			defer sem.Release(1)
			defer metrics.CoordinatorInflight.Dec()

			video, err := proc.Process(ctx, url, c.mosaicCfg)

			mu.Lock()
			defer mu.Unlock()

			*processedVideos++
			if err != nil {
				result.Errors = append(result.Errors, DiscoveryError{URL: url, Err: err})
				metrics.CoordinatorErrorsTotal.Inc()
			} else {
				processed = append(processed, video)
			}

			elapsed := time.Since(rateStart).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(*processedVideos-rateBase) / elapsed
			}
			var eta time.Duration
			if rate > 0 {
				remaining := totalVideos - *processedVideos
				eta = time.Duration(float64(remaining)/rate) * time.Second
			}

			title := url
			if video != nil && video.Title != "" {
				title = video.Title
			}
			notify(listener, ProgressEvent{
				Kind:                   EventProgress,
				TotalVideos:            totalVideos,
				ProcessedVideos:        *processedVideos,
				CurrentVideo:           title,
				ErrorFiles:             len(result.Errors),
				ProcessingRate:         rate,
				EstimatedTimeRemaining: eta,
			})
		}(url)
	}

	wg.Wait()

	// The batch's catalog writes are made only once every video in it is done.
	for _, video := range processed {
		if err := c.adapter.UpsertVideo(ctx, video); err != nil {
			result.Errors = append(result.Errors, DiscoveryError{URL: video.URL, Err: err})
			metrics.CoordinatorErrorsTotal.Inc()
		} else if existingByURL[video.URL] {
			result.Updated = append(result.Updated, video.URL)
		} else {
			result.Added = append(result.Added, video.URL)
		}
	}
}

// ensureFolderChain upserts the folder chain from rootURL down to dir into
// the catalog, at most once per unique directory per run, mirroring the
// teacher's once-per-path upsert idioms in internal/indexer.go.
func (c *Coordinator) ensureFolderChain(ctx context.Context, dir, rootURL string, created map[string]bool) {
	if dir == "" || dir == "." || !strings.HasPrefix(dir, rootURL) {
		return
	}

	var chain []string
	for d := dir; d != "" && d != "." && len(d) >= len(rootURL); d = filepath.Dir(d) {
		chain = append(chain, d)
		if d == rootURL {
			break
		}
	}

	var parentID *uuid.UUID
	for i := len(chain) - 1; i >= 0; i-- {
		path := chain[i]
		if created[path] {
			if item, err := c.adapter.FetchFolder(ctx, path, catalog.ItemFolder); err == nil && item != nil {
				id := item.ID
				parentID = &id
			}
			continue
		}

		item := catalog.NewLibraryItem(filepath.Base(path), path)
		if parentID != nil {
			pid := *parentID
			item.Parent = &pid
		}
		if err := c.adapter.UpsertFolder(ctx, item); err != nil {
			logging.Debug("coordinator: upsert folder %s: %v", path, err)
			continue
		}
		created[path] = true
		id := item.ID
		parentID = &id
	}
}

func (c *Coordinator) isCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Coordinator) waitForResourceHeadroom(ctx context.Context) {
	if c.monitor != nil {
		for c.monitor.ShouldPause() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(resourcePauseInterval):
			}
		}
	}
	if c.heap != nil {
		if !c.heap.WaitIfPaused() {
			return
		}
	}
}

func (c *Coordinator) beginRun(parent context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(parent)
	c.running = true
	c.cancel = cancel
	return ctx, nil
}

func (c *Coordinator) endRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.cancel = nil
}

// Cancel requests termination of the in-flight run, if any. The run
// observes this at its next batch boundary or per-video suspension point.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func keysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func appendSortedUnique(dst []string, items ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, d := range dst {
		seen[d] = true
	}
	for _, item := range items {
		if !seen[item] {
			dst = append(dst, item)
			seen[item] = true
		}
	}
	sort.Strings(dst)
	return dst
}
