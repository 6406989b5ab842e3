// Package metrics provides Prometheus instrumentation for the hypermovie engine.
//
// This package defines and exposes various metrics that can be scraped by Prometheus
// to monitor the health, performance, and behavior of the batch pipeline. All metrics
// are prefixed with "hypermovie_" to avoid naming collisions with other applications.
//
// # Metric Categories
//
// The metrics are organized into the following categories:
//
// ## Catalog Metrics
//
// Track catalog adapter query performance and library size:
//   - CatalogQueryTotal: Counter of adapter operations by operation and status
//   - CatalogQueryDuration: Histogram of adapter operation duration by operation
//   - CatalogVideosTotal: Gauge of videos registered in the catalog
//   - CatalogFoldersTotal: Gauge of library folder nodes in the catalog
//
// ## Scanner Metrics
//
// Track discovery scanner walks and filesystem watch activity:
//   - ScannerOperationsTotal: Counter of scanner operations by operation and status
//   - ScannerOperationDuration: Histogram of scanner operation duration
//   - ScannerFilesScanned: Counter of files visited during a walk
//   - ScannerWatcherEventsTotal: Counter of fsnotify events observed
//   - ScannerWatcherErrors: Counter of fsnotify watcher errors
//
// ## Processor Metrics
//
// Monitor per-video metadata processing:
//   - ProcessorRunsTotal: Counter of processing runs by outcome
//   - ProcessorDuration: Histogram of processing duration by stage
//   - ProcessorThumbnailStatus: Counter of cover thumbnail outcomes
//   - ProcessorDedupedTotal: Counter of calls served by an in-flight dedup
//
// ## Frame Extraction Metrics
//
// Monitor the ffmpeg-backed frame extractor:
//   - FrameExtractionsTotal: Counter of extraction attempts by tolerance and status
//   - FrameExtractionDuration: Histogram of extraction duration by tolerance
//   - FrameExtractionBlankSubstitutions: Counter of blank-frame substitutions
//
// ## Mosaic Engine Metrics
//
// Track mosaic composition runs:
//   - MosaicGenerationsTotal: Counter of mosaic generations by outcome
//   - MosaicGenerationDuration: Histogram of generation duration by stage
//   - MosaicDedupedTotal: Counter of calls served by an in-flight dedup
//
// ## Preview Engine Metrics
//
// Track preview composition runs:
//   - PreviewGenerationsTotal: Counter of preview generations by outcome
//   - PreviewGenerationDuration: Histogram of generation duration by stage
//
// ## Smart Folder Metrics
//
// Track smart-folder predicate evaluation and its result cache:
//   - SmartFolderEvaluationsTotal: Counter of criteria evaluations by outcome
//   - SmartFolderCacheHits: Counter of cache hits
//   - SmartFolderCacheMisses: Counter of cache misses
//
// ## Batch Coordinator Metrics
//
// Track top-level discovery/processing runs:
//   - CoordinatorRunsTotal: Counter of runs by outcome
//   - CoordinatorBatchesTotal: Counter of batches committed to the catalog
//   - CoordinatorVideosProcessed: Counter of videos processed across all runs
//   - CoordinatorErrorsTotal: Counter of per-video errors captured
//   - CoordinatorInflight: Gauge of tasks currently holding the concurrency semaphore
//   - CoordinatorCancellations: Counter of runs terminated via cancellation
//
// ## Resource Monitor Metrics
//
// Monitor system memory backpressure:
//   - ResourceMemoryUsageRatio: Gauge of memory usage as a ratio of the configured limit
//   - ResourcePaused: Gauge indicating whether dispatch is currently paused
//   - ResourceGCForced: Counter of GC cycles forced by the resource monitor
//
// ## Filesystem Metrics
//
// Track NFS-resilient filesystem operation retries:
//   - FilesystemOperationDuration: Histogram of a single operation attempt
//   - FilesystemOperationErrors: Counter of operations returning a non-nil error
//   - FilesystemRetryAttempts: Counter of retry attempts
//   - FilesystemRetrySuccess: Counter of operations that succeeded after retry
//   - FilesystemRetryFailures: Counter of operations that failed after exhausting retries
//   - FilesystemStaleErrors: Counter of NFS stale file handle errors observed
//   - FilesystemRetryDuration: Histogram of total operation duration including retries
//
// ## Go Runtime Metrics
//
// Sampled periodically by [Collector]:
//   - GoMemAllocBytes, GoMemSysBytes, GoMemLimit
//   - GoGCRuns, GoGCPauseTotalSeconds, GoGCCPUFraction
//
// ## Application Info
//
// Expose build information:
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on your
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Recording Metrics
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	import "github.com/fdenis75/hypermovie/internal/metrics"
//
//	metrics.MosaicGenerationsTotal.WithLabelValues("success").Inc()
//	metrics.ProcessorDuration.WithLabelValues("probe").Observe(0.123)
//	metrics.CatalogVideosTotal.Set(1234)
//
// # Breaking the filesystem import cycle
//
// internal/filesystem cannot import this package directly without creating
// an import cycle (this package imports internal/filesystem to implement its
// Observer interface). Instead, internal/filesystem declares the Observer
// interface and a package-level SetObserver/observe() pair. This package's
// init function registers [FilesystemObserver], so importing it is enough;
// [NewFilesystemObserver] returns an equivalent observer for callers that
// register one themselves:
//
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers catalog
// statistics from a [StatsProvider] and updates the corresponding gauges,
// alongside Go runtime memory statistics:
//
//	collector := metrics.NewCollector(catalogAdapter, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Example PromQL queries for common use cases:
//
// Mosaic generation error rate:
//
//	sum(rate(hypermovie_mosaic_generations_total{status="error"}[5m])) /
//	sum(rate(hypermovie_mosaic_generations_total[5m]))
//
// P95 frame extraction latency:
//
//	histogram_quantile(0.95, sum(rate(hypermovie_frame_extraction_duration_seconds_bucket[5m])) by (le))
//
// Smart folder cache hit rate:
//
//	rate(hypermovie_smartfolder_cache_hits_total[5m]) /
//	(rate(hypermovie_smartfolder_cache_hits_total[5m]) + rate(hypermovie_smartfolder_cache_misses_total[5m]))
//
// Filesystem retry success rate on stale handles:
//
//	rate(hypermovie_filesystem_retry_success_total[5m]) /
//	rate(hypermovie_filesystem_stale_errors_total[5m])
//
// Coordinator throughput:
//
//	rate(hypermovie_coordinator_videos_processed_total[5m])
package metrics
