package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Catalog metrics
var (
	CatalogQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_catalog_queries_total",
			Help: "Total number of catalog adapter operations",
		},
		[]string{"operation", "status"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_catalog_query_duration_seconds",
			Help:    "Catalog adapter operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	CatalogVideosTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_catalog_videos_total",
			Help: "Total number of videos registered in the catalog",
		},
	)

	CatalogFoldersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_catalog_folders_total",
			Help: "Total number of library folder nodes in the catalog",
		},
	)
)

// Scanner metrics
var (
	ScannerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_scanner_operations_total",
			Help: "Total number of scanner operations",
		},
		[]string{"operation", "status"},
	)

	ScannerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_scanner_operation_duration_seconds",
			Help:    "Scanner operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	ScannerFilesScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_scanner_files_scanned_total",
			Help: "Total number of files scanned during a walk",
		},
		[]string{"operation"},
	)

	ScannerWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_scanner_watcher_events_total",
			Help: "Total number of filesystem watcher events observed",
		},
		[]string{"event_type"},
	)

	ScannerWatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_scanner_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)
)

// Per-video processor metrics
var (
	ProcessorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_processor_runs_total",
			Help: "Total number of per-video processing runs by outcome",
		},
		[]string{"status"},
	)

	ProcessorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_processor_duration_seconds",
			Help:    "Per-video metadata processing duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	ProcessorThumbnailStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_processor_thumbnail_status_total",
			Help: "Count of cover thumbnail generation outcomes",
		},
		[]string{"status"},
	)

	ProcessorDedupedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_processor_deduped_total",
			Help: "Total number of process() calls served by an in-flight dedup",
		},
	)
)

// Frame extraction metrics
var (
	FrameExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_frame_extractions_total",
			Help: "Total number of frame extraction attempts",
		},
		[]string{"tolerance", "status"},
	)

	FrameExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_frame_extraction_duration_seconds",
			Help:    "Frame extraction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"tolerance"},
	)

	FrameExtractionBlankSubstitutions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_frame_extraction_blank_substitutions_total",
			Help: "Total number of blank frames substituted for failed extractions",
		},
	)
)

// Mosaic engine metrics
var (
	MosaicGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_mosaic_generations_total",
			Help: "Total number of mosaic generations by outcome",
		},
		[]string{"status"},
	)

	MosaicGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_mosaic_generation_duration_seconds",
			Help:    "Mosaic generation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	MosaicDedupedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_mosaic_deduped_total",
			Help: "Total number of generate() calls served by an in-flight dedup",
		},
	)
)

// Preview engine metrics
var (
	PreviewGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_preview_generations_total",
			Help: "Total number of preview generations by outcome",
		},
		[]string{"status"},
	)

	PreviewGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_preview_generation_duration_seconds",
			Help:    "Preview generation duration in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)
)

// Smart folder evaluator metrics
var (
	SmartFolderEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_smartfolder_evaluations_total",
			Help: "Total number of smart folder criteria evaluations",
		},
		[]string{"status"},
	)

	SmartFolderCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_smartfolder_cache_hits_total",
			Help: "Total number of smart folder cache hits",
		},
	)

	SmartFolderCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_smartfolder_cache_misses_total",
			Help: "Total number of smart folder cache misses",
		},
	)
)

// Batch coordinator metrics
var (
	CoordinatorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_coordinator_runs_total",
			Help: "Total number of discovery/processing runs by outcome",
		},
		[]string{"status"},
	)

	CoordinatorBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_coordinator_batches_total",
			Help: "Total number of batches committed to the catalog",
		},
	)

	CoordinatorVideosProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_coordinator_videos_processed_total",
			Help: "Total number of videos processed across all runs",
		},
	)

	CoordinatorErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_coordinator_errors_total",
			Help: "Total number of per-video errors captured during processing",
		},
	)

	CoordinatorInflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_coordinator_inflight",
			Help: "Number of per-video tasks currently holding the concurrency semaphore",
		},
	)

	CoordinatorCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_coordinator_cancellations_total",
			Help: "Total number of runs terminated via cancellation",
		},
	)
)

// Resource monitor metrics
var (
	ResourceMemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_resource_memory_usage_ratio",
			Help: "System memory usage as a ratio of the configured limit (0-1)",
		},
	)

	ResourcePaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_resource_backpressure_active",
			Help: "Whether backpressure is currently pausing new task dispatch (1 = paused)",
		},
	)

	ResourceGCForced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_resource_forced_gc_total",
			Help: "Total number of GC cycles forced by the resource monitor",
		},
	)
)

// Filesystem retry metrics (NFS-style stale handle resilience)
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_filesystem_operation_duration_seconds",
			Help:    "Duration of a single filesystem operation attempt in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_filesystem_operation_errors_total",
			Help: "Total number of filesystem operations that returned a non-nil error",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retry attempts",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hypermovie_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hypermovie_filesystem_retry_duration_seconds",
			Help:    "Total duration of a filesystem operation including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Go runtime metrics, sampled periodically by Collector.
var (
	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_go_mem_alloc_bytes",
			Help: "Bytes of heap objects currently allocated",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_go_mem_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)

	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_go_mem_limit_bytes",
			Help: "Configured GOMEMLIMIT, or 0 if unset",
		},
	)

	GoGCRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_go_gc_runs_total",
			Help: "Total number of completed garbage collection cycles",
		},
	)

	GoGCPauseTotalSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hypermovie_go_gc_pause_total_seconds",
			Help: "Cumulative time spent in GC stop-the-world pauses",
		},
	)

	GoGCCPUFraction = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hypermovie_go_gc_cpu_fraction",
			Help: "Fraction of this process's available CPU time spent in GC",
		},
	)
)

// AppInfo reports build/version metadata.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "hypermovie_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
