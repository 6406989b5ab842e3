package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	volumes := []string{"media", "cache", "catalog", "unknown"}
	fsOps := []string{"stat", "open", "readdir", "writefile"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"fetch", "upsert", "delete", "fetch_by_predicate"} {
		for _, status := range []string{"success", "error"} {
			CatalogQueryTotal.WithLabelValues(op, status)
		}
		CatalogQueryDuration.WithLabelValues(op)
	}

	for _, op := range []string{"walk", "reconcile", "pair_previews"} {
		for _, status := range []string{"success", "error"} {
			ScannerOperationsTotal.WithLabelValues(op, status)
		}
		ScannerOperationDuration.WithLabelValues(op)
	}
	ScannerFilesScanned.WithLabelValues("walk")
	for _, evt := range []string{"create", "write", "remove", "rename"} {
		ScannerWatcherEventsTotal.WithLabelValues(evt)
	}

	for _, status := range []string{"success", "error", "deduped"} {
		ProcessorRunsTotal.WithLabelValues(status)
	}
	for _, stage := range []string{"probe", "cover_thumbnail"} {
		ProcessorDuration.WithLabelValues(stage)
	}
	for _, status := range []string{"generated", "skipped", "failed"} {
		ProcessorThumbnailStatus.WithLabelValues(status)
	}

	for _, tolerance := range []string{"exact", "nearest", "blank"} {
		FrameExtractionsTotal.WithLabelValues(tolerance, "success")
		FrameExtractionsTotal.WithLabelValues(tolerance, "error")
		FrameExtractionDuration.WithLabelValues(tolerance)
	}

	for _, status := range []string{"success", "error", "deduped"} {
		MosaicGenerationsTotal.WithLabelValues(status)
	}
	for _, stage := range []string{"layout", "extract", "compose", "write"} {
		MosaicGenerationDuration.WithLabelValues(stage)
	}

	for _, status := range []string{"success", "error"} {
		PreviewGenerationsTotal.WithLabelValues(status)
	}
	for _, stage := range []string{"plan", "extract", "assemble", "export"} {
		PreviewGenerationDuration.WithLabelValues(stage)
	}

	for _, status := range []string{"match", "no_match", "error"} {
		SmartFolderEvaluationsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error", "cancelled"} {
		CoordinatorRunsTotal.WithLabelValues(status)
	}
}
