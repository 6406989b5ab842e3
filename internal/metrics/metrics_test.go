package metrics

import (
	"testing"
)

func TestCatalogMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CatalogQueryTotal", CatalogQueryTotal},
		{"CatalogQueryDuration", CatalogQueryDuration},
		{"CatalogVideosTotal", CatalogVideosTotal},
		{"CatalogFoldersTotal", CatalogFoldersTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestScannerMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ScannerOperationsTotal", ScannerOperationsTotal},
		{"ScannerOperationDuration", ScannerOperationDuration},
		{"ScannerFilesScanned", ScannerFilesScanned},
		{"ScannerWatcherEventsTotal", ScannerWatcherEventsTotal},
		{"ScannerWatcherErrors", ScannerWatcherErrors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestProcessorMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ProcessorRunsTotal", ProcessorRunsTotal},
		{"ProcessorDuration", ProcessorDuration},
		{"ProcessorThumbnailStatus", ProcessorThumbnailStatus},
		{"ProcessorDedupedTotal", ProcessorDedupedTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestFrameExtractionMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"FrameExtractionsTotal", FrameExtractionsTotal},
		{"FrameExtractionDuration", FrameExtractionDuration},
		{"FrameExtractionBlankSubstitutions", FrameExtractionBlankSubstitutions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestMosaicMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"MosaicGenerationsTotal", MosaicGenerationsTotal},
		{"MosaicGenerationDuration", MosaicGenerationDuration},
		{"MosaicDedupedTotal", MosaicDedupedTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestPreviewMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"PreviewGenerationsTotal", PreviewGenerationsTotal},
		{"PreviewGenerationDuration", PreviewGenerationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestSmartFolderMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"SmartFolderEvaluationsTotal", SmartFolderEvaluationsTotal},
		{"SmartFolderCacheHits", SmartFolderCacheHits},
		{"SmartFolderCacheMisses", SmartFolderCacheMisses},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCoordinatorMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CoordinatorRunsTotal", CoordinatorRunsTotal},
		{"CoordinatorBatchesTotal", CoordinatorBatchesTotal},
		{"CoordinatorVideosProcessed", CoordinatorVideosProcessed},
		{"CoordinatorErrorsTotal", CoordinatorErrorsTotal},
		{"CoordinatorInflight", CoordinatorInflight},
		{"CoordinatorCancellations", CoordinatorCancellations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestResourceMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ResourceMemoryUsageRatio", ResourceMemoryUsageRatio},
		{"ResourcePaused", ResourcePaused},
		{"ResourceGCForced", ResourceGCForced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestFilesystemMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"FilesystemOperationDuration", FilesystemOperationDuration},
		{"FilesystemOperationErrors", FilesystemOperationErrors},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"FilesystemRetrySuccess", FilesystemRetrySuccess},
		{"FilesystemRetryFailures", FilesystemRetryFailures},
		{"FilesystemStaleErrors", FilesystemStaleErrors},
		{"FilesystemRetryDuration", FilesystemRetryDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestAppInfoMetricExists(t *testing.T) {
	if AppInfo == nil {
		t.Error("AppInfo metric is nil")
	}

	SetAppInfo("v0.0.0-test", "deadbeef", "go1.24")
}
