package metrics

import "github.com/fdenis75/hypermovie/internal/filesystem"

// filesystemObserver reports internal/filesystem's retry machinery through
// the package-level Prometheus metrics above, breaking the import cycle that
// would exist if internal/filesystem imported internal/metrics directly.
type filesystemObserver struct{}

// FilesystemObserver implements filesystem.Observer. This package's init
// function registers it with filesystem.SetObserver.
var FilesystemObserver filesystem.Observer = filesystemObserver{}

func init() {
	filesystem.SetObserver(FilesystemObserver)
}

func (filesystemObserver) ObserveOperation(volume, operation string, durationSeconds float64, err error) {
	FilesystemOperationDuration.WithLabelValues(volume, operation).Observe(durationSeconds)
	if err != nil {
		FilesystemOperationErrors.WithLabelValues(volume, operation).Inc()
	}
}

func (filesystemObserver) ObserveRetryAttempt(retryOp, volume string) {
	FilesystemRetryAttempts.WithLabelValues(retryOp, volume).Inc()
}

func (filesystemObserver) ObserveRetrySuccess(retryOp, volume string) {
	FilesystemRetrySuccess.WithLabelValues(retryOp, volume).Inc()
}

func (filesystemObserver) ObserveRetryFailure(retryOp, volume string) {
	FilesystemRetryFailures.WithLabelValues(retryOp, volume).Inc()
}

func (filesystemObserver) ObserveRetryDuration(retryOp, volume string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(retryOp, volume).Observe(durationSeconds)
}

func (filesystemObserver) ObserveStaleError(retryOp, volume string) {
	FilesystemStaleErrors.WithLabelValues(retryOp, volume).Inc()
}
