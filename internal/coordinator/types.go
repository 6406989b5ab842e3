package coordinator

import "time"

// EventKind distinguishes the phases a Listener observes during a run.
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventCancelled EventKind = "cancelled"
)

// ProgressEvent is emitted after each completed unit of work, carrying every
// field a caller needs to render a progress bar without polling back into
// the coordinator.
type ProgressEvent struct {
	Kind EventKind

	TotalFolders     int
	ProcessedFolders int
	CurrentFolder    string

	TotalVideos     int
	ProcessedVideos int
	CurrentVideo    string

	SkippedFiles int
	ErrorFiles   int

	ProcessingRate         float64 // videos/second, trailing average
	EstimatedTimeRemaining time.Duration
}

// Listener receives progress events during a discovery or regeneration run.
// A nil Listener is valid; events are simply dropped.
type Listener func(ProgressEvent)

func notify(listener Listener, ev ProgressEvent) {
	if listener != nil {
		listener(ev)
	}
}

// DiscoveryResult summarizes a completed discover_folder/discover_smart_folder run.
type DiscoveryResult struct {
	Added          []string
	Updated        []string
	Removed        []string
	CreatedFolders []string
	Errors         []DiscoveryError
	Statistics     Statistics
	Cancelled      bool
}

// DiscoveryError pairs a failing URL with the error the processor returned.
type DiscoveryError struct {
	URL string
	Err error
}

// Statistics is the final tally of a run, independent of DiscoveryResult's
// per-URL slices, used for the "added+updated+removed sums to
// total_videos_processed ± error_files" invariant.
type Statistics struct {
	TotalVideosProcessed int
	ErrorFiles           int
	SkippedFiles         int
	Duration             time.Duration
}

// Options configures a discover_folder/discover_smart_folder run.
type Options struct {
	Recursive            bool
	ConcurrentOperations int // clamped to [1,12]
	IsUpdate             bool
	GenerateThumbnails   bool
}
