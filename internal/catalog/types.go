// Package catalog defines the data model shared by every pipeline component
// and the opaque persistence contract ("Adapter") the pipeline depends on.
package catalog

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThumbnailStatus tracks the lifecycle of a Video's derived cover thumbnail.
type ThumbnailStatus string

const (
	ThumbnailAbsent     ThumbnailStatus = "absent"
	ThumbnailPending    ThumbnailStatus = "pending"
	ThumbnailInProgress ThumbnailStatus = "in_progress"
	ThumbnailCompleted  ThumbnailStatus = "completed"
	ThumbnailError      ThumbnailStatus = "error"
)

// Video is a single discovered and processed media file.
type Video struct {
	ID       uuid.UUID
	URL      string // absolute path; unique key
	Title    string
	Duration float64 // seconds

	Width     *int
	Height    *int
	FrameRate *float64
	CodecTag  string
	Bitrate   *int64
	FileSize  *int64

	CustomMetadata map[string]string

	DateAdded    time.Time
	DateModified time.Time

	ThumbnailURL string
	MosaicURL    string
	PreviewURL   string

	ThumbnailStatus ThumbnailStatus

	// RelativePath is the video's path relative to the library root it was
	// discovered under, used for display grouping.
	RelativePath string
}

// NewVideo creates a Video with a freshly generated ID, a title derived from
// the filename stem (per spec.md §3, "derived from filename stem unless
// set"), and zero-value timestamps set to now. Callers that are
// re-registering an existing path should look the video up via the catalog
// first and preserve its ID.
func NewVideo(url string) *Video {
	now := time.Now()
	base := filepath.Base(url)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	return &Video{
		ID:              uuid.New(),
		URL:             url,
		Title:           title,
		CustomMetadata:  make(map[string]string),
		DateAdded:       now,
		DateModified:    now,
		ThumbnailStatus: ThumbnailAbsent,
	}
}

// LibraryItemType distinguishes folder-tree node kinds.
type LibraryItemType string

const (
	ItemFolder      LibraryItemType = "folder"
	ItemSmartFolder LibraryItemType = "smart_folder"
	ItemPlaylist    LibraryItemType = "playlist"
)

// LibraryItem is a node in the folder tree. Parent/child relationships are
// represented as UUID references into an Arena rather than live pointers, so
// the tree can be stored and reloaded by any persistence backend.
type LibraryItem struct {
	ID   uuid.UUID
	Name string
	Type LibraryItemType

	URL string // present for folders; empty for smart folders

	Parent   *uuid.UUID
	Children []uuid.UUID

	SmartCriteria *SmartCriteria // required iff Type == ItemSmartFolder
	Videos        []uuid.UUID    // cached match set, populated for smart folders on refresh

	DateCreated  time.Time
	DateModified time.Time
	LastRefresh  time.Time
}

// NewLibraryItem creates a folder-type LibraryItem for url with no parent set.
func NewLibraryItem(name, url string) *LibraryItem {
	now := time.Now()
	return &LibraryItem{
		ID:           uuid.New(),
		Name:         name,
		Type:         ItemFolder,
		URL:          url,
		DateCreated:  now,
		DateModified: now,
	}
}
