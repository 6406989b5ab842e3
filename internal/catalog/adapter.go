package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by fetch operations when no matching record exists.
var ErrNotFound = errors.New("catalog: not found")

// Predicate filters videos during FetchVideos; it is evaluated adapter-side
// so a SQL-backed implementation can push it down where possible.
type Predicate func(*Video) bool

// Adapter is the opaque persistence contract the pipeline depends on.
// Concrete storage engines (SQL, embedded KV, in-memory) implement it; the
// pipeline never imports a storage driver directly. Implementations must
// support concurrent readers with a single writer.
type Adapter interface {
	UpsertVideo(ctx context.Context, v *Video) error
	DeleteVideoByURL(ctx context.Context, url string) error
	DeleteVideoByID(ctx context.Context, id uuid.UUID) error
	FetchVideo(ctx context.Context, url string) (*Video, error)
	FetchVideos(ctx context.Context, pred Predicate) ([]*Video, error)

	UpsertFolder(ctx context.Context, item *LibraryItem) error
	FetchFolder(ctx context.Context, url string, itemType LibraryItemType) (*LibraryItem, error)

	// VideoCount and FolderCount feed the metrics collector's periodic
	// catalog-size gauges; they need not be exact under concurrent writes.
	VideoCount(ctx context.Context) (int, error)
	FolderCount(ctx context.Context) (int, error)
}
