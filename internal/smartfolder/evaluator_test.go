package smartfolder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/catalog"
)

type fakeAdapter struct {
	videos []*catalog.Video
}

func (f *fakeAdapter) UpsertVideo(ctx context.Context, v *catalog.Video) error { return nil }
func (f *fakeAdapter) DeleteVideoByURL(ctx context.Context, url string) error  { return nil }
func (f *fakeAdapter) DeleteVideoByID(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeAdapter) FetchVideo(ctx context.Context, url string) (*catalog.Video, error) {
	for _, v := range f.videos {
		if v.URL == url {
			return v, nil
		}
	}
	return nil, catalog.ErrNotFound
}
func (f *fakeAdapter) FetchVideos(ctx context.Context, pred catalog.Predicate) ([]*catalog.Video, error) {
	var out []*catalog.Video
	for _, v := range f.videos {
		if pred == nil || pred(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
func (f *fakeAdapter) UpsertFolder(ctx context.Context, item *catalog.LibraryItem) error { return nil }
func (f *fakeAdapter) FetchFolder(ctx context.Context, url string, itemType catalog.LibraryItemType) (*catalog.LibraryItem, error) {
	return nil, catalog.ErrNotFound
}
func (f *fakeAdapter) VideoCount(ctx context.Context) (int, error)  { return len(f.videos), nil }
func (f *fakeAdapter) FolderCount(ctx context.Context) (int, error) { return 0, nil }

func videoWithSize(url string, size int64) *catalog.Video {
	v := catalog.NewVideo(url)
	v.FileSize = &size
	return v
}

func gigabytes(n int64) int64 { return n * 1024 * 1024 * 1024 }

func TestEvaluator_FindMatchesMinSizeCriteria(t *testing.T) {
	dir := t.TempDir()
	adapter := &fakeAdapter{videos: []*catalog.Video{
		videoWithSize(filepath.Join(dir, "big1.mp4"), gigabytes(2)),
		videoWithSize(filepath.Join(dir, "big2.mp4"), gigabytes(3)),
		videoWithSize(filepath.Join(dir, "small.mp4"), gigabytes(1)/2),
	}}

	cache, err := OpenCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	eval := NewEvaluator(adapter, cache)
	minSize := gigabytes(1)
	criteria := catalog.SmartCriteria{MinSize: &minSize}

	result, err := eval.Find(context.Background(), criteria)
	require.NoError(t, err)
	require.Len(t, result.Matched, 2)
	require.ElementsMatch(t, result.Added, []string{
		filepath.Join(dir, "big1.mp4"),
		filepath.Join(dir, "big2.mp4"),
	})
	require.Empty(t, result.Removed)
}

func TestEvaluator_SecondRunReportsAddedAndRemoved(t *testing.T) {
	dir := t.TempDir()
	minSize := gigabytes(1)
	criteria := catalog.SmartCriteria{MinSize: &minSize}

	adapter := &fakeAdapter{videos: []*catalog.Video{
		videoWithSize(filepath.Join(dir, "a.mp4"), gigabytes(2)),
		videoWithSize(filepath.Join(dir, "b.mp4"), gigabytes(2)),
	}}
	cache, err := OpenCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	eval := NewEvaluator(adapter, cache)
	_, err = eval.Find(context.Background(), criteria)
	require.NoError(t, err)

	adapter.videos = []*catalog.Video{
		videoWithSize(filepath.Join(dir, "a.mp4"), gigabytes(2)),
		videoWithSize(filepath.Join(dir, "c.mp4"), gigabytes(2)),
	}

	result, err := eval.Find(context.Background(), criteria)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "c.mp4")}, result.Added)
	require.Equal(t, []string{filepath.Join(dir, "b.mp4")}, result.Removed)
}

func TestEvaluator_EmptyCriteriaMatchesAllVideos(t *testing.T) {
	dir := t.TempDir()
	adapter := &fakeAdapter{videos: []*catalog.Video{
		catalog.NewVideo(filepath.Join(dir, "a.mp4")),
		catalog.NewVideo(filepath.Join(dir, "b.mp4")),
	}}
	cache, err := OpenCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	eval := NewEvaluator(adapter, cache)
	result, err := eval.Find(context.Background(), catalog.SmartCriteria{})
	require.NoError(t, err)
	require.Len(t, result.Matched, 2)
}

func TestEvaluator_WithoutCacheAlwaysReturnsFullSetAsAdded(t *testing.T) {
	dir := t.TempDir()
	adapter := &fakeAdapter{videos: []*catalog.Video{
		catalog.NewVideo(filepath.Join(dir, "a.mp4")),
	}}

	eval := NewEvaluator(adapter, nil)
	result, err := eval.Find(context.Background(), catalog.SmartCriteria{})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.mp4")}, result.Added)
	require.Empty(t, result.Removed)

	result, err = eval.Find(context.Background(), catalog.SmartCriteria{})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.mp4")}, result.Added)
}

func TestEvaluator_FindSortsByPathWithoutDateRange(t *testing.T) {
	dir := t.TempDir()
	adapter := &fakeAdapter{videos: []*catalog.Video{
		catalog.NewVideo(filepath.Join(dir, "zebra.mp4")),
		catalog.NewVideo(filepath.Join(dir, "alpha.mp4")),
		catalog.NewVideo(filepath.Join(dir, "mid.mp4")),
	}}

	eval := NewEvaluator(adapter, nil)
	result, err := eval.Find(context.Background(), catalog.SmartCriteria{})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "alpha.mp4"),
		filepath.Join(dir, "mid.mp4"),
		filepath.Join(dir, "zebra.mp4"),
	}, urlsOf(result.Matched))
}

func TestEvaluator_FindSortsByCreationDateAscendingWithDateRange(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	newest := catalog.NewVideo(filepath.Join(dir, "newest.mp4"))
	newest.DateAdded = now
	oldest := catalog.NewVideo(filepath.Join(dir, "oldest.mp4"))
	oldest.DateAdded = now.Add(-48 * time.Hour)
	middle := catalog.NewVideo(filepath.Join(dir, "middle.mp4"))
	middle.DateAdded = now.Add(-24 * time.Hour)

	adapter := &fakeAdapter{videos: []*catalog.Video{newest, oldest, middle}}
	eval := NewEvaluator(adapter, nil)

	start := now.Add(-72 * time.Hour)
	result, err := eval.Find(context.Background(), catalog.SmartCriteria{StartDate: &start})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "oldest.mp4"),
		filepath.Join(dir, "middle.mp4"),
		filepath.Join(dir, "newest.mp4"),
	}, urlsOf(result.Matched))
}

func urlsOf(videos []*catalog.Video) []string {
	urls := make([]string, len(videos))
	for i, v := range videos {
		urls[i] = v.URL
	}
	return urls
}
