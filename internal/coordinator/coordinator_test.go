package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/config"
	"github.com/fdenis75/hypermovie/internal/processor"
)

type fakeAdapter struct {
	mu      sync.Mutex
	videos  map[string]*catalog.Video
	folders map[string]*catalog.LibraryItem
}

func newFakeAdapter(seed ...*catalog.Video) *fakeAdapter {
	a := &fakeAdapter{videos: make(map[string]*catalog.Video), folders: make(map[string]*catalog.LibraryItem)}
	for _, v := range seed {
		a.videos[v.URL] = v
	}
	return a
}

func (a *fakeAdapter) UpsertVideo(ctx context.Context, v *catalog.Video) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.videos[v.URL] = v
	return nil
}
func (a *fakeAdapter) DeleteVideoByURL(ctx context.Context, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.videos, url)
	return nil
}
func (a *fakeAdapter) DeleteVideoByID(ctx context.Context, id uuid.UUID) error { return nil }
func (a *fakeAdapter) FetchVideo(ctx context.Context, url string) (*catalog.Video, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v, ok := a.videos[url]; ok {
		return v, nil
	}
	return nil, catalog.ErrNotFound
}
func (a *fakeAdapter) FetchVideos(ctx context.Context, pred catalog.Predicate) ([]*catalog.Video, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*catalog.Video
	for _, v := range a.videos {
		if pred == nil || pred(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
func (a *fakeAdapter) UpsertFolder(ctx context.Context, item *catalog.LibraryItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.folders[item.URL] = item
	return nil
}
func (a *fakeAdapter) FetchFolder(ctx context.Context, url string, itemType catalog.LibraryItemType) (*catalog.LibraryItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if item, ok := a.folders[url]; ok {
		return item, nil
	}
	return nil, catalog.ErrNotFound
}
func (a *fakeAdapter) VideoCount(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.videos), nil
}
func (a *fakeAdapter) FolderCount(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.folders), nil
}

type fakeProber struct{}

func (fakeProber) Probe(ctx context.Context, url string) (processor.ProbedMetadata, error) {
	return processor.ProbedMetadata{Duration: 42}, nil
}

type fakeThumbnailer struct {
	fail bool
}

func (f *fakeThumbnailer) GenerateCover(ctx context.Context, video *catalog.Video, cfg config.MosaicConfiguration) (string, error) {
	if f.fail {
		return "", os.ErrInvalid
	}
	return "/cache/" + video.ID.String() + "_thumb.jpg", nil
}

func writeVideo(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func newCoordinator(adapter *fakeAdapter) *Coordinator {
	return New(adapter, fakeProber{}, &fakeThumbnailer{}, nil, nil, config.DefaultProcessingConfig(), config.DefaultMosaicConfiguration())
}

func TestDiscoverFolder_ProcessesNewVideosAndCreatesFolderChain(t *testing.T) {
	dir := t.TempDir()
	writeVideo(t, filepath.Join(dir, "sub", "a.mp4"))
	writeVideo(t, filepath.Join(dir, "b.mp4"))

	adapter := newFakeAdapter()
	c := newCoordinator(adapter)

	result, err := c.DiscoverFolder(context.Background(), dir, Options{Recursive: true, ConcurrentOperations: 4}, nil)
	require.NoError(t, err)
	require.Len(t, result.Added, 2)
	require.Empty(t, result.Updated)
	require.Empty(t, result.Errors)
	require.Equal(t, 2, result.Statistics.TotalVideosProcessed)

	count, err := adapter.VideoCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = adapter.FetchFolder(context.Background(), filepath.Join(dir, "sub"), catalog.ItemFolder)
	require.NoError(t, err)
}

func TestDiscoverFolder_SkipsAlreadyCatalogedVideosWithoutUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp4")
	writeVideo(t, path)

	existing := catalog.NewVideo(path)
	adapter := newFakeAdapter(existing)
	c := newCoordinator(adapter)

	result, err := c.DiscoverFolder(context.Background(), dir, Options{Recursive: true}, nil)
	require.NoError(t, err)
	require.Empty(t, result.Added)
	require.Empty(t, result.Updated)
	require.Equal(t, 1, result.Statistics.SkippedFiles)
}

func TestDiscoverFolder_ReprocessesExistingVideosWhenIsUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp4")
	writeVideo(t, path)

	existing := catalog.NewVideo(path)
	adapter := newFakeAdapter(existing)
	c := newCoordinator(adapter)

	result, err := c.DiscoverFolder(context.Background(), dir, Options{Recursive: true, IsUpdate: true}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{path}, result.Updated)
	require.Empty(t, result.Added)
}

func TestDiscoverFolder_RunningTwiceWithNoChangesYieldsNoNewAdditions(t *testing.T) {
	dir := t.TempDir()
	writeVideo(t, filepath.Join(dir, "a.mp4"))

	adapter := newFakeAdapter()
	c := newCoordinator(adapter)

	_, err := c.DiscoverFolder(context.Background(), dir, Options{Recursive: true}, nil)
	require.NoError(t, err)

	second, err := c.DiscoverFolder(context.Background(), dir, Options{Recursive: true}, nil)
	require.NoError(t, err)
	require.Empty(t, second.Added)
}

func TestDiscoverFolder_ThumbnailFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	writeVideo(t, filepath.Join(dir, "a.mp4"))
	writeVideo(t, filepath.Join(dir, "b.mp4"))

	adapter := newFakeAdapter()
	c := New(adapter, fakeProber{}, &fakeThumbnailer{fail: true}, nil, nil, config.DefaultProcessingConfig(), config.DefaultMosaicConfiguration())

	result, err := c.DiscoverFolder(context.Background(), dir, Options{Recursive: true, GenerateThumbnails: true}, nil)
	require.NoError(t, err)
	require.Len(t, result.Added, 2)
	require.Equal(t, 2, result.Statistics.TotalVideosProcessed)
}

func TestDiscoverFolder_RejectsConcurrentRuns(t *testing.T) {
	adapter := newFakeAdapter()
	c := newCoordinator(adapter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := c.beginRun(ctx)
	require.NoError(t, err)

	_, err = c.beginRun(ctx)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestCheckThumbnails_ReturnsVideosNeedingRegeneration(t *testing.T) {
	dir := t.TempDir()
	done := catalog.NewVideo(filepath.Join(dir, "done.mp4"))
	done.ThumbnailStatus = catalog.ThumbnailCompleted
	pending := catalog.NewVideo(filepath.Join(dir, "pending.mp4"))
	pending.ThumbnailStatus = catalog.ThumbnailError

	adapter := newFakeAdapter(done, pending)
	c := newCoordinator(adapter)

	videos, err := c.CheckThumbnails(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	require.Equal(t, pending.URL, videos[0].URL)
}

func TestRegenerateThumbnails_UpdatesStatusAndURL(t *testing.T) {
	dir := t.TempDir()
	video := catalog.NewVideo(filepath.Join(dir, "a.mp4"))

	adapter := newFakeAdapter(video)
	c := newCoordinator(adapter)

	err := c.RegenerateThumbnails(context.Background(), []*catalog.Video{video}, nil)
	require.NoError(t, err)
	require.Equal(t, catalog.ThumbnailCompleted, video.ThumbnailStatus)
	require.NotEmpty(t, video.ThumbnailURL)
}

func TestRegenerateThumbnails_MarksErrorStatusOnFailure(t *testing.T) {
	dir := t.TempDir()
	video := catalog.NewVideo(filepath.Join(dir, "a.mp4"))

	adapter := newFakeAdapter(video)
	c := New(adapter, fakeProber{}, &fakeThumbnailer{fail: true}, nil, nil, config.DefaultProcessingConfig(), config.DefaultMosaicConfiguration())

	err := c.RegenerateThumbnails(context.Background(), []*catalog.Video{video}, nil)
	require.NoError(t, err)
	require.Equal(t, catalog.ThumbnailError, video.ThumbnailStatus)
}

func TestCancel_StopsRunBeforeProcessingEveryVideo(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeVideo(t, filepath.Join(dir, string(rune('a'+i))+".mp4"))
	}

	adapter := newFakeAdapter()
	c := newCoordinator(adapter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := c.DiscoverFolder(ctx, dir, Options{Recursive: true}, nil)
	require.NoError(t, err)
	require.True(t, result.Cancelled)
}
