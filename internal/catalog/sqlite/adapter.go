// Package sqlite is a reference implementation of catalog.Adapter backed by
// SQLite. Nothing in the pipeline imports this package directly; it exists
// to make the pipeline exercisable and testable end-to-end.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/google/uuid"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/logging"
	"github.com/fdenis75/hypermovie/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// driverName is the custom SQLite driver name with mmap disabled, used when
// the backing volume is an unreliable network mount (NFS, Longhorn, etc.)
// where mmap'd pages can trigger SIGBUS on eviction.
const driverName = "hypermovie_sqlite3_mmap_disabled"
const standardDriverName = "sqlite3"

var registerOnce sync.Once

func registerDriver() {
	registerOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				_, err := conn.Exec("PRAGMA mmap_size = 0", nil)
				return err
			},
		})
	})
}

func init() {
	registerDriver()
}

// Options configures Adapter construction.
type Options struct {
	// MmapDisabled routes connections through the mmap-disabled driver.
	MmapDisabled bool
}

func activeDriverName(opts Options) string {
	if opts.MmapDisabled {
		return driverName
	}
	return standardDriverName
}

// Adapter is a catalog.Adapter backed by a single SQLite file.
type Adapter struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	txStart time.Time
}

var _ catalog.Adapter = (*Adapter)(nil)

// Open creates (or reuses) the SQLite file at dbPath and ensures the schema exists.
func Open(ctx context.Context, dbPath string, opts Options) (*Adapter, error) {
	driver := activeDriverName(opts)
	if opts.MmapDisabled {
		logging.Info("sqlite catalog adapter: mmap disabled for %s", dbPath)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("catalog/sqlite: open %s: %w", dbPath, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		if diagErr := diagnosePermissions(dbPath); diagErr != nil {
			return nil, fmt.Errorf("catalog/sqlite: ping %s: %w (%v)", dbPath, err, diagErr)
		}
		return nil, fmt.Errorf("catalog/sqlite: ping %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	a := &Adapter{db: db, dbPath: dbPath}
	if err := a.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog/sqlite: initialize schema: %w", err)
	}
	return a, nil
}

// Close releases the underlying database connection.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func observeQuery(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.CatalogQueryTotal.WithLabelValues(operation, status).Inc()
		metrics.CatalogQueryDuration.WithLabelValues(operation).Observe(duration)
	}
}

func (a *Adapter) initialize(ctx context.Context) error {
	done := observeQuery("initialize_schema")

	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		width INTEGER,
		height INTEGER,
		frame_rate REAL,
		codec_tag TEXT,
		bitrate INTEGER,
		file_size INTEGER,
		custom_metadata TEXT NOT NULL DEFAULT '{}',
		date_added INTEGER NOT NULL,
		date_modified INTEGER NOT NULL,
		thumbnail_url TEXT,
		mosaic_url TEXT,
		preview_url TEXT,
		thumbnail_status TEXT NOT NULL DEFAULT 'absent',
		relative_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_videos_url ON videos(url);

	CREATE TABLE IF NOT EXISTS library_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		url TEXT,
		parent_id TEXT,
		smart_criteria TEXT,
		date_created INTEGER NOT NULL,
		date_modified INTEGER NOT NULL,
		last_refresh INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_library_items_url_type ON library_items(url, type);
	CREATE INDEX IF NOT EXISTS idx_library_items_parent ON library_items(parent_id);
	`

	_, err := a.db.ExecContext(ctx, schema)
	done(err)
	return err
}

func marshalMetadata(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalMetadata(s string) map[string]string {
	if s == "" {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]string{}
	}
	return m
}

// UpsertVideo implements catalog.Adapter.
func (a *Adapter) UpsertVideo(ctx context.Context, v *catalog.Video) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	done := observeQuery("upsert_video")

	metaJSON, err := marshalMetadata(v.CustomMetadata)
	if err != nil {
		done(err)
		return fmt.Errorf("catalog/sqlite: marshal custom metadata: %w", err)
	}

	query := `
	INSERT INTO videos (id, url, title, duration, width, height, frame_rate, codec_tag, bitrate,
		file_size, custom_metadata, date_added, date_modified, thumbnail_url, mosaic_url, preview_url,
		thumbnail_status, relative_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		duration = excluded.duration,
		width = excluded.width,
		height = excluded.height,
		frame_rate = excluded.frame_rate,
		codec_tag = excluded.codec_tag,
		bitrate = excluded.bitrate,
		file_size = excluded.file_size,
		custom_metadata = excluded.custom_metadata,
		date_modified = excluded.date_modified,
		thumbnail_url = excluded.thumbnail_url,
		mosaic_url = excluded.mosaic_url,
		preview_url = excluded.preview_url,
		thumbnail_status = excluded.thumbnail_status,
		relative_path = excluded.relative_path
	`

	_, err = a.db.ExecContext(ctx, query,
		v.ID.String(), v.URL, v.Title, v.Duration,
		nullableInt(v.Width), nullableInt(v.Height), nullableFloat(v.FrameRate), nullableString(v.CodecTag),
		nullableInt64(v.Bitrate), nullableInt64(v.FileSize), metaJSON,
		v.DateAdded.Unix(), v.DateModified.Unix(),
		nullableString(v.ThumbnailURL), nullableString(v.MosaicURL), nullableString(v.PreviewURL), string(v.ThumbnailStatus), v.RelativePath,
	)
	done(err)
	return err
}

// DeleteVideoByURL implements catalog.Adapter.
func (a *Adapter) DeleteVideoByURL(ctx context.Context, url string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	done := observeQuery("delete_video_by_url")
	_, err := a.db.ExecContext(ctx, "DELETE FROM videos WHERE url = ?", url)
	done(err)
	return err
}

// DeleteVideoByID implements catalog.Adapter.
func (a *Adapter) DeleteVideoByID(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	done := observeQuery("delete_video_by_id")
	_, err := a.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id.String())
	done(err)
	return err
}

// FetchVideo implements catalog.Adapter.
func (a *Adapter) FetchVideo(ctx context.Context, url string) (*catalog.Video, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	done := observeQuery("fetch_video")
	row := a.db.QueryRowContext(ctx, videoSelectColumns+" FROM videos WHERE url = ?", url)
	v, err := scanVideo(row)
	done(err)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return v, err
}

// FetchVideos implements catalog.Adapter. The predicate is applied in
// process after a full scan since catalog.Predicate is an opaque Go func;
// a richer adapter could translate common predicates to SQL WHERE clauses.
func (a *Adapter) FetchVideos(ctx context.Context, pred catalog.Predicate) ([]*catalog.Video, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	done := observeQuery("fetch_videos")
	rows, err := a.db.QueryContext(ctx, videoSelectColumns+" FROM videos")
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close()

	var out []*catalog.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			done(err)
			return nil, err
		}
		if pred == nil || pred(v) {
			out = append(out, v)
		}
	}
	err = rows.Err()
	done(err)
	return out, err
}

// VideoCount implements catalog.Adapter.
func (a *Adapter) VideoCount(ctx context.Context) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&n)
	return n, err
}

// FolderCount implements catalog.Adapter.
func (a *Adapter) FolderCount(ctx context.Context) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM library_items WHERE type = ?", string(catalog.ItemFolder)).Scan(&n)
	return n, err
}

// UpsertFolder implements catalog.Adapter.
func (a *Adapter) UpsertFolder(ctx context.Context, item *catalog.LibraryItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	done := observeQuery("upsert_folder")

	var criteriaJSON []byte
	if item.SmartCriteria != nil {
		var err error
		criteriaJSON, err = json.Marshal(item.SmartCriteria)
		if err != nil {
			done(err)
			return fmt.Errorf("catalog/sqlite: marshal smart criteria: %w", err)
		}
	}

	var parentID *string
	if item.Parent != nil {
		s := item.Parent.String()
		parentID = &s
	}

	query := `
	INSERT INTO library_items (id, name, type, url, parent_id, smart_criteria, date_created, date_modified, last_refresh)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		type = excluded.type,
		url = excluded.url,
		parent_id = excluded.parent_id,
		smart_criteria = excluded.smart_criteria,
		date_modified = excluded.date_modified,
		last_refresh = excluded.last_refresh
	`
	// url is stored as a plain string (not NULL) even when empty, so a smart
	// folder's (url="", type) pair remains a stable lookup key in FetchFolder.
	_, err := a.db.ExecContext(ctx, query,
		item.ID.String(), item.Name, string(item.Type), item.URL, parentID,
		nullableBytes(criteriaJSON), item.DateCreated.Unix(), item.DateModified.Unix(),
		nullableUnix(item.LastRefresh),
	)
	done(err)
	return err
}

// FetchFolder implements catalog.Adapter.
func (a *Adapter) FetchFolder(ctx context.Context, url string, itemType catalog.LibraryItemType) (*catalog.LibraryItem, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	done := observeQuery("fetch_folder")
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, type, url, parent_id, smart_criteria, date_created, date_modified, last_refresh
		FROM library_items WHERE url = ? AND type = ?`, url, string(itemType))

	item, err := scanLibraryItem(row)
	done(err)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	return item, err
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
func nullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
func nullableUnix(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

// diagnosePermissions reports an error when an existing file at dbPath has
// no owner-write bit (a missing file passes; the directory is not checked), mirroring
// the permission diagnostics an operator needs when pointing the catalog at
// network-attached storage.
func diagnosePermissions(dbPath string) error {
	info, err := os.Stat(dbPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", dbPath, err)
	}
	if info != nil && info.Mode().Perm()&0o200 == 0 {
		return fmt.Errorf("catalog file %s is read-only", dbPath)
	}
	return nil
}
