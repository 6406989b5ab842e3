package sqlite

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/fdenis75/hypermovie/internal/catalog"
)

const videoSelectColumns = `SELECT id, url, title, duration, width, height, frame_rate, codec_tag, bitrate,
	file_size, custom_metadata, date_added, date_modified, thumbnail_url, mosaic_url, preview_url,
	thumbnail_status, relative_path`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (*catalog.Video, error) {
	var (
		idStr                               string
		width, height                       sql.NullInt64
		frameRate                           sql.NullFloat64
		bitrate, fileSize                   sql.NullInt64
		metaJSON                            string
		dateAdded, dateModified             int64
		thumbURL, mosaicURL, previewURL     sql.NullString
		thumbStatus                         string
		relativePath                        sql.NullString
		codecTag                            sql.NullString
		title                               string
		url                                 string
		duration                            float64
	)

	if err := row.Scan(&idStr, &url, &title, &duration, &width, &height, &frameRate, &codecTag,
		&bitrate, &fileSize, &metaJSON, &dateAdded, &dateModified, &thumbURL, &mosaicURL, &previewURL,
		&thumbStatus, &relativePath); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}

	v := &catalog.Video{
		ID:              id,
		URL:             url,
		Title:           title,
		Duration:        duration,
		CodecTag:        codecTag.String,
		CustomMetadata:  unmarshalMetadata(metaJSON),
		DateAdded:       time.Unix(dateAdded, 0).UTC(),
		DateModified:    time.Unix(dateModified, 0).UTC(),
		ThumbnailURL:    thumbURL.String,
		MosaicURL:       mosaicURL.String,
		PreviewURL:      previewURL.String,
		ThumbnailStatus: catalog.ThumbnailStatus(thumbStatus),
		RelativePath:    relativePath.String,
	}
	if width.Valid {
		w := int(width.Int64)
		v.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		v.Height = &h
	}
	if frameRate.Valid {
		fr := frameRate.Float64
		v.FrameRate = &fr
	}
	if bitrate.Valid {
		b := bitrate.Int64
		v.Bitrate = &b
	}
	if fileSize.Valid {
		fs := fileSize.Int64
		v.FileSize = &fs
	}
	return v, nil
}

func scanLibraryItem(row rowScanner) (*catalog.LibraryItem, error) {
	var (
		idStr                         string
		name, itemType                string
		url                           sql.NullString
		parentID                      sql.NullString
		smartCriteriaJSON             sql.NullString
		dateCreated, dateModified     int64
		lastRefresh                   sql.NullInt64
	)

	if err := row.Scan(&idStr, &name, &itemType, &url, &parentID, &smartCriteriaJSON,
		&dateCreated, &dateModified, &lastRefresh); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}

	item := &catalog.LibraryItem{
		ID:           id,
		Name:         name,
		Type:         catalog.LibraryItemType(itemType),
		URL:          url.String,
		DateCreated:  time.Unix(dateCreated, 0).UTC(),
		DateModified: time.Unix(dateModified, 0).UTC(),
	}
	if parentID.Valid {
		pid, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, err
		}
		item.Parent = &pid
	}
	if lastRefresh.Valid {
		item.LastRefresh = time.Unix(lastRefresh.Int64, 0).UTC()
	}
	if smartCriteriaJSON.Valid && smartCriteriaJSON.String != "" {
		var sc catalog.SmartCriteria
		if err := sc.UnmarshalJSON([]byte(smartCriteriaJSON.String)); err != nil {
			return nil, err
		}
		item.SmartCriteria = &sc
	}
	return item, nil
}
