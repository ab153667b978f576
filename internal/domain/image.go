package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SizeClass selects the binary-store location for an object.
type SizeClass string

const (
	SizeClassOriginal  SizeClass = "original"
	SizeClassThumbnail SizeClass = "thumbnail"
)

// ImageFormat describes a detected image format. The zero value means
// "not an image".
type ImageFormat struct {
	Type      string `json:"type"`
	MimeType  string `json:"mime_type"`
	Extension string `json:"extension"`
}

func (f ImageFormat) IsZero() bool {
	return f.Type == ""
}

// ImageSize holds the measurements taken from an uploaded stream.
type ImageSize struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Bytes  int64 `json:"bytes"`
}

// ImageThumbnail is a derived binary at one target width. Thumbnails are
// addressable in the binary store by Name but never deleted on their own,
// only together with the parent image.
type ImageThumbnail struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SizeBytes    int64     `json:"size_bytes"`
	MD5Hash      string    `json:"md5_hash"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	DateAddedUTC time.Time `json:"date_added_utc"`
	MimeType     string    `json:"mime_type"`
}

// ImageMetadata is the one record per logical image. It is created once on
// upload (without thumbnails), mutated once when the thumbnail list is
// appended, and removed on delete. No other writer exists.
type ImageMetadata struct {
	ID            string        `json:"id"`
	ImageGroup    string        `json:"image_group,omitempty"`
	Name          string        `json:"name"`
	MimeType      string        `json:"mime_type"`
	ImageType     string        `json:"image_type"`
	FileExtension string        `json:"file_extension"`
	SizeBytes     int64         `json:"size_bytes"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	MD5Hash       string        `json:"md5_hash"`
	DateAddedUTC  time.Time     `json:"date_added_utc"`
	Tags          Tags          `json:"tags,omitempty"`
	Thumbnails    ThumbnailList `json:"thumbnails,omitempty"`
}

// HasThumbnailWidth reports whether a thumbnail at the given width is
// already recorded. Re-delivered upload events rely on this to skip work.
func (m *ImageMetadata) HasThumbnailWidth(width int) bool {
	for _, t := range m.Thumbnails {
		if t.Width == width {
			return true
		}
	}
	return false
}

// ImageShortInfo travels on the delete path only: everything the binary
// cleanup needs after the metadata record is already gone. Never persisted.
type ImageShortInfo struct {
	ImageID        string   `json:"image_id"`
	ImageName      string   `json:"image_name"`
	ThumbnailNames []string `json:"thumbnail_names"`
}

// ShortInfo collects the binary-store names from a record about to be deleted.
func (m *ImageMetadata) ShortInfo() ImageShortInfo {
	names := make([]string, 0, len(m.Thumbnails))
	for _, t := range m.Thumbnails {
		names = append(names, t.Name)
	}
	return ImageShortInfo{
		ImageID:        m.ID,
		ImageName:      m.Name,
		ThumbnailNames: names,
	}
}

// ThumbnailList is stored as a JSONB column, ascending by width.
type ThumbnailList []ImageThumbnail

func (l *ThumbnailList) Scan(value any) error {
	if value == nil {
		*l = ThumbnailList{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for ThumbnailList")
	}

	if err := json.Unmarshal(b, l); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to ThumbnailList: %w", err)
	}
	return nil
}

func (l ThumbnailList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte(`[]`), nil
	}
	res, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ThumbnailList to JSONB: %w", err)
	}
	return res, nil
}

// Tags is a free-form key/value map stored as a JSONB column.
type Tags map[string]string

func (t *Tags) Scan(value any) error {
	if value == nil {
		*t = Tags{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for Tags")
	}

	if err := json.Unmarshal(b, t); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to Tags: %w", err)
	}
	return nil
}

func (t Tags) Value() (driver.Value, error) {
	if len(t) == 0 {
		return []byte(`{}`), nil
	}
	res, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Tags to JSONB: %w", err)
	}
	return res, nil
}
